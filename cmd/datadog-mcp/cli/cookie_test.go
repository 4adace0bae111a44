package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCredentialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "cookie")

	require.NoError(t, writeCredentialFile(path, "dogweb=a"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dogweb=a", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestWriteCredentialFileTightensPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookie")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	require.NoError(t, writeCredentialFile(path, "new"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
