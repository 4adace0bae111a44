// Package secrets provides credential sources: process environment, local
// files, and AWS Secrets Manager with a TTL cache.
package secrets

import (
	"context"
	"os"
	"strings"
)

// Source yields credential material for a logical key. A missing or empty
// value is reported as *NotFoundError; a backend outage as
// *UnavailableError. Sources never cache unless documented otherwise.
type Source interface {
	// Name identifies the source in diagnostics (e.g. "env", "file").
	Name() string

	// Resolve fetches the value for key. The meaning of key depends on the
	// source: an environment variable name, a file path, or a secret path.
	Resolve(ctx context.Context, key string) (string, error)
}

// EnvSource reads process environment variables.
type EnvSource struct{}

// Name returns "env".
func (EnvSource) Name() string { return "env" }

// Resolve reads the named environment variable. Unset and empty are both
// absent.
func (EnvSource) Resolve(_ context.Context, key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", &NotFoundError{Source: "env", Key: key}
	}
	return v, nil
}

// FileSource reads local credential files. Files are re-read on every call
// so operators can rotate credentials in place without restarting the
// process.
type FileSource struct{}

// Name returns "file".
func (FileSource) Name() string { return "file" }

// Resolve reads the file at key and trims surrounding whitespace. A
// missing or empty file is absent.
func (FileSource) Resolve(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Source: "file", Key: key}
		}
		return "", &UnavailableError{
			Backend: "file",
			Key:     key,
			Reason:  err.Error(),
			Fix:     "Check the file exists and is readable by this process.",
			Err:     err,
		}
	}

	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", &NotFoundError{Source: "file", Key: key}
	}
	return v, nil
}
