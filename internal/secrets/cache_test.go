package secrets

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote is a scriptable remote source counting its calls.
type fakeRemote struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	calls  int
}

func (f *fakeRemote) Name() string { return "aws-secrets-manager" }

func (f *fakeRemote) Resolve(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", &NotFoundError{Source: f.Name(), Key: key}
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// testClock drives the cache's notion of now.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(remote *fakeRemote, ttl time.Duration) (*VaultCache, *testClock) {
	clock := &testClock{now: time.Unix(1700000000, 0)}
	cache := NewVaultCache(remote, ttl)
	cache.now = clock.Now
	return cache, clock
}

func TestVaultCacheFreshHitSkipsRemote(t *testing.T) {
	remote := &fakeRemote{values: map[string]string{"/dd/api": "k1"}}
	cache, _ := newTestCache(remote, time.Minute)

	v, err := cache.Resolve(context.Background(), "/dd/api")
	require.NoError(t, err)
	assert.Equal(t, "k1", v)

	v, err = cache.Resolve(context.Background(), "/dd/api")
	require.NoError(t, err)
	assert.Equal(t, "k1", v)
	assert.Equal(t, 1, remote.callCount(), "second call within TTL must not hit the remote")
}

func TestVaultCacheRefetchesAfterTTL(t *testing.T) {
	remote := &fakeRemote{values: map[string]string{"/dd/api": "k1"}}
	cache, clock := newTestCache(remote, time.Minute)

	_, err := cache.Resolve(context.Background(), "/dd/api")
	require.NoError(t, err)

	remote.values["/dd/api"] = "k2"
	clock.Advance(2 * time.Minute)

	v, err := cache.Resolve(context.Background(), "/dd/api")
	require.NoError(t, err)
	assert.Equal(t, "k2", v)
	assert.Equal(t, 2, remote.callCount())
}

func TestVaultCacheServesStaleOnOutage(t *testing.T) {
	remote := &fakeRemote{values: map[string]string{"/dd/api": "k1"}}
	cache, clock := newTestCache(remote, time.Minute)

	_, err := cache.Resolve(context.Background(), "/dd/api")
	require.NoError(t, err)

	remote.err = &UnavailableError{Backend: "AWS Secrets Manager", Key: "/dd/api", Reason: "timeout"}
	clock.Advance(2 * time.Minute)

	v, err := cache.Resolve(context.Background(), "/dd/api")
	require.NoError(t, err, "stale value must be served over a transient outage")
	assert.Equal(t, "k1", v)
}

func TestVaultCacheColdStartOutagePropagates(t *testing.T) {
	remote := &fakeRemote{err: &UnavailableError{Backend: "AWS Secrets Manager", Key: "/dd/api", Reason: "timeout"}}
	cache, _ := newTestCache(remote, time.Minute)

	_, err := cache.Resolve(context.Background(), "/dd/api")

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "timeout", unavailable.Reason)
}

func TestVaultCacheAbsenceNotCached(t *testing.T) {
	remote := &fakeRemote{}
	cache, _ := newTestCache(remote, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cache.Resolve(context.Background(), "/dd/missing")
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
	}
	assert.Equal(t, 2, remote.callCount(), "absence is re-checked on every call")
}

func TestVaultCacheKeysAreIndependent(t *testing.T) {
	remote := &fakeRemote{values: map[string]string{"/dd/api": "k1", "/dd/app": "k2"}}
	cache, _ := newTestCache(remote, time.Minute)

	v1, err := cache.Resolve(context.Background(), "/dd/api")
	require.NoError(t, err)
	v2, err := cache.Resolve(context.Background(), "/dd/app")
	require.NoError(t, err)

	assert.Equal(t, "k1", v1)
	assert.Equal(t, "k2", v2)
	assert.Equal(t, 2, remote.callCount())
}
