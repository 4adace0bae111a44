package secrets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cobalt-robotics/datadog-mcp/internal/log"
)

// VaultCache wraps a remote Source with a TTL cache. It reduces remote
// round-trips and degrades gracefully: when a refetch fails with
// *UnavailableError and a stale entry exists, the stale value is served
// rather than failing a live request over a transient vault outage.
//
// Concurrent refetches of the same path are tolerated (last writer wins);
// remote reads are idempotent and cheap relative to the TTL, so
// single-flight deduplication is deliberately omitted.
type VaultCache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	fetchedAt time.Time
}

// NewVaultCache wraps source with a shared-TTL cache across all paths.
func NewVaultCache(source Source, ttl time.Duration) *VaultCache {
	return &VaultCache{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Name reports the wrapped source's name; the cache is transparent in
// diagnostics.
func (c *VaultCache) Name() string { return c.source.Name() }

// Resolve returns the cached value when fresh, otherwise attempts a live
// fetch. On fetch success the entry is replaced; on *UnavailableError a
// stale entry, if any, is served as a degraded fallback. Absence
// (*NotFoundError) always propagates and is never cached.
func (c *VaultCache) Resolve(ctx context.Context, secretPath string) (string, error) {
	c.mu.Lock()
	entry, cached := c.entries[secretPath]
	c.mu.Unlock()

	if cached && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.value, nil
	}

	value, err := c.source.Resolve(ctx, secretPath)
	if err == nil {
		c.mu.Lock()
		c.entries[secretPath] = cacheEntry{value: value, fetchedAt: c.now()}
		c.mu.Unlock()
		return value, nil
	}

	var unavailable *UnavailableError
	if errors.As(err, &unavailable) && cached {
		log.Warn("vault unreachable, serving stale cached secret",
			"path", secretPath,
			"age", c.now().Sub(entry.fetchedAt).String(),
			"reason", unavailable.Reason)
		return entry.value, nil
	}

	return "", err
}
