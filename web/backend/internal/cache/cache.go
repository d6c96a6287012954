// Package cache keeps short-lived copies of record lists fetched from the
// record API, keyed by resource and by the scope the list was fetched for.
//
// Lists are dropped as soon as a change to their resource is announced. A
// fetch that was in flight when the change landed still answers its own
// caller but is never stored, so a stale response cannot overwrite the
// invalidation.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/fetchseq"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/metrics"
)

// ResourceAuditLogs is invalidated together with every other resource, since
// each mutation appends to the audit trail.
const ResourceAuditLogs = "audit-logs"

type entry struct {
	value  any
	stored time.Time
}

type Lists struct {
	ttl time.Duration
	now func() time.Time
	seq fetchseq.Tracker

	mu      sync.RWMutex
	entries map[string]entry
	keys    map[string]map[string]struct{}
}

// New creates a cache whose entries live for ttl. A non-positive ttl
// disables caching; every Load fetches.
func New(ttl time.Duration) *Lists {
	return &Lists{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
		keys:    make(map[string]map[string]struct{}),
	}
}

func cacheKey(resource, scope string) string {
	return resource + "|" + scope
}

// Load returns the cached list for (resource, scope), calling fetch on a miss.
func Load[T any](ctx context.Context, c *Lists, resource, scope string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if c == nil || c.ttl <= 0 {
		return fetch(ctx)
	}
	key := cacheKey(resource, scope)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.stored) < c.ttl {
		if v, ok := e.value.([]T); ok {
			metrics.CacheLookups.WithLabelValues(resource, "hit").Inc()
			return v, nil
		}
	}
	metrics.CacheLookups.WithLabelValues(resource, "miss").Inc()

	c.track(resource, key)
	tok := c.seq.Begin(key)
	list, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	stored := c.seq.Commit(tok, func() {
		c.mu.Lock()
		c.entries[key] = entry{value: list, stored: c.now()}
		c.mu.Unlock()
	})
	if !stored {
		metrics.CacheLookups.WithLabelValues(resource, "stale").Inc()
	}
	return list, nil
}

func (c *Lists) track(resource, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.keys[resource]
	if !ok {
		set = make(map[string]struct{})
		c.keys[resource] = set
	}
	set[key] = struct{}{}
}

// Invalidate drops every list of resource and of the audit log, and
// supersedes any fetch of them still in flight.
func (c *Lists) Invalidate(resource string) {
	c.invalidate(resource)
	if resource != ResourceAuditLogs {
		c.invalidate(ResourceAuditLogs)
	}
}

func (c *Lists) invalidate(resource string) {
	c.mu.RLock()
	keys := make([]string, 0, len(c.keys[resource]))
	for k := range c.keys[resource] {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	// The tracker lock is taken before c.mu inside Commit, so it must not be
	// taken while holding c.mu here.
	for _, k := range keys {
		c.seq.Invalidate(k)
	}

	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *Lists) InvalidateAll() {
	c.seq.InvalidateAll()
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of stored lists.
func (c *Lists) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
