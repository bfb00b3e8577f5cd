package application

import (
	"strings"
	"sync"
	"time"
)

// timelineCache stores recently assembled timelines to avoid repeated rule
// expansion for identical window queries while the underlying data remains
// unchanged. Any write through the services invalidates it wholesale.
type timelineCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]timelineCacheEntry
}

type timelineCacheEntry struct {
	timeline  []TimelineEntry
	expiresAt time.Time
}

func newTimelineCache(ttl time.Duration, maxEntries int, now func() time.Time) *timelineCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &timelineCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]timelineCacheEntry),
	}
}

func (c *timelineCache) Get(key string) ([]TimelineEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneTimeline(entry.timeline), true
}

func (c *timelineCache) Store(key string, timeline []TimelineEntry) {
	if c == nil {
		return
	}
	cloned := cloneTimeline(timeline)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = timelineCacheEntry{timeline: cloned, expiresAt: expiry}
}

func (c *timelineCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]timelineCacheEntry)
	c.mu.Unlock()
}

func (c *timelineCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *timelineCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneTimeline(timeline []TimelineEntry) []TimelineEntry {
	if len(timeline) == 0 {
		return nil
	}
	out := make([]TimelineEntry, len(timeline))
	copy(out, timeline)
	return out
}

func buildTimelineCacheKey(from, to time.Time) string {
	builder := strings.Builder{}
	builder.WriteString(from.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(to.UTC().Format(time.RFC3339Nano))
	return builder.String()
}
