package cache

import (
	"sync"

	"newspulse/internal/domain"
)

// SnapshotCache holds the current published snapshot. Publishing swaps the
// whole snapshot under the lock, so readers never observe article and trending
// data from different cycles. Last publish wins.
type SnapshotCache struct {
	mu      sync.RWMutex
	current domain.Snapshot
	version uint64
}

// New returns a cache holding an empty version-0 snapshot.
func New() *SnapshotCache {
	return &SnapshotCache{}
}

// Publish replaces the visible snapshot, assigning the next monotonic version.
// It returns the snapshot as stored.
func (c *SnapshotCache) Publish(snap domain.Snapshot) domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	snap.Version = c.version
	c.current = snap
	return snap
}

// Current returns the latest published snapshot, or the initial empty snapshot
// before the first cycle completes. Callers must not mutate the slices.
func (c *SnapshotCache) Current() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}
