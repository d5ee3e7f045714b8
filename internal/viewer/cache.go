package viewer

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ginjaninja78/pnl-workbook/internal/xlsxparser"
)

// DefaultCacheSize is the snapshot cache capacity.
const DefaultCacheSize = 10

type cacheEntry struct {
	modTime int64
	snap    *xlsxparser.Snapshot
}

// Cache is a bounded LRU of workbook snapshots keyed by file name. Each entry
// remembers the modification time it was read at, so a regenerated workbook
// is never served stale. It is safe for concurrent use; lookups take only
// the shared read lock, and recency is refreshed when a snapshot is stored.
type Cache struct {
	capacity int
	lru      *lru.Cache[string, cacheEntry]
}

// NewCache creates a cache. A capacity below 1 uses DefaultCacheSize.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size.
	c, _ := lru.New[string, cacheEntry](capacity)
	return &Cache{capacity: capacity, lru: c}
}

// Get returns the snapshot of name if it was read at modTime.
func (c *Cache) Get(name string, modTime time.Time) (*xlsxparser.Snapshot, bool) {
	e, ok := c.lru.Peek(name)
	if !ok || e.modTime != modTime.UnixNano() {
		return nil, false
	}
	return e.snap, true
}

// Put stores a snapshot, replacing any older version of the same file and
// evicting the least recently stored entry when full.
func (c *Cache) Put(name string, modTime time.Time, snap *xlsxparser.Snapshot) {
	c.lru.Add(name, cacheEntry{modTime: modTime.UnixNano(), snap: snap})
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	return c.lru.Len()
}
