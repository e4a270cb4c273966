package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
)

// DefaultMaxSize is used when a cache is created with a non-positive bound
const DefaultMaxSize = 50

// Entry is a snapshot of one cached raster
type Entry struct {
	Key        Key
	Data       []byte
	LastAccess time.Time
}

type entry struct {
	data       []byte
	lastAccess atomic.Int64 // unix nanoseconds
}

func (e *entry) touch(now time.Time) {
	e.lastAccess.Store(now.UnixNano())
}

// Stats counts cache traffic since creation
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Option configures a RasterCache
type Option func(*RasterCache)

// WithLogger sets the logger evictions are reported to
func WithLogger(logger observability.Logger) Option {
	return func(c *RasterCache) {
		c.logger = observability.OrNop(logger)
	}
}

// WithClock overrides the time source used for last-access timestamps
func WithClock(now func() time.Time) Option {
	return func(c *RasterCache) {
		c.now = now
	}
}

// RasterCache is a bounded store of rendered pages. It is safe for use by
// many goroutines; the least recently used entry is evicted on insert once
// the bound is reached.
type RasterCache struct {
	lru     *lru.Cache[Key, *entry]
	maxSize int
	logger  observability.Logger
	now     func() time.Time

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most maxSize rasters
func New(maxSize int, opts ...Option) *RasterCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	c := &RasterCache{
		maxSize: maxSize,
		logger:  observability.NopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	// lru.New only fails for a non-positive size
	c.lru, _ = lru.New[Key, *entry](maxSize)
	return c
}

// Get returns the raster stored under key and marks it as most recently used
func (c *RasterCache) Get(key Key) ([]byte, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	e.touch(c.now())
	c.hits.Add(1)
	return e.data, true
}

// Put stores data under key, evicting the least recently used entry first
// when the cache is full
func (c *RasterCache) Put(key Key, data []byte) {
	e := &entry{data: data}
	e.touch(c.now())

	if evicted := c.lru.Add(key, e); evicted {
		c.evictions.Add(1)
		c.logger.Debug("raster evicted",
			observability.String("inserted", key.String()),
			observability.Int("size", c.lru.Len()))
	}
}

// Remove drops a single entry
func (c *RasterCache) Remove(key Key) {
	c.lru.Remove(key)
}

// Clear drops every entry
func (c *RasterCache) Clear() {
	c.lru.Purge()
}

// Count returns the number of cached rasters
func (c *RasterCache) Count() int {
	return c.lru.Len()
}

// MaxSize returns the configured bound
func (c *RasterCache) MaxSize() int {
	return c.maxSize
}

// Contains reports whether key is cached without touching its recency
func (c *RasterCache) Contains(key Key) bool {
	return c.lru.Contains(key)
}

// Oldest returns the entry that would be evicted next
func (c *RasterCache) Oldest() (Entry, bool) {
	key, e, ok := c.lru.GetOldest()
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Key:        key,
		Data:       e.data,
		LastAccess: time.Unix(0, e.lastAccess.Load()),
	}, true
}


// Stats returns the hit, miss and eviction counters
func (c *RasterCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
