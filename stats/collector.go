package stats

import (
	"sync/atomic"

	"github.com/finpulse/fincache/types"
)

// Collector aggregates the cumulative hit/miss/eviction counters.
// Counters survive Clear and are carried across restarts via snapshots;
// current size and entry count are the store's business and are passed
// in when a stats view is built.
type Collector struct {
	hits      uint64
	misses    uint64
	evictions uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Hit() {
	atomic.AddUint64(&c.hits, 1)
}

func (c *Collector) Miss() {
	atomic.AddUint64(&c.misses, 1)
}

func (c *Collector) Eviction() {
	atomic.AddUint64(&c.evictions, 1)
}

func (c *Collector) Evictions(n uint64) {
	if n > 0 {
		atomic.AddUint64(&c.evictions, n)
	}
}

// Restore overwrites the counters with snapshot values.
func (c *Collector) Restore(hits, misses, evictions uint64) {
	atomic.StoreUint64(&c.hits, hits)
	atomic.StoreUint64(&c.misses, misses)
	atomic.StoreUint64(&c.evictions, evictions)
}

func (c *Collector) Counters() (hits, misses, evictions uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses), atomic.LoadUint64(&c.evictions)
}

// Snapshot builds the caller-facing stats view, deriving hit rate and
// utilization from the current store dimensions.
func (c *Collector) Snapshot(entries int, sizeBytes, maxSizeBytes int64, maxEntries int) types.CacheStats {
	hits, misses, evictions := c.Counters()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	var utilization float64
	if maxSizeBytes > 0 {
		utilization = float64(sizeBytes) / float64(maxSizeBytes) * 100
	}

	return types.CacheStats{
		TotalEntries:       entries,
		CacheSizeBytes:     sizeBytes,
		Hits:               hits,
		Misses:             misses,
		Evictions:          evictions,
		HitRate:            hitRate,
		MaxSizeBytes:       maxSizeBytes,
		MaxEntries:         maxEntries,
		UtilizationPercent: utilization,
	}
}
