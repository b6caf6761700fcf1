package types

import (
	"time"
)

type Cache[T any] interface {
	LifecycleManager
	Set(key string, value T, opts ...SetOption) error
	Get(key string) (T, bool)
	Has(key string) bool
	Delete(key string) bool
	Clear()
	GetMetadata(key string) *AccessMetadata
	InvalidateByTags(tags ...string) int
	InvalidateByPattern(substring string) int
	GetStats() CacheStats
	Persist()
	Load()
}

// StatsSource is the read-only view consumed by metrics exporters.
type StatsSource interface {
	GetStats() CacheStats
}

type Entry[T any] struct {
	Key        string        `json:"key"`
	Value      T             `json:"value"`
	SizeBytes  int64         `json:"size_bytes"`
	InsertedAt time.Time     `json:"inserted_at"`
	TTL        time.Duration `json:"ttl"`
	Tags       []string      `json:"tags,omitempty"`
}

type AccessMetadata struct {
	AccessCount    uint64    `json:"access_count"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

type CacheStats struct {
	TotalEntries       int     `json:"total_entries"`
	CacheSizeBytes     int64   `json:"cache_size_bytes"`
	Hits               uint64  `json:"hits"`
	Misses             uint64  `json:"misses"`
	Evictions          uint64  `json:"evictions"`
	HitRate            float64 `json:"hit_rate"`
	MaxSizeBytes       int64   `json:"max_size_bytes"`
	MaxEntries         int     `json:"max_entries"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

type SetOption func(*SetOptions)

type SetOptions struct {
	TTL  time.Duration
	Tags []string
}

// WithTTL overrides the store-wide default time-to-live for one entry.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *SetOptions) {
		o.TTL = ttl
	}
}

// WithTags attaches labels used for group invalidation.
func WithTags(tags ...string) SetOption {
	return func(o *SetOptions) {
		o.Tags = append(o.Tags, tags...)
	}
}
