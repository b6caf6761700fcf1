package engine

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finpulse/fincache/logger"
	"github.com/finpulse/fincache/maintenance"
	"github.com/finpulse/fincache/snapshot"
	"github.com/finpulse/fincache/stats"
	"github.com/finpulse/fincache/types"
	"github.com/finpulse/fincache/utils"
)

var _ types.Cache[any] = (*Engine[any])(nil)

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

const (
	MaxTTL     = 24 * time.Hour
	DefaultTTL = 1 * time.Hour

	DefaultMaxEntries     = 10000
	DefaultMaxSizeBytes   = 64 << 20
	DefaultSweepInterval  = 5 * time.Minute
	DefaultSnapshotMaxAge = 1 * time.Hour
)

// entry is the stored record. The caller-facing view is types.Entry;
// internally tags are also mirrored into the reverse index.
type entry[T any] struct {
	value      T
	sizeBytes  int64
	insertedAt time.Time
	ttl        time.Duration
	tags       []string
}

// Engine is a bounded in-memory cache with per-entry TTL, tag and
// key-pattern invalidation, dual eviction policies and best-effort
// snapshot persistence. Every instance is independent: configuration,
// statistics and background jobs are owned by the instance, never
// shared through package state.
//
// A single RWMutex guards the entry map, access metadata, tag index and
// size counter, so each public operation is atomic to concurrent
// callers.
type Engine[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	id     string
	config *types.CacheConfig
	logger types.Logger
	clock  types.Clock
	sizer  types.Sizer[T]

	data      map[string]*entry[T]
	meta      map[string]*types.AccessMetadata
	tagIndex  map[string]map[string]struct{}
	totalSize int64

	stats            *stats.Collector
	adapter          *snapshot.Adapter[T]
	scheduler        *maintenance.Scheduler
	snapshotInterval time.Duration

	mu              sync.RWMutex
	state           atomic.Value
	shutdownTimeout time.Duration
}

// Options carries the injectable collaborators. Zero values select the
// defaults: system clock, sonic-measured sizes, no snapshots.
type Options[T any] struct {
	Clock            types.Clock
	Sizer            types.Sizer[T]
	SnapshotStore    types.SnapshotStore
	SnapshotKey      string
	SnapshotInterval time.Duration
}

func New[T any](ctx context.Context, log types.Logger, config *types.CacheConfig, opts Options[T]) (*Engine[T], error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	cfg := &types.CacheConfig{
		DefaultTTL:     DefaultTTL,
		MaxSizeBytes:   DefaultMaxSizeBytes,
		MaxEntries:     DefaultMaxEntries,
		SweepInterval:  DefaultSweepInterval,
		SnapshotMaxAge: DefaultSnapshotMaxAge,
	}
	if config != nil {
		copied := *config
		cfg = &copied
	}
	// Zero means "unspecified" for the maintenance knobs; a negative
	// interval disables the sweep entirely. MaxEntries/MaxSizeBytes of
	// zero mean unbounded.
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.SnapshotMaxAge == 0 {
		cfg.SnapshotMaxAge = DefaultSnapshotMaxAge
	}

	clock := opts.Clock
	if clock == nil {
		clock = utils.SystemClock()
	}

	sizer := opts.Sizer
	if sizer == nil {
		sizer = utils.JSONSizer[T]()
	}

	engineCtx, cancel := context.WithCancel(ctx)

	e := &Engine[T]{
		ctx:              engineCtx,
		cancel:           cancel,
		id:               uuid.New().String(),
		config:           cfg,
		logger:           log,
		clock:            clock,
		sizer:            sizer,
		data:             make(map[string]*entry[T]),
		meta:             make(map[string]*types.AccessMetadata),
		tagIndex:         make(map[string]map[string]struct{}),
		stats:            stats.NewCollector(),
		scheduler:        maintenance.NewScheduler(log),
		snapshotInterval: opts.SnapshotInterval,
		shutdownTimeout:  10 * time.Second,
	}

	if opts.SnapshotStore != nil {
		e.adapter = snapshot.NewAdapter[T](opts.SnapshotStore, opts.SnapshotKey, cfg.CacheVersion, e.id, cfg.SnapshotMaxAge, clock)
	}

	e.state.Store(StateStopped)

	return e, nil
}

// ID returns the instance identifier embedded in logs and snapshots.
func (e *Engine[T]) ID() string {
	return e.id
}

func (e *Engine[T]) Set(key string, value T, opts ...types.SetOption) error {
	if key == "" {
		e.logger.Error("Attempted to set cache entry with empty key")
		return types.ErrCacheKeyEmpty
	}

	options := types.SetOptions{TTL: e.config.DefaultTTL}
	for _, opt := range opts {
		opt(&options)
	}

	ttl := options.TTL
	if ttl < 0 {
		ttl = e.config.DefaultTTL
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}

	size, err := e.sizer(value)
	if err != nil {
		return types.Errorf(types.ErrSerialization, "key %q: %v", key, err)
	}
	if size < 0 {
		return types.Errorf(types.ErrSerialization, "key %q: negative size %d", key, size)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// A value that cannot fit even into an empty store is rejected
	// before anything is evicted, so the failure leaves the store
	// untouched.
	if e.config.MaxSizeBytes > 0 && size > e.config.MaxSizeBytes {
		return types.Errorf(types.ErrEntryTooLarge, "key %q: %d bytes, limit %d", key, size, e.config.MaxSizeBytes)
	}

	old := e.data[key]
	var freed int64
	if old != nil {
		freed = old.sizeBytes
	}

	if e.config.MaxSizeBytes > 0 {
		needed := e.totalSize - freed + size - e.config.MaxSizeBytes
		if needed > 0 {
			e.evictBySizeUnsafe(needed, key)
		}
		if e.totalSize-freed+size > e.config.MaxSizeBytes {
			return types.Errorf(types.ErrEntryTooLarge, "key %q: %d bytes do not fit", key, size)
		}
	}

	if old == nil && e.config.MaxEntries > 0 {
		for len(e.data) >= e.config.MaxEntries {
			if !e.evictByCountUnsafe(key) {
				break
			}
		}
	}

	if old != nil {
		e.removeEntryUnsafe(key)
	}

	now := e.clock.Now()
	e.data[key] = &entry[T]{
		value:      value,
		sizeBytes:  size,
		insertedAt: now,
		ttl:        ttl,
		tags:       dedupeTags(options.Tags),
	}
	e.meta[key] = &types.AccessMetadata{LastAccessedAt: now}
	e.indexTagsUnsafe(key, e.data[key].tags)
	e.totalSize += size

	return nil
}

func (e *Engine[T]) Get(key string) (T, bool) {
	var zero T
	now := e.clock.Now()

	e.mu.Lock()
	ent, exists := e.data[key]
	if !exists {
		e.mu.Unlock()
		e.stats.Miss()
		return zero, false
	}

	if ent.expired(now) {
		e.removeEntryUnsafe(key)
		e.mu.Unlock()
		e.stats.Eviction()
		e.stats.Miss()
		return zero, false
	}

	if m := e.meta[key]; m != nil {
		m.AccessCount++
		m.LastAccessedAt = now
	}
	value := ent.value
	e.mu.Unlock()

	e.stats.Hit()
	return value, true
}

// Has is a peek: expiry is still enforced (and an expired entry is
// purged), but access metadata and the hit/miss counters stay
// untouched.
func (e *Engine[T]) Has(key string) bool {
	now := e.clock.Now()

	e.mu.RLock()
	ent, exists := e.data[key]
	if !exists {
		e.mu.RUnlock()
		return false
	}

	if !ent.expired(now) {
		e.mu.RUnlock()
		return true
	}
	e.mu.RUnlock()

	e.mu.Lock()
	if ent, exists = e.data[key]; exists && ent.expired(now) {
		e.removeEntryUnsafe(key)
		e.stats.Eviction()
	}
	e.mu.Unlock()

	return false
}

func (e *Engine[T]) Delete(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, exists := e.data[key]
	if exists {
		e.removeEntryUnsafe(key)
	}

	return exists
}

// Clear drops all entries, metadata and tags. Cumulative statistics are
// deliberately kept: hit rate history outlives a flush.
func (e *Engine[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	cleared := len(e.data)
	e.data = make(map[string]*entry[T])
	e.meta = make(map[string]*types.AccessMetadata)
	e.tagIndex = make(map[string]map[string]struct{})
	e.totalSize = 0

	e.logger.Debug("Cache cleared", zap.Int("cleared_entries", cleared))
}

// GetMetadata returns a copy of the access metadata, nil when the key
// is absent. Expired entries still report metadata until a read or
// sweep purges them.
func (e *Engine[T]) GetMetadata(key string) *types.AccessMetadata {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m, exists := e.meta[key]
	if !exists {
		return nil
	}

	copied := *m
	return &copied
}

// InvalidateByPattern removes every entry whose key contains the given
// substring. This is containment, not a glob or regex.
func (e *Engine[T]) InvalidateByPattern(substring string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var matched []string
	for key := range e.data {
		if strings.Contains(key, substring) {
			matched = append(matched, key)
		}
	}

	for _, key := range matched {
		e.removeEntryUnsafe(key)
	}

	if len(matched) > 0 {
		e.logger.Debug("Invalidated by pattern",
			zap.String("substring", substring),
			zap.Int("removed", len(matched)))
	}

	return len(matched)
}

func (e *Engine[T]) GetStats() types.CacheStats {
	e.mu.RLock()
	entries := len(e.data)
	size := e.totalSize
	e.mu.RUnlock()

	return e.stats.Snapshot(entries, size, e.config.MaxSizeBytes, e.config.MaxEntries)
}

// removeEntryUnsafe drops the entry, its metadata and its tag index
// membership and fixes the size counter. Callers hold the write lock
// and account for evictions themselves.
func (e *Engine[T]) removeEntryUnsafe(key string) {
	ent, exists := e.data[key]
	if !exists {
		return
	}

	e.unindexTagsUnsafe(key, ent.tags)
	e.totalSize -= ent.sizeBytes
	delete(e.data, key)
	delete(e.meta, key)
}

func (ent *entry[T]) expired(now time.Time) bool {
	return ent.ttl > 0 && now.Sub(ent.insertedAt) >= ent.ttl
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
