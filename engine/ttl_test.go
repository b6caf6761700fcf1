package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/fincache/types"
)

func TestTTLExpiryOnGet(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(t, nil, clock)

	require.NoError(t, e.Set("k", "v", types.WithTTL(100*time.Millisecond)))

	value, ok := e.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", value)

	clock.Advance(150 * time.Millisecond)

	_, ok = e.Get("k")
	assert.False(t, ok)

	cacheStats := e.GetStats()
	assert.Equal(t, uint64(1), cacheStats.Evictions)
	assert.Equal(t, uint64(1), cacheStats.Misses)
	assert.Zero(t, cacheStats.TotalEntries)
}

func TestTTLExpiryOnHas(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(t, nil, clock)

	require.NoError(t, e.Set("k", "v", types.WithTTL(100*time.Millisecond)))
	assert.True(t, e.Has("k"))

	clock.Advance(150 * time.Millisecond)

	assert.False(t, e.Has("k"))

	// The purge counts as an eviction, but Has never moves the
	// hit/miss counters.
	cacheStats := e.GetStats()
	assert.Equal(t, uint64(1), cacheStats.Evictions)
	assert.Zero(t, cacheStats.Misses)
	assert.Zero(t, cacheStats.Hits)
}

func TestDefaultTTLApplied(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(t, &types.CacheConfig{DefaultTTL: 50 * time.Millisecond}, clock)

	require.NoError(t, e.Set("k", "v"))

	clock.Advance(60 * time.Millisecond)

	_, ok := e.Get("k")
	assert.False(t, ok)
}

func TestPerEntryTTLOverridesDefault(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(t, &types.CacheConfig{DefaultTTL: 50 * time.Millisecond}, clock)

	require.NoError(t, e.Set("k", "v", types.WithTTL(10*time.Minute)))

	clock.Advance(time.Minute)

	_, ok := e.Get("k")
	assert.True(t, ok)
}

func TestSweepExpired(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(t, nil, clock)

	require.NoError(t, e.Set("short-1", "v", types.WithTTL(time.Second)))
	require.NoError(t, e.Set("short-2", "v", types.WithTTL(time.Second)))
	require.NoError(t, e.Set("long", "v", types.WithTTL(time.Hour)))

	assert.Zero(t, e.SweepExpired())

	clock.Advance(2 * time.Second)

	assert.Equal(t, 2, e.SweepExpired())
	assert.Equal(t, uint64(2), e.GetStats().Evictions)
	assert.Equal(t, 1, e.GetStats().TotalEntries)
	assert.True(t, e.Has("long"))

	// Idempotent: nothing left to reclaim.
	assert.Zero(t, e.SweepExpired())
}

func TestTTLClampedToMax(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(t, nil, clock)

	require.NoError(t, e.Set("k", "v", types.WithTTL(100*24*time.Hour)))

	clock.Advance(MaxTTL + time.Minute)

	_, ok := e.Get("k")
	assert.False(t, ok)
}
