package snapshot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/fincache/types"
	"github.com/finpulse/fincache/utils"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newAdapterClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDocument() *Document[string] {
	return &Document[string]{
		Entries: []EntryRecord[string]{
			{
				Key:        "quote:TSLA",
				Value:      "182.50",
				SizeBytes:  6,
				InsertedAt: time.Date(2024, 3, 1, 11, 59, 0, 0, time.UTC),
				TTL:        time.Hour,
				Tags:       []string{"quotes"},
				Meta:       types.AccessMetadata{AccessCount: 3},
			},
		},
		Hits:      10,
		Misses:    4,
		Evictions: 2,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := newAdapterClock()

	adapter := NewAdapter[string](store, "snap", "v1", "engine-1", time.Hour, clock)

	require.NoError(t, adapter.Save(ctx, testDocument()))

	doc, err := adapter.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)

	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "quote:TSLA", doc.Entries[0].Key)
	assert.Equal(t, "182.50", doc.Entries[0].Value)
	assert.Equal(t, []string{"quotes"}, doc.Entries[0].Tags)
	assert.Equal(t, uint64(3), doc.Entries[0].Meta.AccessCount)
	assert.Equal(t, uint64(10), doc.Hits)
	assert.Equal(t, uint64(4), doc.Misses)
	assert.Equal(t, uint64(2), doc.Evictions)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	adapter := NewAdapter[string](NewMemoryStore(), "snap", "v1", "engine-1", time.Hour, newAdapterClock())

	doc, err := adapter.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLoadStale(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := newAdapterClock()
	adapter := NewAdapter[string](store, "snap", "v1", "engine-1", time.Hour, clock)

	require.NoError(t, adapter.Save(ctx, testDocument()))

	clock.Advance(90 * time.Minute)

	_, err := adapter.Load(ctx)
	require.ErrorIs(t, err, types.ErrSnapshotStale)
}

func TestLoadCacheVersionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := newAdapterClock()

	writer := NewAdapter[string](store, "snap", "v1", "engine-1", time.Hour, clock)
	require.NoError(t, writer.Save(ctx, testDocument()))

	reader := NewAdapter[string](store, "snap", "v2", "engine-1", time.Hour, clock)
	_, err := reader.Load(ctx)
	require.ErrorIs(t, err, types.ErrSnapshotVersionMismatch)
}

func TestLoadChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := newAdapterClock()
	adapter := NewAdapter[string](store, "snap", "v1", "engine-1", time.Hour, clock)

	require.NoError(t, adapter.Save(ctx, testDocument()))

	// Rewrite the envelope with a tampered payload; the checksum no
	// longer matches.
	blob, err := store.Get(ctx, "snap")
	require.NoError(t, err)

	var env envelope
	require.NoError(t, utils.Unmarshal(blob, &env))
	require.NotEmpty(t, env.Payload)
	env.Payload[0] ^= 0xff

	tampered, err := utils.Marshal(&env)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "snap", tampered))

	_, err = adapter.Load(ctx)
	require.ErrorIs(t, err, types.ErrSnapshotChecksum)
}

func TestLoadGarbageBlob(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "snap", []byte("{{{ not json")))

	adapter := NewAdapter[string](store, "snap", "v1", "engine-1", time.Hour, newAdapterClock())

	_, err := adapter.Load(ctx)
	require.ErrorIs(t, err, types.ErrSnapshot)
}

func TestDropRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := newAdapterClock()
	adapter := NewAdapter[string](store, "snap", "v1", "engine-1", time.Hour, clock)

	require.NoError(t, adapter.Save(ctx, testDocument()))
	require.NoError(t, adapter.Drop(ctx))

	doc, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestMaxAgeZeroDisablesStalenessCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := newAdapterClock()
	adapter := NewAdapter[string](store, "snap", "v1", "engine-1", 0, clock)

	require.NoError(t, adapter.Save(ctx, testDocument()))

	clock.Advance(100 * time.Hour)

	doc, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, doc)
}
