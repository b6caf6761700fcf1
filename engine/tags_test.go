package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/fincache/types"
)

func TestInvalidateByTags(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("x", "1", types.WithTags("g1")))
	require.NoError(t, e.Set("y", "2", types.WithTags("g1", "g2")))
	require.NoError(t, e.Set("z", "3", types.WithTags("g2")))

	removed := e.InvalidateByTags("g1")
	assert.Equal(t, 2, removed)

	assert.False(t, e.Has("x"))
	assert.False(t, e.Has("y"))
	assert.True(t, e.Has("z"))
}

func TestInvalidateByTagsUnknownTag(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("x", "1", types.WithTags("g1")))

	assert.Zero(t, e.InvalidateByTags("nope"))
	assert.True(t, e.Has("x"))
}

func TestInvalidateByTagsCountsOverlapOnce(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("both", "1", types.WithTags("g1", "g2")))

	assert.Equal(t, 1, e.InvalidateByTags("g1", "g2"))
}

func TestInvalidateByPattern(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("user:1", "a"))
	require.NoError(t, e.Set("user:2", "b"))
	require.NoError(t, e.Set("order:1", "c"))

	removed := e.InvalidateByPattern("user:")
	assert.Equal(t, 2, removed)

	assert.False(t, e.Has("user:1"))
	assert.False(t, e.Has("user:2"))
	assert.True(t, e.Has("order:1"))
}

func TestInvalidateByPatternNoMatch(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("order:1", "c"))

	assert.Zero(t, e.InvalidateByPattern("user:"))
	assert.Equal(t, 1, e.GetStats().TotalEntries)
}

func TestTagIndexFollowsOverwrite(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("k", "v1", types.WithTags("g1")))
	require.NoError(t, e.Set("k", "v2", types.WithTags("g2")))

	// The g1 membership died with the old entry.
	assert.Zero(t, e.InvalidateByTags("g1"))
	assert.True(t, e.Has("k"))

	assert.Equal(t, 1, e.InvalidateByTags("g2"))
	assert.False(t, e.Has("k"))
}

func TestTagIndexFollowsDelete(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("k", "v", types.WithTags("g1")))
	require.True(t, e.Delete("k"))

	assert.Zero(t, e.InvalidateByTags("g1"))
}

func TestDuplicateTagsCollapse(t *testing.T) {
	e := newTestEngine(t, nil, newFakeClock())

	require.NoError(t, e.Set("k", "v", types.WithTags("g1", "g1", "g1")))

	assert.Equal(t, 1, e.InvalidateByTags("g1"))
}
