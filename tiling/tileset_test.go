package tiling

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/tilegrid"
)

func TestTileset_SelectedOrder(t *testing.T) {
	ts := NewTileset()
	// inserted out of order on purpose
	ts.Add(tilegrid.NewTile(2, 1, 1))
	ts.Add(tilegrid.NewTile(1, 0, 0))
	ts.Add(tilegrid.NewTile(2, 0, 0))
	ts.Add(tilegrid.NewTile(1, 1, 0))

	selected := ts.Selected()
	require.Len(t, selected, 4)
	keys := make([]uint64, len(selected))
	for i, tile := range selected {
		keys[i] = tilegrid.TileKey(tile)
	}
	assert.IsIncreasing(t, keys)
	assert.Equal(t, uint(1), selected[0].Z)
	assert.Equal(t, uint(2), selected[2].Z)
}

func TestTileset_AddReplaces(t *testing.T) {
	ts := NewTileset()
	stale := tilegrid.NewTile(1, 0, 0)
	ts.Add(stale)
	fresh := tilegrid.NewTile(1, 0, 0)
	fresh.Data = []*feature.Feature{}
	ts.Add(fresh)

	require.Equal(t, 1, ts.Len())
	got, ok := ts.Get(1, 0, 0)
	require.True(t, ok)
	assert.Same(t, fresh, got)
}

func TestTileset_Remove(t *testing.T) {
	ts := NewTileset()
	tile := tilegrid.NewTile(1, 0, 0)
	ts.Add(tile)
	ts.Remove(tile)
	assert.Equal(t, 0, ts.Len())
	_, ok := ts.Get(1, 0, 0)
	assert.False(t, ok)
	assert.Empty(t, ts.SelectTiles(geom.Extent{-180, -85, 180, 85}))
}

func TestTileset_SelectTiles(t *testing.T) {
	ts := NewTileset()
	for _, tile := range tilegrid.CoveringTiles(geom.Extent{-180, -85, 180, 85}, 1) {
		ts.Add(tile)
	}

	// an extent inside the north-west quadrant
	hits := ts.SelectTiles(geom.Extent{-120, 30, -110, 40})
	require.Len(t, hits, 1)
	assert.Equal(t, uint(0), hits[0].X)
	assert.Equal(t, uint(0), hits[0].Y)

	// an extent straddling all four quadrants
	hits = ts.SelectTiles(geom.Extent{-10, -10, 10, 10})
	assert.Len(t, hits, 4)
}

func TestTileset_IsLoaded(t *testing.T) {
	ts := NewTileset()
	first := tilegrid.NewTile(1, 0, 0)
	second := tilegrid.NewTile(1, 1, 0)
	ts.Add(first)
	ts.Add(second)
	assert.False(t, ts.IsLoaded())

	first.Data = []*feature.Feature{}
	assert.False(t, ts.IsLoaded())

	// a failed tile counts as resolved
	second.Data = assert.AnError
	assert.True(t, ts.IsLoaded())
}
