package tiling

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/umpc/go-sortedmap"

	"github.com/tilescope/tilescope/tilegrid"
)

// Tileset is the registry of currently selected tiles. Iteration order is
// the tile-key order (zoom first, Morton within a zoom) so that repeated
// queries over the same selection see the same sequence.
type Tileset struct {
	tiles *sortedmap.SortedMap
	index *rtreego.Rtree
}

type tileEntry struct {
	tile *tilegrid.Tile
}

func (e tileEntry) Bounds() rtreego.Rect {
	bbox := e.tile.BBox
	rect, _ := rtreego.NewRect(
		rtreego.Point{bbox.MinX(), bbox.MinY()},
		[]float64{bbox.MaxX() - bbox.MinX(), bbox.MaxY() - bbox.MinY()},
	)
	return rect
}

func NewTileset() *Tileset {
	return &Tileset{
		tiles: sortedmap.New(4, func(a, b interface{}) bool {
			return tilegrid.TileKey(a.(*tilegrid.Tile)) < tilegrid.TileKey(b.(*tilegrid.Tile))
		}),
		index: rtreego.NewTree(2, 8, 16),
	}
}

// Add registers a tile under its grid key, replacing a previous tile at the
// same position.
func (ts *Tileset) Add(tile *tilegrid.Tile) {
	key := tilegrid.TileKey(tile)
	if previous, ok := ts.tiles.Get(key); ok {
		ts.index.Delete(tileEntry{previous.(*tilegrid.Tile)})
		ts.tiles.Replace(key, tile)
	} else {
		ts.tiles.Insert(key, tile)
	}
	ts.index.Insert(tileEntry{tile})
}

func (ts *Tileset) Remove(tile *tilegrid.Tile) {
	key := tilegrid.TileKey(tile)
	if previous, ok := ts.tiles.Get(key); ok {
		ts.index.Delete(tileEntry{previous.(*tilegrid.Tile)})
		ts.tiles.Delete(key)
	}
}

func (ts *Tileset) Len() int {
	return ts.tiles.Len()
}

// Get returns the registered tile at grid position (z, x, y).
func (ts *Tileset) Get(z, x, y uint) (*tilegrid.Tile, bool) {
	key := tilegrid.TileKey(&tilegrid.Tile{Tile: slippy.Tile{Z: z, X: x, Y: y}})
	tile, ok := ts.tiles.Get(key)
	if !ok {
		return nil, false
	}
	return tile.(*tilegrid.Tile), true
}

// Selected returns the tiles in key order.
func (ts *Tileset) Selected() []*tilegrid.Tile {
	keys := ts.tiles.Keys()
	tiles := make([]*tilegrid.Tile, 0, len(keys))
	for _, key := range keys {
		tile, _ := ts.tiles.Get(key)
		tiles = append(tiles, tile.(*tilegrid.Tile))
	}
	return tiles
}

// SelectTiles returns the registered tiles whose bounds intersect the given
// geographic extent, in key order.
func (ts *Tileset) SelectTiles(bbox geom.Extent) []*tilegrid.Tile {
	rect, err := rtreego.NewRect(
		rtreego.Point{bbox.MinX(), bbox.MinY()},
		[]float64{bbox.MaxX() - bbox.MinX(), bbox.MaxY() - bbox.MinY()},
	)
	if err != nil {
		return nil
	}
	hits := ts.index.SearchIntersect(rect)
	tiles := make([]*tilegrid.Tile, 0, len(hits))
	for _, hit := range hits {
		tiles = append(tiles, hit.(tileEntry).tile)
	}
	sort.Slice(tiles, func(i, j int) bool {
		return tilegrid.TileKey(tiles[i]) < tilegrid.TileKey(tiles[j])
	})
	return tiles
}

// IsLoaded reports whether every registered tile's fetch has resolved,
// successfully or not.
func (ts *Tileset) IsLoaded() bool {
	for _, tile := range ts.Selected() {
		if tile.Data == nil {
			return false
		}
	}
	return true
}
