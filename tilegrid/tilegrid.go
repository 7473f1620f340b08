// Package tilegrid implements the coordinate algebra of a quad-tree vector
// tile grid: per-tile placement transforms between tile-local space and the
// planar world space, tile/geographic conversions, and stable tile keys.
package tilegrid

import (
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"

	"github.com/tilescope/tilescope/mathhelp"
)

// WorldSize is the span of the planar world space at zoom 0.
const WorldSize = 512.0

// Tile is one cell of the quad-tree grid. It is created and destroyed by the
// tiling engine; the query core only reads it.
type Tile struct {
	slippy.Tile

	// BBox is the tile's geographic bounding box (west, south, east, north).
	BBox geom.Extent

	// Data holds the decoded feature array once the tile has loaded.
	// It stays nil (or non-slice) while the tile is pending or failed.
	Data interface{}
}

// NewTile returns a tile at grid position (z, x, y) with its geographic
// bounding box derived from the standard slippy scheme.
func NewTile(z, x, y uint) *Tile {
	return &Tile{
		Tile: slippy.Tile{Z: z, X: x, Y: y},
		BBox: TileBounds(z, x, y),
	}
}

// Transform places tile-local coordinates into the world space,
// composed as translate ∘ scale.
type Transform struct {
	Scale     [3]float64
	Translate [3]float64
}

// Apply projects a tile-local position into world space, appending z=0.
func (t Transform) Apply(pos [2]float64) [3]float64 {
	return [3]float64{
		t.Translate[0] + t.Scale[0]*pos[0],
		t.Translate[1] + t.Scale[1]*pos[1],
		t.Translate[2],
	}
}

// Identity returns the transform that leaves coordinates unchanged.
// It is used when feature coordinates are already geographic.
func Identity() Transform {
	return Transform{Scale: [3]float64{1, 1, 1}}
}

// PlacementScale returns the per-axis scale for a tile at zoom z:
// WorldSize/2^z on both horizontal axes, with the vertical axis sign-flipped
// because tile rows grow downward while world Y grows upward.
func PlacementScale(z uint) [3]float64 {
	s := WorldSize / float64(mathhelp.Pow2(z))
	return [3]float64{s, -s, 1}
}

// PlacementOrigin returns the world-space origin of tile (z, x, y).
func PlacementOrigin(z, x, y uint) [3]float64 {
	n := float64(mathhelp.Pow2(z))
	return [3]float64{
		WorldSize * float64(x) / n,
		WorldSize * (1 - float64(y)/n),
		0,
	}
}

// Placement derives the tile's transform from its grid position. It must be
// recomputed whenever (z, x, y) changes and is never shared between tiles.
func Placement(tile *Tile) Transform {
	return Transform{
		Scale:     PlacementScale(tile.Z),
		Translate: PlacementOrigin(tile.Z, tile.X, tile.Y),
	}
}
