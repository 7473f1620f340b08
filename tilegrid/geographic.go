package tilegrid

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"

	"github.com/tilescope/tilescope/mathhelp"
)

// Latitude limit of the spherical-mercator grid, arctan(sinh(π)).
const maxLatitude = 85.05112877980659

// TileBounds returns the geographic bounding box (west, south, east, north)
// of tile (z, x, y) on the standard slippy grid.
func TileBounds(z, x, y uint) geom.Extent {
	return geom.Extent{
		tileLon(z, x),
		tileLat(z, y+1),
		tileLon(z, x+1),
		tileLat(z, y),
	}
}

func tileLon(z, x uint) float64 {
	return float64(x)/float64(mathhelp.Pow2(z))*360 - 180
}

func tileLat(z, y uint) float64 {
	n := math.Pi - 2*math.Pi*float64(y)/float64(mathhelp.Pow2(z))
	return 180 / math.Pi * math.Atan(math.Sinh(n))
}

// CoveringTiles returns the tiles at zoom z whose bounds intersect the given
// geographic extent, in row-major order.
func CoveringTiles(bbox geom.Extent, z uint) []*Tile {
	n := mathhelp.Pow2(z)
	minX, minY := tileAt(bbox.MinX(), bbox.MaxY(), z)
	maxX, maxY := tileAt(bbox.MaxX(), bbox.MinY(), z)
	// an inverted extent selects nothing
	if maxX < minX || maxY < minY {
		return nil
	}

	tiles := make([]*Tile, 0, (maxX-minX+1)*(maxY-minY+1))
	for y := minY; y <= maxY && y < n; y++ {
		for x := minX; x <= maxX && x < n; x++ {
			tiles = append(tiles, NewTile(z, x, y))
		}
	}
	return tiles
}

func tileAt(lon, lat float64, z uint) (x, y uint) {
	lat = mathhelp.Clamp(lat, -maxLatitude, maxLatitude)
	n := float64(mathhelp.Pow2(z))
	fx := (lon + 180) / 360 * n
	latRad := lat * math.Pi / 180
	fy := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n
	x = uint(mathhelp.Clamp(fx, 0, n-1))
	y = uint(mathhelp.Clamp(fy, 0, n-1))
	return x, y
}

// ToGeographic maps a geometry from tile-local space (the unit square per
// tile, y growing downward) into the tile's geographic bounding box,
// preserving the geometry's structure. Geometries come from a trusted
// decoder; an unknown geometry type is a programming error and panics.
func ToGeographic(g geom.Geometry, bbox geom.Extent) geom.Geometry {
	switch gg := g.(type) {
	case geom.Point:
		return geom.Point(geoPosition([2]float64(gg), bbox))
	case geom.MultiPoint:
		return geom.MultiPoint(geoPositions(gg, bbox))
	case geom.LineString:
		return geom.LineString(geoPositions(gg, bbox))
	case geom.MultiLineString:
		return geom.MultiLineString(geoLines(gg, bbox))
	case geom.Polygon:
		return geom.Polygon(geoLines(gg, bbox))
	case geom.MultiPolygon:
		mp := make([][][][2]float64, len(gg))
		for i, p := range gg {
			mp[i] = geoLines(p, bbox)
		}
		return geom.MultiPolygon(mp)
	case geom.Collection:
		c := make(geom.Collection, len(gg))
		for i, sub := range gg {
			c[i] = ToGeographic(sub, bbox)
		}
		return c
	default:
		panic(fmt.Sprintf("tilegrid: cannot convert geometry type %T", g))
	}
}

func geoPosition(pos [2]float64, bbox geom.Extent) [2]float64 {
	return [2]float64{
		bbox.MinX() + pos[0]*(bbox.MaxX()-bbox.MinX()),
		bbox.MaxY() + pos[1]*(bbox.MinY()-bbox.MaxY()),
	}
}

func geoPositions(positions [][2]float64, bbox geom.Extent) [][2]float64 {
	out := make([][2]float64, len(positions))
	for i, pos := range positions {
		out[i] = geoPosition(pos, bbox)
	}
	return out
}

func geoLines(lines [][][2]float64, bbox geom.Extent) [][][2]float64 {
	out := make([][][2]float64, len(lines))
	for i, line := range lines {
		out[i] = geoPositions(line, bbox)
	}
	return out
}
