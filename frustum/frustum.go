// Package frustum tests geometries against the camera's clipping planes.
//
// The containment rule is an existence test: a geometry is considered inside
// the frustum as soon as any of its vertices is inside every plane. A
// geometry whose vertices all lie outside but whose body crosses the frustum
// is therefore missed. Consumers depend on this approximation being cheap,
// so it must not be replaced with an exact intersection test.
package frustum

import (
	"fmt"

	"github.com/go-spatial/geom"

	"github.com/tilescope/tilescope/tilegrid"
)

// Plane is one half-space boundary of the view volume.
type Plane struct {
	Normal   [3]float64
	Distance float64
}

// Planes maps plane names (near, far, left, ...) to their half-spaces.
type Planes map[string]Plane

// ContainsPosition reports whether the world-space position p lies strictly
// inside every plane.
func (planes Planes) ContainsPosition(p [3]float64) bool {
	for _, plane := range planes {
		d := plane.Normal[0]*p[0] + plane.Normal[1]*p[1] + plane.Normal[2]*p[2]
		if d >= plane.Distance {
			return false
		}
	}
	return true
}

// Contains reports whether any vertex of g, placed into world space by t,
// lies inside all planes. It is linear in the vertex count and recomputes on
// every call. Geometries come from a trusted decoder; an unknown geometry
// type panics.
func (planes Planes) Contains(t tilegrid.Transform, g geom.Geometry) bool {
	switch gg := g.(type) {
	case geom.Point:
		return planes.ContainsPosition(t.Apply(gg))
	case geom.MultiPoint:
		return planes.containsAnyPosition(t, gg)
	case geom.LineString:
		return planes.containsAnyPosition(t, gg)
	case geom.MultiLineString:
		return planes.containsAnyLine(t, gg)
	case geom.Polygon:
		return planes.containsAnyLine(t, gg)
	case geom.MultiPolygon:
		for _, polygon := range gg {
			if planes.containsAnyLine(t, polygon) {
				return true
			}
		}
		return false
	case geom.Collection:
		for _, sub := range gg {
			if planes.Contains(t, sub) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("frustum: cannot test geometry type %T", g))
	}
}

func (planes Planes) containsAnyPosition(t tilegrid.Transform, positions [][2]float64) bool {
	for _, pos := range positions {
		if planes.ContainsPosition(t.Apply(pos)) {
			return true
		}
	}
	return false
}

func (planes Planes) containsAnyLine(t tilegrid.Transform, lines [][][2]float64) bool {
	for _, line := range lines {
		if planes.containsAnyPosition(t, line) {
			return true
		}
	}
	return false
}
