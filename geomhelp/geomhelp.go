// Package geomhelp renders geometries as truncated WKT for log and error
// messages.
package geomhelp

import (
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// PreviewWKT encodes g as WKT, truncated to maxLen runes with a "..." tail.
// maxLen 0 disables truncation.
func PreviewWKT(g geom.Geometry, maxLen uint) string {
	if maxLen == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), maxLen, "...")
}

func FloatLineToGeomLine(floater [][2]float64) geom.LineString {
	return floater
}

func FloatPolygonToGeomPolygon(floater [][][2]float64) geom.Polygon {
	return floater
}
