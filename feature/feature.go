// Package feature holds the decoded vector-tile feature record and its
// stable identity used for cross-tile deduplication.
package feature

import (
	"github.com/go-spatial/geom"

	"github.com/tilescope/tilescope/tilegrid"
)

// Feature is a decoded vector-tile feature: a geometry in tile-local
// coordinates plus an optional identifier and property map.
type Feature struct {
	ID         interface{}
	Geometry   geom.Geometry
	Properties map[string]interface{}

	// Geographic rendition of Geometry, materialized at most once.
	// Guarded by nothing: features live on the single render thread.
	geographic geom.Geometry
}

// Geographic returns the feature's geometry in geographic coordinates, given
// the owning tile's bounding box. Most picked features are discarded without
// their geographic coordinates ever being read, so the conversion is deferred
// to the first call and cached for the feature's lifetime.
func (f *Feature) Geographic(bbox geom.Extent) geom.Geometry {
	if f.geographic == nil {
		f.geographic = tilegrid.ToGeographic(f.Geometry, bbox)
	}
	return f.geographic
}
