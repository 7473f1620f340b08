package layer

import (
	"github.com/go-spatial/geom"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/frustum"
	"github.com/tilescope/tilescope/tilegrid"
)

// Viewport is the camera state this core reads. It is owned by the rendering
// host; all methods are cheap accessors.
type Viewport interface {
	// FrustumPlanes returns the clipping planes of the current view volume.
	FrustumPlanes() frustum.Planes

	// Resolution is nonzero when the viewport is geodetic, in which case
	// feature coordinates are already geographic and no per-tile placement
	// applies. Zero selects the planar tile-local regime.
	Resolution() float64

	// Zoom is the viewport's current zoom level.
	Zoom() float64

	// Bounds is the geographic extent covered by the view.
	Bounds() geom.Extent

	// Rect is the viewport's screen rectangle, used for hit-test queries.
	Rect() (x, y, width, height float64)
}

// PickInfo wraps one feature in a hit-test result. Result ordering is
// determined by the external picking system and preserved by this core.
type PickInfo struct {
	Feature *feature.Feature
	Tile    *tilegrid.Tile
}

// Picker is the external hit-testing system.
type Picker interface {
	PickObjects(vp Viewport, x, y, width, height float64) []PickInfo
}

// ViewportChangeEvent is handed to OnViewportChange. Both accessors may be
// called any number of times and recompute on every call.
type ViewportChangeEvent struct {
	GetRenderedFeatures func(maxCount int) []*feature.Feature
	GetViewportFeatures func() []*feature.Feature
	Viewport            Viewport
}

// CoordinateSystem tags the regime of the coordinates handed to sublayers.
type CoordinateSystem int

const (
	CoordinateSystemLocal CoordinateSystem = iota
	CoordinateSystemGeographic
)

// RenderTileArgs augments a tile's sublayer with its placement and highlight
// state. Built per tile per render pass.
type RenderTileArgs struct {
	Transform        tilegrid.Transform
	CoordinateSystem CoordinateSystem
	HighlightedID    interface{}
	AutoHighlight    bool
}
