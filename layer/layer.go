// Package layer ties the viewport-query core together: it owns the layer
// lifecycle (data source changes, tile-index metadata, zoom narrowing), runs
// the viewport and picking aggregations, and delegates per-tile rendering.
package layer

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/geomhelp"
	"github.com/tilescope/tilescope/mathhelp"
	"github.com/tilescope/tilescope/tilegrid"
	"github.com/tilescope/tilescope/tilejson"
	"github.com/tilescope/tilescope/tiling"
)

// Layer is a vector-tile map layer. Aggregation entry points run on the
// single render thread; only the metadata fetch is asynchronous and its
// result is dropped when a newer data-source change has superseded it.
type Layer struct {
	opts     Options
	log      *logrus.Entry
	client   *http.Client
	provider tiling.TileProvider
	picker   Picker
	tileset  *tiling.Tileset

	mu         sync.Mutex
	generation uint64
	metadata   *tilejson.TileJSON
	templates  []string
	minZoom    int
	maxZoom    int
	hasData    bool
}

// New validates opts and returns an empty layer. It has no data until
// SetData is called.
func New(opts Options, log *logrus.Entry) (*Layer, error) {
	if err := opts.setDefaultsAndValidate(); err != nil {
		return nil, fmt.Errorf("invalid layer options: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Layer{
		opts:    opts,
		log:     log,
		tileset: tiling.NewTileset(),
		minZoom: opts.MinZoom,
		maxZoom: opts.MaxZoom,
	}, nil
}

// SetClient overrides the HTTP client used for metadata fetches.
func (l *Layer) SetClient(client *http.Client) { l.client = client }

// SetProvider installs the per-tile fetch capability.
func (l *Layer) SetProvider(p tiling.TileProvider) { l.provider = p }

// SetPicker installs the external hit-testing system.
func (l *Layer) SetPicker(p Picker) { l.picker = p }

// Tileset exposes the registry of selected tiles.
func (l *Layer) Tileset() *tiling.Tileset { return l.tileset }

// SetData changes the layer's data source.
//
// A plain URL string is fetched as a tile-index document; the fetch runs in
// the background and at most one result per change ever applies: a later
// SetData invalidates any in-flight fetch (last-write-wins). A structured
// *tilejson.TileJSON applies directly without fetching. A []string is taken
// as a ready template list. nil clears the layer.
func (l *Layer) SetData(ctx context.Context, source interface{}) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.metadata = nil
	l.templates = nil
	l.minZoom = l.opts.MinZoom
	l.maxZoom = l.opts.MaxZoom
	l.hasData = false
	l.mu.Unlock()

	switch src := source.(type) {
	case nil:
	case *tilejson.TileJSON:
		l.apply(gen, src)
	case []string:
		l.apply(gen, &tilejson.TileJSON{Tiles: src, MinZoom: l.opts.MinZoom, MaxZoom: l.opts.MaxZoom})
	case string:
		go func() {
			tj, err := tilejson.Fetch(ctx, l.client, src)
			if err != nil {
				l.fail(gen, err)
				return
			}
			l.apply(gen, tj)
		}()
	default:
		l.fail(gen, fmt.Errorf("unsupported data source type %T", source))
	}
}

// apply installs fetched or supplied metadata unless a newer data-source
// change has superseded gen.
func (l *Layer) apply(gen uint64, tj *tilejson.TileJSON) {
	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		l.log.Debug("dropping stale tile metadata")
		return
	}
	l.metadata = tj
	l.templates = tj.Tiles
	// metadata tightens the zoom range, never widens it
	if tj.MinZoom > l.minZoom {
		l.minZoom = tj.MinZoom
	}
	if tj.MaxZoom < l.maxZoom {
		l.maxZoom = tj.MaxZoom
	}
	l.hasData = true
	minZoom, maxZoom := l.minZoom, l.maxZoom
	l.mu.Unlock()

	l.log.WithFields(logrus.Fields{
		"templates": len(tj.Tiles),
		"minzoom":   minZoom,
		"maxzoom":   maxZoom,
	}).Info("tile metadata applied")
}

func (l *Layer) fail(gen uint64, err error) {
	l.mu.Lock()
	stale := gen != l.generation
	l.mu.Unlock()
	if stale {
		return
	}
	l.log.WithError(err).Error("layer has no data")
	if l.opts.OnError != nil {
		l.opts.OnError(err)
	}
}

// HasData reports whether a data source has been resolved. While false, all
// aggregation short-circuits.
func (l *Layer) HasData() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasData
}

// Templates returns the resolved tile URL templates.
func (l *Layer) Templates() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.templates
}

// Metadata returns the applied tile-index document, nil while unresolved.
func (l *Layer) Metadata() *tilejson.TileJSON {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.metadata
}

// ZoomRange returns the effective zoom bounds: the configured bounds,
// possibly narrowed by tile-index metadata.
func (l *Layer) ZoomRange() (minZoom, maxZoom int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minZoom, l.maxZoom
}

// LoadTiles selects the tiles covering the viewport at its (clamped) zoom
// level, fetches the missing ones through the provider, and fires the
// viewport event once everything has resolved.
func (l *Layer) LoadTiles(ctx context.Context, vp Viewport) {
	if !l.HasData() || l.provider == nil {
		return
	}
	minZoom, maxZoom := l.ZoomRange()
	z := uint(mathhelp.Clamp(int(math.Round(vp.Zoom())), minZoom, maxZoom))

	var pending []*tilegrid.Tile
	for _, tile := range tilegrid.CoveringTiles(vp.Bounds(), z) {
		if _, ok := l.tileset.Get(tile.Z, tile.X, tile.Y); ok {
			continue
		}
		l.tileset.Add(tile)
		pending = append(pending, tile)
	}
	tiling.FetchAll(ctx, l.provider, pending, l.log)

	if l.tileset.IsLoaded() {
		l.emit(vp)
	}
}

// ViewportSettled is the host's notification that the camera has come to
// rest. It fires the viewport event with fresh accessors.
func (l *Layer) ViewportSettled(vp Viewport) {
	l.emit(vp)
}

// ViewportFeatures returns the features currently intersecting the view
// frustum across all selected tiles. Recomputed on every call.
func (l *Layer) ViewportFeatures(vp Viewport) []*feature.Feature {
	if !l.HasData() {
		return nil
	}
	visible := ViewportFeatures(l.tileset.Selected(), l.opts.UniqueIDProperty, vp)
	if l.log.Logger.IsLevelEnabled(logrus.TraceLevel) && len(visible) > 0 {
		l.log.Tracef("%d features in viewport, first: %s",
			len(visible), geomhelp.PreviewWKT(visible[0].Geometry, 120))
	}
	return visible
}

// RenderedFeatures deduplicates the current hit-test results under the
// viewport's screen rectangle. Recomputed on every call.
func (l *Layer) RenderedFeatures(vp Viewport, maxCount int) []*feature.Feature {
	if !l.HasData() || l.picker == nil {
		return nil
	}
	x, y, width, height := vp.Rect()
	hits := l.picker.PickObjects(vp, x, y, width, height)
	return CollectRendered(hits, l.opts.UniqueIDProperty, maxCount)
}

// RenderTileArgs builds the sublayer augmentation for one tile: its
// placement transform, the active coordinate regime, and highlight state.
func (l *Layer) RenderTileArgs(tile *tilegrid.Tile, vp Viewport) RenderTileArgs {
	args := RenderTileArgs{
		Transform:        tilegrid.Placement(tile),
		CoordinateSystem: CoordinateSystemLocal,
		HighlightedID:    l.opts.HighlightedFeatureID,
		AutoHighlight:    l.opts.AutoHighlight,
	}
	if vp.Resolution() != 0 {
		args.Transform = tilegrid.Identity()
		args.CoordinateSystem = CoordinateSystemGeographic
	}
	return args
}

func (l *Layer) emit(vp Viewport) {
	if l.opts.OnViewportChange == nil {
		return
	}
	l.opts.OnViewportChange(ViewportChangeEvent{
		Viewport: vp,
		GetViewportFeatures: func() []*feature.Feature {
			return l.ViewportFeatures(vp)
		},
		GetRenderedFeatures: func(maxCount int) []*feature.Feature {
			return l.RenderedFeatures(vp, maxCount)
		},
	})
}
