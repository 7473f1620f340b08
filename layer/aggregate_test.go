package layer

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/frustum"
	"github.com/tilescope/tilescope/tilegrid"
)

type stubViewport struct {
	planes     frustum.Planes
	resolution float64
	zoom       float64
	bounds     geom.Extent
}

func (v *stubViewport) FrustumPlanes() frustum.Planes { return v.planes }
func (v *stubViewport) Resolution() float64           { return v.resolution }
func (v *stubViewport) Zoom() float64                 { return v.zoom }
func (v *stubViewport) Bounds() geom.Extent           { return v.bounds }
func (v *stubViewport) Rect() (x, y, width, height float64) {
	return 0, 0, 800, 600
}

// openViewport accepts every position.
func openViewport() *stubViewport {
	return &stubViewport{
		planes: frustum.Planes{"near": {Normal: [3]float64{1, 0, 0}, Distance: 1e9}},
	}
}

func riverFeature(id interface{}) *feature.Feature {
	return &feature.Feature{
		Geometry:   geom.Point{0.5, 0.5},
		Properties: map[string]interface{}{"id": id},
	}
}

func TestViewportFeatures_CrossTileDedup(t *testing.T) {
	left := tilegrid.NewTile(1, 0, 0)
	right := tilegrid.NewTile(1, 1, 0)
	// the same river straddles the tile boundary and was decoded into both
	left.Data = []*feature.Feature{riverFeature("river-7")}
	right.Data = []*feature.Feature{riverFeature("river-7"), riverFeature("road-1")}

	visible := ViewportFeatures([]*tilegrid.Tile{left, right}, "id", openViewport())
	require.Len(t, visible, 2)
	assert.Equal(t, "river-7", visible[0].Properties["id"])
	assert.Equal(t, "road-1", visible[1].Properties["id"])
	// first tile wins
	assert.Same(t, left.Data.([]*feature.Feature)[0], visible[0])
}

func TestViewportFeatures_SentinelNeverDeduped(t *testing.T) {
	tile := tilegrid.NewTile(0, 0, 0)
	tile.Data = []*feature.Feature{riverFeature(nil), riverFeature(nil)}

	visible := ViewportFeatures([]*tilegrid.Tile{tile}, "id", openViewport())
	assert.Len(t, visible, 2)
}

func TestViewportFeatures_SkipsPendingTiles(t *testing.T) {
	pending := tilegrid.NewTile(1, 0, 0)
	failed := tilegrid.NewTile(1, 1, 0)
	failed.Data = assert.AnError
	loaded := tilegrid.NewTile(1, 0, 1)
	loaded.Data = []*feature.Feature{riverFeature("a")}

	visible := ViewportFeatures([]*tilegrid.Tile{pending, failed, loaded}, "id", openViewport())
	require.Len(t, visible, 1)
	assert.Equal(t, "a", visible[0].Properties["id"])
}

func TestViewportFeatures_FrustumFilters(t *testing.T) {
	tile := tilegrid.NewTile(1, 0, 0) // placement origin (0, 512), scale 256
	inside := &feature.Feature{Geometry: geom.Point{0.5, 0.5}, Properties: map[string]interface{}{"id": "in"}}
	outside := &feature.Feature{Geometry: geom.Point{0.9, 0.5}, Properties: map[string]interface{}{"id": "out"}}
	tile.Data = []*feature.Feature{inside, outside}

	// world x < 200: inside lands at 128, outside at 230.4
	vp := &stubViewport{planes: frustum.Planes{"right": {Normal: [3]float64{1, 0, 0}, Distance: 200}}}
	visible := ViewportFeatures([]*tilegrid.Tile{tile}, "id", vp)
	require.Len(t, visible, 1)
	assert.Equal(t, "in", visible[0].Properties["id"])

	// geometry is returned untransformed, still tile-local
	assert.Equal(t, geom.Point{0.5, 0.5}, visible[0].Geometry)
}

func TestViewportFeatures_GeodeticRegimeSkipsPlacement(t *testing.T) {
	tile := tilegrid.NewTile(1, 0, 0)
	// coordinates already geographic in this regime
	tile.Data = []*feature.Feature{{Geometry: geom.Point{-90, 45}, Properties: map[string]interface{}{"id": "g"}}}

	vp := &stubViewport{
		resolution: 10,
		planes:     frustum.Planes{"left": {Normal: [3]float64{-1, 0, 0}, Distance: 100}},
	}
	// under the identity transform x = -90 passes this plane; the placement
	// transform would have scaled it far outside
	visible := ViewportFeatures([]*tilegrid.Tile{tile}, "id", vp)
	assert.Len(t, visible, 1)

	vp.resolution = 0
	assert.Empty(t, ViewportFeatures([]*tilegrid.Tile{tile}, "id", vp))
}

func TestViewportFeatures_DedupInvariant(t *testing.T) {
	tiles := []*tilegrid.Tile{tilegrid.NewTile(1, 0, 0), tilegrid.NewTile(1, 1, 0)}
	for _, tile := range tiles {
		tile.Data = []*feature.Feature{riverFeature("a"), riverFeature("b"), riverFeature("a"), riverFeature(nil)}
	}

	visible := ViewportFeatures(tiles, "id", openViewport())
	counts := make(map[feature.Identity]int)
	for _, f := range visible {
		id := feature.Resolve(f, feature.RuleFor("id"))
		if feature.Defined(id) {
			counts[id]++
		}
	}
	for id, n := range counts {
		assert.Equal(t, 1, n, "identity %v returned more than once", id)
	}
}

func TestCollectRendered(t *testing.T) {
	withID := func(id interface{}) PickInfo {
		return PickInfo{Feature: riverFeature(id)}
	}

	tests := []struct {
		name     string
		hits     []PickInfo
		maxCount int
		wantIDs  []interface{}
	}{
		{
			name:    "duplicate identity collapsed, sentinel kept",
			hits:    []PickInfo{withID(1.0), withID(1.0), withID(nil)},
			wantIDs: []interface{}{1.0, nil},
		},
		{
			name:    "input order preserved",
			hits:    []PickInfo{withID("b"), withID("a"), withID("b"), withID("c")},
			wantIDs: []interface{}{"b", "a", "c"},
		},
		{
			name:    "sentinels never deduped against each other",
			hits:    []PickInfo{withID(nil), withID(nil), withID(nil)},
			wantIDs: []interface{}{nil, nil, nil},
		},
		{
			name:     "max count caps the hits considered",
			hits:     []PickInfo{withID("a"), withID("b"), withID("c")},
			maxCount: 2,
			wantIDs:  []interface{}{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectRendered(tt.hits, "id", tt.maxCount)
			require.Len(t, got, len(tt.wantIDs))
			for i, want := range tt.wantIDs {
				assert.Equal(t, want, got[i].Properties["id"])
			}
		})
	}
}
