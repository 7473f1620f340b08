package layer

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/tilegrid"
	"github.com/tilescope/tilescope/tiling"
)

// ViewportFeatures returns the features of the given tiles that intersect
// the current frustum, deduplicated by identity across all tiles. Tiles are
// visited in the given selection order and features in tile order; the first
// occurrence of an identity wins, which suppresses features that straddle a
// tile boundary and appear in two tiles. Returned geometries keep their
// tile-local coordinates.
func ViewportFeatures(tiles []*tilegrid.Tile, uniqueIDProperty string, vp Viewport) []*feature.Feature {
	planes := vp.FrustumPlanes()
	rule := feature.RuleFor(uniqueIDProperty)
	geodetic := vp.Resolution() != 0

	seen := orderedmap.New[feature.Identity, struct{}]()
	var visible []*feature.Feature
	for _, tile := range tiles {
		features, ok := tiling.Features(tile)
		if !ok {
			// pending or failed tile
			continue
		}

		transform := tilegrid.Identity()
		if !geodetic {
			transform = tilegrid.Placement(tile)
		}

		for _, f := range features {
			id := feature.Resolve(f, rule)
			if feature.Defined(id) {
				if _, dup := seen.Get(id); dup {
					continue
				}
			}
			if !planes.Contains(transform, f.Geometry) {
				continue
			}
			if feature.Defined(id) {
				seen.Set(id, struct{}{})
			}
			visible = append(visible, f)
		}
	}
	return visible
}

// CollectRendered deduplicates an ordered hit-test result list by identity,
// preserving input order. Features without a stable identity are always
// kept. maxCount caps the number of hits considered, 0 means no cap.
func CollectRendered(hits []PickInfo, uniqueIDProperty string, maxCount int) []*feature.Feature {
	rule := feature.RuleFor(uniqueIDProperty)
	if maxCount > 0 && len(hits) > maxCount {
		hits = hits[:maxCount]
	}

	seen := orderedmap.New[feature.Identity, struct{}]()
	var rendered []*feature.Feature
	for _, hit := range hits {
		if hit.Feature == nil {
			continue
		}
		id := feature.Resolve(hit.Feature, rule)
		if feature.Defined(id) {
			if _, dup := seen.Get(id); dup {
				continue
			}
			seen.Set(id, struct{}{})
		}
		rendered = append(rendered, hit.Feature)
	}
	return rendered
}
