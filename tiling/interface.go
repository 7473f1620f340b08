package tiling

import (
	"context"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/tilegrid"
)

// DecodeFunc turns a tile's binary payload into decoded features. The codec
// itself (MVT or otherwise) is an external collaborator.
type DecodeFunc func(data []byte) ([]*feature.Feature, error)

// TileProvider is the capability a layer supplies to the tiling engine
// instead of subclassing it: fetch the decoded features of one tile.
type TileProvider interface {
	FetchTileData(ctx context.Context, tile *tilegrid.Tile) ([]*feature.Feature, error)
}

// Features returns the tile's decoded feature array, or false while the tile
// is pending or its fetch failed.
func Features(tile *tilegrid.Tile) ([]*feature.Feature, bool) {
	features, ok := tile.Data.([]*feature.Feature)
	return features, ok
}
