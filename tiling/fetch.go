package tiling

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/tilegrid"
)

// FetchAll loads every tile through the provider, one goroutine per tile.
// A tile's decoded features land in its Data slot; a failed tile keeps the
// error there instead, which marks it resolved but excludes it from
// aggregation. One tile failing never affects its siblings.
func FetchAll(ctx context.Context, provider TileProvider, tiles []*tilegrid.Tile, log *logrus.Entry) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	wg := sync.WaitGroup{}
	for _, tile := range tiles {
		wg.Add(1)
		go func(tile *tilegrid.Tile) {
			defer wg.Done()
			features, err := provider.FetchTileData(ctx, tile)
			if err != nil {
				log.WithField("tile", fmt.Sprintf("%d/%d/%d", tile.Z, tile.X, tile.Y)).
					WithError(err).Warn("tile load failed")
				tile.Data = err
				return
			}
			tile.Data = features
		}(tile)
	}
	wg.Wait()
}

// HTTPProvider fetches tile payloads over HTTP from templated URLs and runs
// them through the configured codec.
type HTTPProvider struct {
	Client    *http.Client
	Templates []string
	Decode    DecodeFunc
	Log       *logrus.Entry
}

func (p *HTTPProvider) FetchTileData(ctx context.Context, tile *tilegrid.Tile) ([]*feature.Feature, error) {
	url, err := TileURL(p.Templates, tile)
	if err != nil {
		return nil, fmt.Errorf("tile %d/%d/%d: %w", tile.Z, tile.X, tile.Y, err)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		// an empty tile, not a failure
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("requesting %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return p.Decode(body)
}
