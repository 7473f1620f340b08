// Package mbtiles provides a tiling.TileProvider backed by a local MBTiles
// database, the SQLite container commonly used to ship vector tilesets.
package mbtiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/sirupsen/logrus"

	"github.com/tilescope/tilescope/feature"
	"github.com/tilescope/tilescope/mathhelp"
	"github.com/tilescope/tilescope/tilegrid"
	"github.com/tilescope/tilescope/tilejson"
	"github.com/tilescope/tilescope/tiling"
)

// Provider reads tiles from an MBTiles file. It implements
// tiling.TileProvider.
type Provider struct {
	db     *sql.DB
	decode tiling.DecodeFunc
	log    *logrus.Entry
}

// Open opens the MBTiles file at path. decode turns raw tile blobs into
// features; it is required because the tile codec is external to this core.
func Open(path string, decode tiling.DecodeFunc, log *logrus.Entry) (*Provider, error) {
	if decode == nil {
		return nil, errors.New("mbtiles: decode func is required")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening mbtiles %s: %w", path, err)
	}
	if _, err = db.Exec("PRAGMA query_only=1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening mbtiles %s: %w", path, err)
	}
	return &Provider{db: db, decode: decode, log: log.WithField("mbtiles", path)}, nil
}

func (p *Provider) Close() error {
	return p.db.Close()
}

// FetchTileData looks the tile up in the tiles table. MBTiles stores rows
// bottom-up (TMS), so the row index is flipped. A missing tile is an empty
// tile, not an error.
func (p *Provider) FetchTileData(ctx context.Context, tile *tilegrid.Tile) ([]*feature.Feature, error) {
	flippedY := mathhelp.Pow2(tile.Z) - 1 - tile.Y

	var blob []byte
	err := p.db.QueryRowContext(ctx,
		"SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?",
		tile.Z, tile.X, flippedY,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tile %d/%d/%d: %w", tile.Z, tile.X, tile.Y, err)
	}

	features, err := p.decode(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding tile %d/%d/%d: %w", tile.Z, tile.X, tile.Y, err)
	}
	p.log.WithField("tile", fmt.Sprintf("%d/%d/%d", tile.Z, tile.X, tile.Y)).
		Tracef("decoded %d features", len(features))
	return features, nil
}

// Metadata reads the metadata table and shapes it as a TileJSON document so
// that the layer's zoom-narrowing path applies to local files too. The tile
// template is synthetic; tiles are served by this provider, not a URL.
func (p *Provider) Metadata(ctx context.Context) (*tilejson.TileJSON, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT name, value FROM metadata")
	if err != nil {
		return nil, fmt.Errorf("%w: mbtiles metadata: %w", tilejson.ErrFetch, err)
	}
	defer rows.Close()

	tj := tilejson.TileJSON{
		Tiles:   []string{"mbtiles://{z}/{x}/{y}"},
		MinZoom: 0,
		MaxZoom: 30,
	}
	for rows.Next() {
		var name, value string
		if err = rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("%w: mbtiles metadata: %w", tilejson.ErrFetch, err)
		}
		switch name {
		case "name":
			tj.Name = value
		case "description":
			tj.Description = value
		case "attribution":
			tj.Attribution = value
		case "minzoom":
			if z, err := strconv.Atoi(value); err == nil {
				tj.MinZoom = z
			}
		case "maxzoom":
			if z, err := strconv.Atoi(value); err == nil {
				tj.MaxZoom = z
			}
		case "bounds":
			if bounds, ok := parseBounds(value); ok {
				tj.Bounds = &bounds
			}
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: mbtiles metadata: %w", tilejson.ErrFetch, err)
	}
	return &tj, nil
}

func parseBounds(value string) ([4]float64, bool) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return [4]float64{}, false
	}
	var bounds [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return [4]float64{}, false
		}
		bounds[i] = f
	}
	return bounds, true
}
