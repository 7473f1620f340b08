package tiling

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tilescope/tilescope/mathhelp"
	"github.com/tilescope/tilescope/tilegrid"
)

// ErrNoTileURL is returned when no template produced a URL for a tile. It
// fails that tile's load only; sibling tiles are unaffected.
var ErrNoTileURL = errors.New("no tile URL template")

// Expand substitutes {z}, {x}, {y} and the TMS-style {-y} placeholders.
func Expand(template string, tile *tilegrid.Tile) string {
	flippedY := mathhelp.Pow2(tile.Z) - 1 - tile.Y
	return strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(tile.Z), 10),
		"{x}", strconv.FormatUint(uint64(tile.X), 10),
		"{y}", strconv.FormatUint(uint64(tile.Y), 10),
		"{-y}", strconv.FormatUint(uint64(flippedY), 10),
	).Replace(template)
}

// TileURL picks a template for the tile and expands it. With multiple
// templates the choice is deterministic per tile, spreading requests over
// mirror hosts.
func TileURL(templates []string, tile *tilegrid.Tile) (string, error) {
	if len(templates) == 0 {
		return "", ErrNoTileURL
	}
	template := templates[(tile.X+tile.Y)%uint(len(templates))]
	if template == "" {
		return "", ErrNoTileURL
	}
	return Expand(template, tile), nil
}
