package tilegrid

import "fmt"

// Bit-interleaving masks for a 64-bit Morton code of two 32-bit halves.
var (
	keyMasks = [...]uint64{
		0b0101010101010101010101010101010101010101010101010101010101010101,
		0b0011001100110011001100110011001100110011001100110011001100110011,
		0b0000111100001111000011110000111100001111000011110000111100001111,
		0b0000000011111111000000001111111100000000111111110000000011111111,
		0b0000000000000000111111111111111100000000000000001111111111111111,
		0b0000000000000000000000000000000011111111111111111111111111111111,
	}
	keyShifts = [...]uint{0, 1, 2, 4, 8, 16}
)

const maxKeyZoom = 30

// TileKey returns a key that orders tiles by zoom level first and by the
// Morton code of (x, y) within a level. A level's keys start past the total
// tile count of all shallower levels, (4^z - 1) / 3, so every grid position
// through zoom 30 has a distinct key. Zoom levels above 30 panic.
func TileKey(tile *Tile) uint64 {
	if tile.Z > maxKeyZoom {
		panic(fmt.Sprintf("tilegrid: no key for zoom %d", tile.Z))
	}
	base := (uint64(1)<<(2*tile.Z) - 1) / 3
	return base + interleave(uint64(tile.X), uint64(tile.Y))
}

func interleave(x, y uint64) uint64 {
	for i := 4; i >= 0; i-- {
		x = (x | (x << keyShifts[i+1])) & keyMasks[i]
		y = (y | (y << keyShifts[i+1])) & keyMasks[i]
	}
	return x | (y << 1)
}
