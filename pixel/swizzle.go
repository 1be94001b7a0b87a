package pixel

const (
	tileWidth  = 8
	tileHeight = tileWidth
	tilePixels = tileWidth * tileHeight
)

// nextPow2 returns the smallest power of two greater than or equal to n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Offset maps the logical pixel coordinate (x, y) to its swizzled pixel
// offset within a sheet of addressing width w; w must be the sheet width
// rounded up to a power of two (and so a multiple of 8).
//
// The layout nests 2x2 groups three deep: each 8x8 tile holds four 4x4
// sub-tiles, each sub-tile four 2x2 pixel groups, each group four pixels,
// with the x bit before the y bit at every level. Offset is a bijection
// between coordinates and storage slots; Coordinate is its inverse.
func Offset(x, y, w int) int {
	tx, ty := x/tileWidth, y/tileHeight
	x, y = x&7, y&7

	interleave := x&1 | y&1<<1 | x&2<<1 | y&2<<2 | x&4<<2 | y&4<<3

	return ty*w*tileHeight + tx*tilePixels + interleave
}

// Coordinate inverts Offset for a sheet of addressing width w.
func Coordinate(offset, w int) (x, y int) {
	ty := offset / (w * tileHeight)
	offset %= w * tileHeight
	tx := offset / tilePixels
	offset %= tilePixels

	x = offset&1 | offset>>1&2 | offset>>2&4
	y = offset >> 1 & 1 | offset >> 2 & 2 | offset >> 3 & 4

	return tx*tileWidth + x, ty*tileHeight + y
}
