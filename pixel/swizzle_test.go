package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetKnown(t *testing.T) {
	assert.Equal(t, 0, Offset(0, 0, 8))
	assert.Equal(t, 1, Offset(1, 0, 8))
	assert.Equal(t, 2, Offset(0, 1, 8))
	assert.Equal(t, 3, Offset(1, 1, 8))
	assert.Equal(t, 4, Offset(2, 0, 8))
	assert.Equal(t, 16, Offset(4, 0, 8))
	assert.Equal(t, 32, Offset(0, 4, 8))
	assert.Equal(t, 63, Offset(7, 7, 8))

	// Tiles advance in raster order
	assert.Equal(t, 64, Offset(8, 0, 16))
	assert.Equal(t, 128, Offset(0, 8, 16))
}

// TestOffsetBijection checks every coordinate maps to a unique storage
// slot and that Coordinate inverts the mapping.
func TestOffsetBijection(t *testing.T) {
	dimensions := []struct {
		w, h int
	}{
		{8, 8},
		{16, 8},
		{32, 16},
	}

	for _, d := range dimensions {
		seen := make(map[int]struct{}, d.w*d.h)
		for y := 0; y < d.h; y++ {
			for x := 0; x < d.w; x++ {
				offset := Offset(x, y, d.w)
				require.True(t, offset >= 0 && offset < d.w*d.h, "(%d, %d) out of range: %d", x, y, offset)

				_, ok := seen[offset]
				require.False(t, ok, "(%d, %d) collides at %d", x, y, offset)
				seen[offset] = struct{}{}

				gx, gy := Coordinate(offset, d.w)
				require.Equal(t, x, gx)
				require.Equal(t, y, gy)
			}
		}
	}
}

func TestNextPow2(t *testing.T) {
	assert.Equal(t, 1, nextPow2(1))
	assert.Equal(t, 2, nextPow2(2))
	assert.Equal(t, 4, nextPow2(3))
	assert.Equal(t, 8, nextPow2(8))
	assert.Equal(t, 16, nextPow2(9))
	assert.Equal(t, 128, nextPow2(100))
}
