package pixel

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSheetRoundTripNonPow2 uses a sheet whose dimensions are not powers
// of two. Addressing pads to 32x16, so slots landing beyond the declared
// storage are dropped on encode and come back as zeros; everything else
// must round-trip.
func TestSheetRoundTripNonPow2(t *testing.T) {
	const w, h = 20, 12
	aw := nextPow2(w)

	bmp := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			bmp[o], bmp[o+1], bmp[o+2], bmp[o+3] = uint8(x), uint8(y), uint8(x^y), 255
		}
	}

	size := w * h * RGBA8.Size() / 8
	data, err := EncodeSheet(RGBA8, bmp, w, h, size)
	require.Nil(t, err)
	require.Equal(t, size, len(data))

	got, err := DecodeSheet(RGBA8, data, w, h, binary.LittleEndian)
	require.Nil(t, err)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := RGBA{uint8(x), uint8(y), uint8(x ^ y), 255}
			if (Offset(x, y, aw)+1)*4 > size {
				want = RGBA{}
			}
			assert.Equal(t, want, pixelAt(got, x, y, w), "(%d, %d)", x, y)
		}
	}
}

// TestDecodeSheetShort feeds sheets declaring less storage than one
// fragment; decoding must skip the partial fragment, not read past it.
func TestDecodeSheetShort(t *testing.T) {
	bmp, err := DecodeSheet(RGBA8, make([]byte, 2), 8, 8, binary.LittleEndian)
	require.Nil(t, err)
	assert.Equal(t, make([]byte, 8*8*4), bmp)

	// Four bytes holds exactly one RGB8 pixel; the second fragment
	// would straddle the end and is dropped.
	bmp, err = DecodeSheet(RGB8, []byte{1, 2, 3, 4}, 8, 8, binary.LittleEndian)
	require.Nil(t, err)
	assert.Equal(t, RGBA{1, 2, 3, 255}, pixelAt(bmp, 0, 0, 8))
	assert.Equal(t, RGBA{}, pixelAt(bmp, 1, 0, 8))
}

// TestSheetRoundTrip pushes a bitmap through the swizzled storage layout
// and back again.
func TestSheetRoundTrip(t *testing.T) {
	tables := []struct {
		format Format
		w, h   int
		pixel  func(x, y int) RGBA
	}{
		{RGBA8, 8, 16, func(x, y int) RGBA {
			return RGBA{uint8(x), uint8(y), uint8(x * y), uint8(x + y)}
		}},
		{RGB565, 16, 8, func(x, y int) RGBA {
			return RGBA{expand5(uint8(x)), expand6(uint8(y)), expand5(uint8(x ^ y)), 255}
		}},
		{A4, 8, 8, func(x, y int) RGBA {
			return RGBA{255, 255, 255, uint8((x+y)&0x0f) * 0x11}
		}},
	}

	for _, table := range tables {
		t.Run(table.format.String(), func(t *testing.T) {
			bmp := make([]byte, table.w*table.h*4)
			for y := 0; y < table.h; y++ {
				for x := 0; x < table.w; x++ {
					p := table.pixel(x, y)
					o := (y*table.w + x) * 4
					bmp[o], bmp[o+1], bmp[o+2], bmp[o+3] = p.R, p.G, p.B, p.A
				}
			}

			size := table.w * table.h * table.format.Size() / 8
			data, err := EncodeSheet(table.format, bmp, table.w, table.h, size)
			require.Nil(t, err)
			require.Equal(t, size, len(data))

			got, err := DecodeSheet(table.format, data, table.w, table.h, binary.LittleEndian)
			require.Nil(t, err)
			assert.Equal(t, bmp, got)
		})
	}
}
