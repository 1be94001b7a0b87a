package pixel

import (
	"encoding/binary"
	"fmt"
)

// DecodeSheet converts one raw texture sheet into an RGBA8 buffer of
// width*height*4 bytes in row-major order. Addressing internally uses the
// dimensions rounded up to powers of two; storage slots that fall outside
// the logical bounds or beyond the supplied data are padding and are
// skipped. The byte order is only significant for the compressed formats,
// which read 64-bit words.
func DecodeSheet(f Format, data []byte, width, height int, order binary.ByteOrder) ([]byte, error) {
	if f.Compressed() {
		return decodeETC1(data, width, height, f == ETC1A4, order)
	}

	bits := f.Size()
	if bits == 0 {
		return nil, fmt.Errorf("%s: %w", f, ErrPixelFormat)
	}

	aw, ah := nextPow2(width), nextPow2(height)
	bmp := make([]byte, width*height*4)

	for y := 0; y < ah; y++ {
		for x := 0; x < aw; x++ {
			if x >= width || y >= height {
				continue
			}

			i := Offset(x, y, aw)
			// The whole fragment must be present, not just its first
			// byte, or Decode would slice past the declared sheet.
			if i*bits/8+(bits+7)/8 > len(data) {
				continue
			}

			p, err := Decode(f, data, i)
			if err != nil {
				return nil, err
			}

			o := (y*width + x) * 4
			bmp[o+0] = p.R
			bmp[o+1] = p.G
			bmp[o+2] = p.B
			bmp[o+3] = p.A
		}
	}

	return bmp, nil
}

// EncodeSheet converts an RGBA8 buffer of width*height*4 bytes back into
// raw sheet storage of exactly size bytes. The compressed formats cannot
// be encoded. Pixels whose storage slot lies beyond size are dropped;
// slots not covered by a pixel are left zero.
func EncodeSheet(f Format, bmp []byte, width, height, size int) ([]byte, error) {
	if f.Compressed() {
		return nil, fmt.Errorf("%s: %w", f, ErrPixelFormat)
	}

	bits := f.Size()
	if bits == 0 {
		return nil, fmt.Errorf("%s: %w", f, ErrPixelFormat)
	}

	aw, ah := nextPow2(width), nextPow2(height)
	data := make([]byte, size)

	for y := 0; y < ah; y++ {
		for x := 0; x < aw; x++ {
			if x >= width || y >= height {
				continue
			}

			i := Offset(x, y, aw)
			o := i * bits / 8
			if o+(bits+7)/8 > len(data) {
				continue
			}

			p := RGBA{}
			b := (y*width + x) * 4
			p.R, p.G, p.B, p.A = bmp[b], bmp[b+1], bmp[b+2], bmp[b+3]

			frag, err := Encode(f, p, i)
			if err != nil {
				return nil, err
			}

			if bits == 4 {
				// Two pixels share this byte; OR in our nibble.
				data[o] |= frag[0]
			} else {
				copy(data[o:], frag)
			}
		}
	}

	return data, nil
}
