/*
Package pixel implements the pixel codecs used by BFFNT texture sheets.

A sheet is stored as a sequence of 8 by 8 pixel tiles in a nested 2x2
swizzle order rather than row by row. The uncompressed formats pack one
pixel into 4 to 32 bits; the two ETC1 variants compress 4x4 pixel blocks
into 64 or 128 bits and can only be decoded.
*/
package pixel

import (
	"errors"
	"fmt"
)

// ErrPixelFormat is returned for format tags this package does not know,
// and when asked to encode one of the compressed formats.
var ErrPixelFormat = errors.New("pixel: unsupported pixel format")

// Format identifies the on-disk encoding of a texture sheet. The numeric
// values match the pixelFormat field of the TGLP section.
type Format uint16

const (
	RGBA8 Format = iota
	RGB8
	RGBA5551
	RGB565
	RGBA4
	LA8
	HILO8
	L8
	A8
	LA4
	L4
	A4
	ETC1
	ETC1A4
)

var formatNames = [...]string{
	RGBA8:    "RGBA8",
	RGB8:     "RGB8",
	RGBA5551: "RGBA5551",
	RGB565:   "RGB565",
	RGBA4:    "RGBA4",
	LA8:      "LA8",
	HILO8:    "HILO8",
	L8:       "L8",
	A8:       "A8",
	LA4:      "LA4",
	L4:       "L4",
	A4:       "A4",
	ETC1:     "ETC1",
	ETC1A4:   "ETC1A4",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint16(f))
}

// ParseFormat maps a format name, as used by the manifest colorFormat
// field, back to its Format.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrPixelFormat)
}

// Size returns the number of bits used per pixel, or per 4x4 block for the
// compressed formats.
func (f Format) Size() int {
	switch f {
	case RGBA8:
		return 32
	case RGB8:
		return 24
	case RGBA5551, RGB565, RGBA4, LA8, HILO8:
		return 16
	case L8, A8, LA4:
		return 8
	case L4, A4:
		return 4
	case ETC1:
		return 64
	case ETC1A4:
		return 128
	}
	return 0
}

// Compressed reports whether f is one of the block-compressed formats.
func (f Format) Compressed() bool {
	return f == ETC1 || f == ETC1A4
}

// RGBA is one canonical pixel; 8 bits per channel, non-premultiplied.
type RGBA struct {
	R, G, B, A uint8
}

// Luma weights are the BT.709 constants; converting chroma to a single
// luma channel is lossy and not invertible.
func luma(p RGBA) int {
	return int(0.2126*float64(p.R) + 0.7152*float64(p.G) + 0.0722*float64(p.B))
}

// expand5 widens a 5-bit channel to 8 bits by replicating the top three
// bits into the low bits, matching the hardware convention.
func expand5(v uint8) uint8 {
	return v<<3 | v>>2
}

func expand6(v uint8) uint8 {
	return v<<2 | v>>4
}

// nibble returns the 4-bit value for pixel index i from its shared storage
// byte; odd indices occupy the high nibble.
func nibble(b byte, i int) uint8 {
	if i&1 == 1 {
		b >>= 4
	}
	return b & 0x0f
}

// Decode reads the pixel at index i from data stored in format f.
func Decode(f Format, data []byte, i int) (RGBA, error) {
	switch f {
	case RGBA8:
		d := data[i*4 : i*4+4]
		return RGBA{d[0], d[1], d[2], d[3]}, nil
	case RGB8:
		d := data[i*3 : i*3+3]
		return RGBA{d[0], d[1], d[2], 0xff}, nil
	case RGBA5551:
		v := uint16(data[i*2])<<8 | uint16(data[i*2+1])
		return RGBA{
			expand5(uint8(v >> 11 & 0x1f)),
			expand5(uint8(v >> 6 & 0x1f)),
			expand5(uint8(v >> 1 & 0x1f)),
			uint8(v&0x01) * 0xff,
		}, nil
	case RGB565:
		v := uint16(data[i*2])<<8 | uint16(data[i*2+1])
		return RGBA{
			expand5(uint8(v >> 11 & 0x1f)),
			expand6(uint8(v >> 5 & 0x3f)),
			expand5(uint8(v & 0x1f)),
			0xff,
		}, nil
	case RGBA4:
		b1, b2 := data[i*2], data[i*2+1]
		return RGBA{b1 >> 4 * 0x11, b1 & 0x0f * 0x11, b2 >> 4 * 0x11, b2 & 0x0f * 0x11}, nil
	case LA8:
		l, a := data[i*2], data[i*2+1]
		return RGBA{l, l, l, a}, nil
	case HILO8:
		return RGBA{data[i*2], data[i*2+1], 0, 0xff}, nil
	case L8:
		l := data[i]
		return RGBA{l, l, l, 0xff}, nil
	case A8:
		return RGBA{0xff, 0xff, 0xff, data[i]}, nil
	case LA4:
		l, a := data[i]>>4*0x11, data[i]&0x0f*0x11
		return RGBA{l, l, l, a}, nil
	case L4:
		l := nibble(data[i/2], i) * 0x11
		return RGBA{l, l, l, 0xff}, nil
	case A4:
		return RGBA{0xff, 0xff, 0xff, nibble(data[i/2], i) * 0x11}, nil
	}
	return RGBA{}, fmt.Errorf("%s: %w", f, ErrPixelFormat)
}

// Encode converts the pixel at index i to its storage fragment in format
// f. For the 4-bit formats the fragment is a single byte holding one
// nibble, already shifted for the index parity; the caller must OR it
// into the shared storage byte rather than overwrite, as the other half
// belongs to the neighbouring pixel.
func Encode(f Format, p RGBA, i int) ([]byte, error) {
	switch f {
	case RGBA8:
		return []byte{p.R, p.G, p.B, p.A}, nil
	case RGB8:
		return []byte{p.R, p.G, p.B}, nil
	case RGBA5551:
		r, g, b := p.R>>3, p.G>>3, p.B>>3
		var a uint8
		if p.A > 0 {
			a = 1
		}
		return []byte{r<<3 | g>>2, g<<6 | b<<1 | a}, nil
	case RGB565:
		r, g, b := p.R>>3, p.G>>2, p.B>>3
		return []byte{r<<3 | g>>3, g<<5 | b}, nil
	case RGBA4:
		return []byte{p.R >> 4 << 4 | p.G>>4, p.B >> 4 << 4 | p.A>>4}, nil
	case LA8:
		return []byte{uint8(luma(p)), p.A}, nil
	case HILO8:
		return []byte{p.R, p.G}, nil
	case L8:
		return []byte{uint8(luma(p))}, nil
	case A8:
		return []byte{p.A}, nil
	case LA4:
		return []byte{uint8(luma(p)/0x11)<<4 | p.A/0x11}, nil
	case L4:
		return []byte{uint8(luma(p)/0x11) << (uint(i&1) * 4)}, nil
	case A4:
		return []byte{p.A / 0x11 << (uint(i&1) * 4)}, nil
	}
	return nil, fmt.Errorf("%s: %w", f, ErrPixelFormat)
}
