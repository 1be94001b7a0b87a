/*
Package font implements the BFFNT binary font container.

A container is a small header followed by four kinds of section: FINF
(font metrics), TGLP (the glyph texture atlas), CWDH (per-glyph advance
widths) and CMAP (code point to glyph index mappings). CWDH and CMAP
sections form forward-linked chains; all section offsets on disk point 8
bytes past the section's own magic and size fields. Every multi-byte
integer is stored in the byte order declared by the header's byte-order
marker.

Font implements the encoding.BinaryMarshaler and
encoding.BinaryUnmarshaler interfaces.
*/
package font

import (
	"encoding/binary"

	"github.com/bodgit/bffnt/pixel"
)

const (
	ffntHeaderSize = 0x14
	finfHeaderSize = 0x20
	tglpHeaderSize = 0x20
	cwdhHeaderSize = 0x10
	cmapHeaderSize = 0x14

	// Sheet pixel data always starts at this absolute offset; the gap
	// after the TGLP header is zero filled.
	sheetDataOffset = 0x2000
)

const (
	magicFFNT = "FFNT"
	magicFFNU = "FFNU"
	magicFINF = "FINF"
	magicTGLP = "TGLP"
	magicCWDH = "CWDH"
	magicCMAP = "CMAP"
)

var versions = [...]uint32{0x04000000, 0x03000000}

// WidthTriple is the advance information for one glyph: the space to the
// left of the glyph image, the width of the image itself and the total
// horizontal advance.
type WidthTriple struct {
	Left, Glyph, Char int8
}

// Info holds the FINF font metrics.
type Info struct {
	Type           FontType
	Height         uint8
	Width          uint8
	Ascent         uint8
	LineFeed       uint16
	AlterCharIndex uint16
	Default        WidthTriple
	Encoding       CharEncoding
}

// SheetFormat describes the geometry shared by every sheet in a texture.
type SheetFormat struct {
	Format pixel.Format
	Cols   uint16
	Rows   uint16
	Width  uint16
	Height uint16
	Size   uint32 // bytes of raw storage per sheet
}

// Texture holds the TGLP glyph atlas: the glyph cell geometry and one
// decoded RGBA8 buffer per sheet, each Width*Height*4 bytes, row-major.
type Texture struct {
	CellWidth    uint8
	CellHeight   uint8
	MaxCharWidth uint8
	Baseline     uint16
	Sheet        SheetFormat
	Sheets       [][]byte
}

// WidthRange is one CWDH section: a WidthTriple for every glyph index in
// the inclusive interval [Start, End].
type WidthRange struct {
	Start  uint16
	End    uint16
	Widths []WidthTriple
}

// MappingMethod is the CMAP variant selector.
type MappingMethod uint16

const (
	MapDirect MappingMethod = iota
	MapTable
	MapScan
)

// Mapping is the variant payload of a CMAP section. Exactly one of
// DirectMapping, TableMapping or ScanMapping.
type Mapping interface {
	Method() MappingMethod
}

// DirectMapping maps every code point in the range to
// code - start + Offset.
type DirectMapping struct {
	Offset uint16
}

func (DirectMapping) Method() MappingMethod { return MapDirect }

// TableMapping carries one glyph index per code point in the range;
// 0xffff marks a code point with no glyph.
type TableMapping struct {
	Indices []uint16
}

func (TableMapping) Method() MappingMethod { return MapTable }

// Unmapped is the TableMapping sentinel for an absent glyph.
const Unmapped = 0xffff

// ScanMapping is a sparse list of code point to glyph index pairs, written
// sorted by code point.
type ScanMapping struct {
	Entries map[uint16]uint16
}

func (ScanMapping) Method() MappingMethod { return MapScan }

// CharMapRange is one CMAP section covering the inclusive code point
// interval [Start, End].
type CharMapRange struct {
	Start   uint16
	End     uint16
	Mapping Mapping
}

// Font is a parsed BFFNT container. The chains of CWDH and CMAP sections
// are held as ordered slices; their on-disk offsets are a serialization
// detail recomputed on write.
type Font struct {
	FileType string // "FFNT" or "FFNU", tagging the container flavour
	Order    binary.ByteOrder
	Version  uint32
	Info     Info
	Texture  Texture
	Widths   []WidthRange
	CharMaps []CharMapRange
}

// WidthFor returns the advance triple for a glyph index. Indices not
// covered by any width range fall back to the default triple declared by
// the font metrics.
func (f *Font) WidthFor(glyph uint16) WidthTriple {
	for _, r := range f.Widths {
		if glyph >= r.Start && glyph <= r.End {
			return r.Widths[glyph-r.Start]
		}
	}
	return f.Info.Default
}
