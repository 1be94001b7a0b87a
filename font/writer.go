package font

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/bodgit/bffnt/pixel"
)

type encoder struct {
	b     []byte
	order binary.ByteOrder
}

func (e *encoder) u16(v uint16) {
	var tmp [2]byte
	e.order.PutUint16(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

func (e *encoder) u32(v uint32) {
	var tmp [4]byte
	e.order.PutUint32(tmp[:], v)
	e.b = append(e.b, tmp[:]...)
}

// patch32 rewrites a previously written placeholder.
func (e *encoder) patch32(off int, v uint32) {
	e.order.PutUint32(e.b[off:off+4], v)
}

// pad zero-fills to the next 4-byte boundary; the fill counts towards the
// enclosing section size.
func (e *encoder) pad() {
	for len(e.b)%4 != 0 {
		e.b = append(e.b, 0)
	}
}

// MarshalBinary encodes the container: header, FINF and TGLP headers, the
// sheet data at its fixed offset, then the CWDH and CMAP chains. Section
// sizes, chain offsets, the file size and the section count are patched
// in once known, using the same absolute-plus-8 offset convention the
// reader follows.
func (f *Font) MarshalBinary() ([]byte, error) {
	order := f.Order
	if order == nil {
		order = binary.LittleEndian
	}

	magic := strings.ToUpper(f.FileType)
	if magic != magicFFNT && magic != magicFFNU {
		return nil, fmt.Errorf("file type %q: %w", f.FileType, ErrMagic)
	}

	supported := false
	for _, v := range versions {
		if f.Version == v {
			supported = true
		}
	}
	if !supported {
		return nil, fmt.Errorf("0x%08x: %w", f.Version, ErrVersion)
	}

	sheet := f.Texture.Sheet
	if sheet.Format.Compressed() {
		// There is no compression-side codec.
		return nil, fmt.Errorf("%s: %w", sheet.Format, pixel.ErrPixelFormat)
	}

	for _, r := range f.Widths {
		if r.End < r.Start || len(r.Widths) != int(r.End-r.Start)+1 {
			return nil, fmt.Errorf("%s: interval [%d, %d] with %d entries: %w", magicCWDH, r.Start, r.End, len(r.Widths), ErrSizeMismatch)
		}
	}
	for _, r := range f.CharMaps {
		if r.End < r.Start || r.Mapping == nil {
			return nil, fmt.Errorf("%s: interval [0x%x, 0x%x]: %w", magicCMAP, r.Start, r.End, ErrSizeMismatch)
		}
		if m, ok := r.Mapping.(TableMapping); ok && len(m.Indices) != int(r.End-r.Start)+1 {
			return nil, fmt.Errorf("%s: table with %d entries: %w", magicCMAP, len(m.Indices), ErrSizeMismatch)
		}
	}

	width, height := int(sheet.Width), int(sheet.Height)
	sheetSize := width * height * sheet.Format.Size() / 8

	// Everything up to the sheet data offset is laid out directly; the
	// gap after the TGLP header stays zero.
	e := &encoder{b: make([]byte, 0, sheetDataOffset+sheetSize*len(f.Texture.Sheets)), order: order}

	// FFNT header
	e.b = append(e.b, magic...)
	e.u16(0xfeff)
	e.u16(ffntHeaderSize)
	e.u32(f.Version)
	fileSizePos := len(e.b)
	e.u32(0)
	sectionsPos := len(e.b)
	e.u32(0)

	// FINF
	e.b = append(e.b, magicFINF...)
	e.u32(finfHeaderSize)
	e.b = append(e.b,
		byte(f.Info.Type),
		f.Info.Height,
		f.Info.Width,
		f.Info.Ascent,
	)
	e.u16(f.Info.LineFeed)
	e.u16(f.Info.AlterCharIndex)
	e.b = append(e.b,
		byte(f.Info.Default.Left),
		byte(f.Info.Default.Glyph),
		byte(f.Info.Default.Char),
		byte(f.Info.Encoding),
	)
	tglpOffsetPos := len(e.b)
	e.u32(0)
	cwdhOffsetPos := len(e.b)
	e.u32(0)
	cmapOffsetPos := len(e.b)
	e.u32(0)

	// TGLP header
	tglpStart := len(e.b)
	e.patch32(tglpOffsetPos, uint32(tglpStart)+8)
	e.b = append(e.b, magicTGLP...)
	tglpSizePos := len(e.b)
	e.u32(0)
	e.b = append(e.b,
		f.Texture.CellWidth,
		f.Texture.CellHeight,
		uint8(len(f.Texture.Sheets)),
		f.Texture.MaxCharWidth,
	)
	e.u32(uint32(sheetSize))
	e.u16(f.Texture.Baseline)
	e.u16(uint16(sheet.Format))
	e.u16(sheet.Cols)
	e.u16(sheet.Rows)
	e.u16(sheet.Width)
	e.u16(sheet.Height)
	e.u32(sheetDataOffset)

	// Sheet data lives at a fixed absolute offset
	e.b = append(e.b, make([]byte, sheetDataOffset-len(e.b))...)
	for i, bmp := range f.Texture.Sheets {
		if len(bmp) != width*height*4 {
			return nil, fmt.Errorf("%s: sheet %d is %d bytes, expected %d: %w", magicTGLP, i, len(bmp), width*height*4, ErrSizeMismatch)
		}
		data, err := pixel.EncodeSheet(sheet.Format, bmp, width, height, sheetSize)
		if err != nil {
			return nil, err
		}
		e.b = append(e.b, data...)
	}
	e.patch32(tglpSizePos, uint32(len(e.b)-tglpStart))

	// CWDH chain
	e.patch32(cwdhOffsetPos, uint32(len(e.b))+8)
	prevNextPos := 0
	for _, r := range f.Widths {
		if prevNextPos > 0 {
			e.patch32(prevNextPos, uint32(len(e.b))+8)
		}

		start := len(e.b)
		e.b = append(e.b, magicCWDH...)
		sizePos := len(e.b)
		e.u32(0)
		e.u16(r.Start)
		e.u16(r.End)
		prevNextPos = len(e.b)
		e.u32(0)

		for _, w := range r.Widths {
			e.b = append(e.b, byte(w.Left), byte(w.Glyph), byte(w.Char))
		}
		e.pad()
		e.patch32(sizePos, uint32(len(e.b)-start))
	}

	// CMAP chain
	e.patch32(cmapOffsetPos, uint32(len(e.b))+8)
	prevNextPos = 0
	for _, r := range f.CharMaps {
		if prevNextPos > 0 {
			e.patch32(prevNextPos, uint32(len(e.b))+8)
		}

		start := len(e.b)
		e.b = append(e.b, magicCMAP...)
		sizePos := len(e.b)
		e.u32(0)
		e.u16(r.Start)
		e.u16(r.End)
		e.u16(uint16(r.Mapping.Method()))
		e.u16(0)
		prevNextPos = len(e.b)
		e.u32(0)

		switch m := r.Mapping.(type) {
		case DirectMapping:
			e.u16(m.Offset)
		case TableMapping:
			for _, i := range m.Indices {
				e.u16(i)
			}
		case ScanMapping:
			codes := make([]int, 0, len(m.Entries))
			for c := range m.Entries {
				codes = append(codes, int(c))
			}
			sort.Ints(codes)
			e.u16(uint16(len(codes)))
			for _, c := range codes {
				e.u16(uint16(c))
				e.u16(m.Entries[uint16(c)])
			}
		default:
			return nil, fmt.Errorf("%s: %T: %w", magicCMAP, r.Mapping, ErrMappingMethod)
		}
		e.pad()
		e.patch32(sizePos, uint32(len(e.b)-start))
	}

	e.patch32(fileSizePos, uint32(len(e.b)))
	e.patch32(sectionsPos, uint32(2+len(f.Widths)+len(f.CharMaps)))

	return e.b, nil
}
