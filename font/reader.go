package font

import (
	"encoding/binary"
	"fmt"

	"github.com/bodgit/bffnt/pixel"
)

type decoder struct {
	data  []byte
	order binary.ByteOrder
}

// section bounds-checks one fixed-size record before it is sliced out.
func (d *decoder) section(off, size int, what string, err error) ([]byte, error) {
	if off < 0 || size < 0 || off+size > len(d.data) {
		return nil, fmt.Errorf("%s at 0x%x: %w", what, off, err)
	}
	// Full slice expression so a short section cannot expose
	// neighbouring file bytes through spare capacity.
	return d.data[off : off+size : off+size], nil
}

func (d *decoder) header(f *Font) (sections uint32, err error) {
	b, err := d.section(0, ffntHeaderSize, magicFFNT, ErrSizeMismatch)
	if err != nil {
		return 0, err
	}

	// The marker itself has to be read before any order is known.
	switch bom := binary.BigEndian.Uint16(b[4:6]); bom {
	case 0xfffe:
		d.order = binary.LittleEndian
	case 0xfeff:
		d.order = binary.BigEndian
	default:
		return 0, fmt.Errorf("0x%04x: %w", bom, ErrByteOrder)
	}
	f.Order = d.order

	switch magic := string(b[0:4]); magic {
	case magicFFNT, magicFFNU:
		f.FileType = magic
	default:
		return 0, fmt.Errorf("%s: got %q: %w", magicFFNT, magic, ErrMagic)
	}

	if size := d.order.Uint16(b[6:8]); size != ffntHeaderSize {
		return 0, fmt.Errorf("%s: size %d, expected %d: %w", magicFFNT, size, ffntHeaderSize, ErrSizeMismatch)
	}

	f.Version = d.order.Uint32(b[8:12])
	supported := false
	for _, v := range versions {
		if f.Version == v {
			supported = true
		}
	}
	if !supported {
		return 0, fmt.Errorf("0x%08x: %w", f.Version, ErrVersion)
	}

	if size := d.order.Uint32(b[12:16]); int(size) != len(d.data) {
		return 0, fmt.Errorf("recorded %d, actual %d: %w", size, len(d.data), ErrFileLength)
	}

	return d.order.Uint32(b[16:20]), nil
}

func (d *decoder) finf(f *Font) (tglp, cwdh, cmap uint32, err error) {
	b, err := d.section(ffntHeaderSize, finfHeaderSize, magicFINF, ErrSizeMismatch)
	if err != nil {
		return 0, 0, 0, err
	}

	if magic := string(b[0:4]); magic != magicFINF {
		return 0, 0, 0, fmt.Errorf("%s: got %q: %w", magicFINF, magic, ErrMagic)
	}
	if size := d.order.Uint32(b[4:8]); size != finfHeaderSize {
		return 0, 0, 0, fmt.Errorf("%s: size %d, expected %d: %w", magicFINF, size, finfHeaderSize, ErrSizeMismatch)
	}

	f.Info = Info{
		Type:           FontType(b[8]),
		Height:         b[9],
		Width:          b[10],
		Ascent:         b[11],
		LineFeed:       d.order.Uint16(b[12:14]),
		AlterCharIndex: d.order.Uint16(b[14:16]),
		Default: WidthTriple{
			Left:  int8(b[16]),
			Glyph: int8(b[17]),
			Char:  int8(b[18]),
		},
		Encoding: CharEncoding(b[19]),
	}

	return d.order.Uint32(b[20:24]), d.order.Uint32(b[24:28]), d.order.Uint32(b[28:32]), nil
}

func (d *decoder) tglp(f *Font, offset uint32) error {
	b, err := d.section(int(offset)-8, tglpHeaderSize, magicTGLP, ErrChain)
	if err != nil {
		return err
	}

	if magic := string(b[0:4]); magic != magicTGLP {
		return fmt.Errorf("%s: got %q: %w", magicTGLP, magic, ErrMagic)
	}

	format := pixel.Format(d.order.Uint16(b[18:20]))
	if format > pixel.ETC1A4 {
		return fmt.Errorf("%s: 0x%02x: %w", magicTGLP, uint16(format), pixel.ErrPixelFormat)
	}

	f.Texture = Texture{
		CellWidth:    b[8],
		CellHeight:   b[9],
		MaxCharWidth: b[11],
		Baseline:     d.order.Uint16(b[16:18]),
		Sheet: SheetFormat{
			Format: format,
			Cols:   d.order.Uint16(b[20:22]),
			Rows:   d.order.Uint16(b[22:24]),
			Width:  d.order.Uint16(b[24:26]),
			Height: d.order.Uint16(b[26:28]),
			Size:   d.order.Uint32(b[12:16]),
		},
	}

	count := int(b[10])
	size := int(f.Texture.Sheet.Size)
	data := int(d.order.Uint32(b[28:32]))

	for i := 0; i < count; i++ {
		raw, err := d.section(data+i*size, size, "TGLP sheet", ErrSizeMismatch)
		if err != nil {
			return err
		}
		sheet, err := pixel.DecodeSheet(format, raw, int(f.Texture.Sheet.Width), int(f.Texture.Sheet.Height), d.order)
		if err != nil {
			return err
		}
		f.Texture.Sheets = append(f.Texture.Sheets, sheet)
	}

	return nil
}

func (d *decoder) cwdh(f *Font, offset uint32) (uint32, error) {
	b, err := d.section(int(offset)-8, cwdhHeaderSize, magicCWDH, ErrChain)
	if err != nil {
		return 0, err
	}

	if magic := string(b[0:4]); magic != magicCWDH {
		return 0, fmt.Errorf("%s: got %q: %w", magicCWDH, magic, ErrMagic)
	}

	size := d.order.Uint32(b[4:8])
	r := WidthRange{
		Start: d.order.Uint16(b[8:10]),
		End:   d.order.Uint16(b[10:12]),
	}
	next := d.order.Uint32(b[12:16])

	if r.End < r.Start {
		return 0, fmt.Errorf("%s: interval [%d, %d]: %w", magicCWDH, r.Start, r.End, ErrSizeMismatch)
	}

	count := int(r.End-r.Start) + 1
	if int(size) < cwdhHeaderSize+3*count {
		return 0, fmt.Errorf("%s: size %d, expected >= %d: %w", magicCWDH, size, cwdhHeaderSize+3*count, ErrSizeMismatch)
	}

	data, err := d.section(int(offset)-8+cwdhHeaderSize, 3*count, magicCWDH, ErrSizeMismatch)
	if err != nil {
		return 0, err
	}

	r.Widths = make([]WidthTriple, count)
	for i := range r.Widths {
		r.Widths[i] = WidthTriple{
			Left:  int8(data[i*3]),
			Glyph: int8(data[i*3+1]),
			Char:  int8(data[i*3+2]),
		}
	}

	f.Widths = append(f.Widths, r)

	return next, nil
}

func (d *decoder) cmap(f *Font, offset uint32) (uint32, error) {
	b, err := d.section(int(offset)-8, cmapHeaderSize, magicCMAP, ErrChain)
	if err != nil {
		return 0, err
	}

	if magic := string(b[0:4]); magic != magicCMAP {
		return 0, fmt.Errorf("%s: got %q: %w", magicCMAP, magic, ErrMagic)
	}

	size := d.order.Uint32(b[4:8])
	r := CharMapRange{
		Start: d.order.Uint16(b[8:10]),
		End:   d.order.Uint16(b[10:12]),
	}
	method := MappingMethod(d.order.Uint16(b[12:14]))
	next := d.order.Uint32(b[16:20])

	if r.End < r.Start {
		return 0, fmt.Errorf("%s: interval [0x%x, 0x%x]: %w", magicCMAP, r.Start, r.End, ErrSizeMismatch)
	}
	if int(size) < cmapHeaderSize {
		return 0, fmt.Errorf("%s: size %d: %w", magicCMAP, size, ErrSizeMismatch)
	}

	data, err := d.section(int(offset)-8+cmapHeaderSize, int(size)-cmapHeaderSize, magicCMAP, ErrSizeMismatch)
	if err != nil {
		return 0, err
	}

	switch method {
	case MapDirect:
		if len(data) < 2 {
			return 0, fmt.Errorf("%s: truncated direct payload: %w", magicCMAP, ErrSizeMismatch)
		}
		r.Mapping = DirectMapping{Offset: d.order.Uint16(data[0:2])}
	case MapTable:
		count := int(r.End-r.Start) + 1
		if len(data) < 2*count {
			return 0, fmt.Errorf("%s: truncated table payload: %w", magicCMAP, ErrSizeMismatch)
		}
		m := TableMapping{Indices: make([]uint16, count)}
		for i := range m.Indices {
			m.Indices[i] = d.order.Uint16(data[i*2 : i*2+2])
		}
		r.Mapping = m
	case MapScan:
		if len(data) < 2 {
			return 0, fmt.Errorf("%s: truncated scan payload: %w", magicCMAP, ErrSizeMismatch)
		}
		count := int(d.order.Uint16(data[0:2]))
		if len(data) < 2+4*count {
			return 0, fmt.Errorf("%s: truncated scan payload: %w", magicCMAP, ErrSizeMismatch)
		}
		m := ScanMapping{Entries: make(map[uint16]uint16, count)}
		for i := 0; i < count; i++ {
			o := 2 + i*4
			m.Entries[d.order.Uint16(data[o:o+2])] = d.order.Uint16(data[o+2 : o+4])
		}
		r.Mapping = m
	default:
		return 0, fmt.Errorf("%s: method 0x%x: %w", magicCMAP, uint16(method), ErrMappingMethod)
	}

	f.CharMaps = append(f.CharMaps, r)

	return next, nil
}

// chain walks a forward-linked list of sections, rejecting revisited
// offsets so a corrupt file cannot loop forever.
func (d *decoder) chain(head uint32, what string, parse func(uint32) (uint32, error)) error {
	visited := make(map[uint32]struct{})
	for offset := head; offset > 0; {
		if _, ok := visited[offset]; ok {
			return fmt.Errorf("%s at 0x%x revisited: %w", what, offset, ErrChain)
		}
		visited[offset] = struct{}{}

		next, err := parse(offset)
		if err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// UnmarshalBinary decodes a whole BFFNT container from b. The sections are
// visited in their linked order: header, FINF, TGLP, then the CWDH and
// CMAP chains; any structural violation aborts the parse.
func (f *Font) UnmarshalBinary(b []byte) error {
	d := &decoder{data: b}

	*f = Font{}

	if _, err := d.header(f); err != nil {
		return err
	}

	tglp, cwdh, cmap, err := d.finf(f)
	if err != nil {
		return err
	}

	if err := d.tglp(f, tglp); err != nil {
		return err
	}

	if err := d.chain(cwdh, magicCWDH, func(offset uint32) (uint32, error) {
		return d.cwdh(f, offset)
	}); err != nil {
		return err
	}

	return d.chain(cmap, magicCMAP, func(offset uint32) (uint32, error) {
		return d.cmap(f, offset)
	})
}
