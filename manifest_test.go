package bffnt

import (
	"encoding/binary"
	"errors"
	"io/ioutil"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/bffnt/font"
	"github.com/bodgit/bffnt/pixel"
)

func testFont() *font.Font {
	sheet := make([]byte, 8*8*4)
	for i := 0; i < 8*8; i++ {
		sheet[i*4], sheet[i*4+1], sheet[i*4+2], sheet[i*4+3] = 255, 255, 255, uint8(i*4)
	}

	return &font.Font{
		FileType: "FFNT",
		Order:    binary.LittleEndian,
		Version:  0x04000000,
		Info: font.Info{
			Type:     font.TypePackedTexture,
			Height:   10,
			Width:    9,
			Ascent:   8,
			LineFeed: 12,
			Default:  font.WidthTriple{Left: 0, Glyph: 8, Char: 9},
			Encoding: font.EncodingUnicode,
		},
		Texture: font.Texture{
			CellWidth:    7,
			CellHeight:   9,
			MaxCharWidth: 9,
			Baseline:     7,
			Sheet: font.SheetFormat{
				Format: pixel.A8,
				Cols:   1,
				Rows:   1,
				Width:  8,
				Height: 8,
				Size:   64,
			},
			Sheets: [][]byte{sheet},
		},
		Widths: []font.WidthRange{
			{Start: 0, End: 2, Widths: []font.WidthTriple{{Left: 1, Glyph: 2, Char: 3}, {Left: -1, Glyph: 4, Char: 5}, {Left: 0, Glyph: 8, Char: 9}}},
			{Start: 5, End: 5, Widths: []font.WidthTriple{{Left: 2, Glyph: 3, Char: 4}}},
		},
		CharMaps: []font.CharMapRange{
			{Start: 0x41, End: 0x43, Mapping: font.DirectMapping{Offset: 0}},
			{Start: 0x61, End: 0x64, Mapping: font.TableMapping{Indices: []uint16{3, font.Unmapped, 4, 5}}},
			{Start: 0x3042, End: 0x3044, Mapping: font.ScanMapping{Entries: map[uint16]uint16{0x3042: 6, 0x3044: 7}}},
		},
	}
}

func testLogger() *log.Logger {
	return log.New(ioutil.Discard, "", 0)
}

func TestNewManifest(t *testing.T) {
	m := NewManifest(testFont())

	assert.Equal(t, "ffnt", m.FileType)
	assert.Equal(t, uint32(0x04000000), m.Version)
	assert.Equal(t, "A8", m.TextureInfo.Sheet.ColorFormat)
	assert.Equal(t, 1, m.TextureInfo.SheetCount)

	assert.Equal(t, GlyphWidth{-1, 4, 5}, m.GlyphWidths["1"])
	assert.Equal(t, GlyphWidth{2, 3, 4}, m.GlyphWidths["5"])
	assert.Len(t, m.GlyphWidths, 4)

	// Direct mappings expand to consecutive glyphs
	assert.Equal(t, uint16(0), m.GlyphMap["A"])
	assert.Equal(t, uint16(1), m.GlyphMap["B"])
	assert.Equal(t, uint16(2), m.GlyphMap["C"])

	// Table mappings skip unmapped code points
	assert.Equal(t, uint16(3), m.GlyphMap["a"])
	_, ok := m.GlyphMap["b"]
	assert.False(t, ok)
	assert.Equal(t, uint16(4), m.GlyphMap["c"])
	assert.Equal(t, uint16(5), m.GlyphMap["d"])

	assert.Equal(t, uint16(6), m.GlyphMap["あ"])
	assert.Equal(t, uint16(7), m.GlyphMap["い"])
	assert.Len(t, m.GlyphMap, 8)
}

func TestManifestFont(t *testing.T) {
	f := testFont()
	m := NewManifest(f)

	rebuilt, err := m.Font(f.Texture.Sheets)
	require.Nil(t, err)

	assert.Equal(t, f.FileType, rebuilt.FileType)
	assert.Equal(t, f.Info, rebuilt.Info)
	assert.Equal(t, f.Texture.Sheet, rebuilt.Texture.Sheet)
	assert.Equal(t, f.Texture.MaxCharWidth, rebuilt.Texture.MaxCharWidth)

	// The widths collapse to a single range with gaps filled by the
	// default triple.
	require.Len(t, rebuilt.Widths, 1)
	assert.Equal(t, uint16(0), rebuilt.Widths[0].Start)
	assert.Equal(t, uint16(5), rebuilt.Widths[0].End)
	assert.Equal(t, f.Info.Default, rebuilt.Widths[0].Widths[3])
	assert.Equal(t, font.WidthTriple{Left: 2, Glyph: 3, Char: 4}, rebuilt.Widths[0].Widths[5])

	// The character maps collapse to a single scan mapping
	require.Len(t, rebuilt.CharMaps, 1)
	assert.Equal(t, uint16(0x41), rebuilt.CharMaps[0].Start)
	assert.Equal(t, uint16(0x3044), rebuilt.CharMaps[0].End)
	assert.Equal(t, NewManifest(rebuilt).GlyphMap, m.GlyphMap)
}

func TestManifestFontErrors(t *testing.T) {
	f := testFont()

	m := NewManifest(f)
	m.TextureInfo.Sheet.ColorFormat = "RGBA9"
	_, err := m.Font(f.Texture.Sheets)
	assert.True(t, errors.Is(err, pixel.ErrPixelFormat))

	m = NewManifest(f)
	_, err = m.Font(nil)
	assert.NotNil(t, err)

	m = NewManifest(f)
	m.GlyphWidths["x"] = GlyphWidth{}
	_, err = m.Font(f.Texture.Sheets)
	assert.NotNil(t, err)

	// Indices past the 16-bit wire limit are rejected before any
	// allocation is sized from them
	m = NewManifest(f)
	m.GlyphWidths["4294967295"] = GlyphWidth{}
	_, err = m.Font(f.Texture.Sheets)
	assert.NotNil(t, err)

	m = NewManifest(f)
	m.GlyphMap["ab"] = 1
	_, err = m.Font(f.Texture.Sheets)
	assert.NotNil(t, err)
}

// TestExtractCreate runs a container through a full extract and create
// cycle and expects the second extraction to match the first.
func TestExtractCreate(t *testing.T) {
	data, err := testFont().MarshalBinary()
	require.Nil(t, err)

	b := New(nil, testLogger())
	defer b.Close()

	m, sheets, err := b.Extract(data)
	require.Nil(t, err)
	require.Len(t, sheets, 1)

	out, err := b.Create(m, sheets, binary.BigEndian)
	require.Nil(t, err)

	m2, sheets2, err := b.Extract(out)
	require.Nil(t, err)

	assert.Equal(t, m.FontInfo, m2.FontInfo)
	assert.Equal(t, m.TextureInfo, m2.TextureInfo)
	assert.Equal(t, m.GlyphMap, m2.GlyphMap)
	assert.Equal(t, sheets, sheets2)
}
