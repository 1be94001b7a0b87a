package bffnt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bodgit/bffnt/font"
	"github.com/bodgit/bffnt/pixel"
)

// GlyphWidth mirrors font.WidthTriple with the JSON keys used by the
// manifest file.
type GlyphWidth struct {
	Left  int8 `json:"left"`
	Glyph int8 `json:"glyph"`
	Char  int8 `json:"char"`
}

type FontInfo struct {
	Type           font.FontType     `json:"fontType"`
	Height         uint8             `json:"height"`
	Width          uint8             `json:"width"`
	Ascent         uint8             `json:"ascent"`
	LineFeed       uint16            `json:"lineFeed"`
	AlterCharIndex uint16            `json:"alterCharIdx"`
	DefaultWidth   GlyphWidth        `json:"defaultWidth"`
	Encoding       font.CharEncoding `json:"encoding"`
}

type GlyphCell struct {
	Width    uint8  `json:"width"`
	Height   uint8  `json:"height"`
	Baseline uint16 `json:"baseline"`
}

type SheetInfo struct {
	Cols        uint16 `json:"cols"`
	Rows        uint16 `json:"rows"`
	Width       uint16 `json:"width"`
	Height      uint16 `json:"height"`
	ColorFormat string `json:"colorFormat"`
}

type TextureInfo struct {
	Glyph      GlyphCell `json:"glyph"`
	SheetCount int       `json:"sheetCount"`
	Sheet      SheetInfo `json:"sheetInfo"`
}

// Manifest is the editable JSON representation of a font, holding
// everything except the sheet bitmaps themselves. Glyph widths are keyed
// by decimal glyph index; the glyph map is keyed by the character itself.
type Manifest struct {
	FileType    string                `json:"fileType"`
	Version     uint32                `json:"version"`
	FontInfo    FontInfo              `json:"fontInfo"`
	TextureInfo TextureInfo           `json:"textureInfo"`
	GlyphWidths map[string]GlyphWidth `json:"glyphWidths"`
	GlyphMap    map[string]uint16     `json:"glyphMap"`
}

// NewManifest flattens a parsed font into its manifest form. Width ranges
// and all three character map variants are expanded into plain maps.
func NewManifest(f *font.Font) *Manifest {
	m := &Manifest{
		FileType: strings.ToLower(f.FileType),
		Version:  f.Version,
		FontInfo: FontInfo{
			Type:           f.Info.Type,
			Height:         f.Info.Height,
			Width:          f.Info.Width,
			Ascent:         f.Info.Ascent,
			LineFeed:       f.Info.LineFeed,
			AlterCharIndex: f.Info.AlterCharIndex,
			DefaultWidth: GlyphWidth{
				Left:  f.Info.Default.Left,
				Glyph: f.Info.Default.Glyph,
				Char:  f.Info.Default.Char,
			},
			Encoding: f.Info.Encoding,
		},
		TextureInfo: TextureInfo{
			Glyph: GlyphCell{
				Width:    f.Texture.CellWidth,
				Height:   f.Texture.CellHeight,
				Baseline: f.Texture.Baseline,
			},
			SheetCount: len(f.Texture.Sheets),
			Sheet: SheetInfo{
				Cols:        f.Texture.Sheet.Cols,
				Rows:        f.Texture.Sheet.Rows,
				Width:       f.Texture.Sheet.Width,
				Height:      f.Texture.Sheet.Height,
				ColorFormat: f.Texture.Sheet.Format.String(),
			},
		},
		GlyphWidths: make(map[string]GlyphWidth),
		GlyphMap:    make(map[string]uint16),
	}

	for _, r := range f.Widths {
		for i, w := range r.Widths {
			m.GlyphWidths[strconv.Itoa(int(r.Start)+i)] = GlyphWidth{
				Left:  w.Left,
				Glyph: w.Glyph,
				Char:  w.Char,
			}
		}
	}

	for _, r := range f.CharMaps {
		switch v := r.Mapping.(type) {
		case font.DirectMapping:
			for code := int(r.Start); code <= int(r.End); code++ {
				m.GlyphMap[string(rune(code))] = uint16(code-int(r.Start)) + v.Offset
			}
		case font.TableMapping:
			for i, glyph := range v.Indices {
				if glyph == font.Unmapped {
					continue
				}
				m.GlyphMap[string(rune(int(r.Start)+i))] = glyph
			}
		case font.ScanMapping:
			for code, glyph := range v.Entries {
				m.GlyphMap[string(rune(code))] = glyph
			}
		}
	}

	return m
}

// Font rebuilds a font from the manifest and its sheet bitmaps. The glyph
// widths become a single range covering every listed index, gaps filled
// with the default triple, and the glyph map becomes a single scan
// mapping.
func (m *Manifest) Font(sheets [][]byte) (*font.Font, error) {
	format, err := pixel.ParseFormat(m.TextureInfo.Sheet.ColorFormat)
	if err != nil {
		return nil, err
	}

	if len(sheets) != m.TextureInfo.SheetCount {
		return nil, fmt.Errorf("manifest declares %d sheets, got %d", m.TextureInfo.SheetCount, len(sheets))
	}

	f := &font.Font{
		FileType: strings.ToUpper(m.FileType),
		Version:  m.Version,
		Info: font.Info{
			Type:           m.FontInfo.Type,
			Height:         m.FontInfo.Height,
			Width:          m.FontInfo.Width,
			Ascent:         m.FontInfo.Ascent,
			LineFeed:       m.FontInfo.LineFeed,
			AlterCharIndex: m.FontInfo.AlterCharIndex,
			Default: font.WidthTriple{
				Left:  m.FontInfo.DefaultWidth.Left,
				Glyph: m.FontInfo.DefaultWidth.Glyph,
				Char:  m.FontInfo.DefaultWidth.Char,
			},
			Encoding: m.FontInfo.Encoding,
		},
		Texture: font.Texture{
			CellWidth:  m.TextureInfo.Glyph.Width,
			CellHeight: m.TextureInfo.Glyph.Height,
			Baseline:   m.TextureInfo.Glyph.Baseline,
			Sheet: font.SheetFormat{
				Format: format,
				Cols:   m.TextureInfo.Sheet.Cols,
				Rows:   m.TextureInfo.Sheet.Rows,
				Width:  m.TextureInfo.Sheet.Width,
				Height: m.TextureInfo.Sheet.Height,
				Size:   uint32(int(m.TextureInfo.Sheet.Width) * int(m.TextureInfo.Sheet.Height) * format.Size() / 8),
			},
			Sheets: sheets,
		},
	}

	if len(m.GlyphWidths) > 0 {
		maxIndex := 0
		for k := range m.GlyphWidths {
			// Glyph indices are 16 bits on the wire
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 || i > 0xffff {
				return nil, fmt.Errorf("invalid glyph index %q", k)
			}
			if i > maxIndex {
				maxIndex = i
			}
		}

		r := font.WidthRange{
			Start:  0,
			End:    uint16(maxIndex),
			Widths: make([]font.WidthTriple, maxIndex+1),
		}
		for i := range r.Widths {
			r.Widths[i] = f.Info.Default
		}

		var maxCharWidth uint8
		for k, w := range m.GlyphWidths {
			i, _ := strconv.Atoi(k)
			r.Widths[i] = font.WidthTriple{
				Left:  w.Left,
				Glyph: w.Glyph,
				Char:  w.Char,
			}
			if w.Char > 0 && uint8(w.Char) > maxCharWidth {
				maxCharWidth = uint8(w.Char)
			}
		}

		f.Widths = []font.WidthRange{r}
		f.Texture.MaxCharWidth = maxCharWidth
	}

	if len(m.GlyphMap) > 0 {
		entries := make(map[uint16]uint16, len(m.GlyphMap))
		start, end := uint16(0xffff), uint16(0)
		for k, glyph := range m.GlyphMap {
			r, size := utf8.DecodeRuneInString(k)
			if r == utf8.RuneError || size != len(k) || r > 0xffff {
				return nil, fmt.Errorf("invalid glyph map character %q", k)
			}
			code := uint16(r)
			entries[code] = glyph
			if code < start {
				start = code
			}
			if code > end {
				end = code
			}
		}

		f.CharMaps = []font.CharMapRange{{
			Start:   start,
			End:     end,
			Mapping: font.ScanMapping{Entries: entries},
		}}
	}

	return f, nil
}
