/*
Package bffnt converts Nintendo BFFNT bitmap fonts between their binary
container format and an editable manifest plus raw sheet representation.
*/
package bffnt

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/bodgit/bffnt/font"
)

type BFFNT struct {
	db     *FontDB
	logger *log.Logger
}

// New returns a converter. The catalog database may be nil if only
// Extract and Create are used.
func New(db *FontDB, logger *log.Logger) *BFFNT {
	return &BFFNT{
		db:     db,
		logger: logger,
	}
}

func (b *BFFNT) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Extract parses a binary font and returns its manifest along with one
// decoded RGBA8 bitmap per sheet.
func (b *BFFNT) Extract(data []byte) (*Manifest, [][]byte, error) {
	f := new(font.Font)
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, nil, err
	}

	b.checkDimensions(&f.Texture)

	return NewManifest(f), f.Texture.Sheets, nil
}

// Create builds a binary font from a manifest and its sheet bitmaps,
// serialized in the given byte order.
func (b *BFFNT) Create(m *Manifest, sheets [][]byte, order binary.ByteOrder) ([]byte, error) {
	f, err := m.Font(sheets)
	if err != nil {
		return nil, err
	}
	f.Order = order

	b.checkDimensions(&f.Texture)

	return f.MarshalBinary()
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// checkDimensions warns about sheets with non power-of-two dimensions,
// which most GPUs reject, and suggests a geometry of similar area that
// still fits the glyph cells.
func (b *BFFNT) checkDimensions(t *font.Texture) {
	width, height := int(t.Sheet.Width), int(t.Sheet.Height)
	if isPow2(width) && isPow2(height) {
		return
	}

	area := width * height
	suggestWidth := nextPow2(int(math.Ceil(math.Sqrt(float64(area)))))
	suggestHeight := nextPow2(int(math.Ceil(float64(area) / float64(suggestWidth))))
	if suggestHeight < suggestWidth {
		suggestWidth, suggestHeight = suggestHeight, suggestWidth
	}

	cols := suggestWidth / (int(t.CellWidth) + 1)
	rows := suggestHeight / (int(t.CellHeight) + 1)

	b.logger.Printf("Sheet is %dx%d, not a power of two; consider %dx%d with %d columns and %d rows\n",
		width, height, suggestWidth, suggestHeight, cols, rows)
}
