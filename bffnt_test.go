package bffnt

import (
	"bytes"
	"encoding/binary"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDimensionAdvisory runs a 20x12 sheet through extract and create and
// expects the non-power-of-two warning with its suggested geometry on
// both paths.
func TestDimensionAdvisory(t *testing.T) {
	const w, h = 20, 12

	f := testFont()
	sheet := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		sheet[i*4], sheet[i*4+1], sheet[i*4+2], sheet[i*4+3] = 255, 255, 255, uint8(i)
	}
	f.Texture.Sheet.Width = w
	f.Texture.Sheet.Height = h
	f.Texture.Sheet.Cols = 2
	f.Texture.Sheet.Rows = 1
	f.Texture.Sheet.Size = w * h
	f.Texture.Sheets = [][]byte{sheet}

	data, err := f.MarshalBinary()
	require.Nil(t, err)

	var buf bytes.Buffer
	b := New(nil, log.New(&buf, "", 0))
	defer b.Close()

	m, sheets, err := b.Extract(data)
	require.Nil(t, err)
	assert.Contains(t, buf.String(), "Sheet is 20x12")
	assert.Contains(t, buf.String(), "consider 16x16 with 2 columns and 1 rows")

	buf.Reset()
	_, err = b.Create(m, sheets, binary.LittleEndian)
	require.Nil(t, err)
	assert.Contains(t, buf.String(), "consider 16x16 with 2 columns and 1 rows")
}
