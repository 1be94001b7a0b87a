package bffnt

import (
	"fmt"
	"hash/crc32"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFontDB(t *testing.T) {
	dir, err := ioutil.TempDir("", "bffnt")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	db, err := NewFontDB(filepath.Join(dir, "test.db"))
	require.Nil(t, err)
	defer db.Close()

	r := &FontRecord{
		Path:        "/fonts/test.bffnt",
		CRC:         "DEADBEEF",
		FileType:    "FFNT",
		Version:     0x04000000,
		CellWidth:   7,
		CellHeight:  9,
		Baseline:    7,
		SheetCount:  1,
		SheetFormat: "A8",
		Glyphs:      8,
	}
	require.Nil(t, db.Add(r))

	// Replacing the same path must not fail
	require.Nil(t, db.Add(r))

	got, err := db.FindByCRC("DEADBEEF")
	require.Nil(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r, got)

	got, err = db.FindByCRC("00000000")
	require.Nil(t, err)
	assert.Nil(t, got)
}

func TestScan(t *testing.T) {
	dir, err := ioutil.TempDir("", "bffnt")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	data, err := testFont().MarshalBinary()
	require.Nil(t, err)

	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "test.bffnt"), data, 0644))
	// Junk with the right extension is logged and skipped
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "junk.bffnt"), []byte("junk"), 0644))
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("ignore"), 0644))

	db, err := NewFontDB(filepath.Join(dir, "catalog.db"))
	require.Nil(t, err)

	b := New(db, testLogger())
	defer b.Close()

	require.Nil(t, b.Scan(dir))

	crc := fmt.Sprintf("%.*X", crc32.Size<<1, crc32.ChecksumIEEE(data))
	got, err := db.FindByCRC(crc)
	require.Nil(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "FFNT", got.FileType)
	assert.Equal(t, 1, got.SheetCount)
	assert.Equal(t, "A8", got.SheetFormat)
	assert.Equal(t, 8, got.Glyphs)
}

func TestScanNoDB(t *testing.T) {
	b := New(nil, testLogger())
	defer b.Close()

	assert.NotNil(t, b.Scan("."))
}
