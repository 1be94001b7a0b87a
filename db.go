package bffnt

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// FontDB is a sqlite catalog of scanned fonts, keyed by file path with a
// whole-file CRC for change detection.
type FontDB struct {
	db *sql.DB
}

func NewFontDB(file string) (*FontDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS font (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, crc TEXT NOT NULL, file_type TEXT NOT NULL, version INTEGER NOT NULL, cell_width INTEGER NOT NULL, cell_height INTEGER NOT NULL, baseline INTEGER NOT NULL, sheet_count INTEGER NOT NULL, sheet_format TEXT NOT NULL, glyphs INTEGER NOT NULL)"); err != nil {
		return nil, err
	}

	return &FontDB{
		db: db,
	}, nil
}

func (db *FontDB) Close() error {
	return db.db.Close()
}

// FontRecord is one catalog row.
type FontRecord struct {
	Path        string
	CRC         string
	FileType    string
	Version     uint32
	CellWidth   uint8
	CellHeight  uint8
	Baseline    uint16
	SheetCount  int
	SheetFormat string
	Glyphs      int
}

func (db *FontDB) Add(r *FontRecord) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO font (path, crc, file_type, version, cell_width, cell_height, baseline, sheet_count, sheet_format, glyphs) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.Path, r.CRC, r.FileType, r.Version, r.CellWidth, r.CellHeight, r.Baseline, r.SheetCount, r.SheetFormat, r.Glyphs); err != nil {
		return err
	}
	return nil
}

func (db *FontDB) FindByCRC(crc string) (*FontRecord, error) {
	r := &FontRecord{CRC: crc}
	switch err := db.db.QueryRow("SELECT path, file_type, version, cell_width, cell_height, baseline, sheet_count, sheet_format, glyphs FROM font WHERE crc = ?", crc).Scan(&r.Path, &r.FileType, &r.Version, &r.CellWidth, &r.CellHeight, &r.Baseline, &r.SheetCount, &r.SheetFormat, &r.Glyphs); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return r, nil
	default:
		return nil, err
	}
}
