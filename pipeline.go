package bffnt

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/bffnt/font"
)

func (b *BFFNT) findFonts(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			if strings.ToLower(filepath.Ext(file)) != ".bffnt" {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func countGlyphs(f *font.Font) int {
	var n int
	for _, r := range f.CharMaps {
		switch v := r.Mapping.(type) {
		case font.DirectMapping:
			n += int(r.End-r.Start) + 1
		case font.TableMapping:
			for _, glyph := range v.Indices {
				if glyph != font.Unmapped {
					n++
				}
			}
		case font.ScanMapping:
			n += len(v.Entries)
		}
	}
	return n
}

func (b *BFFNT) fontWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			data, err := ioutil.ReadFile(file)
			if err != nil {
				errc <- err
				return
			}

			f := new(font.Font)
			if err := f.UnmarshalBinary(data); err != nil {
				// Not every .bffnt file is going to be valid
				b.logger.Printf("Skipping \"%s\": %v\n", file, err)
				continue
			}

			crc, err := crcFile(file)
			if err != nil {
				errc <- err
				return
			}

			if err := b.db.Add(&FontRecord{
				Path:        file,
				CRC:         crc,
				FileType:    f.FileType,
				Version:     f.Version,
				CellWidth:   f.Texture.CellWidth,
				CellHeight:  f.Texture.CellHeight,
				Baseline:    f.Texture.Baseline,
				SheetCount:  len(f.Texture.Sheets),
				SheetFormat: f.Texture.Sheet.Format.String(),
				Glyphs:      countGlyphs(f),
			}); err != nil {
				errc <- err
				return
			}

			b.logger.Printf("Cataloged \"%s\", with CRC \"%s\"\n", file, crc)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks a directory tree cataloging every parseable font it finds.
// Fonts that fail to parse are logged and skipped. A catalog database is
// required.
func (b *BFFNT) Scan(path string) error {
	if b.db == nil {
		return errors.New("no catalog database")
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := b.findFonts(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < 10; i++ {
		errc, err := b.fontWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
