package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/bffnt"
	"github.com/urfave/cli/v2"
)

const defaultDB = "bffnt.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func promptOverwrite(c *cli.Context, file string) (bool, error) {
	if c.Bool("yes") {
		return true, nil
	}
	if _, err := os.Stat(file); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}

	fmt.Printf("Overwrite \"%s\"? [y/N] ", file)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "y", nil
}

func manifestFilename(base string) string {
	return base + "_manifest.json"
}

func sheetFilename(base string, i int) string {
	return fmt.Sprintf("%s_sheet%d.png", base, i)
}

func writeFile(c *cli.Context, file string, write func(f *os.File) error) error {
	ok, err := promptOverwrite(c, file)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return write(f)
}

func extract(c *cli.Context) error {
	file := c.Args().First()

	data, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}

	b := bffnt.New(nil, newLogger(c))
	defer b.Close()

	manifest, sheets, err := b.Extract(data)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(file, filepath.Ext(file))

	if err := writeFile(c, manifestFilename(base), func(f *os.File) error {
		e := json.NewEncoder(f)
		e.SetIndent("", "  ")
		return e.Encode(manifest)
	}); err != nil {
		return err
	}

	width, height := int(manifest.TextureInfo.Sheet.Width), int(manifest.TextureInfo.Sheet.Height)
	for i, sheet := range sheets {
		m := &image.NRGBA{
			Pix:    sheet,
			Stride: width * 4,
			Rect:   image.Rect(0, 0, width, height),
		}
		if err := writeFile(c, sheetFilename(base, i), func(f *os.File) error {
			return png.Encode(f, m)
		}); err != nil {
			return err
		}
	}

	return nil
}

// readSheet loads one PNG sheet back into the raw row-major RGBA layout.
func readSheet(file string, width, height int) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := m.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		return nil, fmt.Errorf("\"%s\" is %dx%d, expected %dx%d", file, bounds.Dx(), bounds.Dy(), width, height)
	}

	if n, ok := m.(*image.NRGBA); ok && n.Stride == width*4 && bounds.Min == image.Pt(0, 0) {
		return n.Pix, nil
	}

	sheet := make([]byte, width*height*4)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := m.At(x, y).RGBA()
			if a > 0 {
				// Undo the premultiplication applied by RGBA()
				r = r * 0xffff / a
				g = g * 0xffff / a
				b = b * 0xffff / a
			}
			sheet[i] = uint8(r >> 8)
			sheet[i+1] = uint8(g >> 8)
			sheet[i+2] = uint8(b >> 8)
			sheet[i+3] = uint8(a >> 8)
			i += 4
		}
	}
	return sheet, nil
}

func create(c *cli.Context) error {
	file := c.Args().First()

	if c.Bool("big-endian") && c.Bool("little-endian") {
		return errors.New("cannot be both big and little endian")
	}
	var order binary.ByteOrder = binary.LittleEndian
	if c.Bool("big-endian") {
		order = binary.BigEndian
	}

	base := strings.TrimSuffix(file, filepath.Ext(file))

	data, err := ioutil.ReadFile(manifestFilename(base))
	if err != nil {
		return err
	}

	manifest := new(bffnt.Manifest)
	if err := json.Unmarshal(data, manifest); err != nil {
		return err
	}

	width, height := int(manifest.TextureInfo.Sheet.Width), int(manifest.TextureInfo.Sheet.Height)
	sheets := make([][]byte, manifest.TextureInfo.SheetCount)
	for i := range sheets {
		if sheets[i], err = readSheet(sheetFilename(base, i), width, height); err != nil {
			return err
		}
	}

	b := bffnt.New(nil, newLogger(c))
	defer b.Close()

	out, err := b.Create(manifest, sheets, order)
	if err != nil {
		return err
	}

	return writeFile(c, file, func(f *os.File) error {
		_, err := f.Write(out)
		return err
	})
}

func scan(c *cli.Context) error {
	db, err := bffnt.NewFontDB(c.String("db"))
	if err != nil {
		return err
	}

	b := bffnt.New(db, newLogger(c))
	defer b.Close()

	return b.Scan(c.Args().First())
}

func main() {
	app := cli.NewApp()

	app.Name = "bffnt"
	app.Usage = "Nintendo BFFNT font conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"BFFNT_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "overwrite files without prompting",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "extract",
			Usage:       "Extract a font to a manifest and PNG sheets",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				if err := extract(c); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
		{
			Name:        "create",
			Usage:       "Create a font from a manifest and PNG sheets",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "big-endian",
					Aliases: []string{"b"},
					Usage:   "write big endian",
				},
				&cli.BoolFlag{
					Name:    "little-endian",
					Aliases: []string{"l"},
					Usage:   "write little endian",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				if err := create(c); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and catalog fonts",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				if err := scan(c); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
