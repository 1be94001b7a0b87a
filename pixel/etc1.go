package pixel

import "encoding/binary"

// Bit positions within the 64-bit ETC1 color block.
const (
	etcIndivRed1   = 60
	etcIndivGreen1 = 52
	etcIndivBlue1  = 44

	etcDiffRed1   = 59
	etcDiffGreen1 = 51
	etcDiffBlue1  = 43

	etcRed2   = 56
	etcGreen2 = 48
	etcBlue2  = 40

	etcTable1 = 37
	etcTable2 = 34

	etcDifferentialBit = 33
	etcOrientationBit  = 32
)

// etcModifiers holds the signed modifier pairs, one row per 3-bit table
// codeword, one column per amount bit.
var etcModifiers = [8][2]int{
	{2, 8},
	{5, 17},
	{9, 29},
	{13, 42},
	{18, 60},
	{24, 80},
	{33, 106},
	{47, 183},
}

// complement interprets the low bits of v as a two's-complement value of
// the given width.
func complement(v uint64, bits uint) int {
	if v>>(bits-1) == 0 {
		return int(v)
	}
	return int(v) - 1<<bits
}

// expand545 widens a possibly overflowed 5-bit sum to 8 bits by
// replicating the top three bits.
func expand545(v int) int {
	return v<<3 | v>>2&0x07
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}

// decodeETC1 expands ETC1 (or ETC1A4 when alpha is set) block data into an
// RGBA8 buffer of width*height*4 bytes. Each 8x8 tile is stored as four
// compressed 4x4 sub-blocks in raster order, and the tile grid itself is
// padded up to power-of-two dimensions; pixels falling outside the logical
// bounds are discarded.
func decodeETC1(data []byte, width, height int, alpha bool, order binary.ByteOrder) ([]byte, error) {
	blockSize := 8
	if alpha {
		blockSize = 16
	}

	bmp := make([]byte, width*height*4)

	tileW := nextPow2((width + 7) / 8)
	tileH := nextPow2((height + 7) / 8)

	pos := 0

	for tileY := 0; tileY < tileH; tileY++ {
		for tileX := 0; tileX < tileW; tileX++ {
			for blockY := 0; blockY < 2; blockY++ {
				for blockX := 0; blockX < 2; blockX++ {
					if pos+blockSize > len(data) {
						return bmp, nil
					}

					block := data[pos : pos+blockSize]
					pos += blockSize

					alphas := uint64(0xffffffffffffffff)
					if alpha {
						alphas = order.Uint64(block[:8])
						block = block[8:]
					}

					pixels := order.Uint64(block)

					differential := pixels>>etcDifferentialBit&0x01 == 1
					// 0 splits the sub-blocks 2x4, 1 splits them 4x2.
					horizontal := pixels>>etcOrientationBit&0x01 == 1
					table1 := etcModifiers[pixels>>etcTable1&0x07]
					table2 := etcModifiers[pixels>>etcTable2&0x07]

					var color1, color2 [3]int

					if differential {
						r := int(pixels >> etcDiffRed1 & 0x1f)
						g := int(pixels >> etcDiffGreen1 & 0x1f)
						b := int(pixels >> etcDiffBlue1 & 0x1f)

						color1[0] = expand545(r)
						color1[1] = expand545(g)
						color1[2] = expand545(b)

						// The second base color is a signed 3-bit delta from
						// the 5-bit code words.
						r += complement(pixels>>etcRed2&0x07, 3)
						g += complement(pixels>>etcGreen2&0x07, 3)
						b += complement(pixels>>etcBlue2&0x07, 3)

						color2[0] = expand545(r)
						color2[1] = expand545(g)
						color2[2] = expand545(b)
					} else {
						color1[0] = int(pixels>>etcIndivRed1&0x0f) * 0x11
						color1[1] = int(pixels>>etcIndivGreen1&0x0f) * 0x11
						color1[2] = int(pixels>>etcIndivBlue1&0x0f) * 0x11

						color2[0] = int(pixels>>etcRed2&0x0f) * 0x11
						color2[1] = int(pixels>>etcGreen2&0x0f) * 0x11
						color2[2] = int(pixels>>etcBlue2&0x0f) * 0x11
					}

					// Each pixel selects a modifier with two bits split
					// across two 16-bit planes: amount, then sign.
					amounts := pixels & 0xffff
					signs := pixels >> 16 & 0xffff

					for py := 0; py < 4; py++ {
						for px := 0; px < 4; px++ {
							x := px + blockX*4 + tileX*8
							y := py + blockY*4 + tileY*8

							if x >= width || y >= height {
								continue
							}

							offset := uint(px*4 + py)

							table, color := table1, color1
							if horizontal && py >= 2 || !horizontal && px >= 2 {
								table, color = table2, color2
							}

							amount := table[amounts>>offset&0x01]
							if signs>>offset&0x01 == 1 {
								amount = -amount
							}

							o := (y*width + x) * 4
							bmp[o+0] = clamp(color[0] + amount)
							bmp[o+1] = clamp(color[1] + amount)
							bmp[o+2] = clamp(color[2] + amount)
							bmp[o+3] = uint8(alphas>>(offset*4)&0x0f) * 0x11
						}
					}
				}
			}
		}
	}

	return bmp, nil
}
