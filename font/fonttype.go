package font

// FontType is the FINF tag describing how glyph images are stored.
type FontType uint8

const (
	TypeGlyph FontType = iota
	TypeTexture
	TypePackedTexture
)

// CharEncoding is the FINF tag identifying the code points used by the
// character maps.
type CharEncoding uint8

const (
	EncodingUTF8 CharEncoding = iota
	EncodingUnicode
	EncodingShiftJIS
	EncodingCP1252
)
