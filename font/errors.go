package font

import "errors"

// Any structural violation aborts the whole read or write; there is no
// partial recovery. Errors are wrapped with the offending section and
// values, so match with errors.Is.
var (
	ErrByteOrder     = errors.New("font: invalid byte-order marker")
	ErrMagic         = errors.New("font: invalid magic")
	ErrSizeMismatch  = errors.New("font: section size mismatch")
	ErrVersion       = errors.New("font: unsupported version")
	ErrFileLength    = errors.New("font: file length mismatch")
	ErrMappingMethod = errors.New("font: unsupported mapping method")
	ErrChain         = errors.New("font: malformed section chain")
)
