package png

import "errors"

var (
	// ErrInvalidSignature is returned when the 8-byte PNG signature is wrong
	ErrInvalidSignature = errors.New("invalid PNG signature")

	// ErrMalformedChunk is returned for structurally broken chunk framing
	ErrMalformedChunk = errors.New("malformed PNG chunk")

	// ErrUnsupportedPNG is returned for valid PNGs outside the supported subset
	// (bit depth != 8, interlaced, unknown color type, nonzero compression
	// or filter method)
	ErrUnsupportedPNG = errors.New("unsupported PNG variant")

	// ErrMalformedIDAT is returned when the concatenated IDAT stream is too
	// short to hold a zlib wrapper
	ErrMalformedIDAT = errors.New("malformed IDAT stream")

	// ErrDefilterUnderflow is returned when the inflated stream is shorter
	// than the filtered image needs
	ErrDefilterUnderflow = errors.New("inflated data shorter than image")

	// ErrInvalidFilterType is returned for a scanline filter byte outside 0-4
	ErrInvalidFilterType = errors.New("invalid scanline filter type")

	// ErrInvalidPaletteIndex is returned when an indexed pixel points past
	// the palette
	ErrInvalidPaletteIndex = errors.New("palette index out of range")

	// ErrMissingPalette is returned for color type 3 without a PLTE chunk
	ErrMissingPalette = errors.New("indexed PNG without palette")
)
