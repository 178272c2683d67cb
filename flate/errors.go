package flate

import "errors"

var (
	// ErrTruncatedInput is returned when bits are requested past the end of the stream
	ErrTruncatedInput = errors.New("truncated DEFLATE stream")

	// ErrInvalidBlockType is returned for the reserved block type 3
	ErrInvalidBlockType = errors.New("invalid DEFLATE block type")

	// ErrInvalidCode is returned when a bit path leaves the Huffman code space
	ErrInvalidCode = errors.New("invalid Huffman code")

	// ErrInvalidSymbol is returned for symbols that carry no meaning in context
	ErrInvalidSymbol = errors.New("invalid DEFLATE symbol")
)
