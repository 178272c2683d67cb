package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a codec is not found in the registry
	ErrCodecNotFound = errors.New("codec not found")

	// ErrEncodeUnsupported is returned by decode-only codecs
	ErrEncodeUnsupported = errors.New("encoding not supported by this codec")
)
