package png

import (
	"github.com/BitBoy14/png-jpg-converter/codec"
)

// Codec implements the codec.Codec interface for PNG (decode only)
type Codec struct{}

// NewCodec creates a new PNG codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode is not supported; this codec only reads PNG
func (c *Codec) Encode(codec.EncodeParams) ([]byte, error) {
	return nil, codec.ErrEncodeUnsupported
}

// Decode decodes a PNG file into packed RGB pixel data
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	rgb, err := img.RGB()
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		PixelData:  rgb,
		Width:      img.Header.Width,
		Height:     img.Header.Height,
		Components: 3,
	}, nil
}

// MIME returns the PNG MIME type
func (c *Codec) MIME() string {
	return "image/png"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "png"
}

func init() {
	codec.Register(NewCodec())
}
