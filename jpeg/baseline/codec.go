package baseline

import (
	"github.com/BitBoy14/png-jpg-converter/codec"
)

// DefaultQuality is used when no options are supplied
const DefaultQuality = 85

// Codec implements the codec.Codec interface for baseline JPEG
type Codec struct{}

// NewCodec creates a new baseline JPEG codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes pixel data to baseline JPEG
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	quality := DefaultQuality
	if params.Options != nil {
		if opts, ok := params.Options.(*Options); ok {
			if err := opts.Validate(); err != nil {
				return nil, err
			}
			quality = opts.Quality
		}
	}

	return Encode(params.PixelData, params.Width, params.Height, params.Components, quality)
}

// Decode decodes baseline JPEG data
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	pixelData, width, height, components, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		PixelData:  pixelData,
		Width:      width,
		Height:     height,
		Components: components,
	}, nil
}

// MIME returns the JPEG MIME type
func (c *Codec) MIME() string {
	return "image/jpeg"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "jpeg-baseline"
}

// Options contains encoding options for baseline JPEG
type Options struct {
	codec.BaseOptions
}

// Validate validates the options
func (o *Options) Validate() error {
	return o.BaseOptions.Validate()
}

func init() {
	codec.Register(NewCodec())
}
