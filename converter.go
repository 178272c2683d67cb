// Package converter turns PNG files into baseline JPEG files.
//
// The pipeline is strictly sequential: the PNG is decoded fully (DEFLATE
// inflation, scanline defiltering, color conversion to packed RGB), then
// the JPEG is encoded fully. Two conversions share no mutable state.
package converter

import (
	"github.com/BitBoy14/png-jpg-converter/codec"
	"github.com/BitBoy14/png-jpg-converter/jpeg/baseline"
	_ "github.com/BitBoy14/png-jpg-converter/png"
)

// Convert decodes a PNG byte stream and encodes it as baseline JPEG at
// the given quality (1-100, clamped silently into range)
func Convert(pngData []byte, quality int) ([]byte, error) {
	res, err := DecodePNG(pngData)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(res, quality)
}

// DecodePNG decodes a PNG byte stream into packed RGB pixel data
func DecodePNG(pngData []byte) (*codec.DecodeResult, error) {
	dec, err := codec.Get("image/png")
	if err != nil {
		return nil, err
	}
	return dec.Decode(pngData)
}

// EncodeJPEG encodes decoded pixel data as baseline JPEG
func EncodeJPEG(res *codec.DecodeResult, quality int) ([]byte, error) {
	enc, err := codec.Get("image/jpeg")
	if err != nil {
		return nil, err
	}
	return enc.Encode(codec.EncodeParams{
		PixelData:  res.PixelData,
		Width:      res.Width,
		Height:     res.Height,
		Components: res.Components,
		Options:    &baseline.Options{BaseOptions: codec.BaseOptions{Quality: quality}},
	})
}
