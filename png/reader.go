package png

import (
	"encoding/binary"

	"github.com/BitBoy14/png-jpg-converter/flate"
)

// Header holds the fields of the IHDR chunk
type Header struct {
	Width             int
	Height            int
	BitDepth          int
	ColorType         int
	CompressionMethod int
	FilterMethod      int
	InterlaceMethod   int
}

// PNG color types
const (
	ColorGray      = 0
	ColorRGB       = 2
	ColorIndexed   = 3
	ColorGrayAlpha = 4
	ColorRGBA      = 6
)

var signature = [8]byte{137, 80, 78, 71, 13, 10, 26, 10}

// Image is a fully decoded PNG: the header, the defiltered raw scanline
// bytes, and the palette for indexed images
type Image struct {
	Header  Header
	Raw     []byte // height * scanlineBytes, no filter prefix bytes
	Palette []byte // RGB triples, color type 3 only
}

// BytesPerPixel returns the per-pixel byte count for the color type
func (h *Header) BytesPerPixel() int {
	switch h.ColorType {
	case ColorRGB:
		return 3
	case ColorGrayAlpha:
		return 2
	case ColorRGBA:
		return 4
	default: // gray, indexed
		return 1
	}
}

// ScanlineBytes returns the byte length of one defiltered scanline
func (h *Header) ScanlineBytes() int {
	return (h.Width*h.BytesPerPixel()*h.BitDepth + 7) / 8
}

// Decode parses a PNG file, inflates its image data, and reconstructs the
// raw scanline bytes
func Decode(data []byte) (*Image, error) {
	if len(data) < 8 || [8]byte(data[:8]) != signature {
		return nil, ErrInvalidSignature
	}

	img := &Image{}
	var idat []byte
	pos := 8
	first := true

	for {
		if pos+8 > len(data) {
			return nil, ErrMalformedChunk
		}
		length := int(binary.BigEndian.Uint32(data[pos:]))
		chunkType := string(data[pos+4 : pos+8])
		pos += 8

		if length < 0 || pos+length+4 > len(data) {
			return nil, ErrMalformedChunk
		}
		chunk := data[pos : pos+length]
		pos += length + 4 // skip CRC, treated as opaque

		if first && chunkType != "IHDR" {
			return nil, ErrMalformedChunk
		}
		first = false

		switch chunkType {
		case "IHDR":
			if err := img.parseIHDR(chunk); err != nil {
				return nil, err
			}
		case "PLTE":
			img.Palette = append([]byte(nil), chunk...)
		case "IDAT":
			idat = append(idat, chunk...)
		case "IEND":
			return img.finish(idat)
		default:
			// ancillary or unknown chunk, skipped
		}
	}
}

func (img *Image) parseIHDR(chunk []byte) error {
	if len(chunk) != 13 {
		return ErrMalformedChunk
	}
	h := &img.Header
	h.Width = int(binary.BigEndian.Uint32(chunk[0:]))
	h.Height = int(binary.BigEndian.Uint32(chunk[4:]))
	h.BitDepth = int(chunk[8])
	h.ColorType = int(chunk[9])
	h.CompressionMethod = int(chunk[10])
	h.FilterMethod = int(chunk[11])
	h.InterlaceMethod = int(chunk[12])

	if h.Width < 1 || h.Height < 1 {
		return ErrMalformedChunk
	}
	if h.CompressionMethod != 0 || h.FilterMethod != 0 ||
		h.BitDepth != 8 || h.InterlaceMethod != 0 {
		return ErrUnsupportedPNG
	}
	switch h.ColorType {
	case ColorGray, ColorRGB, ColorIndexed, ColorGrayAlpha, ColorRGBA:
	default:
		return ErrUnsupportedPNG
	}
	return nil
}

// finish inflates the concatenated IDAT payload and defilters it
func (img *Image) finish(idat []byte) (*Image, error) {
	if len(idat) < 6 {
		return nil, ErrMalformedIDAT
	}
	inflated, err := flate.DecompressZlib(idat)
	if err != nil {
		return nil, err
	}

	raw, err := defilter(inflated, &img.Header)
	if err != nil {
		return nil, err
	}
	img.Raw = raw
	return img, nil
}
