package baseline

import (
	"bytes"

	"github.com/BitBoy14/png-jpg-converter/jpeg/common"
)

// Encoder represents a baseline JFIF encoder. Output is always a
// three-component 4:4:4 YCbCr scan with the standard Huffman tables and
// quality-scaled standard quantization tables.
type Encoder struct {
	width   int
	height  int
	quality int

	yTable [64]int32
	cTable [64]int32

	dcCodes [2][]common.HuffmanCode
	acCodes [2][]common.HuffmanCode

	// DC predictors for Y, Cb, Cr; reset at the start of each image
	dcPred [3]int
}

// Encode encodes pixel data to baseline JPEG.
// components: 1 for grayscale, 3 for RGB. Quality 1-100 is clamped
// silently into range.
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, common.ErrInvalidDimensions
	}
	if components != 1 && components != 3 {
		return nil, common.ErrInvalidComponents
	}
	if len(pixelData) < width*height*components {
		return nil, common.ErrBufferTooSmall
	}

	rgb := pixelData
	if components == 1 {
		rgb = grayToRGB(pixelData, width*height)
	}

	enc := &Encoder{
		width:   width,
		height:  height,
		quality: common.Clamp(quality, 1, 100),
	}

	enc.yTable = common.ScaleQuantTable(common.DefaultLuminanceQuantTable, enc.quality)
	enc.cTable = common.ScaleQuantTable(common.DefaultChrominanceQuantTable, enc.quality)

	enc.dcCodes[0] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardDCLuminanceBits, common.StandardDCLuminanceValues))
	enc.dcCodes[1] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardDCChrominanceBits, common.StandardDCChrominanceValues))
	enc.acCodes[0] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardACLuminanceBits, common.StandardACLuminanceValues))
	enc.acCodes[1] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardACChrominanceBits, common.StandardACChrominanceValues))

	var buf bytes.Buffer
	writer := common.NewWriter(&buf)

	writer.Marker(common.MarkerSOI)
	enc.writeAPP0(writer)
	enc.writeDQT(writer)
	enc.writeSOF0(writer)
	enc.writeDHT(writer)
	enc.writeSOS(writer)
	if err := enc.encodeScan(&buf, rgb); err != nil {
		return nil, err
	}
	writer.Marker(common.MarkerEOI)

	return buf.Bytes(), nil
}

func grayToRGB(gray []byte, pixels int) []byte {
	rgb := make([]byte, pixels*3)
	for i := 0; i < pixels; i++ {
		rgb[i*3+0] = gray[i]
		rgb[i*3+1] = gray[i]
		rgb[i*3+2] = gray[i]
	}
	return rgb
}

// writeAPP0 writes the JFIF 1.1 application segment
func (enc *Encoder) writeAPP0(writer *common.Writer) {
	writer.Segment(common.MarkerAPP0, []byte{
		'J', 'F', 'I', 'F', 0,
		1, 1, // version 1.1
		0,    // density units: none
		0, 1, // X density
		0, 1, // Y density
		0, 0, // no thumbnail
	})
}

// writeDQT writes both quantization tables, serialized in zig-zag order
func (enc *Encoder) writeDQT(writer *common.Writer) {
	tables := []struct {
		id    byte
		table *[64]int32
	}{
		{0, &enc.yTable},
		{1, &enc.cTable},
	}

	for _, t := range tables {
		data := make([]byte, 1+64)
		data[0] = t.id // precision 0 (8-bit), table ID
		for i := 0; i < 64; i++ {
			data[1+i] = byte(t.table[common.ZigZag[i]])
		}
		writer.Segment(common.MarkerDQT, data)
	}
}

// writeSOF0 writes the baseline Start of Frame: 8-bit precision, three
// components, 1x1 sampling each (4:4:4), quant tables 0/1/1
func (enc *Encoder) writeSOF0(writer *common.Writer) {
	writer.Segment(common.MarkerSOF0, []byte{
		8,
		byte(enc.height >> 8), byte(enc.height),
		byte(enc.width >> 8), byte(enc.width),
		3,
		1, 0x11, 0, // Y
		2, 0x11, 1, // Cb
		3, 0x11, 1, // Cr
	})
}

// writeDHT writes the four standard Huffman tables: DC-0, DC-1, AC-0, AC-1
func (enc *Encoder) writeDHT(writer *common.Writer) {
	tables := []struct {
		class  byte
		id     byte
		bits   [16]int
		values []byte
	}{
		{0, 0, common.StandardDCLuminanceBits, common.StandardDCLuminanceValues},
		{0, 1, common.StandardDCChrominanceBits, common.StandardDCChrominanceValues},
		{1, 0, common.StandardACLuminanceBits, common.StandardACLuminanceValues},
		{1, 1, common.StandardACChrominanceBits, common.StandardACChrominanceValues},
	}

	for _, t := range tables {
		data := make([]byte, 1+16+len(t.values))
		data[0] = t.class<<4 | t.id
		for i := 0; i < 16; i++ {
			data[1+i] = byte(t.bits[i])
		}
		copy(data[17:], t.values)
		writer.Segment(common.MarkerDHT, data)
	}
}

// writeSOS writes the Start of Scan header for a full sequential scan
func (enc *Encoder) writeSOS(writer *common.Writer) {
	writer.Segment(common.MarkerSOS, []byte{
		3,
		1, 0x00, // Y: DC table 0, AC table 0
		2, 0x11, // Cb: DC table 1, AC table 1
		3, 0x11, // Cr: DC table 1, AC table 1
		0, 63, 0, // Ss, Se, Ah/Al
	})
}

// encodeScan walks the image in 8x8 MCUs, converting each to YCbCr and
// entropy-coding the Y, Cb, Cr blocks in turn
func (enc *Encoder) encodeScan(buf *bytes.Buffer, rgb []byte) error {
	bw := common.NewBitWriter(buf)
	enc.dcPred = [3]int{}

	var blockY, blockCb, blockCr [64]float32

	for y := 0; y < enc.height; y += 8 {
		for x := 0; x < enc.width; x += 8 {
			enc.loadBlocks(rgb, x, y, &blockY, &blockCb, &blockCr)

			if err := enc.encodeBlock(bw, &blockY, &enc.yTable, 0, 0); err != nil {
				return err
			}
			if err := enc.encodeBlock(bw, &blockCb, &enc.cTable, 1, 1); err != nil {
				return err
			}
			if err := enc.encodeBlock(bw, &blockCr, &enc.cTable, 1, 2); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// loadBlocks extracts one 8x8 tile, replicating the last row/column at the
// right and bottom borders, and converts it to level-shifted YCbCr
func (enc *Encoder) loadBlocks(rgb []byte, x0, y0 int, blockY, blockCb, blockCr *[64]float32) {
	for by := 0; by < 8; by++ {
		py := y0 + by
		if py > enc.height-1 {
			py = enc.height - 1
		}
		for bx := 0; bx < 8; bx++ {
			px := x0 + bx
			if px > enc.width-1 {
				px = enc.width - 1
			}

			idx := (py*enc.width + px) * 3
			r := float32(rgb[idx])
			g := float32(rgb[idx+1])
			b := float32(rgb[idx+2])

			// BT.601 conversion; Y level-shifted by -128, Cb/Cr centered at 0
			blockY[by*8+bx] = 0.299*r + 0.587*g + 0.114*b - 128.0
			blockCb[by*8+bx] = -0.168736*r - 0.331264*g + 0.5*b
			blockCr[by*8+bx] = 0.5*r - 0.418688*g - 0.081312*b
		}
	}
}

// encodeBlock transforms, quantizes, and entropy-codes one 8x8 block
func (enc *Encoder) encodeBlock(bw *common.BitWriter, block *[64]float32, quant *[64]int32, tableIdx, predIdx int) error {
	common.ForwardDCT(block)
	coef := common.QuantizeZigZag(block, quant)

	// Differential DC
	diff := int(coef[0]) - enc.dcPred[predIdx]
	enc.dcPred[predIdx] = int(coef[0])

	cat, bits := common.EncodeCategory(diff)
	if err := bw.WriteCode(enc.dcCodes[tableIdx][cat]); err != nil {
		return err
	}
	if cat > 0 {
		if err := bw.WriteBits(bits, cat); err != nil {
			return err
		}
	}

	// Run-length AC with ZRL and EOB
	acCode := enc.acCodes[tableIdx]
	zeroRun := 0

	for k := 1; k < 64; k++ {
		val := int(coef[k])
		if val == 0 {
			zeroRun++
			continue
		}

		for zeroRun >= 16 {
			if err := bw.WriteCode(acCode[0xF0]); err != nil {
				return err
			}
			zeroRun -= 16
		}

		cat, bits := common.EncodeCategory(val)
		if err := bw.WriteCode(acCode[zeroRun<<4|cat]); err != nil {
			return err
		}
		if err := bw.WriteBits(bits, cat); err != nil {
			return err
		}
		zeroRun = 0
	}

	if zeroRun > 0 {
		if err := bw.WriteCode(acCode[0x00]); err != nil {
			return err
		}
	}

	return nil
}
