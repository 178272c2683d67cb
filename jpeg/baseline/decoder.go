package baseline

import (
	"bytes"

	"github.com/BitBoy14/png-jpg-converter/jpeg/common"
)

// component holds one color component's frame parameters and sample planes
type component struct {
	id      byte
	h, v    int // sampling factors
	tq      int // quantization table selector
	td, ta  int // DC/AC Huffman table selectors
	width   int // component width in blocks
	height  int // component height in blocks
	dcPred  int
	samples []byte // width*height blocks of 64 samples
}

// Decoder represents a baseline JPEG decoder
type Decoder struct {
	width      int
	height     int
	components []*component
	qtables    [4][64]int32
	dcTables   [4]*common.HuffmanTable
	acTables   [4]*common.HuffmanTable
	maxH, maxV int
}

// Decode decodes baseline JPEG data into interleaved pixel data
func Decode(jpegData []byte) (pixelData []byte, width, height, components int, err error) {
	reader := common.NewReader(jpegData)
	d := &Decoder{}

	marker, err := reader.Marker()
	if err != nil {
		return nil, 0, 0, 0, err
	}
	if marker != common.MarkerSOI {
		return nil, 0, 0, 0, common.ErrInvalidSOI
	}

	for {
		marker, err := reader.Marker()
		if err != nil {
			return nil, 0, 0, 0, err
		}

		switch marker {
		case common.MarkerSOF0:
			err = d.parseSOF(reader)
		case common.MarkerDQT:
			err = d.parseDQT(reader)
		case common.MarkerDHT:
			err = d.parseDHT(reader)
		case common.MarkerSOS:
			if err = d.parseSOS(reader); err == nil {
				err = d.decodeScan(reader)
			}
			if err == nil {
				// Baseline has a single scan
				return d.toPixels(), d.width, d.height, len(d.components), nil
			}
		case common.MarkerEOI:
			return d.toPixels(), d.width, d.height, len(d.components), nil
		default:
			if common.HasLength(marker) {
				_, err = reader.Segment()
			}
		}
		if err != nil {
			return nil, 0, 0, 0, err
		}
	}
}

func (d *Decoder) parseSOF(reader *common.Reader) error {
	data, err := reader.Segment()
	if err != nil {
		return err
	}
	if len(data) < 6 {
		return common.ErrInvalidSOF
	}

	if data[0] != 8 {
		return common.ErrInvalidPrecision
	}
	d.height = int(data[1])<<8 | int(data[2])
	d.width = int(data[3])<<8 | int(data[4])
	n := int(data[5])

	if d.width <= 0 || d.height <= 0 {
		return common.ErrInvalidDimensions
	}
	if n != 1 && n != 3 {
		return common.ErrInvalidComponents
	}
	if len(data) < 6+n*3 {
		return common.ErrInvalidSOF
	}

	d.maxH, d.maxV = 1, 1
	d.components = make([]*component, n)
	for i := 0; i < n; i++ {
		cs := data[6+i*3 : 6+i*3+3]
		c := &component{
			id: cs[0],
			h:  int(cs[1] >> 4),
			v:  int(cs[1] & 0x0F),
			tq: int(cs[2]),
		}
		if c.h < 1 || c.h > 4 || c.v < 1 || c.v > 4 || c.tq > 3 {
			return common.ErrInvalidSOF
		}
		if c.h > d.maxH {
			d.maxH = c.h
		}
		if c.v > d.maxV {
			d.maxV = c.v
		}
		d.components[i] = c
	}

	for _, c := range d.components {
		c.width = common.DivCeil(d.width*c.h, d.maxH*8)
		c.height = common.DivCeil(d.height*c.v, d.maxV*8)
		c.samples = make([]byte, c.width*c.height*64)
	}
	return nil
}

func (d *Decoder) parseDQT(reader *common.Reader) error {
	data, err := reader.Segment()
	if err != nil {
		return err
	}

	for offset := 0; offset < len(data); {
		pq := data[offset] >> 4
		tq := data[offset] & 0x0F
		if tq > 3 {
			return common.ErrInvalidDQT
		}
		offset++

		if pq == 0 {
			if offset+64 > len(data) {
				return common.ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][common.ZigZag[i]] = int32(data[offset+i])
			}
			offset += 64
		} else {
			if offset+128 > len(data) {
				return common.ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][common.ZigZag[i]] = int32(data[offset+i*2])<<8 | int32(data[offset+i*2+1])
			}
			offset += 128
		}
	}
	return nil
}

func (d *Decoder) parseDHT(reader *common.Reader) error {
	data, err := reader.Segment()
	if err != nil {
		return err
	}

	for offset := 0; offset < len(data); {
		tc := data[offset] >> 4
		th := data[offset] & 0x0F
		if th > 3 {
			return common.ErrInvalidDHT
		}
		offset++

		if offset+16 > len(data) {
			return common.ErrInvalidDHT
		}
		table := &common.HuffmanTable{}
		total := 0
		for i := 0; i < 16; i++ {
			table.Bits[i] = int(data[offset+i])
			total += table.Bits[i]
		}
		offset += 16

		if offset+total > len(data) {
			return common.ErrInvalidDHT
		}
		table.Values = append([]byte(nil), data[offset:offset+total]...)
		offset += total

		table.Build()
		if tc == 0 {
			d.dcTables[th] = table
		} else {
			d.acTables[th] = table
		}
	}
	return nil
}

func (d *Decoder) parseSOS(reader *common.Reader) error {
	data, err := reader.Segment()
	if err != nil {
		return err
	}
	if len(data) < 1 {
		return common.ErrInvalidSOS
	}

	ns := int(data[0])
	if len(data) < 1+ns*2+3 {
		return common.ErrInvalidSOS
	}

	for i := 0; i < ns; i++ {
		cs := data[1+i*2]
		sel := data[1+i*2+1]

		var comp *component
		for _, c := range d.components {
			if c.id == cs {
				comp = c
				break
			}
		}
		if comp == nil {
			return common.ErrInvalidSOS
		}
		comp.td = int(sel >> 4)
		comp.ta = int(sel & 0x0F)
	}
	return nil
}

// decodeScan collects the entropy-coded bytes up to the next marker and
// decodes every MCU
func (d *Decoder) decodeScan(reader *common.Reader) error {
	var scanData bytes.Buffer
	for {
		b, err := reader.Byte()
		if err != nil {
			// End of stream: decode what was collected
			break
		}

		if b != 0xFF {
			scanData.WriteByte(b)
			continue
		}

		b2, err := reader.Byte()
		if err != nil {
			scanData.WriteByte(b)
			break
		}

		switch {
		case b2 == 0x00:
			scanData.WriteByte(b)
			scanData.WriteByte(b2)
		case common.IsRST(0xFF00 | uint16(b2)):
			// Restart marker: reset DC predictors and continue
			for _, c := range d.components {
				c.dcPred = 0
			}
		default:
			// Real marker: scan is over
			return d.decodeMCUs(&scanData)
		}
	}
	return d.decodeMCUs(&scanData)
}

func (d *Decoder) decodeMCUs(scanData *bytes.Buffer) error {
	huffDec := common.NewHuffmanDecoder(bytes.NewReader(scanData.Bytes()))

	mcuCols := common.DivCeil(d.width, d.maxH*8)
	mcuRows := common.DivCeil(d.height, d.maxV*8)

	for mcuY := 0; mcuY < mcuRows; mcuY++ {
		for mcuX := 0; mcuX < mcuCols; mcuX++ {
			for _, c := range d.components {
				for v := 0; v < c.v; v++ {
					for h := 0; h < c.h; h++ {
						if err := d.decodeBlock(huffDec, c, mcuX*c.h+h, mcuY*c.v+v); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

// decodeBlock entropy-decodes, dequantizes, and inverse-transforms one block
func (d *Decoder) decodeBlock(huffDec *common.HuffmanDecoder, c *component, blockX, blockY int) error {
	var coef [64]int32

	dcTable := d.dcTables[c.td]
	acTable := d.acTables[c.ta]
	if dcTable == nil || acTable == nil {
		return common.ErrInvalidDHT
	}

	s, err := huffDec.Decode(dcTable)
	if err != nil {
		return err
	}
	diff, err := huffDec.ReceiveExtend(int(s))
	if err != nil {
		return err
	}
	c.dcPred += diff
	coef[0] = int32(c.dcPred)

	for k := 1; k < 64; {
		rs, err := huffDec.Decode(acTable)
		if err != nil {
			return err
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)

		if size == 0 {
			if run != 15 {
				break // EOB
			}
			k += 16 // ZRL
			continue
		}

		k += run
		if k >= 64 {
			return common.ErrInvalidData
		}
		val, err := huffDec.ReceiveExtend(size)
		if err != nil {
			return err
		}
		coef[common.ZigZag[k]] = int32(val)
		k++
	}

	qtable := &d.qtables[c.tq]
	for i := 0; i < 64; i++ {
		coef[i] *= qtable[i]
	}

	if blockX >= c.width || blockY >= c.height {
		// Padding block outside the component, discard
		return nil
	}
	offset := (blockY*c.width + blockX) * 64
	common.InverseDCT(coef[:], c.samples[offset:], 8)
	return nil
}

// toPixels converts the decoded component planes to interleaved output
func (d *Decoder) toPixels() []byte {
	n := len(d.components)
	out := make([]byte, d.width*d.height*n)

	sample := func(c *component, x, y int) byte {
		sx := x * c.h / d.maxH
		sy := y * c.v / d.maxV
		bx, by := sx/8, sy/8
		if bx >= c.width || by >= c.height {
			return 0
		}
		offset := (by*c.width+bx)*64 + (sy%8)*8 + sx%8
		return c.samples[offset]
	}

	switch n {
	case 1:
		c := d.components[0]
		for y := 0; y < d.height; y++ {
			for x := 0; x < d.width; x++ {
				out[y*d.width+x] = sample(c, x, y)
			}
		}
	case 3:
		for y := 0; y < d.height; y++ {
			for x := 0; x < d.width; x++ {
				yy := sample(d.components[0], x, y)
				cb := sample(d.components[1], x, y)
				cr := sample(d.components[2], x, y)

				r, g, b := ycbcrToRGB(yy, cb, cr)
				offset := (y*d.width + x) * 3
				out[offset+0] = r
				out[offset+1] = g
				out[offset+2] = b
			}
		}
	}
	return out
}

// ycbcrToRGB converts one YCbCr sample to RGB (BT.601, fixed point)
func ycbcrToRGB(yy, cb, cr byte) (byte, byte, byte) {
	y := int(yy)
	cbv := int(cb) - 128
	crv := int(cr) - 128

	r := y + (91881*crv)>>16
	g := y - (22554*cbv+46802*crv)>>16
	b := y + (116130*cbv)>>16

	return byte(common.Clamp(r, 0, 255)),
		byte(common.Clamp(g, 0, 255)),
		byte(common.Clamp(b, 0, 255))
}
