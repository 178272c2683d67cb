package common

import "io"

// HuffmanTable represents a JPEG Huffman coding table
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Symbol values for each code, in order of code length
	Values []byte
	// Decoding state: min/max canonical code and value pointer per length
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32
}

// Build prepares the table for decoding
func (h *HuffmanTable) Build() {
	code := int32(0)
	p := 0
	for l := 0; l < 16; l++ {
		if h.Bits[l] == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = int32(p)
			h.minCode[l] = code
			p += h.Bits[l]
			code += int32(h.Bits[l])
			h.maxCode[l] = code - 1
		}
		code <<= 1
	}
}

// HuffmanCode is one entry of an encoding table: the canonical code and
// its bit length, indexed by symbol value
type HuffmanCode struct {
	Code uint16
	Len  int
}

// BuildHuffmanCodes derives the canonical (code, length) pair for every
// symbol of a table: codes are emitted length by length starting at 0,
// consecutive within a length, shifted left by one at each length boundary
func BuildHuffmanCodes(table *HuffmanTable) []HuffmanCode {
	codes := make([]HuffmanCode, 256)

	code := uint16(0)
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < table.Bits[l]; i++ {
			if p < len(table.Values) {
				codes[table.Values[p]] = HuffmanCode{Code: code, Len: l + 1}
				code++
				p++
			}
		}
		code <<= 1
	}

	return codes
}

// HuffmanDecoder reads Huffman-coded entropy data, undoing byte stuffing
type HuffmanDecoder struct {
	r       io.Reader
	bits    uint32
	nBits   int
	readErr error
}

// NewHuffmanDecoder creates a new entropy decoder over a scan data stream
func NewHuffmanDecoder(r io.Reader) *HuffmanDecoder {
	return &HuffmanDecoder{r: r}
}

func (d *HuffmanDecoder) fillByte() error {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		d.readErr = err
		return err
	}

	// 0xFF in scan data must be followed by a 0x00 stuff byte
	if b[0] == 0xFF {
		var b2 [1]byte
		if _, err := io.ReadFull(d.r, b2[:]); err != nil {
			d.readErr = err
			return err
		}
		if b2[0] != 0x00 {
			d.readErr = ErrInvalidData
			return ErrInvalidData
		}
	}

	d.bits = d.bits<<8 | uint32(b[0])
	d.nBits += 8
	return nil
}

// ReadBits reads n bits MSB-first as an unsigned integer
func (d *HuffmanDecoder) ReadBits(n int) (uint32, error) {
	if d.readErr != nil {
		return 0, d.readErr
	}
	for d.nBits < n {
		if err := d.fillByte(); err != nil {
			return 0, err
		}
	}
	d.nBits -= n
	return (d.bits >> uint(d.nBits)) & ((1 << uint(n)) - 1), nil
}

// Decode decodes the next Huffman symbol from the stream
func (d *HuffmanDecoder) Decode(table *HuffmanTable) (byte, error) {
	code := int32(0)
	for l := 0; l < 16; l++ {
		bit, err := d.ReadBits(1)
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(bit)

		if table.maxCode[l] >= 0 && code <= table.maxCode[l] && code >= table.minCode[l] {
			idx := table.valPtr[l] + code - table.minCode[l]
			if int(idx) < len(table.Values) {
				return table.Values[idx], nil
			}
		}
	}
	return 0, ErrHuffmanDecode
}

// ReceiveExtend reads ssss magnitude bits and sign-extends them into a
// signed coefficient value (the RECEIVE and EXTEND procedures of T.81)
func (d *HuffmanDecoder) ReceiveExtend(ssss int) (int, error) {
	if ssss == 0 {
		return 0, nil
	}

	bits, err := d.ReadBits(ssss)
	if err != nil {
		return 0, err
	}

	val := int(bits)
	if val < 1<<uint(ssss-1) {
		val += (-1 << uint(ssss)) + 1
	}
	return val, nil
}
