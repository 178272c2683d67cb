package flate

// RFC 1951 section 3.2.5 constants for length and distance codes.
var (
	lengthBase = []int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = []int{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distBase = []int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193,
		12289, 16385, 24577,
	}
	distExtra = []int{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}

	// Order in which code-length code lengths are stored in a dynamic block
	codeLengthOrder = []int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
)

// Inflate decompresses a raw DEFLATE stream (RFC 1951)
func Inflate(compressed []byte) ([]byte, error) {
	r := newBitReader(compressed)
	var out []byte

	for {
		bfinal, err := r.ReadBits(1)
		if err != nil {
			return nil, err
		}
		btype, err := r.ReadBits(2)
		if err != nil {
			return nil, err
		}

		switch btype {
		case 0:
			out, err = inflateStored(r, out)
		case 1:
			out, err = inflateBlock(r, fixedLitLenTable(), fixedDistTable(), out)
		case 2:
			var litLen, dist *huffmanTable
			litLen, dist, err = readDynamicTables(r)
			if err == nil {
				out, err = inflateBlock(r, litLen, dist, out)
			}
		default:
			return nil, ErrInvalidBlockType
		}
		if err != nil {
			return nil, err
		}

		if bfinal == 1 {
			return out, nil
		}
	}
}

// inflateStored copies a stored (uncompressed) block
func inflateStored(r *bitReader, out []byte) ([]byte, error) {
	r.AlignToByte()
	length, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadBits(16); err != nil { // NLEN, not verified
		return nil, err
	}
	for i := 0; i < int(length); i++ {
		b, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(b))
	}
	return out, nil
}

// fixedLitLenTable builds the fixed literal/length code of RFC 1951 3.2.6
func fixedLitLenTable() *huffmanTable {
	lengths := make([]int, 288)
	for i := 0; i <= 143; i++ {
		lengths[i] = 8
	}
	for i := 144; i <= 255; i++ {
		lengths[i] = 9
	}
	for i := 256; i <= 279; i++ {
		lengths[i] = 7
	}
	for i := 280; i <= 287; i++ {
		lengths[i] = 8
	}
	return buildHuffman(lengths)
}

// fixedDistTable builds the fixed distance code (5 bits for all 32 symbols)
func fixedDistTable() *huffmanTable {
	lengths := make([]int, 32)
	for i := range lengths {
		lengths[i] = 5
	}
	return buildHuffman(lengths)
}

// readDynamicTables reads the code-length-encoded literal/length and
// distance code lengths of a dynamic block and builds both decoders
func readDynamicTables(r *bitReader) (*huffmanTable, *huffmanTable, error) {
	hlit, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := r.ReadBits(4)
	if err != nil {
		return nil, nil, err
	}

	numLit := int(hlit) + 257
	numDist := int(hdist) + 1
	numCodeLen := int(hclen) + 4

	codeLenLengths := make([]int, 19)
	for i := 0; i < numCodeLen; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, nil, err
		}
		codeLenLengths[codeLengthOrder[i]] = int(v)
	}
	codeLenTable := buildHuffman(codeLenLengths)

	// Symbols 0-15 are literal lengths; 16 repeats the previous length,
	// 17 and 18 emit runs of zeros
	lengths := make([]int, numLit+numDist)
	i := 0
	for i < len(lengths) {
		sym, err := codeLenTable.Decode(r)
		if err != nil {
			return nil, nil, err
		}

		switch {
		case sym < 16:
			lengths[i] = sym
			i++
		case sym == 16:
			if i == 0 {
				return nil, nil, ErrInvalidSymbol
			}
			rep, err := r.ReadBits(2)
			if err != nil {
				return nil, nil, err
			}
			prev := lengths[i-1]
			for j := 0; j < int(rep)+3; j++ {
				if i >= len(lengths) {
					return nil, nil, ErrInvalidSymbol
				}
				lengths[i] = prev
				i++
			}
		case sym == 17:
			rep, err := r.ReadBits(3)
			if err != nil {
				return nil, nil, err
			}
			i += int(rep) + 3
		case sym == 18:
			rep, err := r.ReadBits(7)
			if err != nil {
				return nil, nil, err
			}
			i += int(rep) + 11
		default:
			return nil, nil, ErrInvalidSymbol
		}
	}
	if i > len(lengths) {
		return nil, nil, ErrInvalidSymbol
	}

	litLen := buildHuffman(lengths[:numLit])
	dist := buildHuffman(lengths[numLit:])
	return litLen, dist, nil
}

// inflateBlock runs the literal/length/distance loop until end-of-block
func inflateBlock(r *bitReader, litLen, dist *huffmanTable, out []byte) ([]byte, error) {
	for {
		sym, err := litLen.Decode(r)
		if err != nil {
			return nil, err
		}

		switch {
		case sym < 256:
			out = append(out, byte(sym))

		case sym == 256:
			return out, nil

		case sym < 286:
			lenCode := sym - 257
			extra, err := r.ReadBits(lengthExtra[lenCode])
			if err != nil {
				return nil, err
			}
			length := lengthBase[lenCode] + int(extra)

			distCode, err := dist.Decode(r)
			if err != nil {
				return nil, err
			}
			if distCode >= 30 {
				return nil, ErrInvalidSymbol
			}
			extra, err = r.ReadBits(distExtra[distCode])
			if err != nil {
				return nil, err
			}
			distance := distBase[distCode] + int(extra)
			if distance > len(out) {
				return nil, ErrInvalidSymbol
			}

			// Byte-by-byte so self-overlapping copies grow correctly
			start := len(out) - distance
			for i := 0; i < length; i++ {
				out = append(out, out[start+i])
			}

		default:
			return nil, ErrInvalidSymbol
		}
	}
}
