package baseline

import (
	"bytes"
	"encoding/binary"
	"errors"
	stdjpeg "image/jpeg"
	"testing"

	"github.com/BitBoy14/png-jpg-converter/jpeg/common"
)

// segment is one parsed marker segment of an encoded file
type segment struct {
	marker uint16
	data   []byte
}

// parseSegments walks the marker structure up to and including SOS and
// returns the segments plus the entropy-coded bytes (without the EOI)
func parseSegments(t *testing.T, jpegData []byte) ([]segment, []byte) {
	t.Helper()

	if len(jpegData) < 4 || binary.BigEndian.Uint16(jpegData) != common.MarkerSOI {
		t.Fatal("missing SOI")
	}

	var segs []segment
	pos := 2
	for {
		if pos+4 > len(jpegData) {
			t.Fatal("ran out of data before SOS")
		}
		marker := binary.BigEndian.Uint16(jpegData[pos:])
		length := int(binary.BigEndian.Uint16(jpegData[pos+2:]))
		data := jpegData[pos+4 : pos+2+length]
		segs = append(segs, segment{marker, data})
		pos += 2 + length

		if marker == common.MarkerSOS {
			break
		}
	}

	if binary.BigEndian.Uint16(jpegData[len(jpegData)-2:]) != common.MarkerEOI {
		t.Fatal("missing EOI")
	}
	return segs, jpegData[pos : len(jpegData)-2]
}

func gradientRGB(width, height int) []byte {
	rgb := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := (y*width + x) * 3
			rgb[offset+0] = byte(x * 4)
			rgb[offset+1] = byte(y * 4)
			rgb[offset+2] = byte((x + y) * 2)
		}
	}
	return rgb
}

func TestEncodeFraming(t *testing.T) {
	jpegData, err := Encode(gradientRGB(24, 16), 24, 16, 3, 50)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// The file starts FF D8 FF E0 and ends FF D9
	if !bytes.HasPrefix(jpegData, []byte{0xFF, 0xD8, 0xFF, 0xE0}) {
		t.Errorf("prefix: got % x", jpegData[:4])
	}
	if !bytes.HasSuffix(jpegData, []byte{0xFF, 0xD9}) {
		t.Errorf("suffix: got % x", jpegData[len(jpegData)-2:])
	}

	segs, _ := parseSegments(t, jpegData)

	wantMarkers := []uint16{
		common.MarkerAPP0,
		common.MarkerDQT, common.MarkerDQT,
		common.MarkerSOF0,
		common.MarkerDHT, common.MarkerDHT, common.MarkerDHT, common.MarkerDHT,
		common.MarkerSOS,
	}
	if len(segs) != len(wantMarkers) {
		t.Fatalf("segment count: got %d, want %d", len(segs), len(wantMarkers))
	}
	for i, want := range wantMarkers {
		if segs[i].marker != want {
			t.Errorf("segment %d: got %#x, want %#x", i, segs[i].marker, want)
		}
	}

	// APP0: JFIF 1.1, no density units, 1x1 density, no thumbnail
	app0 := segs[0].data
	want := []byte{'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0}
	if !bytes.Equal(app0, want) {
		t.Errorf("APP0: got % x, want % x", app0, want)
	}

	// DQT at quality 50 serializes the unscaled standard table in zig-zag
	// order: 16, 11, 12, 14, 12, 10, ...
	dqtY := segs[1].data
	if dqtY[0] != 0 {
		t.Errorf("DQT-Y id byte: got %d, want 0", dqtY[0])
	}
	if len(dqtY) != 65 {
		t.Errorf("DQT-Y length: got %d, want 65", len(dqtY))
	}
	if !bytes.Equal(dqtY[1:7], []byte{16, 11, 12, 14, 12, 10}) {
		t.Errorf("DQT-Y zig-zag prefix: got % x", dqtY[1:7])
	}
	if segs[2].data[0] != 1 {
		t.Errorf("DQT-C id byte: got %d, want 1", segs[2].data[0])
	}

	// SOF0: precision 8, 16x24, three components with 1x1 sampling and
	// quantization tables 0, 1, 1
	sof := segs[3].data
	wantSOF := []byte{8, 0, 16, 0, 24, 3, 1, 0x11, 0, 2, 0x11, 1, 3, 0x11, 1}
	if !bytes.Equal(sof, wantSOF) {
		t.Errorf("SOF0: got % x, want % x", sof, wantSOF)
	}

	// DHT order: DC-0, DC-1, AC-0, AC-1
	wantClasses := []byte{0x00, 0x01, 0x10, 0x11}
	for i, wantID := range wantClasses {
		if segs[4+i].data[0] != wantID {
			t.Errorf("DHT %d class/id: got %#x, want %#x", i, segs[4+i].data[0], wantID)
		}
	}

	// SOS: three components with table selectors 0x00, 0x11, 0x11
	sos := segs[8].data
	wantSOS := []byte{3, 1, 0x00, 2, 0x11, 3, 0x11, 0, 63, 0}
	if !bytes.Equal(sos, wantSOS) {
		t.Errorf("SOS: got % x, want % x", sos, wantSOS)
	}
}

// TestEntropyByteStuffing checks that no FF xx pair with xx != 00 appears
// inside the entropy-coded segment
func TestEntropyByteStuffing(t *testing.T) {
	// High quality keeps many coefficients, producing a long scan
	rgb := make([]byte, 64*64*3)
	seed := uint32(12345)
	for i := range rgb {
		seed = seed*1664525 + 1013904223
		rgb[i] = byte(seed >> 24)
	}

	jpegData, err := Encode(rgb, 64, 64, 3, 95)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	_, scan := parseSegments(t, jpegData)
	if len(scan) == 0 {
		t.Fatal("empty scan")
	}
	for i := 0; i < len(scan)-1; i++ {
		if scan[i] == 0xFF && scan[i+1] != 0x00 {
			t.Fatalf("bare FF %02x at scan offset %d", scan[i+1], i)
		}
	}
	if scan[len(scan)-1] == 0xFF {
		t.Error("scan ends with unstuffed FF")
	}
}

// TestEncodeConstantGray pins the entropy segment of a uniform mid-gray
// block: each component is one zero DC delta plus an EOB
func TestEncodeConstantGray(t *testing.T) {
	rgb := make([]byte, 8*8*3)
	for i := range rgb {
		rgb[i] = 128
	}

	jpegData, err := Encode(rgb, 8, 8, 3, 85)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	_, scan := parseSegments(t, jpegData)

	// Y: DC size-0 code (00) + EOB (1010); Cb, Cr: DC size-0 (00) + EOB
	// (00) each. 14 bits, padded with ones: 00101000 00000011.
	want := []byte{0x28, 0x03}
	if !bytes.Equal(scan, want) {
		t.Errorf("scan: got % x, want % x", scan, want)
	}

	// And it decodes back to uniform gray
	pixels, w, h, n, err := Decode(jpegData)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != 8 || h != 8 || n != 3 {
		t.Fatalf("decoded shape: %dx%dx%d", w, h, n)
	}
	for i, v := range pixels {
		if v < 127 || v > 129 {
			t.Fatalf("pixel byte %d: got %d, want 128±1", i, v)
		}
	}
}

func TestEncodeDecodeRGB(t *testing.T) {
	width, height := 64, 64
	rgb := gradientRGB(width, height)

	jpegData, err := Encode(rgb, width, height, 3, 85)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	t.Logf("encoded %d bytes (%.2fx compression)", len(jpegData),
		float64(len(rgb))/float64(len(jpegData)))

	decoded, w, h, n, err := Decode(jpegData)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != width || h != height || n != 3 {
		t.Fatalf("decoded shape: %dx%dx%d", w, h, n)
	}

	maxErr := 0
	for i := range rgb {
		d := int(rgb[i]) - int(decoded[i])
		if d < 0 {
			d = -d
		}
		if d > maxErr {
			maxErr = d
		}
	}
	t.Logf("max pixel error: %d", maxErr)
	if maxErr > 50 {
		t.Errorf("max error too large: %d", maxErr)
	}
}

func TestEncodeDecodeGrayscale(t *testing.T) {
	width, height := 32, 24
	gray := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray[y*width+x] = byte((x + y) * 4)
		}
	}

	jpegData, err := Encode(gray, width, height, 1, 85)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, w, h, n, err := Decode(jpegData)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != width || h != height || n != 3 {
		t.Fatalf("decoded shape: %dx%dx%d", w, h, n)
	}

	maxErr := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := int(gray[y*width+x])
			for c := 0; c < 3; c++ {
				d := want - int(decoded[(y*width+x)*3+c])
				if d < 0 {
					d = -d
				}
				if d > maxErr {
					maxErr = d
				}
			}
		}
	}
	if maxErr > 50 {
		t.Errorf("max error too large: %d", maxErr)
	}
}

// TestOneByOneRed encodes a single red pixel and verifies a reference
// decoder reads it back within ±3 per channel
func TestOneByOneRed(t *testing.T) {
	jpegData, err := Encode([]byte{255, 0, 0}, 1, 1, 3, 85)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	img, err := stdjpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		t.Fatalf("reference decode failed: %v", err)
	}
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Fatalf("bounds: %v", img.Bounds())
	}

	r, g, b, _ := img.At(0, 0).RGBA()
	got := [3]int{int(r >> 8), int(g >> 8), int(b >> 8)}
	want := [3]int{255, 0, 0}
	for c := 0; c < 3; c++ {
		d := got[c] - want[c]
		if d < -3 || d > 3 {
			t.Errorf("channel %d: got %d, want %d±3", c, got[c], want[c])
		}
	}
}

// TestEncodeAgainstReferenceDecoder compares the full image against the
// standard library JPEG decoder
func TestEncodeAgainstReferenceDecoder(t *testing.T) {
	width, height := 40, 28
	rgb := gradientRGB(width, height)

	jpegData, err := Encode(rgb, width, height, 3, 90)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	img, err := stdjpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		t.Fatalf("reference decode failed: %v", err)
	}
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		t.Fatalf("bounds: %v", img.Bounds())
	}

	maxErr := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			got := [3]int{int(r >> 8), int(g >> 8), int(b >> 8)}
			offset := (y*width + x) * 3
			for c := 0; c < 3; c++ {
				d := got[c] - int(rgb[offset+c])
				if d < 0 {
					d = -d
				}
				if d > maxErr {
					maxErr = d
				}
			}
		}
	}
	t.Logf("max pixel error vs reference decoder: %d", maxErr)
	if maxErr > 64 {
		t.Errorf("max error too large: %d", maxErr)
	}
}

// TestDecoderAgainstReferenceDecoder cross-checks this package's decoder
// with the standard library on the same stream
func TestDecoderAgainstReferenceDecoder(t *testing.T) {
	width, height := 48, 32
	rgb := gradientRGB(width, height)

	jpegData, err := Encode(rgb, width, height, 3, 80)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	mine, w, h, _, err := Decode(jpegData)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	ref, err := stdjpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		t.Fatalf("reference decode failed: %v", err)
	}

	maxErr := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := ref.At(x, y).RGBA()
			refPix := [3]int{int(r >> 8), int(g >> 8), int(b >> 8)}
			offset := (y*w + x) * 3
			for c := 0; c < 3; c++ {
				d := refPix[c] - int(mine[offset+c])
				if d < 0 {
					d = -d
				}
				if d > maxErr {
					maxErr = d
				}
			}
		}
	}
	t.Logf("decoder disagreement: %d", maxErr)
	if maxErr > 4 {
		t.Errorf("decoders disagree by %d", maxErr)
	}
}

func TestEncodeOddDimensions(t *testing.T) {
	// Edge replication pads partial blocks; 13x7 exercises both borders
	width, height := 13, 7
	rgb := gradientRGB(width, height)

	jpegData, err := Encode(rgb, width, height, 3, 85)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	img, err := stdjpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		t.Fatalf("reference decode failed: %v", err)
	}
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		t.Fatalf("bounds: %v", img.Bounds())
	}
}

func TestEncodeQualityClamped(t *testing.T) {
	rgb := gradientRGB(8, 8)

	for _, q := range []int{-10, 0, 101, 1000} {
		if _, err := Encode(rgb, 8, 8, 3, q); err != nil {
			t.Errorf("quality %d: unexpected error %v", q, err)
		}
	}

	// Lowest quality must produce a smaller file than top quality
	lo, _ := Encode(gradientRGB(64, 64), 64, 64, 3, 1)
	hi, _ := Encode(gradientRGB(64, 64), 64, 64, 3, 100)
	if len(lo) >= len(hi) {
		t.Errorf("quality 1 (%d bytes) not smaller than quality 100 (%d bytes)", len(lo), len(hi))
	}
}

func TestEncodeValidation(t *testing.T) {
	rgb := gradientRGB(8, 8)

	if _, err := Encode(rgb, 0, 8, 3, 85); !errors.Is(err, common.ErrInvalidDimensions) {
		t.Errorf("zero width: got %v", err)
	}
	if _, err := Encode(rgb, 8, -1, 3, 85); !errors.Is(err, common.ErrInvalidDimensions) {
		t.Errorf("negative height: got %v", err)
	}
	if _, err := Encode(rgb, 8, 8, 2, 85); !errors.Is(err, common.ErrInvalidComponents) {
		t.Errorf("2 components: got %v", err)
	}
	if _, err := Encode(rgb[:10], 8, 8, 3, 85); !errors.Is(err, common.ErrBufferTooSmall) {
		t.Errorf("short buffer: got %v", err)
	}
}

// TestDCPredictorsResetPerImage encodes the same image twice and expects
// identical output: predictor state must not leak between conversions
func TestDCPredictorsResetPerImage(t *testing.T) {
	rgb := gradientRGB(24, 24)

	first, err := Encode(rgb, 24, 24, 3, 75)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Encode(rgb, 24, 24, 3, 75)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two encodes of the same image differ")
	}
}
