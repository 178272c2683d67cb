package common

import "math"

// idctBasis[u][x] holds C(u)/2 * cos((2x+1)*u*pi/16). Half of the 2-D
// normalization lands on the row pass and half on the column pass.
var idctBasis = buildIDCTBasis()

func buildIDCTBasis() [8][8]float64 {
	var b [8][8]float64
	for u := 0; u < 8; u++ {
		cu := 0.5
		if u == 0 {
			cu = 0.5 / math.Sqrt2
		}
		for x := 0; x < 8; x++ {
			b[u][x] = cu * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16)
		}
	}
	return b
}

// InverseDCT transforms 64 dequantized coefficients in natural order back
// to 8-bit samples, writing an 8x8 block into out with the given stride.
// Separable evaluation of the inverse transform: horizontal frequencies
// collapse to spatial columns first, then vertical frequencies to rows,
// with the +128 level shift and clamp on output.
func InverseDCT(coef []int32, out []byte, stride int) {
	var tmp [64]float64

	for v := 0; v < 8; v++ {
		row := coef[v*8 : v*8+8]
		for x := 0; x < 8; x++ {
			sum := 0.0
			for u := 0; u < 8; u++ {
				if row[u] != 0 {
					sum += idctBasis[u][x] * float64(row[u])
				}
			}
			tmp[v*8+x] = sum
		}
	}

	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			sum := 0.0
			for v := 0; v < 8; v++ {
				sum += idctBasis[v][y] * tmp[v*8+x]
			}
			out[y*stride+x] = byte(Clamp(int(math.Round(sum))+128, 0, 255))
		}
	}
}
