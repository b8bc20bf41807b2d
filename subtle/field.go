// Package subtle provides low-level primitives for S-box construction and AES-CBC.
// This package contains GF(2^8) arithmetic, binary affine maps and a raw-key CBC
// implementation. It should not be used directly by most users; instead use the
// high-level APIs in the sbox and aescbc packages.
package subtle

// Reduction is the AES reduction polynomial x^8 + x^4 + x^3 + x + 1.
const Reduction = 0x11B

// Add returns a + b in GF(2^8), which is XOR.
func Add(a, b byte) byte {
	return a ^ b
}

// Multiply returns a * b in GF(2^8) modulo the AES polynomial.
// It runs the classic 8-round shift-and-reduce loop.
func Multiply(a, b byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		if b&1 == 1 {
			result ^= a
		}
		overflow := a&0x80 != 0
		a <<= 1
		if overflow {
			// x^8 is folded back in as the low byte of the reduction polynomial
			a ^= byte(Reduction & 0xFF)
		}
		b >>= 1
	}
	return result
}

// Inverse returns the multiplicative inverse of a in GF(2^8).
// Zero has no inverse and maps to zero by convention. The search is exhaustive
// over 1..255.
func Inverse(a byte) byte {
	if a == 0 {
		return 0
	}
	for y := 1; y < 256; y++ {
		if Multiply(a, byte(y)) == 1 {
			return byte(y)
		}
	}
	return 0
}

// InverseTable returns the full inversion table, index x holding Inverse(x).
func InverseTable() [256]byte {
	var table [256]byte
	for x := 0; x < 256; x++ {
		table[x] = Inverse(byte(x))
	}
	return table
}
