// Package sbox builds and evaluates 8-bit substitution boxes (S-boxes).
//
// An S-box is generated by composing multiplicative inversion in GF(2^8) with an
// affine transform over GF(2)^8. The canonical AES S-box uses the FIPS-197 matrix
// and the constant 0x63; arbitrary candidates use a caller-supplied matrix and
// constant. The package also scores S-boxes with the usual soundness metrics
// (bijectivity, balance, strict avalanche, differential uniformity and an
// approximate nonlinearity) and searches random invertible affine maps for
// strong candidates.
//
// Example usage:
//
//	s := sbox.Generate()
//	report := sbox.Evaluate(s)
//	fmt.Println(report.DifferentialUniformity) // 4
//
//	// Explore 100 random affine candidates, reproducibly
//	seed := uint64(42)
//	results, err := sbox.ExploreAffineCandidates(100, &seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, c := range sbox.Top(results, 5) {
//		fmt.Println(c.ID, c.Metrics.Nonlinearity, c.Metrics.DifferentialUniformity)
//	}
package sbox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vdparikh/sbox/subtle"
)

// Size is the number of entries in an 8-bit S-box.
const Size = 256

// SBox is a 256-entry substitution table indexed by input byte.
// Being a permutation is not guaranteed by the type; use IsBijective.
type SBox [Size]byte

// Generate returns the canonical AES S-box.
func Generate() SBox {
	return GenerateFromAffine(subtle.AESAffineMap())
}

// GenerateFromAffine builds S[x] = A(inverse(x)) for every byte x.
func GenerateFromAffine(a subtle.AffineMap) SBox {
	inv := subtle.InverseTable()
	var s SBox
	for x := 0; x < Size; x++ {
		s[x] = a.Apply(inv[x])
	}
	return s
}

// GenerateFromMatrix builds an S-box from an 8x8 {0,1} matrix in row-major
// form and a constant byte. A singular matrix is accepted and simply yields a
// non-bijective table; shape and entry errors are reported as ValidationError.
func GenerateFromMatrix(rows [][]int, constant byte) (SBox, error) {
	m, err := subtle.MatrixFromRows(rows)
	if err != nil {
		return SBox{}, newValidationError("matrix", err)
	}
	return GenerateFromAffine(subtle.NewAffineMap(m, constant)), nil
}

// GenerateFromMatrixHex is GenerateFromMatrix with the constant given as a hex
// string such as "63" or "0x63".
func GenerateFromMatrixHex(rows [][]int, constant string) (SBox, error) {
	c, err := ParseConstant(constant)
	if err != nil {
		return SBox{}, err
	}
	return GenerateFromMatrix(rows, c)
}

// ParseConstant parses an affine constant written in hex, with or without a
// 0x prefix.
func ParseConstant(s string) (byte, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return 0, &ValidationError{Field: "constant", Reason: "empty constant"}
	}
	v, err := strconv.ParseUint(trimmed, 16, 8)
	if err != nil {
		return 0, &ValidationError{Field: "constant", Reason: fmt.Sprintf("%q is not a hex byte", s), Err: err}
	}
	return byte(v), nil
}

// ConstantFromInt converts an integer constant, rejecting values outside 0-255.
func ConstantFromInt(v int) (byte, error) {
	if v < 0 || v > 255 {
		return 0, &ValidationError{Field: "constant", Reason: fmt.Sprintf("%d is outside 0..255", v)}
	}
	return byte(v), nil
}

// Lookup returns S[x].
func (s SBox) Lookup(x byte) byte {
	return s[x]
}

// Inverse returns the inverse table of a bijective S-box.
func (s SBox) Inverse() (SBox, error) {
	if !IsBijective(s) {
		return SBox{}, &ValidationError{Field: "sbox", Reason: "only a bijective S-box has an inverse"}
	}
	var inv SBox
	for x, y := range s {
		inv[y] = byte(x)
	}
	return inv, nil
}

// Substitute maps every byte of data through the S-box.
func (s SBox) Substitute(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = s[b]
	}
	return out
}
