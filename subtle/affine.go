package subtle

import (
	"errors"
	"fmt"
	"math/bits"
)

// Dimension is the size of the bit vectors handled by affine maps.
const Dimension = 8

// AESConstant is the affine constant of the AES S-box.
const AESConstant byte = 0x63

var (
	// ErrMatrixShape is returned when a matrix does not have 8 rows of 8 columns.
	ErrMatrixShape = errors.New("matrix must be 8x8")
	// ErrMatrixEntry is returned when a matrix entry is not 0 or 1.
	ErrMatrixEntry = errors.New("matrix entries must be 0 or 1")
)

// Matrix is an 8x8 matrix over GF(2). Entry [i][j] multiplies input bit j
// into output bit i, where bit k of a byte is (b >> k) & 1.
type Matrix [Dimension][Dimension]uint8

// Identity returns the 8x8 identity matrix.
func Identity() Matrix {
	var m Matrix
	for i := 0; i < Dimension; i++ {
		m[i][i] = 1
	}
	return m
}

// AESMatrix returns the affine matrix of the AES S-box (FIPS-197 5.1.1).
// Row i has ones in columns i, i+4, i+5, i+6 and i+7 (mod 8).
func AESMatrix() Matrix {
	var m Matrix
	for i := 0; i < Dimension; i++ {
		for _, off := range []int{0, 4, 5, 6, 7} {
			m[i][(i+off)%Dimension] = 1
		}
	}
	return m
}

// MatrixFromRows converts a row-major [][]int of {0,1} into a Matrix.
func MatrixFromRows(rows [][]int) (Matrix, error) {
	var m Matrix
	if len(rows) != Dimension {
		return m, fmt.Errorf("%w: got %d rows", ErrMatrixShape, len(rows))
	}
	for i, row := range rows {
		if len(row) != Dimension {
			return m, fmt.Errorf("%w: row %d has %d columns", ErrMatrixShape, i, len(row))
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return m, fmt.Errorf("%w: [%d][%d]=%d", ErrMatrixEntry, i, j, v)
			}
			m[i][j] = uint8(v)
		}
	}
	return m, nil
}

// Rows returns the matrix as row-major [][]int, the external exchange form.
func (m Matrix) Rows() [][]int {
	rows := make([][]int, Dimension)
	for i := range m {
		rows[i] = make([]int, Dimension)
		for j := range m[i] {
			rows[i][j] = int(m[i][j])
		}
	}
	return rows
}

// rowMasks packs each row into a byte with bit j holding column j.
func (m Matrix) rowMasks() [Dimension]byte {
	var masks [Dimension]byte
	for i := range m {
		for j := range m[i] {
			if m[i][j]&1 == 1 {
				masks[i] |= 1 << uint(j)
			}
		}
	}
	return masks
}

// Rank returns the rank of the matrix over GF(2), using Gaussian elimination.
func (m Matrix) Rank() int {
	rows := m.rowMasks()
	rank := 0
	for col := 0; col < Dimension && rank < Dimension; col++ {
		bit := byte(1) << uint(col)
		pivot := -1
		for r := rank; r < Dimension; r++ {
			if rows[r]&bit != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			continue
		}
		rows[rank], rows[pivot] = rows[pivot], rows[rank]
		for r := 0; r < Dimension; r++ {
			if r != rank && rows[r]&bit != 0 {
				rows[r] ^= rows[rank]
			}
		}
		rank++
	}
	return rank
}

// Determinant returns the determinant of the matrix mod 2.
func (m Matrix) Determinant() uint8 {
	if m.Rank() == Dimension {
		return 1
	}
	return 0
}

// IsInvertible reports whether the matrix is invertible over GF(2).
func (m Matrix) IsInvertible() bool {
	return m.Determinant() == 1
}

// AffineMap is the map x -> M*x + c over GF(2)^8. The zero value is not useful;
// build one with NewAffineMap. AffineMap is immutable once constructed.
type AffineMap struct {
	matrix   Matrix
	constant byte
	masks    [Dimension]byte
}

// NewAffineMap builds an affine map from a matrix and constant vector.
// Invertibility is not enforced here; callers that need a permutation should
// check Matrix.IsInvertible first.
func NewAffineMap(m Matrix, constant byte) AffineMap {
	return AffineMap{
		matrix:   m,
		constant: constant,
		masks:    m.rowMasks(),
	}
}

// AESAffineMap returns the affine map used by the AES S-box.
func AESAffineMap() AffineMap {
	return NewAffineMap(AESMatrix(), AESConstant)
}

// Matrix returns a copy of the linear part.
func (a AffineMap) Matrix() Matrix {
	return a.matrix
}

// Constant returns the constant vector as a byte.
func (a AffineMap) Constant() byte {
	return a.constant
}

// Apply computes M*x + c for the byte x.
func (a AffineMap) Apply(x byte) byte {
	var out byte
	for i := 0; i < Dimension; i++ {
		// Each output bit is the parity of row_i AND x.
		bit := byte(bits.OnesCount8(a.masks[i]&x) & 1)
		out |= bit << uint(i)
	}
	return out ^ a.constant
}

// ConstantBits returns c as an LSB-first bit vector.
func ConstantBits(c byte) [Dimension]int {
	var v [Dimension]int
	for i := 0; i < Dimension; i++ {
		v[i] = int(c>>uint(i)) & 1
	}
	return v
}

// ConstantFromBits packs an LSB-first bit vector into a byte.
func ConstantFromBits(v []int) (byte, error) {
	if len(v) != Dimension {
		return 0, fmt.Errorf("%w: constant vector has %d entries", ErrMatrixShape, len(v))
	}
	var c byte
	for i, b := range v {
		if b != 0 && b != 1 {
			return 0, fmt.Errorf("%w: constant[%d]=%d", ErrMatrixEntry, i, b)
		}
		c |= byte(b) << uint(i)
	}
	return c, nil
}
