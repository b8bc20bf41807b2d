package sbox

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// GridSide is the side of the conceptual 16x16 row-major S-box layout.
const GridSide = 16

// FromInts converts the external flat representation, exactly 256 integers in
// 0..255, into an SBox. Duplicates are allowed here; bijectivity is a metric.
func FromInts(values []int) (SBox, error) {
	var s SBox
	if len(values) != Size {
		return s, &ValidationError{Field: "sbox", Reason: fmt.Sprintf("expected %d values, got %d", Size, len(values))}
	}
	for i, v := range values {
		if v < 0 || v > 255 {
			return s, &ValidationError{Field: "sbox", Reason: fmt.Sprintf("value %d at index %d is outside 0..255", v, i)}
		}
		s[i] = byte(v)
	}
	return s, nil
}

// FromBytes copies a 256-byte slice into an SBox.
func FromBytes(b []byte) (SBox, error) {
	var s SBox
	if len(b) != Size {
		return s, &ValidationError{Field: "sbox", Reason: fmt.Sprintf("expected %d bytes, got %d", Size, len(b))}
	}
	copy(s[:], b)
	return s, nil
}

// Ints returns the flat external representation.
func (s SBox) Ints() []int {
	out := make([]int, Size)
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

// Grid returns the S-box as a 16x16 row-major table; row r holds inputs 16r..16r+15.
func (s SBox) Grid() [GridSide][GridSide]byte {
	var g [GridSide][GridSide]byte
	for i, v := range s {
		g[i/GridSide][i%GridSide] = v
	}
	return g
}

// FromGrid flattens rows of a 16x16 table, row-major.
func FromGrid(rows [][]int) (SBox, error) {
	if len(rows) != GridSide {
		return SBox{}, &ValidationError{Field: "sbox", Reason: fmt.Sprintf("expected %d rows, got %d", GridSide, len(rows))}
	}
	flat := make([]int, 0, Size)
	for r, row := range rows {
		if len(row) != GridSide {
			return SBox{}, &ValidationError{Field: "sbox", Reason: fmt.Sprintf("row %d has %d columns, expected %d", r, len(row), GridSide)}
		}
		flat = append(flat, row...)
	}
	return FromInts(flat)
}

// Hex returns the table as 512 lowercase hex characters.
func (s SBox) Hex() string {
	return hex.EncodeToString(s[:])
}

// ParseHex reads a table written as 512 hex characters; whitespace is ignored.
func ParseHex(text string) (SBox, error) {
	compact := strings.Join(strings.Fields(text), "")
	raw, err := hex.DecodeString(compact)
	if err != nil {
		return SBox{}, &ValidationError{Field: "sbox", Reason: "not valid hex", Err: err}
	}
	return FromBytes(raw)
}

// Describe returns a one-line verdict for the external representation:
// valid and bijective, or how many duplicate values were found.
func Describe(s SBox) (bool, string) {
	var seen [Size]bool
	distinct := 0
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			distinct++
		}
	}
	if distinct != Size {
		return false, fmt.Sprintf("S-box is not bijective: %d duplicate values", Size-distinct)
	}
	return true, "S-box is valid and bijective"
}

// String renders the 16x16 layout in hex.
func (s SBox) String() string {
	var b strings.Builder
	for r, row := range s.Grid() {
		for c, v := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02x", v)
		}
		if r < GridSide-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
