package sbox

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vdparikh/sbox/subtle"
)

// canonicalFixture mirrors testdata/aes_sbox.json.
type canonicalFixture struct {
	Name       string    `json:"name"`
	MatrixRows [][]int   `json:"matrixRows"`
	Constant   string    `json:"constant"`
	SBox       string    `json:"sbox"`
	Metrics    struct {
		Bijective              bool    `json:"bijective"`
		Balanced               bool    `json:"balanced"`
		SAC                    bool    `json:"sac"`
		SACValue               float64 `json:"sacValue"`
		DifferentialUniformity int     `json:"differentialUniformity"`
		Nonlinearity           int     `json:"nonlinearity"`
	} `json:"metrics"`
	BitBalance []int     `json:"bitBalance"`
	Avalanche  []float64 `json:"avalanche"`
}

func loadCanonicalFixture(t *testing.T) *canonicalFixture {
	t.Helper()
	path := filepath.Join("testdata", "aes_sbox.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join("..", "testdata", "aes_sbox.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	var fx canonicalFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	return &fx
}

func TestGenerateMatchesFIPS197(t *testing.T) {
	fx := loadCanonicalFixture(t)
	want, err := ParseHex(fx.SBox)
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}

	got := Generate()
	if got != want {
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("S[0x%02x] = 0x%02x, want 0x%02x", i, got[i], want[i])
			}
		}
	}

	spot := map[byte]byte{0x00: 0x63, 0x01: 0x7c, 0x53: 0xed, 0xff: 0x16}
	for in, out := range spot {
		if got[in] != out {
			t.Errorf("S[0x%02x] = 0x%02x, want 0x%02x", in, got[in], out)
		}
	}
}

func TestGenerateFromMatrixReproducesCanonical(t *testing.T) {
	fx := loadCanonicalFixture(t)

	fromHex, err := GenerateFromMatrixHex(fx.MatrixRows, fx.Constant)
	if err != nil {
		t.Fatalf("GenerateFromMatrixHex: %v", err)
	}
	fromByte, err := GenerateFromMatrix(fx.MatrixRows, 0x63)
	if err != nil {
		t.Fatalf("GenerateFromMatrix: %v", err)
	}
	if fromHex != Generate() || fromByte != Generate() {
		t.Error("matrix-parametrized generation differs from Generate()")
	}
}

func TestGenerateFromMatrixValidation(t *testing.T) {
	rows := subtle.AESMatrix().Rows()

	tests := []struct {
		name     string
		rows     [][]int
		constant string
	}{
		{"seven rows", rows[:7], "63"},
		{"bad entry", [][]int{{2, 0, 0, 0, 0, 0, 0, 0}, rows[1], rows[2], rows[3], rows[4], rows[5], rows[6], rows[7]}, "63"},
		{"constant not hex", rows, "zz"},
		{"constant too wide", rows, "1ff"},
		{"empty constant", rows, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateFromMatrixHex(tt.rows, tt.constant)
			if !errors.Is(err, ErrStructural) {
				t.Fatalf("expected ErrStructural, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestParseConstant(t *testing.T) {
	tests := []struct {
		in   string
		want byte
	}{
		{"63", 0x63},
		{"0x63", 0x63},
		{"0XFF", 0xff},
		{" 0 ", 0x00},
	}
	for _, tt := range tests {
		got, err := ParseConstant(tt.in)
		if err != nil {
			t.Errorf("ParseConstant(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseConstant(%q) = 0x%02x, want 0x%02x", tt.in, got, tt.want)
		}
	}

	if _, err := ConstantFromInt(256); !errors.Is(err, ErrStructural) {
		t.Errorf("ConstantFromInt(256): expected ErrStructural, got %v", err)
	}
	if c, err := ConstantFromInt(99); err != nil || c != 0x63 {
		t.Errorf("ConstantFromInt(99) = 0x%02x, %v", c, err)
	}
}

func TestInverseAndSubstitute(t *testing.T) {
	s := Generate()
	inv, err := s.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	data := []byte("substitution boxes")
	if got := inv.Substitute(s.Substitute(data)); string(got) != string(data) {
		t.Errorf("inverse substitution mismatch: %q", got)
	}
	// Published inverse S-box entries
	if inv[0x63] != 0x00 || inv[0x00] != 0x52 {
		t.Errorf("unexpected inverse entries: inv[0x63]=0x%02x inv[0x00]=0x%02x", inv[0x63], inv[0x00])
	}

	var constant SBox
	if _, err := constant.Inverse(); !errors.Is(err, ErrStructural) {
		t.Errorf("expected ErrStructural for non-bijective inverse, got %v", err)
	}
}
