package sbox

import (
	"math"
	"testing"

	"github.com/vdparikh/sbox/subtle"
)

func identitySBox() SBox {
	var s SBox
	for i := range s {
		s[i] = byte(i)
	}
	return s
}

func TestCanonicalMetrics(t *testing.T) {
	fx := loadCanonicalFixture(t)
	s := Generate()
	report := Evaluate(s)

	if report.Bijective != fx.Metrics.Bijective {
		t.Errorf("Bijective = %v, want %v", report.Bijective, fx.Metrics.Bijective)
	}
	if report.Balanced != fx.Metrics.Balanced {
		t.Errorf("Balanced = %v, want %v", report.Balanced, fx.Metrics.Balanced)
	}
	if report.SACPass != fx.Metrics.SAC {
		t.Errorf("SACPass = %v, want %v", report.SACPass, fx.Metrics.SAC)
	}
	if math.Abs(report.SACValue-fx.Metrics.SACValue) > 1e-12 {
		t.Errorf("SACValue = %v, want %v", report.SACValue, fx.Metrics.SACValue)
	}
	if report.DifferentialUniformity != fx.Metrics.DifferentialUniformity {
		t.Errorf("DifferentialUniformity = %d, want %d", report.DifferentialUniformity, fx.Metrics.DifferentialUniformity)
	}
	if report.Nonlinearity != fx.Metrics.Nonlinearity {
		t.Errorf("Nonlinearity = %d, want %d", report.Nonlinearity, fx.Metrics.Nonlinearity)
	}
	if exact := NonlinearityExact(s); exact != 112 {
		t.Errorf("NonlinearityExact = %d, want 112", exact)
	}
}

func TestMetricsOnDegenerateTables(t *testing.T) {
	var zero SBox

	tests := []struct {
		name      string
		sbox      SBox
		bijective bool
		balanced  bool
		sac       bool
		sacValue  float64
		du        int
		nl        int
	}{
		// Flipping input bit i flips exactly output bit i.
		{"identity", identitySBox(), true, true, false, 0.125, 256, 0},
		// A constant table never changes, and its parity function is constant,
		// which the sampled masks all see as maximally far from linear.
		{"constant zero", zero, false, false, false, 0, 256, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBijective(tt.sbox); got != tt.bijective {
				t.Errorf("IsBijective = %v, want %v", got, tt.bijective)
			}
			if got := IsBalanced(tt.sbox); got != tt.balanced {
				t.Errorf("IsBalanced = %v, want %v", got, tt.balanced)
			}
			if got := CheckSAC(tt.sbox); got != tt.sac {
				t.Errorf("CheckSAC = %v, want %v", got, tt.sac)
			}
			if got := SACValue(tt.sbox); math.Abs(got-tt.sacValue) > 1e-12 {
				t.Errorf("SACValue = %v, want %v", got, tt.sacValue)
			}
			if got := DifferentialUniformity(tt.sbox); got != tt.du {
				t.Errorf("DifferentialUniformity = %d, want %d", got, tt.du)
			}
			if got := Nonlinearity(tt.sbox); got != tt.nl {
				t.Errorf("Nonlinearity = %d, want %d", got, tt.nl)
			}
		})
	}
}

func TestCheckSACRange(t *testing.T) {
	s := identitySBox()
	// Every per-bit average is exactly 1.0 for the identity table.
	if !CheckSACRange(s, 1.0, 1.0) {
		t.Error("expected identity to pass SAC range [1, 1]")
	}
	if CheckSACRange(s, 1.5, 8) {
		t.Error("expected identity to fail SAC range [1.5, 8]")
	}
}

func TestIsBalancedTolerance(t *testing.T) {
	s := identitySBox()
	// Swap bit-0 parity for a handful of entries to push bit 0 off 128.
	for i := 0; i < 8; i++ {
		s[2*i] |= 1
	}
	if got := BitBalance(s)[0]; got != 136 {
		t.Fatalf("bit 0 count = %d, want 136", got)
	}
	if !IsBalanced(s) {
		t.Error("136 is inside the tolerance and should be balanced")
	}
	s[16] |= 1
	if IsBalanced(s) {
		t.Error("137 is outside the tolerance and should not be balanced")
	}
}

func TestBijectiveAffineMapsYieldPermutations(t *testing.T) {
	rng := NewSeededRand(7)
	e := NewExplorer(rng)
	for i := 0; i < 20; i++ {
		m, fallback := e.RandomInvertibleMatrix()
		if fallback {
			t.Logf("draw %d fell back to identity", i)
		}
		s := GenerateFromAffine(subtle.NewAffineMap(m, e.RandomConstant()))
		if !IsBijective(s) {
			t.Fatalf("draw %d: invertible matrix produced a non-bijective S-box", i)
		}
	}
}

func TestSingularMatrixIsNotBijective(t *testing.T) {
	m := subtle.Identity()
	m[7] = m[0]
	s := GenerateFromAffine(subtle.NewAffineMap(m, 0))
	if IsBijective(s) {
		t.Error("singular matrix should not produce a permutation")
	}
}
