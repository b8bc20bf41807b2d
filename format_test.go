package sbox

import (
	"errors"
	"strings"
	"testing"
)

func TestFromIntsValidation(t *testing.T) {
	good := Generate().Ints()

	outOfRange := append([]int(nil), good...)
	outOfRange[10] = 256

	negative := append([]int(nil), good...)
	negative[0] = -1

	tests := []struct {
		name    string
		values  []int
		wantErr bool
	}{
		{"canonical", good, false},
		{"too short", good[:255], true},
		{"too long", append(append([]int(nil), good...), 0), true},
		{"out of range", outOfRange, true},
		{"negative", negative, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromInts(tt.values)
			if tt.wantErr {
				if !errors.Is(err, ErrStructural) {
					t.Fatalf("expected ErrStructural, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s != Generate() {
				t.Error("FromInts changed the table")
			}
		})
	}
}

func TestGridRoundTrip(t *testing.T) {
	s := Generate()
	g := s.Grid()
	if g[0][0] != 0x63 || g[15][15] != 0x16 || g[5][3] != s[0x53] {
		t.Fatalf("unexpected grid corners: %02x %02x %02x", g[0][0], g[15][15], g[5][3])
	}

	rows := make([][]int, GridSide)
	for r := range g {
		rows[r] = make([]int, GridSide)
		for c := range g[r] {
			rows[r][c] = int(g[r][c])
		}
	}
	back, err := FromGrid(rows)
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}
	if back != s {
		t.Error("grid round trip changed the table")
	}

	if _, err := FromGrid(rows[:15]); !errors.Is(err, ErrStructural) {
		t.Errorf("expected ErrStructural for 15 rows, got %v", err)
	}
}

func TestParseHexIgnoresWhitespace(t *testing.T) {
	s := Generate()
	spaced := strings.ReplaceAll(s.String(), "\n", "\n  ")
	got, err := ParseHex(spaced)
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if got != s {
		t.Error("ParseHex(String()) mismatch")
	}
	if _, err := ParseHex("zz"); !errors.Is(err, ErrStructural) {
		t.Errorf("expected ErrStructural, got %v", err)
	}
	if _, err := ParseHex("00ff"); !errors.Is(err, ErrStructural) {
		t.Errorf("expected ErrStructural for short table, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	ok, msg := Describe(Generate())
	if !ok || !strings.Contains(msg, "bijective") {
		t.Errorf("Describe(canonical) = %v, %q", ok, msg)
	}

	s := Generate()
	s[1] = s[0]
	s[2] = s[0]
	ok, msg = Describe(s)
	if ok {
		t.Fatal("expected duplicates to be reported")
	}
	if !strings.Contains(msg, "2 duplicate") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestAnalyzeCanonical(t *testing.T) {
	fx := loadCanonicalFixture(t)
	r := Analyze(Generate())

	if !r.Valid {
		t.Errorf("expected valid report, got %q", r.Message)
	}
	if r.BitBalance != 128 {
		t.Errorf("BitBalance = %v, want 128", r.BitBalance)
	}
	for b, want := range fx.BitBalance {
		if r.BitBalancePerBit[b] != want {
			t.Errorf("bit %d balance = %d, want %d", b, r.BitBalancePerBit[b], want)
		}
	}
	for b, want := range fx.Avalanche {
		key := avalancheKey(b)
		if got := r.Avalanche[key]; got != want {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
	if len(r.SBox) != Size {
		t.Errorf("report carries %d values", len(r.SBox))
	}
	if r.Metrics.DifferentialUniformity != 4 {
		t.Errorf("DifferentialUniformity = %d, want 4", r.Metrics.DifferentialUniformity)
	}
}
