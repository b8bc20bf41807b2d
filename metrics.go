package sbox

import "math/bits"

const (
	// BalanceTolerance is the allowed distance of each output bit count from 128.
	BalanceTolerance = 8

	// DefaultSACLower and DefaultSACUpper bound the average number of output
	// bits that flip per single input-bit flip (ideal 4 of 8).
	DefaultSACLower = 3.0
	DefaultSACUpper = 5.0
)

// SampleMasks is the fixed set of 32 linear masks evaluated by Nonlinearity.
// Changing it changes reported values and therefore candidate rankings.
var SampleMasks = [32]byte{
	1, 2, 4, 8, 16, 32, 64, 128,
	3, 5, 9, 17, 33, 65, 129, 255,
	7, 15, 31, 63, 127, 85, 170, 204,
	153, 102, 51, 105, 210, 45, 90, 180,
}

// MetricsReport is an immutable snapshot of the soundness metrics of an S-box.
type MetricsReport struct {
	Bijective              bool    `json:"bijective" yaml:"bijective"`
	Balanced               bool    `json:"balanced" yaml:"balanced"`
	SACPass                bool    `json:"sac" yaml:"sac"`
	SACValue               float64 `json:"sac_value" yaml:"sac_value"`
	DifferentialUniformity int     `json:"differential_uniformity" yaml:"differential_uniformity"`
	Nonlinearity           int     `json:"nonlinearity" yaml:"nonlinearity"`
}

// Evaluate computes every metric of s.
func Evaluate(s SBox) MetricsReport {
	return MetricsReport{
		Bijective:              IsBijective(s),
		Balanced:               IsBalanced(s),
		SACPass:                CheckSAC(s),
		SACValue:               SACValue(s),
		DifferentialUniformity: DifferentialUniformity(s),
		Nonlinearity:           Nonlinearity(s),
	}
}

// IsBijective reports whether s is a permutation of 0..255.
func IsBijective(s SBox) bool {
	var seen [Size]bool
	for _, v := range s {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// IsBalanced reports whether every output bit is set for 128±8 of the inputs.
func IsBalanced(s SBox) bool {
	for _, count := range BitBalance(s) {
		if count < Size/2-BalanceTolerance || count > Size/2+BalanceTolerance {
			return false
		}
	}
	return true
}

// CheckSAC applies the relaxed strict avalanche criterion with the default
// bounds [3.0, 5.0].
func CheckSAC(s SBox) bool {
	return CheckSACRange(s, DefaultSACLower, DefaultSACUpper)
}

// CheckSACRange fails if, for any input bit, the average Hamming weight of the
// output difference falls outside [lower, upper].
func CheckSACRange(s SBox, lower, upper float64) bool {
	for i := 0; i < 8; i++ {
		avg := Avalanche(s, i)
		if avg < lower || avg > upper {
			return false
		}
	}
	return true
}

// SACValue returns the mean proportion of output bits changed by a single
// input-bit flip, averaged over the 8 input bits. The ideal is about 0.5.
func SACValue(s SBox) float64 {
	total := 0.0
	for i := 0; i < 8; i++ {
		total += float64(flipWeight(s, i)) / float64(Size*8)
	}
	return total / 8
}

// flipWeight sums the Hamming weight of S[x] ^ S[x ^ (1<<bit)] over all x.
func flipWeight(s SBox, bit int) int {
	total := 0
	for x := 0; x < Size; x++ {
		total += bits.OnesCount8(s[x] ^ s[x^(1<<uint(bit))])
	}
	return total
}

// DifferentialUniformity returns the largest entry of the difference
// distribution table over non-zero input differences. AES scores 4.
func DifferentialUniformity(s SBox) int {
	best := 0
	var counts [Size]int
	for dx := 1; dx < Size; dx++ {
		counts = [Size]int{}
		for x := 0; x < Size; x++ {
			dy := s[x] ^ s[x^dx]
			counts[dy]++
		}
		for _, c := range counts {
			if c > best {
				best = c
			}
		}
	}
	return best
}

// Nonlinearity approximates the Walsh-Hadamard nonlinearity of the parity
// component of s using only the 32 masks in SampleMasks. It can overstate the
// true value when the weakest mask lies outside the sample, so treat it as a
// ranking heuristic rather than a bound.
func Nonlinearity(s SBox) int {
	return nonlinearityOver(s, SampleMasks[:])
}

// NonlinearityExact evaluates all 255 non-zero masks. It is not used for
// ranking because it disagrees with Nonlinearity on non-canonical S-boxes.
func NonlinearityExact(s SBox) int {
	masks := make([]byte, 0, Size-1)
	for m := 1; m < Size; m++ {
		masks = append(masks, byte(m))
	}
	return nonlinearityOver(s, masks)
}

func nonlinearityOver(s SBox, masks []byte) int {
	minNL := Size / 2
	for _, mask := range masks {
		sum := 0
		for x := 0; x < Size; x++ {
			fx := bits.OnesCount8(s[x]) & 1
			ux := bits.OnesCount8(byte(x)&mask) & 1
			if fx^ux == 0 {
				sum++
			} else {
				sum--
			}
		}
		if sum < 0 {
			sum = -sum
		}
		if nl := (Size - sum) / 2; nl < minNL {
			minNL = nl
		}
	}
	return minNL
}
