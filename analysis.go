package sbox

// Report is the full analysis of an S-box: the validity verdict, per-bit
// detail behind the balance and avalanche metrics, and the metrics snapshot.
type Report struct {
	Valid            bool               `json:"valid" yaml:"valid"`
	Message          string             `json:"message" yaml:"message"`
	SBox             []int              `json:"sbox" yaml:"sbox"`
	BitBalance       float64            `json:"bit_balance" yaml:"bit_balance"`
	BitBalancePerBit [8]int             `json:"bit_balance_per_bit" yaml:"bit_balance_per_bit"`
	Avalanche        map[string]float64 `json:"avalanche" yaml:"avalanche"`
	Metrics          MetricsReport      `json:"metrics" yaml:"metrics"`
}

// BitBalance counts, for each output bit position, how many of the 256
// outputs have that bit set.
func BitBalance(s SBox) [8]int {
	var counts [8]int
	for _, v := range s {
		for b := 0; b < 8; b++ {
			counts[b] += int(v>>uint(b)) & 1
		}
	}
	return counts
}

// Avalanche returns the average number of output bits that change when input
// bit `bit` is flipped, over all 256 inputs. bit must be in 0..7.
func Avalanche(s SBox, bit int) float64 {
	return float64(flipWeight(s, bit)) / Size
}

// Analyze computes the full Report for s.
func Analyze(s SBox) Report {
	valid, msg := Describe(s)
	balance := BitBalance(s)
	sum := 0
	for _, c := range balance {
		sum += c
	}
	avalanche := make(map[string]float64, 8)
	for b := 0; b < 8; b++ {
		avalanche[avalancheKey(b)] = Avalanche(s, b)
	}
	return Report{
		Valid:            valid,
		Message:          msg,
		SBox:             s.Ints(),
		BitBalance:       float64(sum) / 8,
		BitBalancePerBit: balance,
		Avalanche:        avalanche,
		Metrics:          Evaluate(s),
	}
}

func avalancheKey(bit int) string {
	return "bit_" + string(rune('0'+bit))
}
