package sbox

import (
	"fmt"

	"github.com/vdparikh/sbox/subtle"
)

// CandidateRecord is the exchange form of a Candidate: matrix as 8 rows of
// {0,1}, constant as an LSB-first bit vector plus hex, S-box as 256 integers.
type CandidateRecord struct {
	ID          int           `json:"id" yaml:"id"`
	Matrix      [][]int       `json:"matrix" yaml:"matrix"`
	Constant    []int         `json:"constant" yaml:"constant"`
	ConstantHex string        `json:"constant_hex" yaml:"constant_hex"`
	SBox        []int         `json:"sbox,omitempty" yaml:"sbox,omitempty"`
	Metrics     MetricsReport `json:"metrics" yaml:"metrics"`
	Fallback    bool          `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Summary is the exchange form of a ranked exploration.
type Summary struct {
	TotalTested int               `json:"total_tested" yaml:"total_tested"`
	TopN        int               `json:"top_n" yaml:"top_n"`
	Candidates  []CandidateRecord `json:"candidates" yaml:"candidates"`
}

// Record converts c to its exchange form. withSBox controls whether the full
// 256-entry table is included.
func (c Candidate) Record(withSBox bool) CandidateRecord {
	bits := subtle.ConstantBits(c.Map.Constant())
	rec := CandidateRecord{
		ID:          c.ID,
		Matrix:      c.Map.Matrix().Rows(),
		Constant:    bits[:],
		ConstantHex: fmt.Sprintf("%02x", c.Map.Constant()),
		Metrics:     c.Metrics,
		Fallback:    c.Fallback,
	}
	if withSBox {
		rec.SBox = c.SBox.Ints()
	}
	return rec
}

// Summarize builds a Summary from the first top entries of ranked results.
func Summarize(results []Candidate, top int, withSBox bool) Summary {
	selected := Top(results, top)
	records := make([]CandidateRecord, len(selected))
	for i, c := range selected {
		records[i] = c.Record(withSBox)
	}
	return Summary{TotalTested: len(results), TopN: len(selected), Candidates: records}
}

// CandidateFromRecord rebuilds a Candidate from its exchange form. The S-box and
// metrics are always recomputed; any values carried in the record are ignored.
// When both are present, ConstantHex takes precedence over the bit vector.
func CandidateFromRecord(rec CandidateRecord) (Candidate, error) {
	m, err := subtle.MatrixFromRows(rec.Matrix)
	if err != nil {
		return Candidate{}, newValidationError("matrix", err)
	}
	var c byte
	switch {
	case rec.ConstantHex != "":
		if c, err = ParseConstant(rec.ConstantHex); err != nil {
			return Candidate{}, err
		}
	case rec.Constant != nil:
		if c, err = subtle.ConstantFromBits(rec.Constant); err != nil {
			return Candidate{}, newValidationError("constant", err)
		}
	}
	a := subtle.NewAffineMap(m, c)
	s := GenerateFromAffine(a)
	return Candidate{ID: rec.ID, Map: a, SBox: s, Metrics: Evaluate(s), Fallback: rec.Fallback}, nil
}
