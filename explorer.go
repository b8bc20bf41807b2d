package sbox

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vdparikh/sbox/subtle"
)

const (
	// MaxMatrixAttempts bounds the draws made by RandomInvertibleMatrix before it
	// falls back to the identity matrix.
	MaxMatrixAttempts = 100

	// MaxCandidates and MaxTop are the recommended request ceilings. Each
	// candidate costs O(256^2) for differential uniformity alone.
	MaxCandidates = 200
	MaxTop        = 50
)

// Candidate is one explored affine map together with its S-box and metrics.
type Candidate struct {
	ID      int
	Map     subtle.AffineMap
	SBox    SBox
	Metrics MetricsReport
	// Fallback is true when no invertible matrix was drawn within
	// MaxMatrixAttempts and the identity matrix was substituted.
	Fallback bool
}

// Explorer draws random invertible affine maps and ranks the resulting S-boxes.
//
// All randomness comes from the *rand.Rand passed to NewExplorer, so a seeded
// generator makes a whole exploration reproducible. An Explorer is not safe for
// concurrent use because it owns that generator; use one Explorer per goroutine.
type Explorer struct {
	rng     *rand.Rand
	workers int
	logger  logrus.FieldLogger
}

// ExplorerOption configures an Explorer.
type ExplorerOption func(*Explorer)

// WithWorkers sets how many goroutines score candidates. Values below 1 mean 1.
func WithWorkers(n int) ExplorerOption {
	return func(e *Explorer) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithLogger sets the logger used for fallback warnings and summaries.
func WithLogger(l logrus.FieldLogger) ExplorerOption {
	return func(e *Explorer) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExplorer creates an Explorer drawing from rng.
func NewExplorer(rng *rand.Rand, opts ...ExplorerOption) *Explorer {
	e := &Explorer{
		rng:     rng,
		workers: runtime.GOMAXPROCS(0),
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSeededRand returns a PCG generator seeded from seed.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSeed reads a seed from the operating system's CSPRNG.
func NewRandomSeed() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(cryptorand.Reader, buf[:]); err != nil {
		return 0, fmt.Errorf("failed to read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// RandomMatrix draws an 8x8 binary matrix with independent uniform entries.
func (e *Explorer) RandomMatrix() subtle.Matrix {
	var m subtle.Matrix
	word := e.rng.Uint64()
	for i := 0; i < subtle.Dimension; i++ {
		for j := 0; j < subtle.Dimension; j++ {
			m[i][j] = uint8(word>>uint(i*subtle.Dimension+j)) & 1
		}
	}
	return m
}

// RandomInvertibleMatrix draws matrices until one is invertible over GF(2).
//
// About 29% of uniform 8x8 binary matrices are invertible, so failing all
// MaxMatrixAttempts draws is astronomically unlikely. If it does happen the
// identity matrix is returned together with fallback=true; this is a
// deliberate last-resort substitution, not an error.
func (e *Explorer) RandomInvertibleMatrix() (m subtle.Matrix, fallback bool) {
	for attempt := 0; attempt < MaxMatrixAttempts; attempt++ {
		m = e.RandomMatrix()
		if m.IsInvertible() {
			return m, false
		}
	}
	return subtle.Identity(), true
}

// RandomConstant draws a uniform 8-bit constant vector.
func (e *Explorer) RandomConstant() byte {
	return byte(e.rng.Uint32())
}

// Explore evaluates n random affine candidates and returns them ranked by
// nonlinearity descending, then differential uniformity ascending. Candidates
// that tie on both keep their draw order.
//
// Random draws happen sequentially on the caller's goroutine before any
// scoring starts, so the worker count never affects the result.
func (e *Explorer) Explore(n int) ([]Candidate, error) {
	if n < 0 {
		return nil, &ValidationError{Field: "n_candidates", Reason: fmt.Sprintf("must not be negative, got %d", n)}
	}

	candidates := make([]Candidate, n)
	for i := 0; i < n; i++ {
		m, fallback := e.RandomInvertibleMatrix()
		c := e.RandomConstant()
		if fallback {
			e.logger.WithFields(logrus.Fields{
				"candidate": i,
				"attempts":  MaxMatrixAttempts,
			}).Warn("no invertible matrix drawn, substituting identity")
		}
		candidates[i] = Candidate{ID: i, Map: subtle.NewAffineMap(m, c), Fallback: fallback}
	}

	e.score(candidates)
	Rank(candidates)

	e.logger.WithFields(logrus.Fields{
		"candidates": n,
		"workers":    e.workers,
	}).Debug("affine exploration complete")
	return candidates, nil
}

// score fills SBox and Metrics for every candidate using the worker pool.
func (e *Explorer) score(candidates []Candidate) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := e.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s := GenerateFromAffine(candidates[i].Map)
				candidates[i].SBox = s
				candidates[i].Metrics = Evaluate(s)
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// Rank sorts candidates in place: nonlinearity descending, then differential
// uniformity ascending, then ID ascending.
func Rank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Metrics, candidates[j].Metrics
		if a.Nonlinearity != b.Nonlinearity {
			return a.Nonlinearity > b.Nonlinearity
		}
		if a.DifferentialUniformity != b.DifferentialUniformity {
			return a.DifferentialUniformity < b.DifferentialUniformity
		}
		return candidates[i].ID < candidates[j].ID
	})
}

// Top returns the first k ranked candidates. k <= 0 yields an empty slice and
// k beyond the list length yields the whole list.
func Top(results []Candidate, k int) []Candidate {
	if k <= 0 {
		return []Candidate{}
	}
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// ExploreAffineCandidates runs an exploration with a fresh generator. A nil seed
// draws one from the operating system; a non-nil seed makes the candidate list
// and its ranking reproducible.
func ExploreAffineCandidates(n int, seed *uint64, opts ...ExplorerOption) ([]Candidate, error) {
	var s uint64
	if seed != nil {
		s = *seed
	} else {
		var err error
		if s, err = NewRandomSeed(); err != nil {
			return nil, err
		}
	}
	return NewExplorer(NewSeededRand(s), opts...).Explore(n)
}

// ClampRequest bounds n and top by MaxCandidates and MaxTop.
func ClampRequest(n, top int) (int, int) {
	if n > MaxCandidates {
		n = MaxCandidates
	}
	if top > MaxTop {
		top = MaxTop
	}
	return n, top
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
