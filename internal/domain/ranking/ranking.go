// Package ranking scores companies over the talent-flow graph.
//
// Two algorithms implement the Ranker strategy:
//   - PageRank over the company projection. Scores sum to 1.
//   - BiRank over the Employee-Company graph. Scores are max-normalized into [0,1]
//     with the top company at 1.
//
// Both iterate until the L1 change of the score vector drops below Epsilon or
// MaxIterations is reached. A capped run still returns its scores with a
// ConvergenceWarning attached.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/types"
)

// Algorithm names a ranking strategy.
type Algorithm string

// Supported algorithms.
const (
	PageRank Algorithm = "pagerank"
	BiRank   Algorithm = "birank"
)

// Normalization states how scores of one run relate to each other.
type Normalization string

const (
	// NormalizationSum means scores sum to 1.
	NormalizationSum Normalization = "sum"
	// NormalizationMax means scores lie in [0,1] and the maximum is 1.
	NormalizationMax Normalization = "max"
)

// Defaults used when no option overrides them.
const (
	DefaultDamping       = 0.85
	DefaultEpsilon       = 1e-6
	DefaultMaxIterations = 100
)

// ParseAlgorithm maps a name to an Algorithm. Empty selects PageRank.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", PageRank:
		return PageRank, nil
	case BiRank:
		return BiRank, nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnknownRanking, name)
	}
}

// Config holds iteration parameters.
type Config struct {
	Damping       float64
	Epsilon       float64
	MaxIterations int
}

// Option applies a configuration option to Config.
type Option func(*Config)

// WithDamping sets the damping factor; values outside (0,1) are ignored.
func WithDamping(d float64) Option {
	return func(c *Config) {
		if d > 0 && d < 1 {
			c.Damping = d
		}
	}
}

// WithEpsilon sets the L1 convergence threshold.
func WithEpsilon(eps float64) Option {
	return func(c *Config) {
		if eps > 0 {
			c.Epsilon = eps
		}
	}
}

// WithMaxIterations caps the number of iterations.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

func newConfig(opts ...Option) Config {
	c := Config{Damping: DefaultDamping, Epsilon: DefaultEpsilon, MaxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ConvergenceWarning flags a run that hit the iteration cap before the
// threshold. It is informational; the scores are still returned.
type ConvergenceWarning struct {
	Algorithm  Algorithm `json:"algorithm"`
	Iterations int       `json:"iterations"`
	Delta      float64   `json:"delta"`
	Epsilon    float64   `json:"epsilon"`
}

func (w ConvergenceWarning) String() string {
	return fmt.Sprintf("%s did not converge after %d iterations (delta %.3g > epsilon %.3g)",
		w.Algorithm, w.Iterations, w.Delta, w.Epsilon)
}

// Result maps company urn to a non-negative score.
type Result struct {
	Algorithm     Algorithm           `json:"algorithm"`
	Normalization Normalization       `json:"normalization"`
	Scores        map[string]float64  `json:"scores"`
	Iterations    int                 `json:"iterations"`
	Converged     bool                `json:"converged"`
	Delta         float64             `json:"delta"`
	Warning       *ConvergenceWarning `json:"warning,omitempty"`
}

func newResult(alg Algorithm, norm Normalization) *Result {
	return &Result{Algorithm: alg, Normalization: norm, Scores: map[string]float64{}, Converged: true}
}

func (r *Result) finish(cfg Config, iterations int, delta float64, converged bool) {
	r.Iterations = iterations
	r.Delta = delta
	r.Converged = converged
	if !converged {
		r.Warning = &ConvergenceWarning{Algorithm: r.Algorithm, Iterations: iterations, Delta: delta, Epsilon: cfg.Epsilon}
	}
}

// Len returns the number of scored companies.
func (r *Result) Len() int { return len(r.Scores) }

// Ranked returns entries ordered by score descending, then urn ascending, ranked from 1.
func (r *Result) Ranked() []types.Entry {
	out := make([]types.Entry, 0, len(r.Scores))
	for urn, s := range r.Scores {
		out = append(out, types.Entry{CompanyURN: urn, Score: s})
	}
	SortEntries(out)
	return out
}

// SortEntries orders entries by score descending, then urn ascending, and assigns ranks.
func SortEntries(entries []types.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].CompanyURN < entries[j].CompanyURN
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// GraphReader is the read contract shared by every Ranker.
type GraphReader interface {
	Projection(ctx context.Context, w model.Window) (*graph.Projection, error)
	Bipartite(ctx context.Context, w model.Window) (*graph.Bipartite, error)
}

// Ranker computes a Result over the graph exposed by a GraphReader.
type Ranker interface {
	Algorithm() Algorithm
	Rank(ctx context.Context, r GraphReader, w model.Window) (*Result, error)
}

// New returns the Ranker for alg.
func New(alg Algorithm, opts ...Option) (Ranker, error) {
	cfg := newConfig(opts...)
	switch alg {
	case PageRank:
		return &pageRanker{cfg: cfg}, nil
	case BiRank:
		return &biRanker{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownRanking, alg)
	}
}

func l1(a, b []float64) float64 {
	var d float64
	for i := range a {
		x := a[i] - b[i]
		if x < 0 {
			x = -x
		}
		d += x
	}
	return d
}
