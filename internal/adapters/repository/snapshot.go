package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/ranking"
	"github.com/okian/talentflow/internal/domain/types"
	"github.com/okian/talentflow/pkg/metrics"
)

// Ordering: score DESC, then company urn ASC. "less" means ranks earlier, so an
// in-order traversal of the treap yields the ranking from best to worst and
// subtree sizes give a company's rank in O(log n).

// SnapshotInfo describes a stored ranking run.
type SnapshotInfo struct {
	Algorithm     ranking.Algorithm           `json:"algorithm"`
	Normalization ranking.Normalization       `json:"normalization"`
	Window        model.Window                `json:"window"`
	Companies     int                         `json:"companies"`
	Iterations    int                         `json:"iterations"`
	Converged     bool                        `json:"converged"`
	Delta         float64                     `json:"delta"`
	Warning       *ranking.ConvergenceWarning `json:"warning,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// snapshot is immutable once published.
type snapshot struct {
	info   SnapshotInfo
	root   *node
	scores map[string]float64
}

type node struct {
	urn   string
	score float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aURN) ranks before (bScore, bURN).
func less(aScore float64, aURN string, bScore float64, bURN string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aURN < bURN
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, urn string, score float64, prio uint64) *node {
	if n == nil {
		return &node{urn: urn, score: score, prio: prio, size: 1}
	}
	if less(score, urn, n.score, n.urn) {
		n.left = insert(n.left, urn, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, urn, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, types.Entry{Rank: len(*out) + 1, CompanyURN: n.urn, Score: n.score})
	}
	collectTopN(n.right, limit, out)
}

// position counts the nodes that rank before (score, urn).
func position(n *node, urn string, score float64) int {
	pos := 0
	for n != nil {
		switch {
		case n.urn == urn:
			return pos + nsize(n.left)
		case less(score, urn, n.score, n.urn):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return pos
}

// Snapshots keeps the latest ranking per algorithm.
type Snapshots struct {
	mu     sync.RWMutex
	latest map[ranking.Algorithm]*snapshot
	rng    *rand.Rand
}

// NewSnapshots creates an empty snapshot store.
func NewSnapshots() *Snapshots {
	return &Snapshots{
		latest: make(map[ranking.Algorithm]*snapshot),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Put replaces the snapshot for res.Algorithm.
func (s *Snapshots) Put(_ context.Context, res *ranking.Result, w model.Window) SnapshotInfo {
	start := time.Now()
	snap := &snapshot{
		info: SnapshotInfo{
			Algorithm:     res.Algorithm,
			Normalization: res.Normalization,
			Window:        w,
			Companies:     len(res.Scores),
			Iterations:    res.Iterations,
			Converged:     res.Converged,
			Delta:         res.Delta,
			Warning:       res.Warning,
			CreatedAt:     time.Now().UTC(),
		},
		scores: make(map[string]float64, len(res.Scores)),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for urn, score := range res.Scores {
		snap.scores[urn] = score
		snap.root = insert(snap.root, urn, score, s.rng.Uint64())
	}
	s.latest[res.Algorithm] = snap
	metrics.RecordStoreOperation("snapshots", "put", msSince(start), nil)
	return snap.info
}

func (s *Snapshots) get(alg ranking.Algorithm) (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.latest[alg]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Info returns the metadata of the latest run of alg.
func (s *Snapshots) Info(_ context.Context, alg ranking.Algorithm) (SnapshotInfo, error) {
	snap, err := s.get(alg)
	if err != nil {
		return SnapshotInfo{}, err
	}
	return snap.info, nil
}

// TopN returns the first n entries of the latest run of alg.
func (s *Snapshots) TopN(_ context.Context, alg ranking.Algorithm, n int) ([]types.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("snapshots", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap, err := s.get(alg)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, 0, min(n, len(snap.scores)))
	collectTopN(snap.root, n, &out)
	return out, nil
}

// All returns every entry of the latest run of alg in rank order.
func (s *Snapshots) All(ctx context.Context, alg ranking.Algorithm) ([]types.Entry, error) {
	snap, err := s.get(alg)
	if err != nil {
		return nil, err
	}
	if len(snap.scores) == 0 {
		return []types.Entry{}, nil
	}
	return s.TopN(ctx, alg, len(snap.scores))
}

// Rank returns the entry of one company in the latest run of alg.
func (s *Snapshots) Rank(_ context.Context, alg ranking.Algorithm, urn string) (types.Entry, error) {
	snap, err := s.get(alg)
	if err != nil {
		return types.Entry{}, err
	}
	score, ok := snap.scores[urn]
	if !ok {
		metrics.RecordErrorByComponent("snapshots", "not_found")
		return types.Entry{}, ErrCompanyAbsent
	}
	return types.Entry{Rank: position(snap.root, urn, score) + 1, CompanyURN: urn, Score: score}, nil
}

// Count returns the number of companies in the latest run of alg, 0 when none.
func (s *Snapshots) Count(_ context.Context, alg ranking.Algorithm) int {
	snap, err := s.get(alg)
	if err != nil {
		return 0
	}
	return len(snap.scores)
}
