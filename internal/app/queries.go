package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/flow"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/ranking"
	"github.com/okian/talentflow/internal/domain/signal"
	"github.com/okian/talentflow/internal/domain/types"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

// algorithm resolves a request name, falling back to the configured default.
func (s *Service) algorithm(name string) (ranking.Algorithm, error) {
	if name == "" {
		return s.defaultAlgorithm, nil
	}
	return ranking.ParseAlgorithm(name)
}

// RunRanking scores every company with the named algorithm over w and stores
// the result as the latest snapshot of that algorithm. A run that hits the
// iteration cap is stored too and carries its ConvergenceWarning.
func (s *Service) RunRanking(ctx context.Context, algorithm string, w model.Window) (repository.SnapshotInfo, error) {
	alg, err := s.algorithm(algorithm)
	if err != nil {
		return repository.SnapshotInfo{}, err
	}
	if !w.Valid() {
		return repository.SnapshotInfo{}, model.ErrInvalidWindow
	}
	ranker, err := ranking.New(alg, s.rankingOpts...)
	if err != nil {
		return repository.SnapshotInfo{}, err
	}

	ctx, span := s.tracer.Start(ctx, "service.RunRanking", trace.WithAttributes(attribute.String("algorithm", string(alg))))
	defer span.End()
	start := time.Now()

	res, err := ranker.Rank(ctx, s.graph, w)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ranking failed")
		metrics.RecordErrorByComponent("ranking", string(alg))
		return repository.SnapshotInfo{}, err
	}
	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordRankingRun(string(alg), ms, res.Iterations, res.Converged)

	info := s.snapshots.Put(ctx, res, w)
	s.rankingRuns.Add(1)

	span.SetAttributes(
		attribute.Int("companies", res.Len()),
		attribute.Int("iterations", res.Iterations),
		attribute.Bool("converged", res.Converged),
	)
	if res.Warning != nil {
		s.logger.Warn(ctx, "ranking did not converge",
			logger.String("algorithm", string(alg)),
			logger.Int("iterations", res.Iterations),
			logger.Float64("delta", res.Delta),
		)
	}
	s.logger.Info(ctx, "ranking snapshot stored",
		logger.String("algorithm", string(alg)),
		logger.Int("companies", res.Len()),
		logger.Int("iterations", res.Iterations),
		logger.Float64("latency_ms", ms),
	)
	return info, nil
}

// Rankings returns the top limit entries of the latest snapshot. limit is
// capped at the configured maximum; a non-positive limit is invalid.
func (s *Service) Rankings(ctx context.Context, algorithm string, limit int) ([]types.Entry, repository.SnapshotInfo, error) {
	alg, err := s.algorithm(algorithm)
	if err != nil {
		return nil, repository.SnapshotInfo{}, err
	}
	if limit > s.maxRankingLimit {
		limit = s.maxRankingLimit
	}
	info, err := s.snapshots.Info(ctx, alg)
	if err != nil {
		return nil, repository.SnapshotInfo{}, err
	}
	entries, err := s.snapshots.TopN(ctx, alg, limit)
	if err != nil {
		return nil, repository.SnapshotInfo{}, err
	}
	return entries, info, nil
}

// Rank returns one company's entry in the latest snapshot.
func (s *Service) Rank(ctx context.Context, algorithm, companyURN string) (types.Entry, error) {
	alg, err := s.algorithm(algorithm)
	if err != nil {
		return types.Entry{}, err
	}
	return s.snapshots.Rank(ctx, alg, companyURN)
}

// Flow returns flow metrics for company over w. A nil headcount is read from
// the graph store as the number of current employees.
func (s *Service) Flow(ctx context.Context, companyURN string, w model.Window, headcount *int) (flow.Metrics, error) {
	metrics.RecordFlowQuery()
	if !w.Valid() {
		return flow.Metrics{}, model.ErrInvalidWindow
	}
	hc, err := s.headcount(ctx, companyURN, headcount)
	if err != nil {
		return flow.Metrics{}, err
	}

	var m flow.Metrics
	key := fmt.Sprintf("flow:%d:%s:%s:%d", s.generation.Load(), companyURN, windowKey(w), hc)
	if s.cached(ctx, key, &m) {
		return m, nil
	}
	m, err = s.flows.Flow(ctx, companyURN, w, hc)
	if err != nil {
		return flow.Metrics{}, err
	}
	s.store(ctx, key, m)
	return m, nil
}

// Signal blends the company's PageRank percentile with its talent momentum over w.
func (s *Service) Signal(ctx context.Context, companyURN string, w model.Window, headcount *int) (signal.Signal, error) {
	metrics.RecordSignalQuery()
	if !w.Valid() {
		return signal.Signal{}, model.ErrInvalidWindow
	}
	hc, err := s.headcount(ctx, companyURN, headcount)
	if err != nil {
		return signal.Signal{}, err
	}

	var sig signal.Signal
	key := fmt.Sprintf("signal:%d:%d:%s:%s:%d", s.generation.Load(), s.rankingRuns.Load(), companyURN, windowKey(w), hc)
	if s.cached(ctx, key, &sig) {
		return sig, nil
	}

	entries, err := s.snapshots.All(ctx, ranking.PageRank)
	if err != nil && !errors.Is(err, repository.ErrNoSnapshot) {
		return signal.Signal{}, err
	}
	m, err := s.flows.Flow(ctx, companyURN, w, hc)
	if err != nil {
		return signal.Signal{}, err
	}
	sig = s.policy.Compute(companyURN, entries, m)
	s.store(ctx, key, sig)
	return sig, nil
}

// Projection exports the company projection over w.
func (s *Service) Projection(ctx context.Context, w model.Window) (types.Projection, error) {
	if !w.Valid() {
		return types.Projection{}, model.ErrInvalidWindow
	}
	p, err := s.graph.Projection(ctx, w)
	if err != nil {
		return types.Projection{}, model.NewGraphQueryError("load projection", err)
	}
	return p.Export(), nil
}

func (s *Service) headcount(ctx context.Context, companyURN string, given *int) (int, error) {
	if given != nil {
		return max(*given, 0), nil
	}
	n, err := s.graph.Headcount(ctx, companyURN)
	if err != nil {
		return 0, model.NewGraphQueryError("headcount", err)
	}
	return n, nil
}

func (s *Service) cached(ctx context.Context, key string, dst any) bool {
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed", logger.String("key", key), logger.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.logger.Warn(ctx, "cache entry unreadable", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (s *Service) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func windowKey(w model.Window) string {
	var a, b int64
	if !w.Start.IsZero() {
		a = w.Start.Unix()
	}
	if !w.End.IsZero() {
		b = w.End.Unix()
	}
	return fmt.Sprintf("%d-%d", a, b)
}

// Stats is the service summary returned by /stats.
type Stats struct {
	Started       bool                  `json:"started"`
	UptimeSeconds float64               `json:"uptime_seconds"`
	Workers       int                   `json:"workers"`
	QueueLength   int                   `json:"queue_length"`
	QueueCapacity int                   `json:"queue_capacity"`
	Jobs          int                   `json:"jobs"`
	DedupeSize    int64                 `json:"dedupe_size"`
	Generation    uint64                `json:"generation"`
	Graph         repository.GraphStats `json:"graph"`
	Events        int64                 `json:"events"`
	Rankings      map[string]int        `json:"rankings"`
	Goroutines    int                   `json:"goroutines"`
}

// Stats collects counters from every component and refreshes the gauges.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	st := Stats{
		Started:    s.started,
		Workers:    s.workerCount,
		Jobs:       s.jobs.len(),
		DedupeSize: s.deduper.Size(),
		Generation: s.generation.Load(),
		Rankings:   map[string]int{},
		Goroutines: runtime.NumGoroutine(),
	}
	if s.started {
		st.UptimeSeconds = time.Since(s.startedAt).Seconds()
		st.QueueLength = s.queue.Len(ctx)
		st.QueueCapacity = s.queue.Capacity()
	}
	s.mu.RUnlock()

	g, err := s.graph.Stats(ctx)
	if err != nil {
		return Stats{}, model.NewGraphQueryError("graph stats", err)
	}
	st.Graph = g
	if st.Events, err = s.events.Count(ctx); err != nil {
		return Stats{}, model.NewGraphQueryError("count events", err)
	}
	for _, alg := range []ranking.Algorithm{ranking.PageRank, ranking.BiRank} {
		st.Rankings[string(alg)] = s.snapshots.Count(ctx, alg)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(st.Goroutines)
	metrics.UpdateGraphSize(g.Companies, g.Employees, g.Transitions)
	return st, nil
}
