// Package service wires the domain to the stores and exposes the operations
// the HTTP API and the CLI call: ingestion, ranking runs, flow and signal
// queries, projection export and stats.
package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/talentflow/internal/adapters/cache"
	"github.com/okian/talentflow/internal/adapters/mq/publisher"
	"github.com/okian/talentflow/internal/adapters/mq/queue"
	"github.com/okian/talentflow/internal/adapters/mq/worker"
	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/dedupe"
	"github.com/okian/talentflow/internal/domain/flow"
	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/ranking"
	"github.com/okian/talentflow/internal/domain/seniority"
	"github.com/okian/talentflow/internal/domain/signal"
	"github.com/okian/talentflow/pkg/logger"
)

const (
	defaultQueueSize       = 10_000
	defaultDedupeSize      = 500_000
	defaultMaxRankingLimit = 100
	defaultCacheTTL        = time.Minute
	defaultJobHistory      = 10_000
	tracerName             = "github.com/okian/talentflow/internal/app"
)

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	graph     repository.GraphStore
	events    repository.EventStore
	snapshots *repository.Snapshots
	cache     cache.Cache
	publisher publisher.Publisher
	deduper   dedupe.Deduper
	builder   *graph.Builder
	flows     *flow.Aggregator
	queue     queue.Queue
	pool      *worker.Pool
	jobs      *jobRegistry

	seniority        *seniority.Table
	defaultAlgorithm ranking.Algorithm
	rankingOpts      []ranking.Option
	policy           signal.Policy

	workerCount     int
	queueSize       int
	dedupeSize      int
	maxRankingLimit int
	cacheTTL        time.Duration
	sweepInterval   time.Duration

	// generation changes whenever ingested data changes; rankingRuns whenever
	// a snapshot is replaced. Both are part of every cache key.
	generation  atomic.Uint64
	rankingRuns atomic.Uint64

	started   bool
	startedAt time.Time
	cancel    context.CancelFunc
	sweeping  sync.WaitGroup

	tracer trace.Tracer
	logger logger.Logger
}

// New constructs a Service. Stores default to in-memory implementations.
// The process logger must be initialized unless WithLogger is given.
func New(opts ...Option) *Service {
	s := &Service{
		snapshots:        repository.NewSnapshots(),
		defaultAlgorithm: ranking.PageRank,
		policy:           signal.DefaultPolicy(),
		workerCount:      runtime.NumCPU(),
		queueSize:        defaultQueueSize,
		dedupeSize:       defaultDedupeSize,
		maxRankingLimit:  defaultMaxRankingLimit,
		cacheTTL:         defaultCacheTTL,
		jobs:             newJobRegistry(defaultJobHistory),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.graph == nil {
		s.graph = repository.NewMemoryGraphStore()
	}
	if s.events == nil {
		s.events = repository.NewMemoryEventStore()
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	if s.publisher == nil {
		s.publisher = publisher.Noop{}
	}
	if s.seniority == nil {
		s.seniority = seniority.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.builder = graph.NewBuilder(graph.WithSeniority(s.seniority))
	s.flows = flow.NewAggregator(s.events)
	return s
}

// Start creates the ingest queue and the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.queue = q

	// Workers outlive the request that started the service.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = worker.NewPool(s.workerCount, q, worker.ProcessorFunc(s.Process))
	s.pool.Start(runCtx)
	if sw, ok := s.cache.(cache.Sweeper); ok {
		s.sweeping.Add(1)
		go s.sweep(runCtx, sw)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "talentflow service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("default_algorithm", string(s.defaultAlgorithm)),
	)
	return nil
}

// Stop drains the ingest queue and closes every store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping talentflow service")

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(s.pool.Shutdown(ctx))
	s.cancel()
	s.sweeping.Wait()
	keep(s.publisher.Close())
	keep(s.cache.Close())
	keep(s.events.Close(ctx))
	keep(s.graph.Close(ctx))

	s.started = false
	s.logger.Info(ctx, "talentflow service stopped")
	return firstErr
}

// sweep drops expired cache entries every sweep interval. Keys of earlier
// generations are never read again, so without it they would stay forever.
func (s *Service) sweep(ctx context.Context, sw cache.Sweeper) {
	defer s.sweeping.Done()
	interval := s.sweepInterval
	if interval <= 0 {
		interval = s.cacheTTL
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sw.Sweep(); n > 0 {
				s.logger.Debug(ctx, "cache swept", logger.Int("expired", n))
			}
		}
	}
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Generation returns the current data generation.
func (s *Service) Generation() uint64 { return s.generation.Load() }

// MaxRankingLimit returns the cap applied to ranking limits.
func (s *Service) MaxRankingLimit() int { return s.maxRankingLimit }
