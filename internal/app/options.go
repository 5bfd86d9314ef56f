package service

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/okian/talentflow/internal/adapters/cache"
	"github.com/okian/talentflow/internal/adapters/mq/publisher"
	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/ranking"
	"github.com/okian/talentflow/internal/domain/seniority"
	"github.com/okian/talentflow/internal/domain/signal"
	"github.com/okian/talentflow/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGraphStore sets the graph store.
func WithGraphStore(g repository.GraphStore) Option {
	return func(s *Service) { s.graph = g }
}

// WithEventStore sets the transition event store.
func WithEventStore(e repository.EventStore) Option {
	return func(s *Service) { s.events = e }
}

// WithCache sets the response cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPublisher sets the transition publisher.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSeniority sets the title table used for seniority_change.
func WithSeniority(t *seniority.Table) Option {
	return func(s *Service) { s.seniority = t }
}

// WithRanking sets the default algorithm and the iteration parameters.
func WithRanking(alg ranking.Algorithm, opts ...ranking.Option) Option {
	return func(s *Service) {
		if alg != "" {
			s.defaultAlgorithm = alg
		}
		s.rankingOpts = append(s.rankingOpts, opts...)
	}
}

// WithSignalPolicy overrides the composite signal weights.
func WithSignalPolicy(p signal.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the ingest queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many transition ids the deduper remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxRankingLimit caps ranking limits.
func WithMaxRankingLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRankingLimit = n
		}
	}
}

// WithCacheTTL sets the lifetime of cached flow and signal responses.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithSweepInterval sets how often expired cache entries are dropped.
// It defaults to the cache TTL.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer. The global otel tracer is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}
