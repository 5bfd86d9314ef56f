package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/talentflow/internal/adapters/cache"
	"github.com/okian/talentflow/internal/adapters/http/api"
	"github.com/okian/talentflow/internal/adapters/http/swagger"
	"github.com/okian/talentflow/internal/adapters/mq/publisher"
	"github.com/okian/talentflow/internal/adapters/repository/neo4jstore"
	"github.com/okian/talentflow/internal/adapters/repository/pgstore"
	service "github.com/okian/talentflow/internal/app"
	"github.com/okian/talentflow/internal/config"
	"github.com/okian/talentflow/internal/domain/ranking"
	"github.com/okian/talentflow/internal/domain/seniority"
	"github.com/okian/talentflow/pkg/logger"
)

// serviceOptions turns cfg into service options. Backends left unconfigured
// stay in memory. Stores opened here are closed by Service.Stop, or here when
// a later backend fails to open.
func serviceOptions(ctx context.Context, cfg *config.Config, log logger.Logger) (_ []service.Option, err error) {
	var opened []func() error
	defer func() {
		if err == nil {
			return
		}
		for i := len(opened) - 1; i >= 0; i-- {
			if cerr := opened[i](); cerr != nil {
				log.Warn(ctx, "close backend after failed wiring", logger.Error(cerr))
			}
		}
	}()

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMaxRankingLimit(cfg.MaxRankingLimit),
		service.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		service.WithSeniority(seniority.New(
			seniority.WithLadder(seniority.Ladder),
			seniority.WithLevels(cfg.SeniorityLevels),
		)),
		service.WithRanking(ranking.Algorithm(strings.ToLower(cfg.Ranking.Algorithm)),
			ranking.WithDamping(cfg.Ranking.Damping),
			ranking.WithEpsilon(cfg.Ranking.Epsilon),
			ranking.WithMaxIterations(cfg.Ranking.MaxIterations),
		),
	}

	if cfg.Neo4j.URI != "" {
		g, err := neo4jstore.New(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password,
			neo4jstore.WithDatabase(cfg.Neo4j.Database),
			neo4jstore.WithLogger(log.Named("neo4j")),
		)
		if err != nil {
			return nil, fmt.Errorf("open graph store: %w", err)
		}
		opened = append(opened, func() error { return g.Close(ctx) })
		opts = append(opts, service.WithGraphStore(g))
		log.Info(ctx, "graph store: neo4j", logger.String("uri", cfg.Neo4j.URI))
	}

	if cfg.Postgres.DSN != "" {
		if cfg.Postgres.Migrate {
			if err := pgstore.Migrate(cfg.Postgres.DSN); err != nil {
				return nil, fmt.Errorf("migrate event store: %w", err)
			}
		}
		e, err := pgstore.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open event store: %w", err)
		}
		opened = append(opened, func() error { return e.Close(ctx) })
		opts = append(opts, service.WithEventStore(e))
		log.Info(ctx, "event store: postgres", logger.Bool("migrated", cfg.Postgres.Migrate))
	}

	if cfg.Redis.Addr != "" {
		c, err := cache.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		opened = append(opened, c.Close)
		opts = append(opts, service.WithCache(c))
		log.Info(ctx, "cache: redis", logger.String("addr", cfg.Redis.Addr))
	}

	if cfg.AMQP.URL != "" {
		p, err := publisher.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, fmt.Errorf("open publisher: %w", err)
		}
		opened = append(opened, p.Close)
		opts = append(opts, service.WithPublisher(p))
		log.Info(ctx, "publisher: amqp", logger.String("exchange", cfg.AMQP.Exchange))
	}
	return opts, nil
}

// newHandler registers the API and its documentation.
func newHandler(ctx context.Context, svc *service.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}
