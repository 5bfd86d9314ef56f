package seed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/talentflow/pkg/logger"
)

const (
	defaultBatchSize = 100
	defaultWorkers   = 4
)

// Config controls a seeding run.
type Config struct {
	Profiles  int // total profiles to generate
	BatchSize int // profiles per request
	Workers   int // concurrent requests
	Async     bool
}

// Stats summarizes a seeding run.
type Stats struct {
	Profiles       int           `json:"profiles"`
	Batches        int           `json:"batches"`
	FailedBatches  int           `json:"failed_batches"`
	Accepted       int           `json:"accepted"`
	Rejected       int           `json:"rejected"`
	Transitions    int           `json:"transitions"`
	NewTransitions int           `json:"new_transitions"`
	Duplicates     int           `json:"duplicates"`
	Jobs           []string      `json:"jobs,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// Run generates cfg.Profiles profiles and posts them in batches. Failed
// batches are counted and logged; the run only aborts when ctx ends.
func Run(ctx context.Context, c *Client, g *Generator, cfg Config) (Stats, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	log := logger.Get().Named("seed")
	start := time.Now()
	log.Info(ctx, "seeding profiles",
		logger.Int("profiles", cfg.Profiles),
		logger.Int("batch_size", cfg.BatchSize),
		logger.Int("workers", cfg.Workers),
		logger.Bool("async", cfg.Async),
	)

	var (
		mu    sync.Mutex
		stats = Stats{Profiles: cfg.Profiles}
	)
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)

	for done := 0; done < cfg.Profiles; done += cfg.BatchSize {
		if ectx.Err() != nil {
			break
		}
		batch := g.Generate(min(cfg.BatchSize, cfg.Profiles-done))
		stats.Batches++
		eg.Go(func() error {
			if cfg.Async {
				id, err := c.Submit(ectx, batch)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					stats.FailedBatches++
					log.Warn(ectx, "batch submit failed", logger.Error(err))
					return nil
				}
				stats.Jobs = append(stats.Jobs, id)
				return nil
			}

			report, err := c.Ingest(ectx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.FailedBatches++
				log.Warn(ectx, "batch ingest failed", logger.Error(err))
				return nil
			}
			stats.Accepted += report.Accepted
			stats.Rejected += len(report.Rejected)
			stats.Transitions += report.Transitions
			stats.NewTransitions += report.NewTransitions
			stats.Duplicates += report.Duplicates
			return nil
		})
	}
	_ = eg.Wait()
	stats.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("seeding interrupted: %w", err)
	}
	log.Info(ctx, "seeding finished",
		logger.Int("batches", stats.Batches),
		logger.Int("failed_batches", stats.FailedBatches),
		logger.Int("accepted", stats.Accepted),
		logger.Int("new_transitions", stats.NewTransitions),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}
