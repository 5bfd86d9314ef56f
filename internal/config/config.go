// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and TALENTFLOW_* env vars on top of the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Supported ranking algorithms.
const (
	AlgorithmPageRank = "pagerank"
	AlgorithmBiRank   = "birank"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text, json or console output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingest job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many transition ids the deduper remembers.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingLimit caps GET /rankings?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// CacheTTLSeconds is the lifetime of cached flow and signal responses.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	Ranking  RankingConfig  `koanf:"ranking"`
	Neo4j    Neo4jConfig    `koanf:"neo4j"`
	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
	AMQP     AMQPConfig     `koanf:"amqp"`

	// SeniorityLevels maps a normalized job title to its seniority level.
	// Empty means the built-in ladder is used.
	SeniorityLevels map[string]int `koanf:"seniority_levels"`
}

// RankingConfig holds defaults for ranking runs.
type RankingConfig struct {
	Algorithm     string  `koanf:"algorithm"`
	Damping       float64 `koanf:"damping"`
	Epsilon       float64 `koanf:"epsilon"`
	MaxIterations int     `koanf:"max_iterations"`
}

// Neo4jConfig selects the graph store. An empty URI keeps the graph in memory.
type Neo4jConfig struct {
	URI      string `koanf:"uri"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
}

// PostgresConfig selects the transition event store. An empty DSN keeps events in memory.
type PostgresConfig struct {
	DSN     string `koanf:"dsn"`
	Migrate bool   `koanf:"migrate"`
}

// RedisConfig selects the response cache. An empty Addr uses an in-process cache.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// AMQPConfig enables transition publishing. An empty URL disables it.
type AMQPConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      500_000,
		MaxRankingLimit: 100,
		CacheTTLSeconds: 60,
		Ranking: RankingConfig{
			Algorithm:     AlgorithmPageRank,
			Damping:       0.85,
			Epsilon:       1e-6,
			MaxIterations: 100,
		},
		Neo4j: Neo4jConfig{
			User:     "neo4j",
			Database: "neo4j",
		},
		Postgres: PostgresConfig{
			Migrate: true,
		},
		Redis: RedisConfig{
			KeyPrefix: "talentflow:",
		},
		AMQP: AMQPConfig{
			Exchange: "talentflow.transitions",
		},
	}
}

// Validate checks value ranges. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.MaxRankingLimit <= 0:
		return fmt.Errorf("%w: max_ranking_limit must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.Ranking.Damping <= 0 || c.Ranking.Damping >= 1:
		return fmt.Errorf("%w: ranking.damping must be in (0,1), got %v", ErrInvalidConfig, c.Ranking.Damping)
	case c.Ranking.Epsilon <= 0:
		return fmt.Errorf("%w: ranking.epsilon must be positive", ErrInvalidConfig)
	case c.Ranking.MaxIterations <= 0:
		return fmt.Errorf("%w: ranking.max_iterations must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Ranking.Algorithm) {
	case AlgorithmPageRank, AlgorithmBiRank:
	default:
		return fmt.Errorf("%w: unknown ranking.algorithm %q", ErrInvalidConfig, c.Ranking.Algorithm)
	}
	return nil
}
