package neo4jstore

import "github.com/okian/talentflow/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithDatabase selects the Neo4j database. Empty keeps the server default.
func WithDatabase(name string) Option {
	return func(s *Store) { s.database = name }
}

// WithBatchSize bounds the rows sent per UNWIND statement.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
