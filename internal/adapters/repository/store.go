// Package repository defines the persistence ports of the service and their
// in-memory implementations.
//
// Two stores sit behind the domain:
//   - GraphStore holds the Employee-Company graph and the transitions and
//     answers the ranking reads (projection, bipartite).
//   - EventStore is the append-only time-series of transition events and
//     answers windowed range queries for flow metrics.
//
// Snapshots keeps the latest ranking result per algorithm for leaderboard reads.
package repository

import (
	"context"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/ranking"
)

// GraphStats summarizes the stored graph.
type GraphStats struct {
	Employees   int `json:"employees"`
	Companies   int `json:"companies"`
	WorkedAt    int `json:"worked_at_edges"`
	Transitions int `json:"transitions"`
}

// GraphStore persists the bipartite graph.
type GraphStore interface {
	ranking.GraphReader

	// SaveGraph upserts companies and employees; an employee's WorkedAt edges are replaced.
	SaveGraph(ctx context.Context, g *graph.Bipartite) error
	// SaveTransitions upserts transitions by id.
	SaveTransitions(ctx context.Context, events []model.TransitionEvent) error
	// Headcount counts open-ended WorkedAt edges at company.
	Headcount(ctx context.Context, companyURN string) (int, error)
	// Company returns one company node or ErrCompanyAbsent.
	Company(ctx context.Context, urn string) (model.Company, error)
	// Employee returns one employee node with its WorkedAt edges or ErrProfileAbsent.
	Employee(ctx context.Context, profileURN string) (graph.EmployeeNode, []graph.WorkedAt, error)
	// Transitions returns the transitions of one employee, newest first.
	Transitions(ctx context.Context, profileURN string) ([]model.TransitionEvent, error)
	Stats(ctx context.Context) (GraphStats, error)
	Close(ctx context.Context) error
}

// EventStore is the append-only transition time-series.
type EventStore interface {
	// Append stores events whose id is not present yet and returns the ones it inserted.
	Append(ctx context.Context, events []model.TransitionEvent) ([]model.TransitionEvent, error)
	// Range returns events where company is either side and the date lies in w,
	// ordered by date then id.
	Range(ctx context.Context, companyURN string, w model.Window) ([]model.TransitionEvent, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}
