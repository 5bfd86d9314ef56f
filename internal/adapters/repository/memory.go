package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/pkg/metrics"
)

// MemoryGraphStore keeps the graph in process. It is the default when no
// Neo4j uri is configured.
type MemoryGraphStore struct {
	mu          sync.RWMutex
	g           *graph.Bipartite
	transitions map[string]model.TransitionEvent
	closed      bool
}

// NewMemoryGraphStore creates an empty graph store.
func NewMemoryGraphStore() *MemoryGraphStore {
	return &MemoryGraphStore{
		g:           graph.NewBipartite(),
		transitions: make(map[string]model.TransitionEvent),
	}
}

// SaveGraph merges g into the stored graph.
func (s *MemoryGraphStore) SaveGraph(_ context.Context, g *graph.Bipartite) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.g.Merge(g)
	metrics.RecordStoreOperation("memory_graph", "save_graph", msSince(start), nil)
	return nil
}

// SaveTransitions upserts events by id.
func (s *MemoryGraphStore) SaveTransitions(_ context.Context, events []model.TransitionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, ev := range events {
		s.transitions[ev.ID] = ev
	}
	return nil
}

// Projection projects the stored transitions dated inside w onto every stored company.
func (s *MemoryGraphStore) Projection(_ context.Context, w model.Window) (*graph.Projection, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	events := make([]model.TransitionEvent, 0, len(s.transitions))
	for _, ev := range s.transitions {
		events = append(events, ev)
	}
	p := graph.Project(s.g.CompanyURNs(), events, w)
	metrics.RecordStoreOperation("memory_graph", "projection", msSince(start), nil)
	return p, nil
}

// Bipartite returns a copy of the graph restricted to WorkedAt edges overlapping w.
func (s *MemoryGraphStore) Bipartite(_ context.Context, w model.Window) (*graph.Bipartite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return WindowedBipartite(s.g, w), nil
}

// Headcount counts employees whose WorkedAt edge at company has no end date.
func (s *MemoryGraphStore) Headcount(_ context.Context, companyURN string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.g.Company(companyURN); !ok {
		return 0, nil
	}
	n := 0
	for _, e := range s.g.Employees() {
		for _, edge := range s.g.EdgesOf(e.ProfileURN) {
			if edge.CompanyURN == companyURN && edge.End == nil {
				n++
				break
			}
		}
	}
	return n, nil
}

// Company returns the stored company node.
func (s *MemoryGraphStore) Company(_ context.Context, urn string) (model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.g.Company(urn)
	if !ok {
		return model.Company{}, ErrCompanyAbsent
	}
	return c, nil
}

// Employee returns the stored employee node and a copy of its edges.
func (s *MemoryGraphStore) Employee(_ context.Context, profileURN string) (graph.EmployeeNode, []graph.WorkedAt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.g.Employee(profileURN)
	if !ok {
		return graph.EmployeeNode{}, nil, ErrProfileAbsent
	}
	edges := append([]graph.WorkedAt(nil), s.g.EdgesOf(profileURN)...)
	return node, edges, nil
}

// Transitions returns the stored transitions of one employee, newest first.
func (s *MemoryGraphStore) Transitions(_ context.Context, profileURN string) ([]model.TransitionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	var out []model.TransitionEvent
	for _, ev := range s.transitions {
		if ev.ProfileURN == profileURN {
			out = append(out, ev)
		}
	}
	SortEvents(out)
	slices.Reverse(out)
	return out, nil
}

// Stats reports node and edge counts.
func (s *MemoryGraphStore) Stats(_ context.Context) (GraphStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GraphStats{
		Employees:   s.g.NumEmployees(),
		Companies:   s.g.NumCompanies(),
		WorkedAt:    s.g.NumEdges(),
		Transitions: len(s.transitions),
	}, nil
}

// Close marks the store closed.
func (s *MemoryGraphStore) Close(_ context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// MemoryEventStore is an append-only in-process event log.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events []model.TransitionEvent
	ids    map[string]struct{}
	closed bool
}

// NewMemoryEventStore creates an empty event store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{ids: make(map[string]struct{})}
}

// Append adds events with unseen ids and returns them.
func (s *MemoryEventStore) Append(_ context.Context, events []model.TransitionEvent) ([]model.TransitionEvent, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	var added []model.TransitionEvent
	for _, ev := range events {
		if _, ok := s.ids[ev.ID]; ok {
			continue
		}
		s.ids[ev.ID] = struct{}{}
		s.events = append(s.events, ev)
		added = append(added, ev)
	}
	metrics.RecordStoreOperation("memory_events", "append", msSince(start), nil)
	return added, nil
}

// Range returns the events touching company in w.
func (s *MemoryEventStore) Range(_ context.Context, companyURN string, w model.Window) ([]model.TransitionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return filterRange(s.events, companyURN, w), nil
}

// Count returns the number of stored events.
func (s *MemoryEventStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}

// Close marks the store closed.
func (s *MemoryEventStore) Close(_ context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
