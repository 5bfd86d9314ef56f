package repository

import (
	"sort"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
)

// WindowedBipartite returns the subgraph of g whose WorkedAt edges overlap w.
// Every company and employee node is kept so isolated nodes still rank.
// With an open window g is copied as is. Edges without a start date only
// survive an open window.
func WindowedBipartite(g *graph.Bipartite, w model.Window) *graph.Bipartite {
	out := graph.NewBipartite()
	for _, c := range g.Companies() {
		out.UpsertCompany(c)
	}
	for _, e := range g.Employees() {
		edges := g.EdgesOf(e.ProfileURN)
		if !w.IsOpen() {
			kept := make([]graph.WorkedAt, 0, len(edges))
			for _, edge := range edges {
				if overlaps(edge, w) {
					kept = append(kept, edge)
				}
			}
			edges = kept
		}
		out.SetEmployee(e, edges)
	}
	return out
}

func overlaps(e graph.WorkedAt, w model.Window) bool {
	if e.Start == nil {
		return false
	}
	if !w.End.IsZero() && !e.Start.Before(w.End) {
		return false
	}
	if e.End != nil && !w.Start.IsZero() && e.End.Before(w.Start) {
		return false
	}
	return true
}

// filterRange selects events touching company inside w and orders them by date then id.
func filterRange(events []model.TransitionEvent, company string, w model.Window) []model.TransitionEvent {
	var out []model.TransitionEvent
	for _, ev := range events {
		if ev.FromCompanyURN != company && ev.ToCompanyURN != company {
			continue
		}
		if w.Contains(ev.Date) {
			out = append(out, ev)
		}
	}
	SortEvents(out)
	return out
}

// SortEvents orders events by date, then id.
func SortEvents(events []model.TransitionEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
}
