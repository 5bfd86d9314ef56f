// Package flow computes per-company talent-flow metrics over a half-open
// window [start, end) of transition events.
package flow

import (
	"context"
	"sort"

	"github.com/okian/talentflow/internal/domain/model"
)

const (
	defaultTopN = 5
	percent     = 100
)

// Partner is a counterpart company with the number of moves in the window.
type Partner struct {
	CompanyURN string `json:"company_urn"`
	Count      int    `json:"count"`
}

// Metrics is the flow tuple for one company and window.
type Metrics struct {
	CompanyURN      string       `json:"company_urn"`
	Window          model.Window `json:"window"`
	Inflow          int          `json:"inflow"`
	Outflow         int          `json:"outflow"`
	NetFlow         int          `json:"net_flow"`
	Headcount       int          `json:"headcount"`
	ChurnRate       float64      `json:"churn_rate"`
	AvgTenureDays   float64      `json:"avg_tenure_days"` // of employees who left
	TopSources      []Partner    `json:"top_sources"`
	TopDestinations []Partner    `json:"top_destinations"`
}

// Compute derives metrics for company from events. Events outside w and
// self-loops are ignored, so callers may pass a superset. headcount is supplied
// by the caller; churn uses max(headcount, 1).
func Compute(company string, events []model.TransitionEvent, w model.Window, headcount, topN int) Metrics {
	if topN <= 0 {
		topN = defaultTopN
	}
	m := Metrics{CompanyURN: company, Window: w, Headcount: headcount}
	sources := map[string]int{}
	destinations := map[string]int{}
	tenureSum := 0

	for _, ev := range events {
		if ev.FromCompanyURN == ev.ToCompanyURN || !w.Contains(ev.Date) {
			continue
		}
		switch company {
		case ev.ToCompanyURN:
			m.Inflow++
			sources[ev.FromCompanyURN]++
		case ev.FromCompanyURN:
			m.Outflow++
			destinations[ev.ToCompanyURN]++
			tenureSum += ev.TenureDays
		}
	}

	m.NetFlow = m.Inflow - m.Outflow
	m.ChurnRate = float64(m.Outflow) / float64(max(headcount, 1)) * percent
	if m.Outflow > 0 {
		m.AvgTenureDays = float64(tenureSum) / float64(m.Outflow)
	}
	m.TopSources = top(sources, topN)
	m.TopDestinations = top(destinations, topN)
	return m
}

// top returns the n partners with most moves, ties by urn ascending.
func top(counts map[string]int, n int) []Partner {
	out := make([]Partner, 0, len(counts))
	for urn, c := range counts {
		out = append(out, Partner{CompanyURN: urn, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CompanyURN < out[j].CompanyURN
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// EventSource runs the windowed range query: events where company is either
// side and the date lies in w.
type EventSource interface {
	Range(ctx context.Context, company string, w model.Window) ([]model.TransitionEvent, error)
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithTopN sets how many source and destination partners are reported.
func WithTopN(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topN = n
		}
	}
}

// Aggregator answers flow queries from an EventSource. It holds no mutable state.
type Aggregator struct {
	src  EventSource
	topN int
}

// NewAggregator creates an aggregator reading from src.
func NewAggregator(src EventSource, opts ...Option) *Aggregator {
	a := &Aggregator{src: src, topN: defaultTopN}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Flow returns the metrics for company over w. Store failures come back as
// *model.GraphQueryError; an empty window yields zero counts.
func (a *Aggregator) Flow(ctx context.Context, company string, w model.Window, headcount int) (Metrics, error) {
	if !w.Valid() {
		return Metrics{}, model.ErrInvalidWindow
	}
	events, err := a.src.Range(ctx, company, w)
	if err != nil {
		return Metrics{}, model.NewGraphQueryError("range transitions", err)
	}
	return Compute(company, events, w, headcount, a.topN), nil
}

// Inflow counts events arriving at company in w.
func (a *Aggregator) Inflow(ctx context.Context, company string, w model.Window) (int, error) {
	m, err := a.Flow(ctx, company, w, 0)
	return m.Inflow, err
}

// Outflow counts events leaving company in w.
func (a *Aggregator) Outflow(ctx context.Context, company string, w model.Window) (int, error) {
	m, err := a.Flow(ctx, company, w, 0)
	return m.Outflow, err
}
