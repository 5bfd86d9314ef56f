package graph

import (
	"sort"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/types"
)

type edgeKey struct{ from, to string }

// Projection is the company graph: directed edges from source to destination
// company weighted by the number of transitions. Every present edge has weight
// >= 1 and no edge is a self-loop.
type Projection struct {
	nodes   map[string]struct{}
	weights map[edgeKey]int
	out     map[string][]string
}

// NewProjection returns an empty projection.
func NewProjection() *Projection {
	return &Projection{
		nodes:   make(map[string]struct{}),
		weights: make(map[edgeKey]int),
		out:     make(map[string][]string),
	}
}

// Project builds the projection over companies and the events inside w.
// Companies without transitions are kept as isolated nodes.
func Project(companies []string, events []model.TransitionEvent, w model.Window) *Projection {
	p := NewProjection()
	for _, c := range companies {
		p.AddNode(c)
	}
	for _, ev := range events {
		if w.Contains(ev.Date) {
			p.AddTransition(ev.FromCompanyURN, ev.ToCompanyURN, 1)
		}
	}
	return p
}

// AddNode adds an isolated company.
func (p *Projection) AddNode(urn string) {
	if urn != "" {
		p.nodes[urn] = struct{}{}
	}
}

// AddTransition adds weight to from -> to. Self-loops and non-positive weights are dropped.
func (p *Projection) AddTransition(from, to string, weight int) {
	if from == "" || to == "" || from == to || weight <= 0 {
		return
	}
	p.AddNode(from)
	p.AddNode(to)
	k := edgeKey{from, to}
	if _, ok := p.weights[k]; !ok {
		p.out[from] = append(p.out[from], to)
	}
	p.weights[k] += weight
}

// Nodes returns company urns sorted.
func (p *Projection) Nodes() []string {
	out := make([]string, 0, len(p.nodes))
	for n := range p.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edges returns all edges sorted by from, then to.
func (p *Projection) Edges() []types.ProjectionEdge {
	out := make([]types.ProjectionEdge, 0, len(p.weights))
	for k, w := range p.weights {
		out = append(out, types.ProjectionEdge{From: k.from, To: k.to, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Weight returns the weight of from -> to, 0 when absent.
func (p *Projection) Weight(from, to string) int {
	return p.weights[edgeKey{from, to}]
}

// Successors returns the destinations of from in insertion order.
func (p *Projection) Successors(from string) []string {
	return p.out[from]
}

// OutWeight returns the summed weight of edges leaving from.
func (p *Projection) OutWeight(from string) int {
	total := 0
	for _, to := range p.out[from] {
		total += p.weights[edgeKey{from, to}]
	}
	return total
}

// NumNodes returns the node count.
func (p *Projection) NumNodes() int { return len(p.nodes) }

// NumEdges returns the edge count.
func (p *Projection) NumEdges() int { return len(p.weights) }

// Export returns the projection as plain data.
func (p *Projection) Export() types.Projection {
	return types.Projection{Nodes: p.Nodes(), Edges: p.Edges()}
}
