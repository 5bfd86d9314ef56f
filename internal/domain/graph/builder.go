package graph

import (
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/seniority"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithSeniority sets the title table used for seniority_change. Without it every change is 0.
func WithSeniority(t *seniority.Table) Option {
	return func(b *Builder) { b.seniority = t }
}

// Builder turns employee records into the bipartite graph, the transition
// events and the company projection. It holds no mutable state and is safe
// for concurrent use.
type Builder struct {
	seniority *seniority.Table
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result is the output of one Build call.
type Result struct {
	Graph       *Bipartite
	Transitions []model.TransitionEvent
	Projection  *Projection
	Accepted    int
	Rejected    []*model.ValidationError
}

// Build processes every record. Malformed records are reported in Rejected and
// skipped; the rest of the batch is still built. When a profile_urn repeats,
// the last record wins.
func (b *Builder) Build(employees []model.Employee) *Result {
	res := &Result{Graph: NewBipartite()}
	byProfile := make(map[string][]model.TransitionEvent)
	var order []string

	for i, e := range employees {
		if ve := model.ValidateEmployee(i, e); ve != nil {
			res.Rejected = append(res.Rejected, ve)
			continue
		}
		res.Accepted++
		res.Graph.SetEmployee(employeeNode(e), workedAt(e))
		for _, exp := range e.Experience {
			res.Graph.UpsertCompany(model.Company{URN: exp.Company.Key(), Name: exp.Company.Name})
		}
		if _, seen := byProfile[e.ProfileURN]; !seen {
			order = append(order, e.ProfileURN)
		}
		byProfile[e.ProfileURN] = ExtractTransitions(e, b.seniority)
	}

	for _, urn := range order {
		res.Transitions = append(res.Transitions, byProfile[urn]...)
	}
	res.Projection = Project(res.Graph.CompanyURNs(), res.Transitions, model.Window{})
	return res
}

func employeeNode(e model.Employee) EmployeeNode {
	return EmployeeNode{
		ProfileURN: e.ProfileURN,
		Name:       e.Name,
		Headline:   e.Headline,
		Skills:     e.Skills,
		Education:  e.Education,
	}
}

func workedAt(e model.Employee) []WorkedAt {
	edges := make([]WorkedAt, 0, len(e.Experience))
	for _, exp := range e.Experience {
		edges = append(edges, WorkedAt{
			ProfileURN: e.ProfileURN,
			CompanyURN: exp.Company.Key(),
			Title:      exp.Title,
			Start:      exp.Start,
			End:        exp.End,
			Display:    exp.DisplayDate(),
		})
	}
	return edges
}
