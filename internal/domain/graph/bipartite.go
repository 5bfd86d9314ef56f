// Package graph builds the bipartite Employee-Company graph, extracts career
// transitions and projects them onto weighted company -> company edges.
package graph

import (
	"sort"
	"time"

	"github.com/okian/talentflow/internal/domain/model"
)

// EmployeeNode is the employee side of the bipartite graph. Skills and
// education ride along for profile reads; ranking ignores them.
type EmployeeNode struct {
	ProfileURN string            `json:"profile_urn"`
	Name       string            `json:"name,omitempty"`
	Headline   string            `json:"headline,omitempty"`
	Skills     []string          `json:"skills,omitempty"`
	Education  []model.Education `json:"education,omitempty"`
}

// WorkedAt is an Employee -> Company edge carrying the tenure interval.
// Start is nil when the source omitted it; Display is the best-available date.
type WorkedAt struct {
	ProfileURN string     `json:"profile_urn"`
	CompanyURN string     `json:"company_urn"`
	Title      string     `json:"title,omitempty"`
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	Display    *time.Time `json:"display_date,omitempty"`
}

// Bipartite holds Employee and Company nodes joined by WorkedAt edges.
// It is not safe for concurrent mutation; stores guard it with their own lock.
type Bipartite struct {
	employees map[string]EmployeeNode
	companies map[string]model.Company
	edges     map[string][]WorkedAt // profile_urn -> edges
}

// NewBipartite returns an empty graph.
func NewBipartite() *Bipartite {
	return &Bipartite{
		employees: make(map[string]EmployeeNode),
		companies: make(map[string]model.Company),
		edges:     make(map[string][]WorkedAt),
	}
}

// UpsertCompany adds a company node or merges metadata into the existing one.
func (g *Bipartite) UpsertCompany(c model.Company) {
	if c.URN == "" {
		return
	}
	if cur, ok := g.companies[c.URN]; ok {
		cur.Merge(c)
		g.companies[c.URN] = cur
		return
	}
	g.companies[c.URN] = c
}

// SetEmployee adds an employee and replaces all of its edges. Companies the
// edges point to are created when missing.
func (g *Bipartite) SetEmployee(node EmployeeNode, edges []WorkedAt) {
	g.employees[node.ProfileURN] = node
	cp := make([]WorkedAt, len(edges))
	copy(cp, edges)
	g.edges[node.ProfileURN] = cp
	for _, e := range edges {
		if _, ok := g.companies[e.CompanyURN]; !ok {
			g.companies[e.CompanyURN] = model.Company{URN: e.CompanyURN}
		}
	}
}

// Merge copies other into g. Employees present in both take other's edges.
func (g *Bipartite) Merge(other *Bipartite) {
	if other == nil {
		return
	}
	for _, c := range other.companies {
		g.UpsertCompany(c)
	}
	for urn, node := range other.employees {
		g.SetEmployee(node, other.edges[urn])
	}
}

// Employees returns employee nodes sorted by profile urn.
func (g *Bipartite) Employees() []EmployeeNode {
	out := make([]EmployeeNode, 0, len(g.employees))
	for _, e := range g.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfileURN < out[j].ProfileURN })
	return out
}

// Companies returns company nodes sorted by urn.
func (g *Bipartite) Companies() []model.Company {
	out := make([]model.Company, 0, len(g.companies))
	for _, c := range g.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URN < out[j].URN })
	return out
}

// CompanyURNs returns company urns sorted.
func (g *Bipartite) CompanyURNs() []string {
	out := make([]string, 0, len(g.companies))
	for urn := range g.companies {
		out = append(out, urn)
	}
	sort.Strings(out)
	return out
}

// Company looks up a company node.
func (g *Bipartite) Company(urn string) (model.Company, bool) {
	c, ok := g.companies[urn]
	return c, ok
}

// Employee looks up an employee node.
func (g *Bipartite) Employee(profileURN string) (EmployeeNode, bool) {
	e, ok := g.employees[profileURN]
	return e, ok
}

// EdgesOf returns the WorkedAt edges of one employee in input order.
func (g *Bipartite) EdgesOf(profileURN string) []WorkedAt {
	return g.edges[profileURN]
}

// Edges returns all WorkedAt edges ordered by profile urn, then input order.
func (g *Bipartite) Edges() []WorkedAt {
	var out []WorkedAt
	for _, e := range g.Employees() {
		out = append(out, g.edges[e.ProfileURN]...)
	}
	return out
}

// NumEmployees returns the employee count.
func (g *Bipartite) NumEmployees() int { return len(g.employees) }

// NumCompanies returns the company count.
func (g *Bipartite) NumCompanies() int { return len(g.companies) }

// NumEdges returns the WorkedAt edge count.
func (g *Bipartite) NumEdges() int {
	n := 0
	for _, es := range g.edges {
		n += len(es)
	}
	return n
}

// IsEmpty reports whether the graph has no companies.
func (g *Bipartite) IsEmpty() bool { return len(g.companies) == 0 }
