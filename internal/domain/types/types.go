// Package types contains read shapes shared by the service and the API.
package types

// Entry is one company in a ranking snapshot.
type Entry struct {
	Rank       int     `json:"rank"`
	CompanyURN string  `json:"company_urn"`
	Score      float64 `json:"score"`
}

// ProjectionEdge is a weighted company -> company edge of the projection graph.
type ProjectionEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// Projection is the exported company projection.
type Projection struct {
	Nodes []string         `json:"nodes"`
	Edges []ProjectionEdge `json:"edges"`
}
