// Package neo4jstore implements repository.GraphStore on Neo4j.
//
// Nodes: (:Employee {urn, name, headline}), (:Company {urn, ...metadata}),
// (:Transition {id, from, to, date, ...}), (:Skill {name}), (:School {name}).
// Relationships: (Employee)-[:WORKED_AT {seq, title, start, end, display}]->(Company),
// (Employee)-[:MOVED]->(Transition)-[:FROM|TO]->(Company),
// (Employee)-[:HAS_SKILL]->(Skill), (Employee)-[:ATTENDED {seq, degree, field, start, end}]->(School).
package neo4jstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

const (
	storeName        = "neo4j"
	defaultBatchSize = 500
)

var _ repository.GraphStore = (*Store)(nil)

// Store is a Neo4j backed graph store.
type Store struct {
	driver    neo4j.DriverWithContext
	database  string
	batchSize int
	log       logger.Logger
}

// New connects to uri, verifies connectivity and creates the constraints.
func New(ctx context.Context, uri, user, password string, opts ...Option) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	s := &Store{driver: driver, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("neo4j")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	s.log.Info(ctx, "neo4j graph store ready", logger.String("uri", uri), logger.String("database", s.database))
	return s, nil
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Store) ensureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	for _, stmt := range schemaStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("neo4j schema: %w", err)
		}
	}
	return nil
}

func (s *Store) write(ctx context.Context, op, cypher string, rows []map[string]any, key string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(storeName, op, msSince(start), err) }()

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	for _, batch := range chunk(rows, s.batchSize) {
		_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, cypher, map[string]any{key: batch})
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("neo4j %s: %w", op, err)
		}
	}
	return nil
}

func (s *Store) read(ctx context.Context, op, cypher string, params map[string]any) (records []*neo4j.Record, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(storeName, op, msSince(start), err) }()

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j %s: %w", op, err)
	}
	return out.([]*neo4j.Record), nil
}

// SaveGraph merges companies first so every WORKED_AT edge finds its target.
func (s *Store) SaveGraph(ctx context.Context, g *graph.Bipartite) error {
	if err := s.write(ctx, "merge_companies", mergeCompanies, companyParams(g.Companies()), "companies"); err != nil {
		return err
	}
	rows := employeeParams(g)
	if err := s.write(ctx, "merge_employees", mergeEmployees, rows, "employees"); err != nil {
		return err
	}
	if err := s.write(ctx, "merge_skills", mergeSkills, rows, "employees"); err != nil {
		return err
	}
	return s.write(ctx, "merge_education", mergeEducation, rows, "employees")
}

// SaveTransitions merges Transition nodes by id.
func (s *Store) SaveTransitions(ctx context.Context, events []model.TransitionEvent) error {
	return s.write(ctx, "merge_transitions", mergeTransitions, transitionParams(events), "events")
}

// Projection aggregates transitions in w into weighted company edges.
func (s *Store) Projection(ctx context.Context, w model.Window) (*graph.Projection, error) {
	nodes, err := s.read(ctx, "company_urns", readCompanyURNs, nil)
	if err != nil {
		return nil, err
	}
	edges, err := s.read(ctx, "projection", readProjectionEdges, windowParams(w))
	if err != nil {
		return nil, err
	}
	p := graph.NewProjection()
	for _, r := range nodes {
		urn, _ := r.Get("urn")
		p.AddNode(asString(urn))
	}
	for _, r := range edges {
		from, _ := r.Get("from")
		to, _ := r.Get("to")
		weight, _ := r.Get("weight")
		p.AddTransition(asString(from), asString(to), int(asInt(weight)))
	}
	return p, nil
}

// Bipartite loads the graph and keeps WorkedAt edges overlapping w.
func (s *Store) Bipartite(ctx context.Context, w model.Window) (*graph.Bipartite, error) {
	companies, err := s.read(ctx, "companies", readCompanies, nil)
	if err != nil {
		return nil, err
	}
	employees, err := s.read(ctx, "employees", readEmployees, nil)
	if err != nil {
		return nil, err
	}
	g := graph.NewBipartite()
	for _, r := range companies {
		props, _ := r.Get("company")
		if m, ok := props.(map[string]any); ok {
			g.UpsertCompany(companyFromProps(m))
		}
	}
	for _, r := range employees {
		urn, _ := r.Get("urn")
		name, _ := r.Get("name")
		rows, _ := r.Get("edges")
		list, _ := rows.([]any)
		profile := asString(urn)
		g.SetEmployee(graph.EmployeeNode{ProfileURN: profile, Name: asString(name)}, workedAtFromRows(profile, list))
	}
	return repository.WindowedBipartite(g, w), nil
}

// Headcount counts employees with an open-ended WORKED_AT edge at companyURN.
func (s *Store) Headcount(ctx context.Context, companyURN string) (int, error) {
	records, err := s.read(ctx, "headcount", readHeadcount, map[string]any{"urn": companyURN})
	if err != nil || len(records) == 0 {
		return 0, err
	}
	n, _ := records[0].Get("n")
	return int(asInt(n)), nil
}

// Company reads one company node.
func (s *Store) Company(ctx context.Context, urn string) (model.Company, error) {
	records, err := s.read(ctx, "company", readCompany, map[string]any{"urn": urn})
	if err != nil {
		return model.Company{}, err
	}
	if len(records) == 0 {
		return model.Company{}, repository.ErrCompanyAbsent
	}
	props, _ := records[0].Get("company")
	m, _ := props.(map[string]any)
	return companyFromProps(m), nil
}

// Employee reads one employee with its WORKED_AT edges, skills and education.
func (s *Store) Employee(ctx context.Context, profileURN string) (graph.EmployeeNode, []graph.WorkedAt, error) {
	records, err := s.read(ctx, "employee", readEmployee, map[string]any{"urn": profileURN})
	if err != nil {
		return graph.EmployeeNode{}, nil, err
	}
	if len(records) == 0 {
		return graph.EmployeeNode{}, nil, repository.ErrProfileAbsent
	}
	r := records[0]
	get := func(k string) any {
		v, _ := r.Get(k)
		return v
	}
	edges, _ := get("edges").([]any)
	education, _ := get("education").([]any)
	node := graph.EmployeeNode{
		ProfileURN: profileURN,
		Name:       asString(get("name")),
		Headline:   asString(get("headline")),
		Skills:     stringsFromList(get("skills")),
		Education:  educationFromRows(education),
	}
	return node, workedAtFromRows(profileURN, edges), nil
}

// Transitions reads the Transition nodes an employee MOVED through, newest first.
func (s *Store) Transitions(ctx context.Context, profileURN string) ([]model.TransitionEvent, error) {
	records, err := s.read(ctx, "profile_transitions", readProfileTransitions, map[string]any{"urn": profileURN})
	if err != nil {
		return nil, err
	}
	out := make([]model.TransitionEvent, 0, len(records))
	for _, r := range records {
		id, _ := r.Get("id")
		props, _ := r.Get("props")
		m, _ := props.(map[string]any)
		out = append(out, transitionFromProps(asString(id), m))
	}
	return out, nil
}

// Stats counts nodes and relationships.
func (s *Store) Stats(ctx context.Context) (repository.GraphStats, error) {
	records, err := s.read(ctx, "stats", readStats, nil)
	if err != nil || len(records) == 0 {
		return repository.GraphStats{}, err
	}
	get := func(k string) int {
		v, _ := records[0].Get(k)
		return int(asInt(v))
	}
	return repository.GraphStats{
		Employees:   get("employees"),
		Companies:   get("companies"),
		WorkedAt:    get("worked_at"),
		Transitions: get("transitions"),
	}, nil
}

// Close closes the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
