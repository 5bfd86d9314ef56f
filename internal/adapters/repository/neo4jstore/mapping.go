package neo4jstore

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
)

// Times are stored as fixed-width RFC3339 UTC strings so that string
// comparison in Cypher orders them chronologically.
const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func windowParams(w model.Window) map[string]any {
	p := map[string]any{"start": nil, "end": nil}
	if !w.Start.IsZero() {
		p["start"] = formatTime(&w.Start)
	}
	if !w.End.IsZero() {
		p["end"] = formatTime(&w.End)
	}
	return p
}

// companyParams keeps only set fields so that SET n += props never blanks
// metadata written by an earlier batch.
func companyParams(cs []model.Company) []map[string]any {
	out := make([]map[string]any, 0, len(cs))
	for _, c := range cs {
		props := map[string]any{}
		if c.Name != "" {
			props["name"] = c.Name
		}
		if len(c.Industries) > 0 {
			props["industries"] = c.Industries
		}
		if c.EmployeeCountFrom != 0 || c.EmployeeCountTo != 0 {
			props["employee_count_from"] = int64(c.EmployeeCountFrom)
			props["employee_count_to"] = int64(c.EmployeeCountTo)
		}
		if c.FundingStage != "" {
			props["funding_stage"] = c.FundingStage
		}
		if c.Valuation != 0 {
			props["valuation"] = c.Valuation
		}
		if c.ExitStatus != "" {
			props["exit_status"] = c.ExitStatus
		}
		if c.FoundedYear != 0 {
			props["founded_year"] = int64(c.FoundedYear)
		}
		out = append(out, map[string]any{"urn": c.URN, "props": props})
	}
	return out
}

func employeeParams(g *graph.Bipartite) []map[string]any {
	employees := g.Employees()
	out := make([]map[string]any, 0, len(employees))
	for _, e := range employees {
		edges := g.EdgesOf(e.ProfileURN)
		rows := make([]map[string]any, 0, len(edges))
		for i, w := range edges {
			rows = append(rows, map[string]any{
				"company": w.CompanyURN,
				"seq":     int64(i),
				"title":   w.Title,
				"start":   formatTime(w.Start),
				"end":     formatTime(w.End),
				"display": formatTime(w.Display),
			})
		}
		out = append(out, map[string]any{
			"urn":       e.ProfileURN,
			"name":      e.Name,
			"headline":  e.Headline,
			"edges":     rows,
			"skills":    skillNames(e.Skills),
			"education": educationRows(e.Education),
		})
	}
	return out
}

// skillNames drops blanks and repeats; MERGE on an empty name would fail the batch.
func skillNames(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func educationRows(entries []model.Education) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for i, d := range entries {
		school := strings.TrimSpace(d.School)
		if school == "" {
			continue
		}
		out = append(out, map[string]any{
			"school": school,
			"seq":    int64(i),
			"degree": d.Degree,
			"field":  d.FieldOfStudy,
			"start":  formatTime(d.Start),
			"end":    formatTime(d.End),
		})
	}
	return out
}

func educationFromRows(rows []any) []model.Education {
	type seqEntry struct {
		seq   int64
		entry model.Education
	}
	tmp := make([]seqEntry, 0, len(rows))
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		tmp = append(tmp, seqEntry{
			seq: asInt(m["seq"]),
			entry: model.Education{
				School:       asString(m["school"]),
				Degree:       asString(m["degree"]),
				FieldOfStudy: asString(m["field"]),
				Start:        parseTime(m["start"]),
				End:          parseTime(m["end"]),
			},
		})
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].seq < tmp[j].seq })
	out := make([]model.Education, len(tmp))
	for i, t := range tmp {
		out[i] = t.entry
	}
	return out
}

// stringsFromList reads a Cypher list of strings, sorted.
func stringsFromList(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, x := range list {
		if s := asString(x); s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func transitionFromProps(id string, props map[string]any) model.TransitionEvent {
	ev := model.TransitionEvent{
		ID:              id,
		ProfileURN:      asString(props["profile"]),
		FromCompanyURN:  asString(props["from"]),
		ToCompanyURN:    asString(props["to"]),
		OldTitle:        asString(props["old_title"]),
		NewTitle:        asString(props["new_title"]),
		SeniorityChange: int(asInt(props["seniority_change"])),
		TenureDays:      int(asInt(props["tenure_days"])),
	}
	if d := parseTime(props["date"]); d != nil {
		ev.Date = *d
	}
	ev.LocationChange, _ = props["location_change"].(bool)
	return ev
}

func transitionParams(events []model.TransitionEvent) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		date := ev.Date
		out = append(out, map[string]any{
			"id": ev.ID,
			"props": map[string]any{
				"profile":          ev.ProfileURN,
				"from":             ev.FromCompanyURN,
				"to":               ev.ToCompanyURN,
				"date":             formatTime(&date),
				"old_title":        ev.OldTitle,
				"new_title":        ev.NewTitle,
				"seniority_change": int64(ev.SeniorityChange),
				"tenure_days":      int64(ev.TenureDays),
				"location_change":  ev.LocationChange,
			},
		})
	}
	return out
}

func companyFromProps(props map[string]any) model.Company {
	c := model.Company{
		URN:          asString(props["urn"]),
		Name:         asString(props["name"]),
		FundingStage: asString(props["funding_stage"]),
		ExitStatus:   asString(props["exit_status"]),
	}
	if list, ok := props["industries"].([]any); ok {
		for _, v := range list {
			c.Industries = append(c.Industries, asString(v))
		}
	}
	c.EmployeeCountFrom = int(asInt(props["employee_count_from"]))
	c.EmployeeCountTo = int(asInt(props["employee_count_to"]))
	c.FoundedYear = int(asInt(props["founded_year"]))
	if v, ok := props["valuation"].(float64); ok {
		c.Valuation = v
	}
	return c
}

func workedAtFromRows(profileURN string, rows []any) []graph.WorkedAt {
	type seqEdge struct {
		seq  int64
		edge graph.WorkedAt
	}
	tmp := make([]seqEdge, 0, len(rows))
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		tmp = append(tmp, seqEdge{
			seq: asInt(m["seq"]),
			edge: graph.WorkedAt{
				ProfileURN: profileURN,
				CompanyURN: asString(m["company"]),
				Title:      asString(m["title"]),
				Start:      parseTime(m["start"]),
				End:        parseTime(m["end"]),
				Display:    parseTime(m["display"]),
			},
		})
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].seq < tmp[j].seq })
	out := make([]graph.WorkedAt, len(tmp))
	for i, t := range tmp {
		out[i] = t.edge
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) <= size {
		if len(items) == 0 {
			return nil
		}
		return [][]T{items}
	}
	var out [][]T
	for size < len(items) {
		out = append(out, items[:size:size])
		items = items[size:]
	}
	return append(out, items)
}
