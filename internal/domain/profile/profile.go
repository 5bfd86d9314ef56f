// Package profile normalizes raw profile JSON into model.Employee. It is the
// only place that knows about the mixed camelCase / snake_case field names of
// scraped and generated profiles.
package profile

import (
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/okian/talentflow/internal/domain/model"
)

// ErrInvalidJSON is returned when the payload is not valid JSON.
var ErrInvalidJSON = errors.New("invalid profile json")

// Field aliases, tried in order.
var (
	profileURNKeys = []string{"profile_urn", "profileUrn", "entity_urn", "entityUrn", "urn"}
	experienceKeys = []string{"experience", "experiences", "positions"}
	companyKeys    = []string{"company", "companyName", "company_name"}
	companyNames   = []string{"companyName", "company_name", "name"}
	companyURNs    = []string{"companyUrn", "company_urn", "entityUrn", "entity_urn", "urn"}
	periodKeys     = []string{"timePeriod", "time_period"}
	startKeys      = []string{"startDate", "start_date", "start"}
	endKeys        = []string{"endDate", "end_date", "end"}
	locationKeys   = []string{"locationName", "location_name", "geoLocationName", "location"}
	schoolKeys     = []string{"school", "schoolName", "school_name"}
)

// Batch is the result of normalizing a payload.
type Batch struct {
	Employees []model.Employee
	Companies []model.Company // metadata seen on experience entries, one per company
}

// NormalizeBatch accepts a JSON array of profiles or a single profile object.
// Elements that are not objects become empty employees so validation reports
// them at their original index.
func NormalizeBatch(raw []byte) (*Batch, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(raw)
	var items []gjson.Result
	switch {
	case root.IsArray():
		items = root.Array()
	case root.IsObject():
		items = []gjson.Result{root}
	default:
		return nil, ErrInvalidJSON
	}

	b := &Batch{Employees: make([]model.Employee, 0, len(items))}
	companies := map[string]model.Company{}
	var order []string
	for _, item := range items {
		if !item.IsObject() {
			b.Employees = append(b.Employees, model.Employee{})
			continue
		}
		e, cs := normalize(item)
		b.Employees = append(b.Employees, e)
		for _, c := range cs {
			if cur, ok := companies[c.URN]; ok {
				cur.Merge(c)
				companies[c.URN] = cur
				continue
			}
			companies[c.URN] = c
			order = append(order, c.URN)
		}
	}
	for _, urn := range order {
		b.Companies = append(b.Companies, companies[urn])
	}
	return b, nil
}

// Normalize converts one profile object.
func Normalize(raw []byte) (model.Employee, error) {
	if !gjson.ValidBytes(raw) {
		return model.Employee{}, ErrInvalidJSON
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return model.Employee{}, ErrInvalidJSON
	}
	e, _ := normalize(res)
	return e, nil
}

func normalize(p gjson.Result) (model.Employee, []model.Company) {
	e := model.Employee{
		ProfileURN: str(p, profileURNKeys...),
		Name:       fullName(p),
		Headline:   str(p, "headline"),
		Location:   location(p),
	}
	if cur := first(p, "currentCompany", "current_company"); cur.Exists() {
		e.CurrentCompany = companyRef(cur)
	}

	var companies []model.Company
	if exps := first(p, experienceKeys...); exps.IsArray() {
		e.Experience = []model.Experience{}
		exps.ForEach(func(_, x gjson.Result) bool {
			exp, meta := experience(x)
			e.Experience = append(e.Experience, exp)
			if meta.URN != "" {
				companies = append(companies, meta)
			}
			return true
		})
	}
	if e.CurrentCompany.Key() == "" {
		e.CurrentCompany = currentFromExperience(e.Experience)
	}

	first(p, "education", "educations").ForEach(func(_, x gjson.Result) bool {
		start, end := period(x)
		school := first(x, schoolKeys...)
		name := school.String()
		if school.IsObject() {
			name = str(school, "schoolName", "school_name", "name")
		}
		e.Education = append(e.Education, model.Education{
			School:       name,
			Degree:       str(x, "degreeName", "degree_name", "degree"),
			FieldOfStudy: str(x, "fieldOfStudy", "field_of_study"),
			Start:        start,
			End:          end,
		})
		return true
	})

	p.Get("skills").ForEach(func(_, x gjson.Result) bool {
		name := x.String()
		if x.IsObject() {
			name = x.Get("name").String()
		}
		if name = strings.TrimSpace(name); name != "" {
			e.Skills = append(e.Skills, name)
		}
		return true
	})
	return e, companies
}

func experience(x gjson.Result) (model.Experience, model.Company) {
	c := first(x, companyKeys...)
	ref := companyRef(c)
	if ref.URN == "" {
		ref.URN = str(x, "companyUrn", "company_urn")
	}
	start, end := period(x)
	exp := model.Experience{
		Title:    str(x, "title"),
		Company:  ref,
		Location: location(x),
		Start:    start,
		End:      end,
	}

	meta := model.Company{URN: ref.Key(), Name: ref.Name}
	if c.IsObject() {
		c.Get("industries").ForEach(func(_, v gjson.Result) bool {
			meta.Industries = append(meta.Industries, v.String())
			return true
		})
		rng := first(c, "employeeCountRange", "employee_count_range")
		meta.EmployeeCountFrom = int(rng.Get("start").Int())
		meta.EmployeeCountTo = int(rng.Get("end").Int())
	}
	return exp, meta
}

// companyRef reads a company given either as an object or as a bare name.
func companyRef(c gjson.Result) model.CompanyRef {
	if c.IsObject() {
		return model.CompanyRef{
			URN:  str(c, companyURNs...),
			Name: str(c, companyNames...),
		}
	}
	return model.CompanyRef{Name: strings.TrimSpace(c.String())}
}

// currentFromExperience picks the open-ended position with the latest start.
func currentFromExperience(exps []model.Experience) model.CompanyRef {
	var best *model.Experience
	for i := range exps {
		x := &exps[i]
		if x.End != nil || x.Start == nil {
			continue
		}
		if best == nil || x.Start.After(*best.Start) {
			best = x
		}
	}
	if best == nil {
		return model.CompanyRef{}
	}
	return best.Company
}

func period(x gjson.Result) (*time.Time, *time.Time) {
	tp := first(x, periodKeys...)
	if !tp.Exists() {
		tp = x
	}
	return date(first(tp, startKeys...)), date(first(tp, endKeys...))
}

// date reads {year, month} objects or date strings, truncated to the first of the month in UTC.
func date(v gjson.Result) *time.Time {
	var t time.Time
	switch {
	case v.IsObject():
		year := int(v.Get("year").Int())
		if year == 0 {
			return nil
		}
		month := int(v.Get("month").Int())
		if month < 1 || month > 12 {
			month = 1
		}
		t = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	case v.Type == gjson.String:
		parsed, err := model.ParseDate(strings.TrimSpace(v.String()))
		if err != nil {
			return nil
		}
		t = time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.UTC)
	case v.Type == gjson.Number && v.Int() > 0:
		t = time.Date(int(v.Int()), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return nil
	}
	return &t
}

func location(x gjson.Result) string {
	l := first(x, locationKeys...)
	if l.IsObject() {
		return str(l, "locationName", "geoLocationName", "name")
	}
	return strings.TrimSpace(l.String())
}

func fullName(p gjson.Result) string {
	if n := str(p, "name", "fullName", "full_name"); n != "" {
		return n
	}
	return strings.TrimSpace(str(p, "firstName", "first_name") + " " + str(p, "lastName", "last_name"))
}

func first(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func str(r gjson.Result, keys ...string) string {
	v := first(r, keys...)
	if v.IsObject() || v.IsArray() {
		return ""
	}
	return strings.TrimSpace(v.String())
}
