// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// CompanyRef identifies a company as it appears inside a profile.
type CompanyRef struct {
	URN  string `json:"company_urn,omitempty"`
	Name string `json:"name,omitempty"`
}

// Key returns the stable identity used for graph nodes: the URN when present,
// otherwise a name-derived key. Empty when the reference carries neither.
func (c CompanyRef) Key() string {
	if urn := strings.TrimSpace(c.URN); urn != "" {
		return urn
	}
	if name := strings.ToLower(strings.TrimSpace(c.Name)); name != "" {
		return "name:" + name
	}
	return ""
}

// Experience is one position held by an employee.
// Start is nil when the source omitted it; End is nil for a current position.
type Experience struct {
	Title    string     `json:"title,omitempty"`
	Company  CompanyRef `json:"company"`
	Location string     `json:"location,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
}

// DisplayDate returns the best-available date for the position: start, then end.
func (e Experience) DisplayDate() *time.Time {
	if e.Start != nil {
		return e.Start
	}
	return e.End
}

// Education is a degree entry. Not used by ranking or flow.
type Education struct {
	School       string     `json:"school,omitempty"`
	Degree       string     `json:"degree,omitempty"`
	FieldOfStudy string     `json:"field_of_study,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
}

// Employee is a normalized profile.
type Employee struct {
	ProfileURN     string       `json:"profile_urn" validate:"required,notblank"`
	Name           string       `json:"name,omitempty"`
	Headline       string       `json:"headline,omitempty"`
	Location       string       `json:"location,omitempty"`
	CurrentCompany CompanyRef   `json:"current_company" validate:"-"`
	Experience     []Experience `json:"experience" validate:"required,min=1,dive"`
	Education      []Education  `json:"education,omitempty"`
	Skills         []string     `json:"skills,omitempty"`
}

// Company carries company identity and dashboard metadata. Ranking and flow only use URN.
type Company struct {
	URN               string   `json:"company_urn"`
	Name              string   `json:"name"`
	Industries        []string `json:"industries,omitempty"`
	EmployeeCountFrom int      `json:"employee_count_from,omitempty"`
	EmployeeCountTo   int      `json:"employee_count_to,omitempty"`
	FundingStage      string   `json:"funding_stage,omitempty"`
	Valuation         float64  `json:"valuation,omitempty"`
	ExitStatus        string   `json:"exit_status,omitempty"`
	FoundedYear       int      `json:"founded_year,omitempty"`
}

// Merge fills empty fields of c from other. Used when the same company is
// seen in several profiles with partial metadata.
func (c *Company) Merge(other Company) {
	if c.Name == "" {
		c.Name = other.Name
	}
	if len(c.Industries) == 0 {
		c.Industries = other.Industries
	}
	if c.EmployeeCountFrom == 0 && c.EmployeeCountTo == 0 {
		c.EmployeeCountFrom, c.EmployeeCountTo = other.EmployeeCountFrom, other.EmployeeCountTo
	}
	if c.FundingStage == "" {
		c.FundingStage = other.FundingStage
	}
	if c.Valuation == 0 {
		c.Valuation = other.Valuation
	}
	if c.ExitStatus == "" {
		c.ExitStatus = other.ExitStatus
	}
	if c.FoundedYear == 0 {
		c.FoundedYear = other.FoundedYear
	}
}
