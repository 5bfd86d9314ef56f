// Package seed generates synthetic career histories and drives a running
// talentflow API with them.
package seed

// Profile is a raw profile in the camelCase shape the ingestion endpoint reads.
type Profile struct {
	ProfileURN   string      `json:"profile_urn"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	LocationName string      `json:"locationName,omitempty"`
	Experience   []Position  `json:"experience"`
	Education    []Education `json:"education,omitempty"`
	Skills       []Skill     `json:"skills,omitempty"`
}

// Position is one job, newest first within a Profile.
type Position struct {
	Title        string     `json:"title"`
	Company      CompanyRef `json:"company"`
	LocationName string     `json:"locationName,omitempty"`
	TimePeriod   TimePeriod `json:"timePeriod"`
}

// CompanyRef carries the company identity and the metadata the profile knows.
type CompanyRef struct {
	CompanyName        string      `json:"companyName"`
	CompanyURN         string      `json:"companyUrn"`
	EmployeeCountRange *CountRange `json:"employeeCountRange,omitempty"`
	Industries         []string    `json:"industries,omitempty"`
}

// CountRange is an employee-count bracket.
type CountRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TimePeriod bounds a position; a nil EndDate means current.
type TimePeriod struct {
	StartDate *YearMonth `json:"startDate,omitempty"`
	EndDate   *YearMonth `json:"endDate,omitempty"`
}

// YearMonth is a month-precision date.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Education is one degree.
type Education struct {
	School       School `json:"school"`
	DegreeName   string `json:"degreeName,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
}

// School names an institution.
type School struct {
	SchoolName string `json:"schoolName"`
}

// Skill is a named skill.
type Skill struct {
	Name string `json:"name"`
}
