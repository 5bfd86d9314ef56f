package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// transitionNamespace scopes name-based transition ids.
var transitionNamespace = uuid.MustParse("6f1c2d3e-8a4b-4c5d-9e6f-7a8b9c0d1e2f")

// TransitionEvent is a move of one employee between two distinct companies.
// Events are immutable once appended to the event store.
type TransitionEvent struct {
	ID              string    `json:"id"`
	ProfileURN      string    `json:"profile_urn"`
	FromCompanyURN  string    `json:"from_company_urn"`
	ToCompanyURN    string    `json:"to_company_urn"`
	Date            time.Time `json:"transition_date"`
	OldTitle        string    `json:"old_title,omitempty"`
	NewTitle        string    `json:"new_title,omitempty"`
	SeniorityChange int       `json:"seniority_change"`
	TenureDays      int       `json:"tenure_days"`
	LocationChange  bool      `json:"location_change"`
}

// TransitionID derives a deterministic id so re-ingesting a profile yields the same events.
func TransitionID(profileURN, from, to string, date time.Time) string {
	name := fmt.Sprintf("%s|%s|%s|%s", profileURN, from, to, date.UTC().Format("2006-01-02"))
	return uuid.NewSHA1(transitionNamespace, []byte(name)).String()
}
