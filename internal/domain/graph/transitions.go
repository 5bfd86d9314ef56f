package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/seniority"
)

const hoursPerDay = 24

// ExtractTransitions diffs consecutive experience entries of one employee.
// Entries without a start date cannot be ordered and are skipped. The rest are
// sorted by start ascending; equal starts keep reverse input order, since
// profiles list the newest position first. Adjacent entries at different
// companies yield one event dated at the later start. A nil table gives a
// seniority change of 0.
func ExtractTransitions(e model.Employee, table *seniority.Table) []model.TransitionEvent {
	dated := make([]model.Experience, 0, len(e.Experience))
	for i := len(e.Experience) - 1; i >= 0; i-- {
		exp := e.Experience[i]
		if exp.Start == nil || exp.Company.Key() == "" {
			continue
		}
		dated = append(dated, exp)
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Start.Before(*dated[j].Start)
	})

	var out []model.TransitionEvent
	for i := 1; i < len(dated); i++ {
		earlier, later := dated[i-1], dated[i]
		from, to := earlier.Company.Key(), later.Company.Key()
		if from == to {
			continue
		}
		date := later.Start.UTC()
		out = append(out, model.TransitionEvent{
			ID:              model.TransitionID(e.ProfileURN, from, to, date),
			ProfileURN:      e.ProfileURN,
			FromCompanyURN:  from,
			ToCompanyURN:    to,
			Date:            date,
			OldTitle:        earlier.Title,
			NewTitle:        later.Title,
			SeniorityChange: table.Change(earlier.Title, later.Title),
			TenureDays:      tenureDays(*earlier.Start, *later.Start),
			LocationChange:  locationChanged(earlier.Location, later.Location),
		})
	}
	return out
}

func tenureDays(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / hoursPerDay)
	if d < 0 {
		return 0
	}
	return d
}

// locationChanged is true only when both locations are known and differ.
func locationChanged(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && !strings.EqualFold(a, b)
}
