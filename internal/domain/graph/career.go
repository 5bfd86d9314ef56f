package graph

import (
	"sort"
	"time"

	"github.com/okian/talentflow/internal/domain/model"
)

// Career is the career path of one employee.
type Career struct {
	Profile             EmployeeNode            `json:"profile"`
	Positions           []WorkedAt              `json:"positions"`
	Transitions         []model.TransitionEvent `json:"transitions"`
	Companies           int                     `json:"companies"`
	AverageTenureMonths float64                 `json:"average_tenure_months"`
	Promotions          int                     `json:"promotions"`
	LateralMoves        int                     `json:"lateral_moves"`
	Demotions           int                     `json:"demotions"`
}

// CareerPath lists positions oldest first and transitions newest first.
// Open positions run until now. Undated positions come last and are left out
// of the average tenure.
func CareerPath(node EmployeeNode, edges []WorkedAt, transitions []model.TransitionEvent, now time.Time) Career {
	positions := make([]WorkedAt, len(edges))
	copy(positions, edges)
	sort.SliceStable(positions, func(i, j int) bool {
		a, b := positions[i].Start, positions[j].Start
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	moves := make([]model.TransitionEvent, len(transitions))
	copy(moves, transitions)
	sort.SliceStable(moves, func(i, j int) bool {
		if !moves[i].Date.Equal(moves[j].Date) {
			return moves[i].Date.After(moves[j].Date)
		}
		return moves[i].ID < moves[j].ID
	})

	c := Career{Profile: node, Positions: positions, Transitions: moves}
	companies := make(map[string]struct{}, len(positions))
	months, dated := 0, 0
	for _, p := range positions {
		companies[p.CompanyURN] = struct{}{}
		if p.Start == nil {
			continue
		}
		end := now
		if p.End != nil {
			end = *p.End
		}
		months += monthsBetween(*p.Start, end)
		dated++
	}
	c.Companies = len(companies)
	if dated > 0 {
		c.AverageTenureMonths = float64(months) / float64(dated)
	}
	for _, t := range moves {
		switch {
		case t.SeniorityChange > 0:
			c.Promotions++
		case t.SeniorityChange < 0:
			c.Demotions++
		default:
			c.LateralMoves++
		}
	}
	return c
}

func monthsBetween(from, to time.Time) int {
	n := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	return max(n, 0)
}
