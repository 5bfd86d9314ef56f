// Package seniority maps job titles to seniority levels and derives the
// seniority change of a career transition.
package seniority

import (
	"strings"
)

// Stage is one rung of the built-in career ladder.
type Stage struct {
	Name   string
	Level  int
	Titles []string
}

// Ladder is the built-in title ladder used when no table is configured and by the mock data generator.
var Ladder = []Stage{ //nolint:gochecknoglobals // read-only reference data
	{Name: "early", Level: 0, Titles: []string{
		"Software Engineer", "Data Scientist", "UI/UX Designer", "Product Manager",
		"Marketing Specialist", "Sales Representative", "Customer Success Manager",
	}},
	{Name: "mid", Level: 1, Titles: []string{
		"Senior Software Engineer", "Staff Software Engineer", "Senior Product Manager",
		"Senior Data Scientist", "Product Designer", "Marketing Manager", "Account Executive",
		"Sales Manager", "Technical Support Engineer", "DevOps Engineer", "Growth Marketer",
	}},
	{Name: "senior", Level: 2, Titles: []string{
		"Principal Engineer", "Engineering Manager", "Director of Engineering", "Director of Product",
		"Lead Data Scientist", "Data Science Manager", "Design Lead", "Creative Director", "SRE",
	}},
	{Name: "executive", Level: 3, Titles: []string{
		"VP of Engineering", "CTO", "VP of Product", "CMO", "VP of Sales",
	}},
}

// Table is a title -> level lookup. A nil *Table knows no titles.
type Table struct {
	levels map[string]int
}

// Option applies a configuration option to a Table.
type Option func(*Table)

// WithLevels adds title levels, overriding earlier entries for the same title.
func WithLevels(levels map[string]int) Option {
	return func(t *Table) {
		for title, level := range levels {
			if key := normalize(title); key != "" {
				t.levels[key] = level
			}
		}
	}
}

// WithLadder adds every title of the given stages.
func WithLadder(stages []Stage) Option {
	return func(t *Table) {
		for _, st := range stages {
			for _, title := range st.Titles {
				t.levels[normalize(title)] = st.Level
			}
		}
	}
}

// New builds a table from options. With no options the table is empty.
func New(opts ...Option) *Table {
	t := &Table{levels: make(map[string]int)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Default returns a table built from Ladder.
func Default() *Table {
	return New(WithLadder(Ladder))
}

// FromConfig returns a table for configured levels, falling back to Default when none are set.
func FromConfig(levels map[string]int) *Table {
	if len(levels) == 0 {
		return Default()
	}
	return New(WithLevels(levels))
}

// Level returns the level of title and whether the title is known.
func (t *Table) Level(title string) (int, bool) {
	if t == nil {
		return 0, false
	}
	level, ok := t.levels[normalize(title)]
	return level, ok
}

// Len returns the number of known titles.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.levels)
}

// Change returns -1, 0 or 1 for a move from oldTitle to newTitle.
// Unknown titles and a nil table yield 0.
func (t *Table) Change(oldTitle, newTitle string) int {
	from, ok := t.Level(oldTitle)
	if !ok {
		return 0
	}
	to, ok := t.Level(newTitle)
	if !ok {
		return 0
	}
	switch {
	case to > from:
		return 1
	case to < from:
		return -1
	default:
		return 0
	}
}

func normalize(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
