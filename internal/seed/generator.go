package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/talentflow/internal/domain/seniority"
)

const (
	defaultMinJobs     = 2
	defaultMaxJobs     = 6
	defaultFirstYear   = 2008
	careerStartSpread  = 8 // years
	minTenureMonths    = 6
	tenureSpreadMonths = 48
	promoteChance      = 0.35
	moveChance         = 0.7
	monthsPerYear      = 12
	maxSkills          = 4
)

// GeneratorOption applies a configuration option to the Generator.
type GeneratorOption func(*Generator)

// WithSeed makes the output reproducible.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) { g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithCompanies replaces the company pool. Pools with fewer than two companies are ignored.
func WithCompanies(pool []Company) GeneratorOption {
	return func(g *Generator) {
		if len(pool) >= 2 {
			g.companies = pool
		}
	}
}

// WithJobs bounds the number of positions per career.
func WithJobs(lo, hi int) GeneratorOption {
	return func(g *Generator) {
		if lo >= 1 && hi >= lo {
			g.minJobs, g.maxJobs = lo, hi
		}
	}
}

// WithNow fixes the reference time; careers never extend past it.
func WithNow(now time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// Generator produces synthetic career histories. Careers climb the built-in
// seniority ladder and hop between companies, favoring larger ones. It is not
// safe for concurrent use.
type Generator struct {
	rng       *rand.Rand
	companies []Company
	weights   []int
	total     int
	minJobs   int
	maxJobs   int
	now       time.Time
	next      int
}

// NewGenerator creates a generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		companies: DefaultCompanies,
		minJobs:   defaultMinJobs,
		maxJobs:   defaultMaxJobs,
		now:       time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g.weights = make([]int, len(g.companies))
	for i, c := range g.companies {
		w := sizeWeights[c.Size]
		if w == 0 {
			w = 1
		}
		g.weights[i] = w
		g.total += w
	}
	return g
}

// Generate returns n profiles.
func (g *Generator) Generate(n int) []Profile {
	out := make([]Profile, 0, n)
	for range n {
		out = append(out, g.Profile())
	}
	return out
}

// Profile returns one profile. Profile urns are sequential per generator.
func (g *Generator) Profile() Profile {
	g.next++
	p := Profile{
		ProfileURN:   fmt.Sprintf("urn:li:fs_profile:seed%06d", g.next),
		FirstName:    pick(g.rng, firstNames),
		LastName:     pick(g.rng, lastNames),
		LocationName: pick(g.rng, locations),
		Education: []Education{{
			School:       School{SchoolName: pick(g.rng, schools)},
			DegreeName:   "BSc",
			FieldOfStudy: pick(g.rng, fields),
		}},
	}
	for _, i := range g.rng.Perm(len(skillPool))[:1+g.rng.IntN(maxSkills)] {
		p.Skills = append(p.Skills, Skill{Name: skillPool[i]})
	}
	p.Experience = g.career()
	return p
}

func (g *Generator) career() []Position {
	jobs := g.minJobs + g.rng.IntN(g.maxJobs-g.minJobs+1)
	limit := monthIndex(g.now)
	first := monthIndex(time.Date(defaultFirstYear, time.January, 1, 0, 0, 0, 0, time.UTC))
	start := first + g.rng.IntN(careerStartSpread*monthsPerYear)
	if start >= limit {
		start = limit - 1
	}

	level := 0
	company := g.company(-1)
	location := pick(g.rng, locations)
	positions := make([]Position, 0, jobs)
	for j := 0; j < jobs; j++ {
		pos := Position{
			Title:        pick(g.rng, seniority.Ladder[level].Titles),
			Company:      g.ref(company),
			LocationName: location,
			TimePeriod:   TimePeriod{StartDate: yearMonth(start)},
		}
		end := start + minTenureMonths + g.rng.IntN(tenureSpreadMonths)
		last := j == jobs-1 || end+1 >= limit
		if !last {
			pos.TimePeriod.EndDate = yearMonth(end)
		}
		positions = append(positions, pos)
		if last {
			break
		}

		if level < len(seniority.Ladder)-1 && g.rng.Float64() < promoteChance {
			level++
		}
		if g.rng.Float64() < moveChance {
			company = g.company(company)
			if g.rng.IntN(3) == 0 {
				location = pick(g.rng, locations)
			}
		}
		start = end + 1
	}

	// Profiles list the newest position first.
	for i, j := 0, len(positions)-1; i < j; i, j = i+1, j-1 {
		positions[i], positions[j] = positions[j], positions[i]
	}
	return positions
}

// company draws a company index weighted by size, different from not.
func (g *Generator) company(not int) int {
	for {
		r := g.rng.IntN(g.total)
		for i, w := range g.weights {
			if r < w {
				if i != not {
					return i
				}
				break
			}
			r -= w
		}
	}
}

func (g *Generator) ref(i int) CompanyRef {
	c := g.companies[i]
	ref := CompanyRef{CompanyName: c.Name, CompanyURN: c.URN}
	if rng, ok := sizeRanges[c.Size]; ok {
		ref.EmployeeCountRange = &rng
	}
	if c.Industry != "" {
		ref.Industries = []string{c.Industry}
	}
	return ref
}

func pick(r *rand.Rand, from []string) string {
	return from[r.IntN(len(from))]
}

func monthIndex(t time.Time) int {
	return t.Year()*monthsPerYear + int(t.Month()) - 1
}

func yearMonth(idx int) *YearMonth {
	return &YearMonth{Year: idx / monthsPerYear, Month: idx%monthsPerYear + 1}
}
