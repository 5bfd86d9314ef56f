package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
)

type biRanker struct {
	cfg Config
}

func (b *biRanker) Algorithm() Algorithm { return BiRank }

func (b *biRanker) Rank(ctx context.Context, r GraphReader, w model.Window) (*Result, error) {
	g, err := r.Bipartite(ctx, w)
	if err != nil {
		return nil, model.NewGraphQueryError("load bipartite", err)
	}
	return ComputeBiRank(ctx, g, b.cfg)
}

type link struct {
	other  int
	weight float64 // symmetric-normalized w_ij / sqrt(d_i * d_j)
}

// ComputeBiRank alternates company and employee updates over the symmetric
// normalized worked-at matrix, with Damping as the weight of propagation
// against a uniform prior. Each side is divided by its maximum every
// iteration. Company scores end in [0,1] with the top company at 1.
func ComputeBiRank(ctx context.Context, g *graph.Bipartite, cfg Config) (*Result, error) {
	res := newResult(BiRank, NormalizationMax)
	companies := g.CompanyURNs()
	if len(companies) == 0 {
		return res, nil
	}
	employees := g.Employees()

	cIndex := make(map[string]int, len(companies))
	for i, urn := range companies {
		cIndex[urn] = i
	}

	// Edge multiplicity: an employee with two stints at one company weighs 2.
	weights := make([]map[int]float64, len(employees))
	empDeg := make([]float64, len(employees))
	compDeg := make([]float64, len(companies))
	for i, e := range employees {
		weights[i] = make(map[int]float64)
		for _, edge := range g.EdgesOf(e.ProfileURN) {
			j, ok := cIndex[edge.CompanyURN]
			if !ok {
				continue
			}
			weights[i][j]++
			empDeg[i]++
			compDeg[j]++
		}
	}

	byEmployee := make([][]link, len(employees))
	byCompany := make([][]link, len(companies))
	for i, row := range weights {
		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		for _, j := range cols {
			s := row[j] / math.Sqrt(empDeg[i]*compDeg[j])
			byEmployee[i] = append(byEmployee[i], link{other: j, weight: s})
			byCompany[j] = append(byCompany[j], link{other: i, weight: s})
		}
	}

	alpha, beta := cfg.Damping, cfg.Damping
	p := ones(len(companies))
	u := ones(len(employees))
	pNext := make([]float64, len(companies))
	uNext := make([]float64, len(employees))

	var delta float64
	iterations := 0
	converged := false
	for iterations < cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("birank: %w", err)
		}
		iterations++

		for j, links := range byCompany {
			var sum float64
			for _, l := range links {
				sum += l.weight * u[l.other]
			}
			pNext[j] = alpha*sum + (1 - alpha)
		}
		normalizeMax(pNext)

		for i, links := range byEmployee {
			var sum float64
			for _, l := range links {
				sum += l.weight * pNext[l.other]
			}
			uNext[i] = beta*sum + (1 - beta)
		}
		normalizeMax(uNext)

		delta = l1(p, pNext) + l1(u, uNext)
		p, pNext = pNext, p
		u, uNext = uNext, u
		if delta < cfg.Epsilon {
			converged = true
			break
		}
	}

	for j, urn := range companies {
		res.Scores[urn] = p[j]
	}
	res.finish(cfg, iterations, delta, converged)
	return res, nil
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func normalizeMax(v []float64) {
	var m float64
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	if m == 0 {
		return
	}
	for i := range v {
		v[i] /= m
	}
}
