package ranking

import (
	"context"
	"fmt"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
)

type pageRanker struct {
	cfg Config
}

func (p *pageRanker) Algorithm() Algorithm { return PageRank }

func (p *pageRanker) Rank(ctx context.Context, r GraphReader, w model.Window) (*Result, error) {
	proj, err := r.Projection(ctx, w)
	if err != nil {
		return nil, model.NewGraphQueryError("load projection", err)
	}
	return ComputePageRank(ctx, proj, p.cfg)
}

// ComputePageRank runs weighted PageRank over the projection. Edges point in
// the direction talent flows. Dangling companies spread their rank uniformly
// over all companies, so scores always sum to 1.
func ComputePageRank(ctx context.Context, proj *graph.Projection, cfg Config) (*Result, error) {
	res := newResult(PageRank, NormalizationSum)
	nodes := proj.Nodes()
	n := len(nodes)
	if n == 0 {
		return res, nil
	}

	index := make(map[string]int, n)
	for i, urn := range nodes {
		index[urn] = i
	}
	type arc struct {
		to     int
		weight float64
	}
	outs := make([][]arc, n)
	outWeight := make([]float64, n)
	for _, e := range proj.Edges() {
		from := index[e.From]
		outs[from] = append(outs[from], arc{to: index[e.To], weight: float64(e.Weight)})
		outWeight[from] += float64(e.Weight)
	}

	d := cfg.Damping
	uniform := 1 / float64(n)
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = uniform
	}
	next := make([]float64, n)

	var delta float64
	iterations := 0
	converged := false
	for iterations < cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pagerank: %w", err)
		}
		iterations++

		var dangling float64
		for i := range rank {
			if outWeight[i] == 0 {
				dangling += rank[i]
			}
		}
		base := (1-d)*uniform + d*dangling*uniform
		for i := range next {
			next[i] = base
		}
		for i, arcs := range outs {
			if outWeight[i] == 0 {
				continue
			}
			share := d * rank[i] / outWeight[i]
			for _, a := range arcs {
				next[a.to] += share * a.weight
			}
		}

		delta = l1(rank, next)
		rank, next = next, rank
		if delta < cfg.Epsilon {
			converged = true
			break
		}
	}

	for i, urn := range nodes {
		res.Scores[urn] = rank[i]
	}
	res.finish(cfg, iterations, delta, converged)
	return res, nil
}
