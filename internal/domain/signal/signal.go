// Package signal blends ranking influence and talent momentum into a single
// 0-100 investment signal per company.
//
// influence is the company's percentile in the latest PageRank snapshot (0
// when it is not ranked). momentum maps net flow onto [0,1]:
// (net/(in+out) + 1) / 2, with 0.5 when nothing moved in the window.
package signal

import (
	"github.com/okian/talentflow/internal/domain/flow"
	"github.com/okian/talentflow/internal/domain/types"
)

const (
	maxScore        = 100
	neutralMomentum = 0.5
)

// Policy weights the two factors. Weights are normalized by their sum.
type Policy struct {
	InfluenceWeight float64
	MomentumWeight  float64
}

// DefaultPolicy weighs influence and momentum equally.
func DefaultPolicy() Policy {
	return Policy{InfluenceWeight: 0.5, MomentumWeight: 0.5}
}

// Signal is the composite score with its factors.
type Signal struct {
	CompanyURN string       `json:"company_urn"`
	Score      float64      `json:"score"`
	Influence  float64      `json:"influence"`
	Momentum   float64      `json:"momentum"`
	Ranked     bool         `json:"ranked"`
	Flow       flow.Metrics `json:"flow"`
}

// Compute applies p to the company's ranking entries and flow metrics.
func (p Policy) Compute(company string, ranking []types.Entry, m flow.Metrics) Signal {
	influence, ranked := Percentile(company, ranking)
	momentum := Momentum(m)

	total := p.InfluenceWeight + p.MomentumWeight
	var score float64
	if total > 0 {
		score = maxScore * (p.InfluenceWeight*influence + p.MomentumWeight*momentum) / total
	}
	return Signal{
		CompanyURN: company,
		Score:      clamp(score, 0, maxScore),
		Influence:  influence,
		Momentum:   momentum,
		Ranked:     ranked,
		Flow:       m,
	}
}

// Percentile returns the share of other ranked companies that score strictly
// below company, in [0,1]. A lone ranked company gets 1.
func Percentile(company string, ranking []types.Entry) (float64, bool) {
	score, found := 0.0, false
	for _, e := range ranking {
		if e.CompanyURN == company {
			score, found = e.Score, true
			break
		}
	}
	if !found {
		return 0, false
	}
	if len(ranking) == 1 {
		return 1, true
	}
	below := 0
	for _, e := range ranking {
		if e.Score < score {
			below++
		}
	}
	return float64(below) / float64(len(ranking)-1), true
}

// Momentum maps net flow to [0,1].
func Momentum(m flow.Metrics) float64 {
	moves := m.Inflow + m.Outflow
	if moves == 0 {
		return neutralMomentum
	}
	return clamp((float64(m.NetFlow)/float64(moves)+1)/2, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
