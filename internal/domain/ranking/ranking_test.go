package ranking_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

type stubReader struct {
	proj *graph.Projection
	bip  *graph.Bipartite
	err  error
}

func (s *stubReader) Projection(context.Context, model.Window) (*graph.Projection, error) {
	return s.proj, s.err
}

func (s *stubReader) Bipartite(context.Context, model.Window) (*graph.Bipartite, error) {
	return s.bip, s.err
}

func randomProjection(seed int64, nodes, edges int) *graph.Projection {
	rng := rand.New(rand.NewSource(seed))
	p := graph.NewProjection()
	for i := 0; i < nodes; i++ {
		p.AddNode(fmt.Sprintf("c%02d", i))
	}
	for i := 0; i < edges; i++ {
		p.AddTransition(fmt.Sprintf("c%02d", rng.Intn(nodes)), fmt.Sprintf("c%02d", rng.Intn(nodes)), 1+rng.Intn(3))
	}
	return p
}

func sum(scores map[string]float64) float64 {
	var s float64
	for _, v := range scores {
		s += v
	}
	return s
}

func TestPageRank(t *testing.T) {
	ctx := context.Background()

	Convey("Given random projections with dangling and isolated companies", t, func() {
		for seed := int64(1); seed <= 5; seed++ {
			p := randomProjection(seed, 12, 15)
			res, err := ranking.ComputePageRank(ctx, p, ranking.Config{Damping: 0.85, Epsilon: 1e-9, MaxIterations: 200})

			Convey(fmt.Sprintf("Then scores sum to 1 for seed %d", seed), func() {
				So(err, ShouldBeNil)
				So(res.Len(), ShouldEqual, 12)
				So(math.Abs(sum(res.Scores)-1), ShouldBeLessThan, 1e-6)
				for _, s := range res.Scores {
					So(s, ShouldBeGreaterThan, 0)
				}
			})
		}
	})

	Convey("Given a single flow a -> b", t, func() {
		p := graph.NewProjection()
		p.AddTransition("a", "b", 3)
		p.AddNode("c")
		rk, err := ranking.New(ranking.PageRank)
		So(err, ShouldBeNil)
		res, err := rk.Rank(ctx, &stubReader{proj: p}, model.Window{})

		Convey("Then the destination outranks the source and the isolated node", func() {
			So(err, ShouldBeNil)
			So(res.Converged, ShouldBeTrue)
			So(res.Warning, ShouldBeNil)
			So(res.Normalization, ShouldEqual, ranking.NormalizationSum)
			So(res.Scores["b"], ShouldBeGreaterThan, res.Scores["a"])
			// a and c receive the same teleport and dangling mass.
			So(math.Abs(res.Scores["a"]-res.Scores["c"]), ShouldBeLessThan, 1e-9)
			So(res.Ranked()[0].CompanyURN, ShouldEqual, "b")
		})
	})

	Convey("Given an empty projection", t, func() {
		res, err := ranking.ComputePageRank(ctx, graph.NewProjection(), ranking.Config{Damping: 0.85, Epsilon: 1e-6, MaxIterations: 100})

		Convey("Then the result is empty and not an error", func() {
			So(err, ShouldBeNil)
			So(res.Len(), ShouldEqual, 0)
			So(res.Converged, ShouldBeTrue)
			So(res.Ranked(), ShouldBeEmpty)
		})
	})

	Convey("Given an iteration cap too small to converge", t, func() {
		rk, _ := ranking.New(ranking.PageRank, ranking.WithMaxIterations(1), ranking.WithEpsilon(1e-12))
		res, err := rk.Rank(ctx, &stubReader{proj: randomProjection(3, 8, 20)}, model.Window{})

		Convey("Then the partial result is flagged with a warning", func() {
			So(err, ShouldBeNil)
			So(res.Converged, ShouldBeFalse)
			So(res.Iterations, ShouldEqual, 1)
			So(res.Warning, ShouldNotBeNil)
			So(res.Warning.String(), ShouldContainSubstring, "did not converge")
			So(math.Abs(sum(res.Scores)-1), ShouldBeLessThan, 1e-9)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ranking.ComputePageRank(cctx, randomProjection(1, 4, 4), ranking.Config{Damping: 0.85, Epsilon: 1e-6, MaxIterations: 10})

		Convey("Then the run stops with the context error", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func bipartite() *graph.Bipartite {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	g := graph.NewBipartite()
	hub := []string{"e1", "e2", "e3", "e4"}
	for _, e := range hub {
		g.SetEmployee(graph.EmployeeNode{ProfileURN: e}, []graph.WorkedAt{
			{ProfileURN: e, CompanyURN: "hub", Start: &start},
		})
	}
	g.SetEmployee(graph.EmployeeNode{ProfileURN: "e5"}, []graph.WorkedAt{
		{ProfileURN: "e5", CompanyURN: "small", Start: &start},
		{ProfileURN: "e5", CompanyURN: "hub", Start: &start},
	})
	g.UpsertCompany(model.Company{URN: "lonely"})
	return g
}

func TestBiRank(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bipartite graph with a hub company", t, func() {
		rk, err := ranking.New(ranking.BiRank)
		So(err, ShouldBeNil)
		res, err := rk.Rank(ctx, &stubReader{bip: bipartite()}, model.Window{})

		Convey("Then scores are max-normalized and the hub is on top", func() {
			So(err, ShouldBeNil)
			So(res.Converged, ShouldBeTrue)
			So(res.Normalization, ShouldEqual, ranking.NormalizationMax)
			So(res.Len(), ShouldEqual, 3)
			for _, s := range res.Scores {
				So(s, ShouldBeBetweenOrEqual, 0, 1)
			}
			So(res.Scores["hub"], ShouldAlmostEqual, 1.0, 1e-12)
			So(res.Scores["small"], ShouldBeGreaterThan, res.Scores["lonely"])
		})

		Convey("Then running twice gives identical scores", func() {
			again, err := rk.Rank(ctx, &stubReader{bip: bipartite()}, model.Window{})
			So(err, ShouldBeNil)
			So(again.Scores, ShouldResemble, res.Scores)
		})
	})

	Convey("Given an empty bipartite graph", t, func() {
		res, err := ranking.ComputeBiRank(ctx, graph.NewBipartite(), ranking.Config{Damping: 0.85, Epsilon: 1e-6, MaxIterations: 100})

		Convey("Then the result is empty", func() {
			So(err, ShouldBeNil)
			So(res.Len(), ShouldEqual, 0)
		})
	})
}

func TestRankerErrors(t *testing.T) {
	Convey("Given a reader that fails", t, func() {
		cause := errors.New("neo4j unavailable")
		for _, alg := range []ranking.Algorithm{ranking.PageRank, ranking.BiRank} {
			rk, _ := ranking.New(alg)
			_, err := rk.Rank(context.Background(), &stubReader{err: cause}, model.Window{})

			Convey("Then "+string(alg)+" fails atomically with a graph query error", func() {
				So(errors.Is(err, model.ErrGraphQuery), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
			})
		}
	})

	Convey("Given algorithm names", t, func() {
		alg, err := ranking.ParseAlgorithm(" BiRank ")
		So(err, ShouldBeNil)
		So(alg, ShouldEqual, ranking.BiRank)

		alg, err = ranking.ParseAlgorithm("")
		So(err, ShouldBeNil)
		So(alg, ShouldEqual, ranking.PageRank)

		_, err = ranking.ParseAlgorithm("hits")
		So(errors.Is(err, model.ErrUnknownRanking), ShouldBeTrue)

		_, err = ranking.New("hits")
		So(errors.Is(err, model.ErrUnknownRanking), ShouldBeTrue)
	})
}

func TestRankedOrdering(t *testing.T) {
	Convey("Given tied scores", t, func() {
		res := &ranking.Result{Scores: map[string]float64{"b": 0.5, "a": 0.5, "c": 0.9}}
		entries := res.Ranked()

		Convey("Then ties break by urn ascending", func() {
			So(entries[0].CompanyURN, ShouldEqual, "c")
			So(entries[1].CompanyURN, ShouldEqual, "a")
			So(entries[2].CompanyURN, ShouldEqual, "b")
			So(entries[2].Rank, ShouldEqual, 3)
		})
	})
}
