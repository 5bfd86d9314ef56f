package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func event(id, from, to string, date *time.Time) model.TransitionEvent {
	return model.TransitionEvent{ID: id, ProfileURN: "urn:p:" + id, FromCompanyURN: from, ToCompanyURN: to, Date: *date}
}

func sampleGraph() *graph.Bipartite {
	g := graph.NewBipartite()
	g.UpsertCompany(model.Company{URN: "urn:c:lonely", Name: "Lonely"})
	g.SetEmployee(graph.EmployeeNode{ProfileURN: "urn:p:1"}, []graph.WorkedAt{
		{ProfileURN: "urn:p:1", CompanyURN: "urn:c:a", Start: day(2018, 1, 1), End: day(2020, 1, 1)},
		{ProfileURN: "urn:p:1", CompanyURN: "urn:c:b", Start: day(2020, 2, 1)},
	})
	g.SetEmployee(graph.EmployeeNode{ProfileURN: "urn:p:2"}, []graph.WorkedAt{
		{ProfileURN: "urn:p:2", CompanyURN: "urn:c:b", Start: day(2015, 1, 1), End: day(2016, 1, 1)},
		{ProfileURN: "urn:p:2", CompanyURN: "urn:c:a"},
	})
	return g
}

func TestMemoryGraphStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a graph store holding a small graph", t, func() {
		s := repository.NewMemoryGraphStore()
		So(s.SaveGraph(ctx, sampleGraph()), ShouldBeNil)
		So(s.SaveTransitions(ctx, []model.TransitionEvent{
			event("t1", "urn:c:a", "urn:c:b", day(2020, 2, 1)),
			event("t2", "urn:c:b", "urn:c:a", day(2016, 1, 1)),
		}), ShouldBeNil)

		Convey("Then stats count every node and edge", func() {
			st, err := s.Stats(ctx)
			So(err, ShouldBeNil)
			So(st, ShouldResemble, repository.GraphStats{Employees: 2, Companies: 3, WorkedAt: 4, Transitions: 2})
		})

		Convey("Then the open projection includes isolated companies", func() {
			p, err := s.Projection(ctx, model.Window{})
			So(err, ShouldBeNil)
			So(p.Nodes(), ShouldResemble, []string{"urn:c:a", "urn:c:b", "urn:c:lonely"})
			So(p.Weight("urn:c:a", "urn:c:b"), ShouldEqual, 1)
			So(p.Weight("urn:c:b", "urn:c:a"), ShouldEqual, 1)
		})

		Convey("Then a windowed projection keeps only transitions inside it", func() {
			p, err := s.Projection(ctx, model.Window{Start: *day(2019, 1, 1)})
			So(err, ShouldBeNil)
			So(p.NumNodes(), ShouldEqual, 3)
			So(p.NumEdges(), ShouldEqual, 1)
		})

		Convey("Then a windowed bipartite keeps overlapping edges only", func() {
			g, err := s.Bipartite(ctx, model.Window{Start: *day(2019, 1, 1), End: *day(2019, 6, 1)})
			So(err, ShouldBeNil)
			So(g.NumCompanies(), ShouldEqual, 3)
			So(g.NumEmployees(), ShouldEqual, 2)
			So(g.EdgesOf("urn:p:1"), ShouldHaveLength, 1)
			So(g.EdgesOf("urn:p:1")[0].CompanyURN, ShouldEqual, "urn:c:a")
			So(g.EdgesOf("urn:p:2"), ShouldBeEmpty)
		})

		Convey("Then headcount counts open-ended positions", func() {
			n, err := s.Headcount(ctx, "urn:c:a")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			n, _ = s.Headcount(ctx, "urn:c:missing")
			So(n, ShouldEqual, 0)
		})

		Convey("Then saving a profile again replaces its edges", func() {
			g := graph.NewBipartite()
			g.SetEmployee(graph.EmployeeNode{ProfileURN: "urn:p:1"}, []graph.WorkedAt{
				{ProfileURN: "urn:p:1", CompanyURN: "urn:c:a", Start: day(2018, 1, 1)},
			})
			So(s.SaveGraph(ctx, g), ShouldBeNil)
			st, _ := s.Stats(ctx)
			So(st.WorkedAt, ShouldEqual, 3)
		})

		Convey("Then single companies and employees can be looked up", func() {
			c, err := s.Company(ctx, "urn:c:lonely")
			So(err, ShouldBeNil)
			So(c.Name, ShouldEqual, "Lonely")
			_, err = s.Company(ctx, "urn:c:missing")
			So(errors.Is(err, repository.ErrCompanyAbsent), ShouldBeTrue)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)

			node, edges, err := s.Employee(ctx, "urn:p:1")
			So(err, ShouldBeNil)
			So(node.ProfileURN, ShouldEqual, "urn:p:1")
			So(edges, ShouldHaveLength, 2)
			_, _, err = s.Employee(ctx, "urn:p:missing")
			So(errors.Is(err, repository.ErrProfileAbsent), ShouldBeTrue)
		})

		Convey("Then an employee's transitions come newest first", func() {
			older := event("t3", "urn:c:b", "urn:c:a", day(2017, 1, 1))
			newer := event("t4", "urn:c:a", "urn:c:b", day(2021, 1, 1))
			older.ProfileURN, newer.ProfileURN = "urn:p:2", "urn:p:2"
			So(s.SaveTransitions(ctx, []model.TransitionEvent{older, newer}), ShouldBeNil)

			evs, err := s.Transitions(ctx, "urn:p:2")
			So(err, ShouldBeNil)
			So(evs, ShouldHaveLength, 2)
			So(evs[0].ID, ShouldEqual, "t4")
			So(evs[1].ID, ShouldEqual, "t3")
			none, err := s.Transitions(ctx, "urn:p:missing")
			So(err, ShouldBeNil)
			So(none, ShouldBeEmpty)
		})

		Convey("Then a closed store refuses reads", func() {
			So(s.Close(ctx), ShouldBeNil)
			_, err := s.Projection(ctx, model.Window{})
			So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
		})
	})
}

func TestMemoryEventStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an event store", t, func() {
		s := repository.NewMemoryEventStore()
		added, err := s.Append(ctx, []model.TransitionEvent{
			event("t2", "urn:c:a", "urn:c:b", day(2021, 5, 1)),
			event("t1", "urn:c:b", "urn:c:a", day(2020, 1, 1)),
			event("t3", "urn:c:x", "urn:c:y", day(2020, 6, 1)),
		})
		So(err, ShouldBeNil)
		So(added, ShouldHaveLength, 3)

		Convey("When the same ids are appended again", func() {
			added, err := s.Append(ctx, []model.TransitionEvent{
				event("t1", "urn:c:b", "urn:c:a", day(2020, 1, 1)),
				event("t4", "urn:c:a", "urn:c:z", day(2022, 1, 1)),
			})
			Convey("Then only the new one is stored and returned", func() {
				So(err, ShouldBeNil)
				So(added, ShouldHaveLength, 1)
				So(added[0].ID, ShouldEqual, "t4")
				c, _ := s.Count(ctx)
				So(c, ShouldEqual, 4)
			})
		})

		Convey("Then range returns both directions ordered by date", func() {
			evs, err := s.Range(ctx, "urn:c:a", model.Window{})
			So(err, ShouldBeNil)
			So(evs, ShouldHaveLength, 2)
			So(evs[0].ID, ShouldEqual, "t1")
			So(evs[1].ID, ShouldEqual, "t2")
		})

		Convey("Then the window end is exclusive", func() {
			evs, err := s.Range(ctx, "urn:c:a", model.Window{Start: *day(2020, 1, 1), End: *day(2021, 5, 1)})
			So(err, ShouldBeNil)
			So(evs, ShouldHaveLength, 1)
			So(evs[0].ID, ShouldEqual, "t1")
		})
	})
}

func TestWindowedBipartite(t *testing.T) {
	Convey("Given edges without a start date", t, func() {
		g := sampleGraph()

		Convey("Then they survive an open window only", func() {
			So(repository.WindowedBipartite(g, model.Window{}).NumEdges(), ShouldEqual, 4)
			w := model.Window{End: *day(2030, 1, 1)}
			So(repository.WindowedBipartite(g, w).NumEdges(), ShouldEqual, 3)
		})
	})
}
