package service_test

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentflow/internal/adapters/cache"
	"github.com/okian/talentflow/internal/adapters/repository"
	service "github.com/okian/talentflow/internal/app"
	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/pkg/logger"
)

const batch = `[
  {"profile_urn": "urn:p:1", "name": "Ana", "experiences": [
    {"title": "Engineer", "company_name": "Acme", "start_date": "2018-01", "end_date": "2019-12"},
    {"title": "Senior Engineer", "company_name": "Globex", "start_date": "2020-01"}
  ]},
  {"profile_urn": "urn:p:2", "name": "Ben", "experiences": [
    {"title": "Analyst", "company_name": "Globex", "start_date": "2017-01", "end_date": "2019-05"},
    {"title": "Engineer", "company_name": "Acme", "start_date": "2019-06", "end_date": "2021-02"},
    {"title": "Manager", "company_name": "Initech", "start_date": "2021-03"}
  ]},
  {"profile_urn": "urn:p:3", "name": "Cy", "experiences": [
    {"title": "Engineer", "company_name": "Initech", "start_date": "2016-01", "end_date": "2022-01"},
    {"title": "Engineer", "company_name": "Globex", "start_date": "2022-02"}
  ]},
  {"profile_urn": "urn:p:4", "name": "Dee", "experiences": []}
]`

const mover = `{"profile_urn": "urn:p:5", "experiences": [
  {"title": "Engineer", "company_name": "Initech", "start_date": "2015-01", "end_date": "2023-01"},
  {"title": "Engineer", "company_name": "Globex", "start_date": "2023-02"}
]}`

const newcomer = `{"profile_urn": "urn:p:6", "experiences": [
  {"title": "Analyst", "company_name": "Acme", "start_date": "2019-01", "end_date": "2020-12"},
  {"title": "Analyst", "company_name": "Initech", "start_date": "2021-01"}
]}`

const (
	acme    = "name:acme"
	globex  = "name:globex"
	initech = "name:initech"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

// flakyEvents fails the first Append and delegates everything else.
type flakyEvents struct {
	*repository.MemoryEventStore
	mu     sync.Mutex
	failed bool
}

func (f *flakyEvents) Append(ctx context.Context, events []model.TransitionEvent) ([]model.TransitionEvent, error) {
	f.mu.Lock()
	if !f.failed {
		f.failed = true
		f.mu.Unlock()
		return nil, errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.MemoryEventStore.Append(ctx, events)
}

// recordingPublisher keeps every event it is asked to publish.
type recordingPublisher struct {
	mu  sync.Mutex
	got []model.TransitionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events []model.TransitionEvent) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, events...)
	return len(events), nil
}

func (p *recordingPublisher) Close() error { return nil }

// gatedGraph blocks SaveGraph until the gate is closed.
type gatedGraph struct {
	*repository.MemoryGraphStore
	gate chan struct{}
}

func (g *gatedGraph) SaveGraph(ctx context.Context, b *graph.Bipartite) error {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.MemoryGraphStore.SaveGraph(ctx, b)
}

func TestIngest(t *testing.T) {
	Convey("Given a service on in-memory stores", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("When a batch is ingested", func() {
			report, err := svc.Ingest(ctx, []byte(batch))
			So(err, ShouldBeNil)

			Convey("Then valid profiles are accepted and the empty one rejected", func() {
				So(report.Accepted, ShouldEqual, 3)
				So(report.Rejected, ShouldHaveLength, 1)
				So(report.Rejected[0].Record, ShouldEqual, "urn:p:4")
				So(report.Rejected[0].Index, ShouldEqual, 3)
				So(errors.Is(report.Rejected[0], model.ErrValidation), ShouldBeTrue)
			})

			Convey("Then every transition is new and the generation moves", func() {
				So(report.Transitions, ShouldEqual, 4)
				So(report.NewTransitions, ShouldEqual, 4)
				So(report.Duplicates, ShouldEqual, 0)
				So(report.StoreErrors, ShouldBeEmpty)
				So(report.Generation, ShouldEqual, 1)
				So(svc.Generation(), ShouldEqual, 1)
			})

			Convey("Then re-ingesting the same batch yields only duplicates", func() {
				again, err := svc.Ingest(ctx, []byte(batch))
				So(err, ShouldBeNil)
				So(again.Accepted, ShouldEqual, 3)
				So(again.Duplicates, ShouldEqual, 4)
				So(again.NewTransitions, ShouldEqual, 0)
				So(again.Generation, ShouldEqual, 2)

				st, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(st.Events, ShouldEqual, 4)
				So(st.Graph.Companies, ShouldEqual, 3)
				So(st.Graph.Employees, ShouldEqual, 3)
				So(st.Graph.Transitions, ShouldEqual, 4)
				So(st.DedupeSize, ShouldEqual, 4)
			})

			Convey("Then the projection holds every company and move", func() {
				p, err := svc.Projection(ctx, model.Window{})
				So(err, ShouldBeNil)
				So(p.Nodes, ShouldHaveLength, 3)
				So(p.Edges, ShouldHaveLength, 4)
			})
		})

		Convey("When the payload is not JSON", func() {
			_, err := svc.Ingest(ctx, []byte("{not json"))

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(svc.Generation(), ShouldEqual, 0)
			})
		})

		Convey("When a batch has no valid profile", func() {
			report, err := svc.Ingest(ctx, []byte(`[{"profile_urn": "urn:p:9"}]`))

			Convey("Then nothing is written and the generation stays", func() {
				So(err, ShouldBeNil)
				So(report.Accepted, ShouldEqual, 0)
				So(report.Rejected, ShouldHaveLength, 1)
				So(report.Generation, ShouldEqual, 0)
			})
		})
	})

	Convey("Given an event store whose first append fails", t, func() {
		ctx := context.Background()
		events := &flakyEvents{MemoryEventStore: repository.NewMemoryEventStore()}
		svc := service.New(service.WithEventStore(events))

		report, err := svc.Ingest(ctx, []byte(batch))

		Convey("Then the failure is reported, not returned", func() {
			So(err, ShouldBeNil)
			So(report.StoreErrors, ShouldHaveLength, 1)
			So(report.StoreErrors[0].Store, ShouldEqual, "events")
			So(report.NewTransitions, ShouldEqual, 0)
		})

		Convey("Then a retry appends the transitions", func() {
			again, err := svc.Ingest(ctx, []byte(batch))
			So(err, ShouldBeNil)
			So(again.StoreErrors, ShouldBeEmpty)
			So(again.Duplicates, ShouldEqual, 0)
			So(again.NewTransitions, ShouldEqual, 4)
		})
	})

	Convey("Given an event store that already holds a transition", t, func() {
		ctx := context.Background()
		events := repository.NewMemoryEventStore()
		_, err := service.New(service.WithEventStore(events)).Ingest(ctx, []byte(mover))
		So(err, ShouldBeNil)

		Convey("When a fresh service ingests it again with a new profile", func() {
			pub := &recordingPublisher{}
			svc := service.New(service.WithEventStore(events), service.WithPublisher(pub))
			report, err := svc.Ingest(ctx, []byte("["+mover+","+newcomer+"]"))
			So(err, ShouldBeNil)

			Convey("Then only the stored transition is new and published", func() {
				So(report.Transitions, ShouldEqual, 2)
				So(report.NewTransitions, ShouldEqual, 1)
				So(report.Duplicates, ShouldEqual, 1)
				So(report.Published, ShouldEqual, 1)
				So(pub.got, ShouldHaveLength, 1)
				So(pub.got[0].ProfileURN, ShouldEqual, "urn:p:6")
				n, _ := events.Count(ctx)
				So(n, ShouldEqual, 2)
			})
		})
	})
}

func TestRankings(t *testing.T) {
	Convey("Given an ingested service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithMaxRankingLimit(2))

		Convey("When no ranking has run", func() {
			_, _, err := svc.Rankings(ctx, "pagerank", 10)

			Convey("Then the snapshot is not found", func() {
				So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})

		_, err := svc.Ingest(ctx, []byte(batch))
		So(err, ShouldBeNil)

		Convey("When PageRank runs over the open window", func() {
			info, err := svc.RunRanking(ctx, "", model.Window{})
			So(err, ShouldBeNil)

			Convey("Then every company is scored", func() {
				So(string(info.Algorithm), ShouldEqual, "pagerank")
				So(info.Companies, ShouldEqual, 3)
				So(info.Converged, ShouldBeTrue)
			})

			Convey("Then the top entries are capped by the maximum limit", func() {
				entries, _, err := svc.Rankings(ctx, "pagerank", 50)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[0].Score, ShouldBeGreaterThanOrEqualTo, entries[1].Score)
			})

			Convey("Then a single company's rank matches the listing", func() {
				entries, _, err := svc.Rankings(ctx, "pagerank", 1)
				So(err, ShouldBeNil)
				e, err := svc.Rank(ctx, "pagerank", entries[0].CompanyURN)
				So(err, ShouldBeNil)
				So(e, ShouldResemble, entries[0])
			})

			Convey("Then an unknown company is not found", func() {
				_, err := svc.Rank(ctx, "pagerank", "urn:nowhere")
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then a non-positive limit is rejected", func() {
				_, _, err := svc.Rankings(ctx, "pagerank", 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When BiRank runs", func() {
			info, err := svc.RunRanking(ctx, "birank", model.Window{})
			So(err, ShouldBeNil)

			Convey("Then the top score is 1", func() {
				So(string(info.Normalization), ShouldEqual, "max")
				entries, _, err := svc.Rankings(ctx, "birank", 1)
				So(err, ShouldBeNil)
				So(entries[0].Score, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When the algorithm is unknown", func() {
			_, err := svc.RunRanking(ctx, "hits", model.Window{})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrUnknownRanking), ShouldBeTrue)
			})
		})

		Convey("When the window is inverted", func() {
			w := model.Window{Start: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
			_, err := svc.RunRanking(ctx, "pagerank", w)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrInvalidWindow), ShouldBeTrue)
			})
		})
	})
}

func TestFlowAndSignal(t *testing.T) {
	Convey("Given an ingested service with a memory cache", t, func() {
		ctx := context.Background()
		c := cache.NewMemory()
		svc := service.New(service.WithCache(c))
		_, err := svc.Ingest(ctx, []byte(batch))
		So(err, ShouldBeNil)

		Convey("When flow is queried without a headcount", func() {
			m, err := svc.Flow(ctx, globex, model.Window{}, nil)
			So(err, ShouldBeNil)

			Convey("Then moves and the current headcount are counted", func() {
				So(m.Inflow, ShouldEqual, 2)
				So(m.Outflow, ShouldEqual, 1)
				So(m.NetFlow, ShouldEqual, 1)
				So(m.Headcount, ShouldEqual, 2)
				So(c.Len(), ShouldEqual, 1)
			})

			Convey("Then new data is visible on the next query", func() {
				_, err := svc.Ingest(ctx, []byte(mover))
				So(err, ShouldBeNil)
				m, err := svc.Flow(ctx, globex, model.Window{}, nil)
				So(err, ShouldBeNil)
				So(m.Inflow, ShouldEqual, 3)
				So(m.Headcount, ShouldEqual, 3)
			})
		})

		Convey("When flow is queried with an explicit headcount and window", func() {
			hc := 10
			w, err := model.ParseWindow("2020-01-01", "2022-01-01")
			So(err, ShouldBeNil)
			m, err := svc.Flow(ctx, acme, w, &hc)

			Convey("Then only moves inside the window count", func() {
				So(err, ShouldBeNil)
				So(m.Inflow, ShouldEqual, 0)
				So(m.Outflow, ShouldEqual, 2)
				So(m.Headcount, ShouldEqual, 10)
				So(m.ChurnRate, ShouldAlmostEqual, 20.0, 1e-9)
			})
		})

		Convey("When a signal is asked for before any PageRank run", func() {
			sig, err := svc.Signal(ctx, globex, model.Window{}, nil)
			So(err, ShouldBeNil)

			Convey("Then only momentum contributes", func() {
				So(sig.Ranked, ShouldBeFalse)
				So(sig.Influence, ShouldEqual, 0)
				So(sig.Momentum, ShouldAlmostEqual, 2.0/3.0, 1e-9)
				So(sig.Score, ShouldAlmostEqual, 100.0/3.0, 1e-9)
			})
		})

		Convey("When a signal is asked for after a PageRank run", func() {
			_, err := svc.RunRanking(ctx, "pagerank", model.Window{})
			So(err, ShouldBeNil)
			sig, err := svc.Signal(ctx, initech, model.Window{}, nil)
			So(err, ShouldBeNil)

			Convey("Then the company is ranked and the score is bounded", func() {
				So(sig.Ranked, ShouldBeTrue)
				So(sig.Score, ShouldBeBetweenOrEqual, 0.0, 100.0)
				So(math.IsNaN(sig.Influence), ShouldBeFalse)
			})
		})
	})
}

func waitForJob(ctx context.Context, svc *service.Service, id string, want service.JobState) service.JobStatus {
	deadline := time.Now().Add(5 * time.Second)
	for {
		st, err := svc.Job(ctx, id)
		if err == nil && st.State == want {
			return st
		}
		if time.Now().After(deadline) {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmit(t *testing.T) {
	Convey("Given a service that has not been started", t, func() {
		svc := service.New()

		Convey("Then submit is refused", func() {
			_, err := svc.Submit(context.Background(), []byte(batch))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("When a batch is submitted", func() {
			st, err := svc.Submit(ctx, []byte(batch))
			So(err, ShouldBeNil)
			So(st.State, ShouldEqual, service.JobQueued)

			Convey("Then the job finishes with its report", func() {
				done := waitForJob(ctx, svc, st.ID, service.JobDone)
				So(done.State, ShouldEqual, service.JobDone)
				So(done.FinishedAt, ShouldNotBeNil)
				So(done.Report.Accepted, ShouldEqual, 3)
			})
		})

		Convey("When an invalid payload is submitted", func() {
			st, err := svc.Submit(ctx, []byte("nope"))
			So(err, ShouldBeNil)

			Convey("Then the job fails", func() {
				failed := waitForJob(ctx, svc, st.ID, service.JobFailed)
				So(failed.State, ShouldEqual, service.JobFailed)
				So(failed.Error, ShouldNotBeEmpty)
			})
		})

		Convey("When an unknown job is looked up", func() {
			_, err := svc.Job(ctx, "missing")

			Convey("Then it is not found", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a single busy worker and a queue of one", t, func() {
		ctx := context.Background()
		g := &gatedGraph{MemoryGraphStore: repository.NewMemoryGraphStore(), gate: make(chan struct{})}
		svc := service.New(service.WithGraphStore(g), service.WithWorkerCount(1), service.WithQueueSize(1))
		So(svc.Start(ctx), ShouldBeNil)

		first, err := svc.Submit(ctx, []byte(batch))
		So(err, ShouldBeNil)
		So(waitForJob(ctx, svc, first.ID, service.JobRunning).State, ShouldEqual, service.JobRunning)
		_, err = svc.Submit(ctx, []byte(batch))
		So(err, ShouldBeNil)

		Convey("When one more batch is submitted", func() {
			_, err := svc.Submit(ctx, []byte(batch))

			Convey("Then it is refused with backpressure", func() {
				So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
			})
		})

		Reset(func() {
			close(g.gate)
			_ = svc.Stop(ctx)
		})
	})
}

func TestCacheSweep(t *testing.T) {
	Convey("Given a started service on a memory cache with a one second ttl", t, func() {
		ctx := context.Background()
		var clock atomic.Int64
		clock.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
		mem := cache.NewMemory(cache.WithClock(func() time.Time { return time.Unix(0, clock.Load()) }))
		svc := service.New(
			service.WithCache(mem),
			service.WithCacheTTL(time.Second),
			service.WithSweepInterval(5*time.Millisecond),
			service.WithWorkerCount(1),
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("When each ingest leaves a flow entry of its generation behind", func() {
			for range 20 {
				_, err := svc.Ingest(ctx, []byte(batch))
				So(err, ShouldBeNil)
				_, err = svc.Flow(ctx, globex, model.Window{}, nil)
				So(err, ShouldBeNil)
			}
			time.Sleep(30 * time.Millisecond)
			So(mem.Len(), ShouldEqual, 20)

			Convey("Then the entries are dropped once the clock passes their ttl", func() {
				clock.Add(int64(time.Hour))
				deadline := time.Now().Add(2 * time.Second)
				for mem.Len() > 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(mem.Len(), ShouldEqual, 0)
			})
		})
	})
}

const graduate = `{"profile_urn": "urn:p:7", "name": "Gia", "headline": "Platform lead",
  "skills": ["Go", {"name": "Kubernetes"}],
  "education": [{"school": "MIT", "degree": "BSc", "field_of_study": "CS"}],
  "experiences": [
    {"title": "Software Engineer", "company_name": "Acme", "start_date": "2019-01", "end_date": "2020-12"},
    {"title": "Engineering Manager", "company_name": "Globex", "start_date": "2021-01"}
  ]}`

func TestProfilesAndCompanies(t *testing.T) {
	Convey("Given a service holding a profile with skills and education", t, func() {
		ctx := context.Background()
		svc := service.New()
		_, err := svc.Ingest(ctx, []byte("["+graduate+","+mover+"]"))
		So(err, ShouldBeNil)

		Convey("When the career path is read", func() {
			c, err := svc.CareerPath(ctx, "urn:p:7")
			So(err, ShouldBeNil)

			Convey("Then the profile keeps skills and education", func() {
				So(c.Profile.Headline, ShouldEqual, "Platform lead")
				So(c.Profile.Skills, ShouldResemble, []string{"Go", "Kubernetes"})
				So(c.Profile.Education, ShouldHaveLength, 1)
				So(c.Profile.Education[0].School, ShouldEqual, "MIT")
			})

			Convey("Then positions and the promotion are summarized", func() {
				So(c.Positions, ShouldHaveLength, 2)
				So(c.Positions[0].CompanyURN, ShouldEqual, acme)
				So(c.Transitions, ShouldHaveLength, 1)
				So(c.Promotions, ShouldEqual, 1)
				So(c.Companies, ShouldEqual, 2)
			})
		})

		Convey("When transitions are listed", func() {
			evs, err := svc.Transitions(ctx, "urn:p:7")
			So(err, ShouldBeNil)
			So(evs, ShouldHaveLength, 1)
			So(evs[0].FromCompanyURN, ShouldEqual, acme)
			So(evs[0].ToCompanyURN, ShouldEqual, globex)
		})

		Convey("When an unknown profile is asked for", func() {
			_, err := svc.Transitions(ctx, "urn:p:missing")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			_, err = svc.CareerPath(ctx, "urn:p:missing")
			So(errors.Is(err, repository.ErrProfileAbsent), ShouldBeTrue)
		})

		Convey("When a company is looked up", func() {
			c, err := svc.Company(ctx, initech)
			So(err, ShouldBeNil)
			So(c.Name, ShouldEqual, "Initech")
			_, err = svc.Company(ctx, "urn:c:missing")
			So(errors.Is(err, repository.ErrCompanyAbsent), ShouldBeTrue)
		})
	})
}
