package signal_test

import (
	"testing"

	"github.com/okian/talentflow/internal/domain/flow"
	"github.com/okian/talentflow/internal/domain/signal"
	"github.com/okian/talentflow/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSignal(t *testing.T) {
	ranking := []types.Entry{
		{Rank: 1, CompanyURN: "top", Score: 0.5},
		{Rank: 2, CompanyURN: "mid", Score: 0.3},
		{Rank: 3, CompanyURN: "low", Score: 0.2},
	}
	policy := signal.DefaultPolicy()

	Convey("Given the top company with only inflow", t, func() {
		s := policy.Compute("top", ranking, flow.Metrics{Inflow: 4, NetFlow: 4})

		Convey("Then both factors are maximal", func() {
			So(s.Influence, ShouldEqual, 1)
			So(s.Momentum, ShouldEqual, 1)
			So(s.Score, ShouldEqual, 100)
			So(s.Ranked, ShouldBeTrue)
		})
	})

	Convey("Given the bottom company with only outflow", t, func() {
		s := policy.Compute("low", ranking, flow.Metrics{Outflow: 2, NetFlow: -2})

		Convey("Then the signal is zero", func() {
			So(s.Influence, ShouldEqual, 0)
			So(s.Momentum, ShouldEqual, 0)
			So(s.Score, ShouldEqual, 0)
		})
	})

	Convey("Given an unranked company with no flow", t, func() {
		s := policy.Compute("unknown", ranking, flow.Metrics{})

		Convey("Then influence is zero and momentum neutral", func() {
			So(s.Ranked, ShouldBeFalse)
			So(s.Influence, ShouldEqual, 0)
			So(s.Momentum, ShouldEqual, 0.5)
			So(s.Score, ShouldEqual, 25)
		})
	})

	Convey("Given a middle company with balanced flow", t, func() {
		s := policy.Compute("mid", ranking, flow.Metrics{Inflow: 3, Outflow: 1, NetFlow: 2})

		Convey("Then factors blend equally", func() {
			So(s.Influence, ShouldEqual, 0.5)
			So(s.Momentum, ShouldEqual, 0.75)
			So(s.Score, ShouldAlmostEqual, 62.5, 1e-9)
		})
	})

	Convey("Given a single ranked company", t, func() {
		p, ok := signal.Percentile("solo", []types.Entry{{CompanyURN: "solo", Score: 1}})
		So(ok, ShouldBeTrue)
		So(p, ShouldEqual, 1)
	})
}
