package seniority_test

import (
	"testing"

	"github.com/okian/talentflow/internal/domain/seniority"
	. "github.com/smartystreets/goconvey/convey"
)

func TestChange(t *testing.T) {
	Convey("Given the default seniority table", t, func() {
		table := seniority.Default()

		Convey("When moving up the ladder", func() {
			So(table.Change("Software Engineer", "Senior Software Engineer"), ShouldEqual, 1)
			So(table.Change("Engineering Manager", "CTO"), ShouldEqual, 1)
		})

		Convey("When moving down the ladder", func() {
			So(table.Change("VP of Product", "Product Manager"), ShouldEqual, -1)
		})

		Convey("When staying on the same rung", func() {
			So(table.Change("Software Engineer", "Data Scientist"), ShouldEqual, 0)
		})

		Convey("When titles differ only in case and spacing", func() {
			So(table.Change("  software   engineer", "SENIOR SOFTWARE ENGINEER"), ShouldEqual, 1)
		})

		Convey("When a title is unknown", func() {
			So(table.Change("Software Engineer", "Astronaut"), ShouldEqual, 0)
			So(table.Change("Astronaut", "CTO"), ShouldEqual, 0)
		})
	})

	Convey("Given no table", t, func() {
		var table *seniority.Table

		Convey("Then every change is zero", func() {
			So(table.Change("Software Engineer", "CTO"), ShouldEqual, 0)
			So(table.Len(), ShouldEqual, 0)
		})
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Given configured levels", t, func() {
		table := seniority.FromConfig(map[string]int{"Intern": 0, "Engineer": 1, "Founder": 5})

		Convey("Then only configured titles are known", func() {
			So(table.Len(), ShouldEqual, 3)
			So(table.Change("intern", "founder"), ShouldEqual, 1)
			_, ok := table.Level("CTO")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given no configured levels", t, func() {
		table := seniority.FromConfig(nil)

		Convey("Then the built-in ladder is used", func() {
			level, ok := table.Level("CTO")
			So(ok, ShouldBeTrue)
			So(level, ShouldEqual, 3)
		})
	})
}
