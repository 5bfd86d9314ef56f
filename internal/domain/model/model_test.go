package model_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	model "github.com/okian/talentflow/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCompanyRefKey(t *testing.T) {
	convey.Convey("Given company references", t, func() {
		convey.Convey("When the URN is present", func() {
			ref := model.CompanyRef{URN: " urn:li:company:1 ", Name: "Acme"}
			convey.So(ref.Key(), convey.ShouldEqual, "urn:li:company:1")
		})

		convey.Convey("When only the name is present", func() {
			ref := model.CompanyRef{Name: "  Acme Corp "}
			convey.So(ref.Key(), convey.ShouldEqual, "name:acme corp")
		})

		convey.Convey("When neither is present", func() {
			convey.So(model.CompanyRef{}.Key(), convey.ShouldEqual, "")
		})
	})
}

func TestWindow(t *testing.T) {
	convey.Convey("Given a half-open window", t, func() {
		start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
		w := model.Window{Start: start, End: end}

		convey.Convey("Then the start is included and the end excluded", func() {
			convey.So(w.Contains(start), convey.ShouldBeTrue)
			convey.So(w.Contains(end.Add(-time.Nanosecond)), convey.ShouldBeTrue)
			convey.So(w.Contains(end), convey.ShouldBeFalse)
			convey.So(w.Contains(start.Add(-time.Nanosecond)), convey.ShouldBeFalse)
		})

		convey.Convey("Then an open window contains everything", func() {
			open := model.Window{}
			convey.So(open.IsOpen(), convey.ShouldBeTrue)
			convey.So(open.Contains(time.Time{}), convey.ShouldBeTrue)
			convey.So(open.Contains(end), convey.ShouldBeTrue)
		})

		convey.Convey("Then an inverted window is invalid", func() {
			convey.So(w.Valid(), convey.ShouldBeTrue)
			convey.So(model.Window{Start: end, End: start}.Valid(), convey.ShouldBeFalse)
			convey.So(model.Window{Start: start, End: start}.Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestErrors(t *testing.T) {
	convey.Convey("Given domain errors", t, func() {
		convey.Convey("When a validation error is wrapped", func() {
			var err error = &model.ValidationError{Record: "urn:p:1", Index: 2, Field: "experience", Reason: "empty"}
			wrapped := fmt.Errorf("ingest: %w", err)

			convey.Convey("Then it matches ErrValidation and keeps its fields", func() {
				convey.So(errors.Is(wrapped, model.ErrValidation), convey.ShouldBeTrue)
				var ve *model.ValidationError
				convey.So(errors.As(wrapped, &ve), convey.ShouldBeTrue)
				convey.So(ve.Index, convey.ShouldEqual, 2)
				convey.So(err.Error(), convey.ShouldContainSubstring, "urn:p:1")
			})
		})

		convey.Convey("When a store failure is wrapped as a graph query error", func() {
			cause := errors.New("connection refused")
			err := model.NewGraphQueryError("load_projection", cause)

			convey.Convey("Then both the kind and the cause are visible", func() {
				convey.So(errors.Is(err, model.ErrGraphQuery), convey.ShouldBeTrue)
				convey.So(errors.Is(err, cause), convey.ShouldBeTrue)
				convey.So(model.NewGraphQueryError("noop", nil), convey.ShouldBeNil)
			})
		})
	})
}

func TestTransitionID(t *testing.T) {
	convey.Convey("Given transition identity inputs", t, func() {
		date := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

		convey.Convey("Then the same inputs give the same id", func() {
			a := model.TransitionID("urn:p:1", "urn:c:x", "urn:c:y", date)
			b := model.TransitionID("urn:p:1", "urn:c:x", "urn:c:y", date)
			convey.So(a, convey.ShouldEqual, b)
			convey.So(a, convey.ShouldNotEqual, model.TransitionID("urn:p:1", "urn:c:y", "urn:c:x", date))
		})
	})
}

func TestCompanyMerge(t *testing.T) {
	convey.Convey("Given a company with partial metadata", t, func() {
		c := model.Company{URN: "urn:c:1", Name: "Acme"}
		c.Merge(model.Company{Name: "ACME Inc", Industries: []string{"Software"}, FoundedYear: 2010})

		convey.Convey("Then only empty fields are filled", func() {
			convey.So(c.Name, convey.ShouldEqual, "Acme")
			convey.So(c.Industries, convey.ShouldResemble, []string{"Software"})
			convey.So(c.FoundedYear, convey.ShouldEqual, 2010)
		})
	})
}

func TestValidateEmployee(t *testing.T) {
	convey.Convey("Given employee records", t, func() {
		start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

		convey.Convey("When the record is well formed and has no current company", func() {
			e := model.Employee{
				ProfileURN: "urn:p:1",
				Experience: []model.Experience{{Company: model.CompanyRef{Name: "Acme"}, Start: &start}},
			}
			convey.So(model.ValidateEmployee(0, e), convey.ShouldBeNil)
		})

		convey.Convey("When profile_urn is missing", func() {
			e := model.Employee{Experience: []model.Experience{{Company: model.CompanyRef{URN: "urn:c:1"}}}}
			ve := model.ValidateEmployee(4, e)
			convey.So(ve, convey.ShouldNotBeNil)
			convey.So(ve.Index, convey.ShouldEqual, 4)
			convey.So(ve.Field, convey.ShouldEqual, "profile_urn")
			convey.So(ve.Reason, convey.ShouldEqual, "is required")
		})

		convey.Convey("When profile_urn is only whitespace", func() {
			e := model.Employee{
				ProfileURN: " \t ",
				Experience: []model.Experience{{Company: model.CompanyRef{URN: "urn:c:1"}}},
			}
			ve := model.ValidateEmployee(1, e)
			convey.So(ve, convey.ShouldNotBeNil)
			convey.So(ve.Field, convey.ShouldEqual, "profile_urn")
			convey.So(ve.Reason, convey.ShouldEqual, "is required")
		})

		convey.Convey("When experience is an empty list", func() {
			ve := model.ValidateEmployee(0, model.Employee{ProfileURN: "urn:p:1", Experience: []model.Experience{}})
			convey.So(ve, convey.ShouldNotBeNil)
			convey.So(ve.Field, convey.ShouldEqual, "experience")
		})
	})
}
