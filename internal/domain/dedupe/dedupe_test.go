package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/talentflow/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When recording ids", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then a new id is not seen and an old one is", func() {
				So(d.SeenAndRecord(ctx, "t-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "t-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the bounded capacity is exceeded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 1; i <= 4; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("t-%d", i)), ShouldBeFalse)
			}

			Convey("Then the oldest id is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "t-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "t-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "t-1"), ShouldBeFalse)
			})
		})

		Convey("When an id is unrecorded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, "t-1")
			d.SeenAndRecord(ctx, "t-2")
			d.Unrecord(ctx, "t-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again without disturbing others", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "t-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "t-2"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("t-%d", i))
			}
			d.Unrecord(ctx, "t-0")

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 999)
				So(d.SeenAndRecord(ctx, "t-1"), ShouldBeTrue)
			})
		})

		Convey("When many goroutines record the same id", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "shared") {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one records it", func() {
				So(fresh, ShouldEqual, 1)
			})
		})
	})
}
