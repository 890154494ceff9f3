package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	dedupe "github.com/okian/workforce/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(4)

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a fingerprint is new", func() {
			seen := d.SeenAndRecord(ctx, "2024-03-15|8|jn|cm||")

			Convey("Then it is recorded and reported unseen", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same fingerprint arrives twice", func() {
			d.SeenAndRecord(ctx, "fp")
			seen := d.SeenAndRecord(ctx, "fp")

			Convey("Then the second call reports a duplicate", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When recording empty and very long keys", func() {
			long := strings.Repeat("x", 10_000)

			Convey("Then both behave like any other key", func() {
				So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, ""), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, long), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, long), ShouldBeTrue)
			})
		})
	})

	Convey("Given a negative size hint", t, func() {
		Convey("Then construction still succeeds", func() {
			So(dedupe.NewInMemoryDeduper(-5), ShouldNotBeNil)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper shared by goroutines", t, func() {
		d := dedupe.NewInMemoryDeduper(0)
		const goroutines = 10
		const perGoroutine = 100

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for j := 0; j < perGoroutine; j++ {
					d.SeenAndRecord(context.Background(), fmt.Sprintf("fp-%d-%d", g, j))
				}
			}(i)
		}
		wg.Wait()

		Convey("Then every key is recorded exactly once", func() {
			So(d.Size(), ShouldEqual, goroutines*perGoroutine)
		})
	})
}
