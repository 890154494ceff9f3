package summary_test

import (
	"fmt"
	"testing"

	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/internal/domain/stats"
	"github.com/okian/workforce/internal/domain/summary"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildInput(t *testing.T) {
	Convey("Given stats over seven clients", t, func() {
		var records []model.Record
		for i := 0; i < 7; i++ {
			records = append(records, model.Record{
				Consultant: fmt.Sprintf("c%d", i%2),
				Client:     fmt.Sprintf("client-%d", i),
				Hours:      float64(10 - i),
			})
		}
		in := summary.BuildInput(stats.Compute(records))

		Convey("Then only the five largest clients are kept", func() {
			So(in.ClientDistribution, ShouldHaveLength, 5)
			So(in.ClientDistribution[0].Name, ShouldEqual, "client-0")
			So(in.TopClient, ShouldEqual, "client-0")
		})

		Convey("Then every consultant's load is included", func() {
			So(in.ActiveConsultants, ShouldEqual, 2)
			So(in.ConsultantLoad, ShouldResemble, []stats.Share{{Name: "c0", Hours: 28}, {Name: "c1", Hours: 21}})
			So(in.TotalHours, ShouldEqual, 49)
		})
	})

	Convey("Given the fallback report", t, func() {
		r := summary.Fallback()
		So(r.Summary, ShouldNotBeBlank)
		So(r.Risks, ShouldBeEmpty)
		So(r.Recommendations, ShouldHaveLength, 1)
	})
}
