package team_test

import (
	"testing"

	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLayers(t *testing.T) {
	Convey("Given a sheet layer and a manual override", t, func() {
		l := team.New()
		l.ReplaceSheet(map[string]string{"Ana": "Full Time", "Luis": "Part Time"})
		l.SetOverrides(map[string]string{"Ana": "Part Time", " ": "ignored"})

		Convey("Then the override wins and provenance is reported", func() {
			c, src, ok := l.Resolve("Ana")
			So(ok, ShouldBeTrue)
			So(c, ShouldEqual, "Part Time")
			So(src, ShouldEqual, team.SourceManual)

			c, src, ok = l.Resolve("Luis")
			So(ok, ShouldBeTrue)
			So(c, ShouldEqual, "Part Time")
			So(src, ShouldEqual, team.SourceSheet)

			_, src, ok = l.Resolve("Nobody")
			So(ok, ShouldBeFalse)
			So(src, ShouldEqual, team.SourceNone)
		})

		Convey("Then entries list both layers sorted by name", func() {
			So(l.Entries(), ShouldResemble, []team.Entry{
				{Name: "Ana", Category: "Part Time", Source: team.SourceManual},
				{Name: "Luis", Category: "Part Time", Source: team.SourceSheet},
			})
			sheet, manual := l.Counts()
			So(sheet, ShouldEqual, 2)
			So(manual, ShouldEqual, 1)
		})

		Convey("When the sheet is reloaded", func() {
			l.ReplaceSheet(map[string]string{"Ana": "Baja"})

			Convey("Then the manual edit still wins", func() {
				c, _, _ := l.Resolve("Ana")
				So(c, ShouldEqual, "Part Time")
				_, _, ok := l.Resolve("Luis")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When an override is cleared", func() {
			l.SetOverrides(map[string]string{"Ana": ""})

			Convey("Then the sheet value shows through", func() {
				c, src, _ := l.Resolve("Ana")
				So(c, ShouldEqual, "Full Time")
				So(src, ShouldEqual, team.SourceSheet)
			})
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given layers that exclude external staff", t, func() {
		l := team.New(team.WithExcludedCategories("Externo", "SSFF", ""))
		l.ReplaceSheet(map[string]string{"Ana": "Full Time", "Ext": "externo"})
		records := []model.Record{
			{ID: "1", Consultant: "Ana", ConsultantType: model.UndefinedCategory},
			{ID: "2", Consultant: "Ext", ConsultantType: "Full Time"},
			{ID: "3", Consultant: "Luis", ConsultantType: "Part Time"},
			{ID: "4", Consultant: "Sam", ConsultantType: "SSFF"},
		}
		out := l.Apply(records)

		Convey("Then categories are replaced and excluded ones dropped", func() {
			So(out, ShouldHaveLength, 2)
			So(out[0].ConsultantType, ShouldEqual, "Full Time")
			So(out[1].ID, ShouldEqual, "3")
			So(out[1].ConsultantType, ShouldEqual, "Part Time")
		})

		Convey("Then the input is not modified", func() {
			So(records[0].ConsultantType, ShouldEqual, model.UndefinedCategory)
		})
	})
}
