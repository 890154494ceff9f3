package ingest_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/okian/workforce/internal/domain/ingest"
	"github.com/okian/workforce/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const spanishExport = `Fecha;Cliente;Departamento;Solicitante;Cantidad de Horas;Tipo de Registro;ID Ticket Interno;ID Ticket Cliente;Tarea;Tipo de Consultor;Consultor;Observaciones
15/03/2024;Acme;IT;Luis;7,5;Proyecto;INT-1;CL-9;Migración;Full Time;José Pérez;"Revisión; fase 1"
16/03/2024;Acme;IT;Luis;8;Mantenimiento;INT-2;CL-10;Soporte;Part Time;María;
15/03/2024;ACME;IT;Luis;7,5;Proyecto;INT-1;CL-9;Otra tarea;Full Time;Jose Perez;duplicado difuso
`

func TestParseRecords(t *testing.T) {
	ctx := context.Background()

	Convey("Given degenerate input", t, func() {
		Convey("Then empty and header-only text yield nothing", func() {
			So(ingest.ParseRecords(ctx, "").Records, ShouldBeEmpty)
			So(ingest.ParseRecords(ctx, "\n\n  \n").Records, ShouldBeEmpty)
			So(ingest.ParseRecords(ctx, "Fecha;Cliente;Horas\n").Records, ShouldBeEmpty)
		})
	})

	Convey("Given a full Spanish export", t, func() {
		res := ingest.ParseRecords(ctx, spanishExport)

		Convey("Then fuzzy duplicates are dropped", func() {
			So(res.Rows, ShouldEqual, 3)
			So(res.Duplicates, ShouldEqual, 1)
			So(res.Records, ShouldHaveLength, 2)
		})

		Convey("Then every field is mapped", func() {
			rec := res.Records[0]
			So(rec.Date, ShouldEqual, "2024-03-15")
			So(rec.Client, ShouldEqual, "Acme")
			So(rec.Department, ShouldEqual, "IT")
			So(rec.Hours, ShouldEqual, 7.5)
			So(rec.RecordType, ShouldEqual, "Proyecto")
			So(rec.InternalTicketID, ShouldEqual, "INT-1")
			So(rec.TicketID, ShouldEqual, "CL-9")
			So(rec.Project, ShouldEqual, "Migración")
			So(rec.ConsultantType, ShouldEqual, "Full Time")
			So(rec.Consultant, ShouldEqual, "José Pérez")
			So(rec.Description, ShouldEqual, "Revisión; fase 1")
		})

		Convey("Then ids carry the source line", func() {
			So(res.Records[0].ID, ShouldStartWith, "1-")
			So(res.Records[1].ID, ShouldStartWith, "2-")
			So(res.Records[0].ID, ShouldNotEqual, res.Records[1].ID)
		})
	})

	Convey("Given the same export concatenated with itself", t, func() {
		once := ingest.ParseRecords(ctx, spanishExport)
		twice := ingest.ParseRecords(ctx, spanishExport+spanishExport)

		Convey("Then the record count does not change", func() {
			So(len(twice.Records), ShouldEqual, len(once.Records))
		})
	})

	Convey("Given the two header languages", t, func() {
		ids := ingest.WithIDFunc(func(line int) string { return fmt.Sprintf("row-%d", line) })
		spanish := ingest.ParseRecords(ctx, "Fecha;Cliente;Horas;Consultor\n15/03/2024;Acme;7,5;Ana\n", ids)
		english := ingest.ParseRecords(ctx, "date,client,hours,consultant\n2024-03-15,Acme,7.5,Ana\n", ids)

		Convey("Then both normalize to the same record", func() {
			So(spanish.Records, ShouldHaveLength, 1)
			So(english.Records, ShouldHaveLength, 1)
			So(spanish.Records[0], ShouldResemble, english.Records[0])
			So(english.Records[0], ShouldResemble, model.Record{
				ID:             "row-1",
				Date:           "2024-03-15",
				Client:         "Acme",
				Consultant:     "Ana",
				Project:        model.NoTask,
				Hours:          7.5,
				ConsultantType: model.UndefinedCategory,
			})
		})
	})

	Convey("Given a comma export whose decimals were split", t, func() {
		res := ingest.ParseRecords(ctx, "Horas,Cliente,Consultor\n10,5,ClientX,Ana\n")

		Convey("Then the row is repaired", func() {
			So(res.Repaired, ShouldEqual, 1)
			So(res.Records, ShouldHaveLength, 1)
			So(res.Records[0].Hours, ShouldEqual, 10.5)
			So(res.Records[0].Client, ShouldEqual, "ClientX")
		})
	})

	Convey("Given rows that differ only in unparsable versus zero hours", t, func() {
		text := "Fecha;Horas;Consultor;Cliente\n2024-03-15;abc;Ana;Acme\n2024-03-15;0;Ana;Acme\n2024-03-15;0,0;Ana;Acme\n"
		res := ingest.ParseRecords(ctx, text)

		Convey("Then only the numerically equal rows collapse", func() {
			So(res.Records, ShouldHaveLength, 2)
			So(res.Duplicates, ShouldEqual, 1)
			So(res.Records[0].Hours, ShouldEqual, 0)
			So(res.Records[1].Hours, ShouldEqual, 0)
		})
	})

	Convey("Given rows with a single token", t, func() {
		text := strings.Join([]string{"Fecha;Horas;Consultor", "orphan", "2024-03-15;8;Ana"}, "\n")
		res := ingest.ParseRecords(ctx, text)

		Convey("Then they are skipped silently", func() {
			So(res.Skipped, ShouldEqual, 1)
			So(res.Records, ShouldHaveLength, 1)
		})
	})
}
