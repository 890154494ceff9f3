// Package export writes records as a spreadsheet-friendly CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/workforce/internal/domain/model"
)

// Header is the column row of an export. It is recognized by the
// ingestion header resolver, so exports can be loaded back.
var Header = []string{
	"Fecha", "Consultor", "Tipo Registro", "Cliente", "Ticket Cliente",
	"Ticket Interno", "Tarea", "Descripción", "Horas", "Tipo Consultor",
}

const (
	separator = ";"
	bom       = "\uFEFF"
)

// WriteCSV writes a BOM, the header and one quoted row per record, using
// ';' between fields and a comma as decimal point.
func WriteCSV(w io.Writer, records []model.Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(bom + strings.Join(Header, separator)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date, r.Consultant, r.RecordType, r.Client, r.TicketID,
			r.InternalTicketID, r.Project, r.Description, formatHours(r.Hours), r.ConsultantType,
		}
		for i, v := range row {
			row[i] = quote(v)
		}
		if _, err := bw.WriteString("\n" + strings.Join(row, separator)); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func formatHours(h float64) string {
	return strings.Replace(strconv.FormatFloat(h, 'f', -1, 64), ".", ",", 1)
}
