// Package ingest turns timesheet and team CSV exports into canonical
// records. Parsing is total: malformed rows degrade to defaults and only
// rows with fewer than two tokens are skipped.
package ingest

import (
	"context"
	"strings"

	"github.com/okian/workforce/internal/domain/dedupe"
	"github.com/okian/workforce/internal/domain/model"
)

const minDataLines = 2

// Result is the outcome of one ingestion call.
type Result struct {
	Records []model.Record
	// Rows counts data lines read, header excluded.
	Rows       int
	Skipped    int
	Duplicates int
	// Repaired counts split decimals merged back together.
	Repaired int
}

// ParseRecords runs the full pipeline over text. Input with fewer than two
// non-blank lines yields an empty result. Records keep source order minus
// skipped and duplicate rows. Lines repeating the header are skipped.
func ParseRecords(ctx context.Context, text string, opts ...Option) Result {
	rows := SplitRows(text)
	if len(rows) < minDataLines {
		return Result{}
	}

	header := strings.TrimSpace(rows[0])
	n := NewNormalizer(header, opts...)
	seen := dedupe.NewInMemoryDeduper(len(rows))
	res := Result{Records: make([]model.Record, 0, len(rows)-1)}

	for i := 1; i < len(rows); i++ {
		res.Rows++
		// concatenated exports repeat their header
		if strings.TrimSpace(rows[i]) == header {
			res.Skipped++
			continue
		}
		rec, hours, merges, ok := n.row(i, rows[i])
		res.Repaired += merges
		if !ok {
			res.Skipped++
			continue
		}
		if seen.SeenAndRecord(ctx, Fingerprint(rec, hours)) {
			res.Duplicates++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}
