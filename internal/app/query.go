package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/workforce/internal/domain/alerts"
	"github.com/okian/workforce/internal/domain/export"
	"github.com/okian/workforce/internal/domain/filter"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/internal/domain/stats"
	"github.com/okian/workforce/internal/domain/summary"
	"github.com/okian/workforce/pkg/logger"
	"github.com/okian/workforce/pkg/metrics"
)

// merged is the published dataset with team categories applied and
// excluded categories removed.
func (s *Service) merged() []model.Record {
	return s.team.Apply(s.data.Snapshot().Records)
}

// Records returns the merged records matching c.
func (s *Service) Records(c filter.Criteria) []model.Record {
	return s.filter.Apply(s.merged(), c)
}

// Alerts evaluates the rules over the records matching c. The id pin is
// ignored so alerts always describe the whole selection.
func (s *Service) Alerts(ctx context.Context, c filter.Criteria) []model.Alert {
	start := time.Now()
	c.IDs = nil
	out := alerts.Evaluate(s.Records(c), c.Months, s.now())
	for _, a := range out {
		metrics.RecordAlert(string(a.Severity), a.Rule)
	}
	metrics.RecordAlertLatency(float64(time.Since(start).Milliseconds()))
	s.logger.Debug(ctx, "alerts evaluated", logger.Int("alerts", len(out)))
	return out
}

// Stats aggregates the records matching c.
func (s *Service) Stats(c filter.Criteria) stats.Summary {
	return stats.Compute(s.Records(c))
}

// Months lists the months present in the merged dataset, newest first.
func (s *Service) Months() []string {
	return filter.Months(s.merged())
}

// Options lists the selector values present in the merged dataset.
func (s *Service) Options() filter.Options {
	return filter.Values(s.merged())
}

// Export writes the records matching c as CSV.
func (s *Service) Export(w io.Writer, c filter.Criteria) error {
	return export.WriteCSV(w, s.Records(c))
}

// Summary asks the summarizer for a narrative report of the records
// matching c.
func (s *Service) Summary(ctx context.Context, c filter.Criteria) (summary.Report, error) {
	s.mu.RLock()
	sm := s.summarizer
	s.mu.RUnlock()

	if sm == nil {
		metrics.RecordSummaryRequest("disabled")
		return summary.Fallback(), summary.ErrDisabled
	}

	in := summary.BuildInput(s.Stats(c))
	report, err := sm.Summarize(ctx, in)
	if err != nil {
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		metrics.RecordSummaryRequest(status)
		s.logger.Error(ctx, "summary generation failed", logger.Error(err))
		return summary.Fallback(), fmt.Errorf("summarize: %w", err)
	}
	metrics.RecordSummaryRequest("ok")
	return report, nil
}
