package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/workforce/internal/adapters/repository"
	"github.com/okian/workforce/internal/domain/ingest"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/internal/domain/team"
	"github.com/okian/workforce/pkg/logger"
	"github.com/okian/workforce/pkg/metrics"
)

const (
	sourceUpload  = "upload"
	sourceRestore = "docstore"
)

// Ingest parses an uploaded CSV and publishes it as the current dataset.
func (s *Service) Ingest(ctx context.Context, text string) (model.LoadReport, error) {
	gen := s.data.Begin()
	return s.publish(ctx, gen, sourceUpload, text)
}

// loadFunc reads a source into CSV text.
type loadFunc func(ctx context.Context, source string) (string, error)

// IngestURL fetches a published http(s) CSV and publishes it. Anything else
// fails with fetch.ErrUnsupportedURL. A newer load started while this one
// was fetching wins and this one returns repository.ErrStale.
func (s *Service) IngestURL(ctx context.Context, url string) (model.LoadReport, error) {
	return s.ingestURL(ctx, url, s.fetcher.Fetch)
}

func (s *Service) ingestURL(ctx context.Context, url string, load loadFunc) (model.LoadReport, error) {
	gen := s.data.Begin()
	text, err := load(ctx, url)
	if err != nil {
		return model.LoadReport{Generation: gen, Source: url}, err
	}
	return s.publish(ctx, gen, url, text)
}

func (s *Service) publish(ctx context.Context, gen uint64, source, text string) (model.LoadReport, error) {
	start := time.Now()
	res := ingest.ParseRecords(ctx, text)
	metrics.RecordIngest("records", len(res.Records), res.Duplicates, res.Skipped, res.Repaired,
		float64(time.Since(start).Milliseconds()))

	report := model.LoadReport{
		Generation: gen,
		Source:     source,
		Rows:       res.Rows,
		Records:    len(res.Records),
		Skipped:    res.Skipped,
		Duplicates: res.Duplicates,
		Repaired:   res.Repaired,
	}
	if !s.data.Commit(gen, source, res.Records) {
		s.logger.Warn(ctx, "discarding stale load", logger.Uint64("generation", gen), logger.String("source", source))
		return report, fmt.Errorf("%w: generation %d", repository.ErrStale, gen)
	}

	s.logger.Info(ctx, "dataset loaded",
		logger.Uint64("generation", gen),
		logger.String("source", source),
		logger.Int("records", report.Records),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

// restore seeds the dataset from the document store.
func (s *Service) restore(ctx context.Context, docs DocStore) (model.LoadReport, error) {
	gen := s.data.Begin()
	records, err := docs.FetchAll(ctx)
	if err != nil {
		return model.LoadReport{Generation: gen, Source: sourceRestore}, err
	}
	report := model.LoadReport{Generation: gen, Source: sourceRestore, Rows: len(records), Records: len(records)}
	if !s.data.Commit(gen, sourceRestore, records) {
		return report, fmt.Errorf("%w: generation %d", repository.ErrStale, gen)
	}
	s.logger.Info(ctx, "dataset restored", logger.Int("records", len(records)))
	return report, nil
}

// LoadTeam replaces the sheet layer with an uploaded team CSV.
func (s *Service) LoadTeam(ctx context.Context, text string) model.TeamReport {
	return s.replaceTeam(ctx, sourceUpload, text)
}

// LoadTeamURL fetches an http(s) team sheet and replaces the sheet layer.
func (s *Service) LoadTeamURL(ctx context.Context, url string) (model.TeamReport, error) {
	return s.loadTeamURL(ctx, url, s.fetcher.Fetch)
}

func (s *Service) loadTeamURL(ctx context.Context, url string, load loadFunc) (model.TeamReport, error) {
	text, err := load(ctx, url)
	if err != nil {
		return model.TeamReport{Source: url}, err
	}
	return s.replaceTeam(ctx, url, text), nil
}

func (s *Service) replaceTeam(ctx context.Context, source, text string) model.TeamReport {
	entries := ingest.ParseTeamConfig(text)
	s.team.ReplaceSheet(entries)
	metrics.UpdateTeamEntries("sheet", len(entries))
	s.logger.Info(ctx, "team sheet loaded", logger.String("source", source), logger.Int("entries", len(entries)))
	return model.TeamReport{Source: source, Entries: len(entries)}
}

// Team lists every resolved consultant category.
func (s *Service) Team() []team.Entry {
	return s.team.Entries()
}

// SetOverrides merges manual category edits. A blank category removes the
// override for that name.
func (s *Service) SetOverrides(ctx context.Context, overrides map[string]string) []team.Entry {
	s.team.SetOverrides(overrides)
	_, manual := s.team.Counts()
	metrics.UpdateTeamEntries("manual", manual)
	s.logger.Info(ctx, "team overrides updated", logger.Int("changed", len(overrides)), logger.Int("overrides", manual))
	return s.team.Entries()
}
