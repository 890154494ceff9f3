// Package service wires ingestion, team layers, the dataset store, alerting
// and the document-store sync into the operations the HTTP API exposes.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/workforce/internal/adapters/docstore"
	"github.com/okian/workforce/internal/adapters/fetch"
	"github.com/okian/workforce/internal/adapters/llm"
	syncqueue "github.com/okian/workforce/internal/adapters/mq/queue"
	workerpool "github.com/okian/workforce/internal/adapters/mq/worker"
	"github.com/okian/workforce/internal/adapters/repository"
	"github.com/okian/workforce/internal/config"
	"github.com/okian/workforce/internal/domain/filter"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/internal/domain/summary"
	"github.com/okian/workforce/internal/domain/team"
	"github.com/okian/workforce/pkg/logger"
	"github.com/okian/workforce/pkg/metrics"
)

// DocStore persists records for the sync path and reads them back on start.
type DocStore interface {
	workerpool.Writer
	FetchAll(ctx context.Context) ([]model.Record, error)
}

// Service implements the API dependencies for the workforce dashboard.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	data    *repository.Store
	team    *team.Layers
	filter  *filter.Filter
	fetcher *fetch.Client

	// Optional adapters
	summarizer summary.Summarizer
	docs       DocStore
	closeDocs  func()
	queue      *syncqueue.InMemoryQueue
	pool       *workerpool.Pool
	stopPool   context.CancelFunc

	now func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSummarizer replaces the Gemini summarizer built from config.
func WithSummarizer(sm summary.Summarizer) Option {
	return func(s *Service) {
		if sm != nil {
			s.summarizer = sm
		}
	}
}

// WithDocStore replaces the Postgres store opened from config.
func WithDocStore(d DocStore) Option {
	return func(s *Service) {
		if d != nil {
			s.docs = d
		}
	}
}

// WithFetcher replaces the source fetch client.
func WithFetcher(c *fetch.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.fetcher = c
		}
	}
}

// WithClock replaces time.Now for alert evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service from cfg. A nil cfg uses config defaults.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:    cfg,
		data:   repository.New(),
		team:   team.New(team.WithExcludedCategories(cfg.ExcludedCategories...)),
		filter: filter.New(cfg.HiddenCategories...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = fetch.New(fetch.WithTimeout(cfg.FetchTimeout()))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start opens the optional adapters, starts the sync workers and performs
// the initial loads. Failed initial loads are logged, not returned.
func (s *Service) Start(ctx context.Context) error {
	docs, fresh, err := s.start(ctx)
	if err != nil || !fresh {
		return err
	}
	// loads publish through the dataset store, readers must not wait on them
	s.initialLoad(ctx, docs)
	return nil
}

// start opens the adapters under s.mu and returns the document store the
// initial load may restore from. fresh is false when already started.
func (s *Service) start(ctx context.Context) (DocStore, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, false, nil
	}
	s.logger.Info(ctx, "starting workforce service...")

	if s.summarizer == nil && s.cfg.GeminiAPIKey != "" {
		g, err := llm.NewGemini(ctx, s.cfg.GeminiAPIKey, llm.WithModel(s.cfg.GeminiModel))
		if err != nil {
			s.logger.Warn(ctx, "narrative summary unavailable", logger.Error(err))
		} else {
			s.summarizer = g
		}
	}

	if s.docs == nil && s.cfg.DatabaseURL != "" {
		store, err := docstore.Open(ctx, s.cfg.DatabaseURL, docstore.WithBatchSize(s.cfg.SyncBatchSize))
		if err != nil {
			return nil, false, err
		}
		s.docs = store
		s.closeDocs = store.Close
	}

	if s.docs != nil {
		s.queue = syncqueue.NewInMemoryQueue(syncqueue.WithCapacity(s.cfg.SyncQueueSize))
		s.pool = workerpool.NewPool(s.cfg.SyncWorkers, s.queue, s.docs)
		// workers outlive ctx so Stop can drain queued jobs
		poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.stopPool = cancel
		s.pool.Start(poolCtx)
	}

	s.started = true
	s.logger.Info(ctx, "workforce service started",
		logger.Bool("summary", s.summarizer != nil),
		logger.Bool("sync", s.docs != nil),
		logger.Int("syncWorkers", s.cfg.SyncWorkers),
	)
	return s.docs, true, nil
}

// initialLoad loads the configured sources. The team sheet goes first so
// the first dataset already carries its categories. Without a data URL the
// document store, when present, seeds the dataset. Configured sources may
// be local paths. Must run without s.mu held.
func (s *Service) initialLoad(ctx context.Context, docs DocStore) {
	if s.cfg.ConfigSheetURL != "" {
		if _, err := s.loadTeamURL(ctx, s.cfg.ConfigSheetURL, s.fetcher.Load); err != nil {
			s.logger.Warn(ctx, "initial team sheet load failed", logger.Error(err))
		}
	}

	switch {
	case s.cfg.DataURL != "":
		if _, err := s.ingestURL(ctx, s.cfg.DataURL, s.fetcher.Load); err != nil {
			s.logger.Warn(ctx, "initial data load failed", logger.String("url", s.cfg.DataURL), logger.Error(err))
		}
	case docs != nil:
		if _, err := s.restore(ctx, docs); err != nil {
			s.logger.Warn(ctx, "restore from document store failed", logger.Error(err))
		}
	}
}

// Stop drains pending sync jobs and closes the adapters.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping workforce service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "sync pool shutdown failed", logger.Error(err))
		}
		s.stopPool()
		s.pool = nil
		s.queue = nil
	}
	if s.closeDocs != nil {
		s.closeDocs()
		s.closeDocs = nil
		s.docs = nil
	}

	s.started = false
	s.logger.Info(ctx, "workforce service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.data.Snapshot()
	sheet, manual := s.team.Counts()
	stats := map[string]interface{}{
		"started":          s.started,
		"generation":       snap.Generation,
		"latestGeneration": s.data.Latest(),
		"source":           snap.Source,
		"records":          len(snap.Records),
		"teamSheet":        sheet,
		"teamOverrides":    manual,
		"summary":          s.summarizer != nil,
		"sync":             s.docs != nil,
	}
	if !snap.LoadedAt.IsZero() {
		stats["loadedAt"] = snap.LoadedAt.Format(time.RFC3339)
	}

	if s.started && s.queue != nil {
		queueLen := s.queue.Len(context.Background())
		stats["syncQueueLength"] = queueLen
		stats["syncJobs"] = s.pool.Stats()
		metrics.UpdateSyncQueueSize(queueLen)
	}
	metrics.UpdateRecordsLoaded(len(snap.Records))
	metrics.UpdateTeamEntries("sheet", sheet)
	metrics.UpdateTeamEntries("manual", manual)
	return stats
}
