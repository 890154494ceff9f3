// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/workforce/internal/domain/filter"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/internal/domain/stats"
	"github.com/okian/workforce/internal/domain/summary"
	"github.com/okian/workforce/internal/domain/team"
)

// maxBodyBytes bounds uploaded CSV bodies.
const maxBodyBytes = 32 << 20

// Loader publishes datasets and team sheets.
type Loader interface {
	Ingest(ctx context.Context, text string) (model.LoadReport, error)
	IngestURL(ctx context.Context, url string) (model.LoadReport, error)
	LoadTeam(ctx context.Context, text string) model.TeamReport
	LoadTeamURL(ctx context.Context, url string) (model.TeamReport, error)
	Team() []team.Entry
	SetOverrides(ctx context.Context, overrides map[string]string) []team.Entry
}

// Querier answers read queries over the current dataset.
type Querier interface {
	Records(c filter.Criteria) []model.Record
	Alerts(ctx context.Context, c filter.Criteria) []model.Alert
	Stats(c filter.Criteria) stats.Summary
	Months() []string
	Options() filter.Options
	Export(w io.Writer, c filter.Criteria) error
	Summary(ctx context.Context, c filter.Criteria) (summary.Report, error)
}

// Syncer queues the dataset for the document store.
type Syncer interface {
	Sync(ctx context.Context) (model.SyncJob, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Loader
	Querier
	Syncer
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statusHandler  *StatusHandler
	ingestHandler  *IngestHandler
	teamHandler    *TeamHandler
	queryHandler   *QueryHandler
	summaryHandler *SummaryHandler
	syncHandler    *SyncHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statusProvider StatusProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statusHandler:  NewStatusHandler(statusProvider),
		ingestHandler:  NewIngestHandler(deps),
		teamHandler:    NewTeamHandler(deps),
		queryHandler:   NewQueryHandler(deps),
		summaryHandler: NewSummaryHandler(deps),
		syncHandler:    NewSyncHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/ingest", MetricsMiddleware(s.ingestHandler.HandleIngest, "ingest"))
	mux.HandleFunc("/team", MetricsMiddleware(s.teamHandler.HandleGetTeam, "team"))
	mux.HandleFunc("/team/sheet", MetricsMiddleware(s.teamHandler.HandleLoadSheet, "team_sheet"))
	mux.HandleFunc("/team/overrides", MetricsMiddleware(s.teamHandler.HandleSetOverrides, "team_overrides"))
	mux.HandleFunc("/records", MetricsMiddleware(s.queryHandler.HandleRecords, "records"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.queryHandler.HandleAlerts, "alerts"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.queryHandler.HandleStats, "stats"))
	mux.HandleFunc("/months", MetricsMiddleware(s.queryHandler.HandleMonths, "months"))
	mux.HandleFunc("/options", MetricsMiddleware(s.queryHandler.HandleOptions, "options"))
	mux.HandleFunc("/export", MetricsMiddleware(s.queryHandler.HandleExport, "export"))
	mux.HandleFunc("/summary", MetricsMiddleware(s.summaryHandler.HandleSummary, "summary"))
	mux.HandleFunc("/sync", MetricsMiddleware(s.syncHandler.HandleSync, "sync"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	if k, ok := w.(errorKinder); ok {
		k.setErrorKind(code)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// allow answers 405 unless r uses method.
func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}
