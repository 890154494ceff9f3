package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/workforce/internal/adapters/docstore"
	"github.com/okian/workforce/internal/adapters/fetch"
	"github.com/okian/workforce/internal/adapters/http/api"
	"github.com/okian/workforce/internal/adapters/mq/queue"
	"github.com/okian/workforce/internal/adapters/repository"
	"github.com/okian/workforce/internal/domain/filter"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/internal/domain/stats"
	"github.com/okian/workforce/internal/domain/summary"
	"github.com/okian/workforce/internal/domain/team"
	"github.com/okian/workforce/pkg/metrics"
)

// mockDeps records the last call and returns canned answers.
type mockDeps struct {
	ingestText string
	ingestURL  string
	ingestErr  error
	records    int

	teamText  string
	overrides map[string]string

	criteria filter.Criteria

	summaryErr error
	syncErr    error
}

func (m *mockDeps) Ingest(_ context.Context, text string) (model.LoadReport, error) {
	m.ingestText = text
	return model.LoadReport{Generation: 1, Source: "upload", Records: m.records}, m.ingestErr
}

func (m *mockDeps) IngestURL(_ context.Context, url string) (model.LoadReport, error) {
	m.ingestURL = url
	return model.LoadReport{Generation: 1, Source: url, Records: m.records}, m.ingestErr
}

func (m *mockDeps) LoadTeam(_ context.Context, text string) model.TeamReport {
	m.teamText = text
	return model.TeamReport{Source: "upload", Entries: 2}
}

func (m *mockDeps) LoadTeamURL(_ context.Context, url string) (model.TeamReport, error) {
	return model.TeamReport{Source: url, Entries: 2}, m.ingestErr
}

func (m *mockDeps) Team() []team.Entry {
	return []team.Entry{{Name: "Ana", Category: "Full Time", Source: team.SourceSheet}}
}

func (m *mockDeps) SetOverrides(_ context.Context, overrides map[string]string) []team.Entry {
	m.overrides = overrides
	return m.Team()
}

func (m *mockDeps) Records(c filter.Criteria) []model.Record {
	m.criteria = c
	return []model.Record{{ID: "1-abc", Date: "2024-03-01", Consultant: "Ana", Hours: 8}}
}

func (m *mockDeps) Alerts(_ context.Context, c filter.Criteria) []model.Alert {
	m.criteria = c
	return []model.Alert{{Severity: model.SeverityCritical, Rule: "no_activity", Consultant: "Ana"}}
}

func (m *mockDeps) Stats(c filter.Criteria) stats.Summary {
	m.criteria = c
	return stats.Summary{KPI: stats.KPI{TotalHours: 8}}
}

func (m *mockDeps) Months() []string { return []string{"2024-03", "2024-02"} }

func (m *mockDeps) Options() filter.Options {
	return filter.Options{Clients: []string{"Acme"}}
}

func (m *mockDeps) Export(w io.Writer, c filter.Criteria) error {
	m.criteria = c
	_, err := io.WriteString(w, "Fecha;Consultor\n")
	return err
}

func (m *mockDeps) Summary(_ context.Context, _ filter.Criteria) (summary.Report, error) {
	if m.summaryErr != nil {
		return summary.Fallback(), m.summaryErr
	}
	return summary.Report{Summary: "steady"}, nil
}

func (m *mockDeps) Sync(_ context.Context) (model.SyncJob, error) {
	if m.syncErr != nil {
		return model.SyncJob{}, m.syncErr
	}
	return model.SyncJob{ID: "job-1", Records: make([]model.Record, 3), EnqueuedAt: time.Now()}, nil
}

type mockStatus struct{}

func (mockStatus) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStatus{}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var e struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	return e.Code
}

func TestIngestEndpoint(t *testing.T) {
	Convey("Given the API with a loader", t, func() {
		deps := &mockDeps{records: 2}
		mux := newMux(deps)

		Convey("A CSV body is ingested", func() {
			w := do(mux, http.MethodPost, "/ingest", "Fecha;Horas\n2024-03-01;8\n")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.ingestText, ShouldStartWith, "Fecha;Horas")

			var rep model.LoadReport
			So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
			So(rep.Records, ShouldEqual, 2)
		})

		Convey("A url parameter fetches instead", func() {
			w := do(mux, http.MethodPost, "/ingest?url=https://example.com/pub.csv", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.ingestURL, ShouldEqual, "https://example.com/pub.csv")
		})

		Convey("An empty body is a bad request", func() {
			w := do(mux, http.MethodPost, "/ingest", "  ")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("A dataset without records is unprocessable", func() {
			deps.records = 0
			w := do(mux, http.MethodPost, "/ingest", "Fecha\n")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errorCode(w), ShouldEqual, "no_data")
		})

		Convey("Upstream failures map to 502", func() {
			deps.ingestErr = fmt.Errorf("wrapped: %w", fetch.ErrNotCSV)
			w := do(mux, http.MethodPost, "/ingest?url=https://example.com", "")
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(errorCode(w), ShouldEqual, "not_csv")
		})

		Convey("A url that is not http(s) is a bad request", func() {
			deps.ingestErr = fmt.Errorf("%w: %q", fetch.ErrUnsupportedURL, "/etc/passwd")
			w := do(mux, http.MethodPost, "/ingest?url=/etc/passwd", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")

			w = do(mux, http.MethodPost, "/team/sheet?url=file:///etc/passwd", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("A stale load maps to 409", func() {
			deps.ingestErr = repository.ErrStale
			w := do(mux, http.MethodPost, "/ingest", "a;b\n1;2\n")
			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("Other methods are rejected", func() {
			w := do(mux, http.MethodGet, "/ingest", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
		})
	})
}

func TestTeamEndpoints(t *testing.T) {
	Convey("Given the API with team layers", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("GET /team lists entries", func() {
			w := do(mux, http.MethodGet, "/team", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"source":"sheet"`)
		})

		Convey("POST /team/sheet loads a CSV body", func() {
			w := do(mux, http.MethodPost, "/team/sheet", "Nombre,Tipo\nAna,Full Time\n")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.teamText, ShouldContainSubstring, "Ana")
		})

		Convey("PUT /team/overrides decodes a JSON object", func() {
			w := do(mux, http.MethodPut, "/team/overrides", `{"Ana":"Part Time","Luis":""}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.overrides, ShouldResemble, map[string]string{"Ana": "Part Time", "Luis": ""})
		})

		Convey("Malformed overrides are rejected", func() {
			w := do(mux, http.MethodPut, "/team/overrides", `["Ana"]`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_json")
		})
	})
}

func TestQueryEndpoints(t *testing.T) {
	Convey("Given the API with a dataset", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("Filters are read from repeated and comma separated parameters", func() {
			w := do(mux, http.MethodGet, "/records?month=2024-03,2024-02&client=Acme&client=Globex&q=+bug+&ids=1-abc", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.criteria.Months, ShouldResemble, []string{"2024-03", "2024-02"})
			So(deps.criteria.Clients, ShouldResemble, []string{"Acme", "Globex"})
			So(deps.criteria.Search, ShouldEqual, "bug")
			So(deps.criteria.IDs, ShouldResemble, []string{"1-abc"})
		})

		Convey("Alerts, stats, months and options answer JSON", func() {
			for _, path := range []string{"/alerts", "/stats", "/months", "/options"} {
				w := do(mux, http.MethodGet, path, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			}
		})

		Convey("Export returns a CSV attachment", func() {
			w := do(mux, http.MethodGet, "/export?consultant=Ana", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "text/csv; charset=utf-8")
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "attachment")
			So(deps.criteria.Consultants, ShouldResemble, []string{"Ana"})
		})
	})
}

func TestSummaryAndSyncEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("A summary is returned", func() {
			w := do(mux, http.MethodPost, "/summary", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "steady")
		})

		Convey("A disabled summarizer answers 503", func() {
			deps.summaryErr = summary.ErrDisabled
			w := do(mux, http.MethodPost, "/summary", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(errorCode(w), ShouldEqual, "summary_disabled")
		})

		Convey("A sync is accepted", func() {
			w := do(mux, http.MethodPost, "/sync", "")
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(w.Body.String(), ShouldContainSubstring, `"job_id":"job-1"`)
		})

		Convey("Sync without a document store answers 503", func() {
			deps.syncErr = docstore.ErrNotConfigured
			w := do(mux, http.MethodPost, "/sync", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("A full sync queue answers 429", func() {
			deps.syncErr = fmt.Errorf("%w: job x", queue.ErrQueueFull)
			w := do(mux, http.MethodPost, "/sync", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(errorCode(w), ShouldEqual, "backpressure")
		})
	})
}

func TestHealthAndStatus(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newMux(&mockDeps{})

		Convey("Health serves the metrics registry", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Status serves the service stats", func() {
			w := do(mux, http.MethodGet, "/status", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})
	})
}

// endpointErrors reads errors_by_endpoint_total for one label set.
func endpointErrors(endpoint, method, errorType string) float64 {
	families, _ := metrics.GetRegistry().Gather()
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "errors_by_endpoint_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["endpoint"] == endpoint && labels["method"] == method && labels["error_type"] == errorType {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetricsMiddlewareErrorKinds(t *testing.T) {
	Convey("Given the API behind the metrics middleware", t, func() {
		deps := &mockDeps{records: 2}
		mux := newMux(deps)

		Convey("A stale load is counted under its error code", func() {
			before := endpointErrors("ingest", http.MethodPost, "stale")
			deps.ingestErr = repository.ErrStale
			w := do(mux, http.MethodPost, "/ingest", "a;b\n1;2\n")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(endpointErrors("ingest", http.MethodPost, "stale")-before, ShouldEqual, 1)
		})

		Convey("Upstream failures keep their specific code", func() {
			before := endpointErrors("team_sheet", http.MethodPost, "not_csv")
			deps.ingestErr = fetch.ErrNotCSV
			w := do(mux, http.MethodPost, "/team/sheet?url=https://example.com", "")
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(endpointErrors("team_sheet", http.MethodPost, "not_csv")-before, ShouldEqual, 1)
		})

		Convey("A rejected method is counted as method_not_allowed", func() {
			before := endpointErrors("ingest", http.MethodGet, "method_not_allowed")
			do(mux, http.MethodGet, "/ingest", "")
			So(endpointErrors("ingest", http.MethodGet, "method_not_allowed")-before, ShouldEqual, 1)
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Given the error helpers", t, func() {
		base := fmt.Errorf("boom")

		So(api.Wrap("op", nil), ShouldBeNil)
		So(api.Wrap("op", base).Error(), ShouldEqual, "op: boom")
		So(api.NewKind("op", api.ErrNoData).Error(), ShouldEqual, "op: no records found")

		err := api.WrapKind("op", api.ErrUpstream, base)
		So(err.Error(), ShouldEqual, "op: upstream source failed: boom")
	})
}
