package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/okian/workforce/internal/domain/filter"
)

// QueryHandler serves read queries over the current dataset.
type QueryHandler struct {
	deps Querier
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps Querier) *QueryHandler {
	return &QueryHandler{deps: deps}
}

// ParseCriteria reads the filter selection from query parameters. List
// parameters may repeat or hold comma separated values.
func ParseCriteria(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	return filter.Criteria{
		Months:          list(q["month"]),
		Clients:         list(q["client"]),
		Consultants:     list(q["consultant"]),
		RecordTypes:     list(q["record_type"]),
		ConsultantTypes: list(q["consultant_type"]),
		Search:          strings.TrimSpace(q.Get("q")),
		IDs:             list(q["ids"]),
	}
}

func list(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// HandleRecords handles GET /records.
func (h *QueryHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Records(ParseCriteria(r)))
}

// HandleAlerts handles GET /alerts.
func (h *QueryHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Alerts(r.Context(), ParseCriteria(r)))
}

// HandleStats handles GET /stats.
func (h *QueryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Stats(ParseCriteria(r)))
}

// HandleMonths handles GET /months.
func (h *QueryHandler) HandleMonths(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Months())
}

// HandleOptions handles GET /options.
func (h *QueryHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Options())
}

// HandleExport handles GET /export with a CSV attachment.
func (h *QueryHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	if !allow(w, r, http.MethodGet) {
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Export(&buf, ParseCriteria(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="workforce-export.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
