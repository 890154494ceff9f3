package api

import (
	"errors"
	"net/http"

	"github.com/okian/workforce/internal/domain/summary"
)

// SummaryHandler handles narrative summary requests.
type SummaryHandler struct {
	deps Querier
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps Querier) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleSummary handles POST /summary. The selection comes from query
// parameters like the read endpoints.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.summary"
	if !allow(w, r, http.MethodPost) {
		return
	}

	report, err := h.deps.Summary(r.Context(), ParseCriteria(r))
	switch {
	case errors.Is(err, summary.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "summary_disabled", Wrap(op, err))
	case err != nil:
		writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
	default:
		writeJSON(w, http.StatusOK, report)
	}
}
