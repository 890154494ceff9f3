package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// TeamHandler handles team sheet and override requests.
type TeamHandler struct {
	deps Loader
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps Loader) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleGetTeam handles GET /team.
func (h *TeamHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Team())
}

// HandleLoadSheet handles POST /team/sheet with a CSV body or ?url=.
func (h *TeamHandler) HandleLoadSheet(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_sheet"
	if !allow(w, r, http.MethodPost) {
		return
	}

	if url := strings.TrimSpace(r.URL.Query().Get("url")); url != "" {
		report, err := h.deps.LoadTeamURL(r.Context(), url)
		if err != nil {
			writeLoadError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	text, err := readBody(w, r)
	if err != nil {
		writeBodyError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.LoadTeam(r.Context(), text))
}

// HandleSetOverrides handles PUT /team/overrides with a JSON object of
// consultant name to category. A blank category clears that override.
func (h *TeamHandler) HandleSetOverrides(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_overrides"
	if !allow(w, r, http.MethodPut) {
		return
	}

	var overrides map[string]string
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&overrides); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(overrides) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SetOverrides(r.Context(), overrides))
}
