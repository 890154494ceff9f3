package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/workforce/internal/adapters/fetch"
	"github.com/okian/workforce/internal/adapters/repository"
	"github.com/okian/workforce/internal/domain/model"
)

// IngestHandler handles dataset uploads.
type IngestHandler struct {
	deps Loader
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps Loader) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// HandleIngest handles POST /ingest with a CSV body or ?url=.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest"
	if !allow(w, r, http.MethodPost) {
		return
	}

	var (
		report model.LoadReport
		err    error
	)
	if url := strings.TrimSpace(r.URL.Query().Get("url")); url != "" {
		report, err = h.deps.IngestURL(r.Context(), url)
	} else {
		text, rerr := readBody(w, r)
		if rerr != nil {
			writeBodyError(w, op, rerr)
			return
		}
		report, err = h.deps.Ingest(r.Context(), text)
	}

	if err != nil {
		writeLoadError(w, op, err)
		return
	}
	if report.Records == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no_data", NewKind(op, ErrNoData))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// readBody returns the request body as text; an empty body is a bad request.
func readBody(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", ErrBodyTooBig
		}
		return "", err
	}
	text := fetch.Decode(body)
	if strings.TrimSpace(text) == "" {
		return "", ErrBadRequest
	}
	return text, nil
}

func writeBodyError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBodyTooBig):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", NewKind(op, err))
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
	default:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	}
}

// writeLoadError maps fetch and publish failures to responses.
func writeLoadError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, fetch.ErrUnsupportedURL):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrStale):
		writeError(w, http.StatusConflict, "stale", Wrap(op, err))
	case errors.Is(err, fetch.ErrNotCSV):
		writeError(w, http.StatusBadGateway, "not_csv", WrapKind(op, ErrUpstream, err))
	case errors.Is(err, fetch.ErrEmptySource):
		writeError(w, http.StatusBadGateway, "empty_source", WrapKind(op, ErrUpstream, err))
	case errors.Is(err, fetch.ErrHTTPStatus), errors.Is(err, fetch.ErrRequest):
		writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
