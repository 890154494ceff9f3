package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/okian/workforce/internal/adapters/docstore"
	"github.com/okian/workforce/internal/adapters/mq/queue"
)

// SyncHandler handles document-store sync requests.
type SyncHandler struct {
	deps Syncer
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps Syncer) *SyncHandler {
	return &SyncHandler{deps: deps}
}

type syncResponse struct {
	Status     string    `json:"status"`
	JobID      string    `json:"job_id"`
	Records    int       `json:"records"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// HandleSync handles POST /sync.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	const op = "api.sync"
	if !allow(w, r, http.MethodPost) {
		return
	}

	job, err := h.deps.Sync(r.Context())
	switch {
	case errors.Is(err, docstore.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "sync_disabled", Wrap(op, err))
	case errors.Is(err, queue.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", Wrap(op, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusAccepted, syncResponse{
			Status:     "queued",
			JobID:      job.ID,
			Records:    len(job.Records),
			EnqueuedAt: job.EnqueuedAt,
		})
	}
}
