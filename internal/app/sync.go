package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/workforce/internal/adapters/docstore"
	syncqueue "github.com/okian/workforce/internal/adapters/mq/queue"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/pkg/logger"
)

// Sync queues the merged dataset for the document store and returns the
// job id. Re-syncing the same records overwrites rather than duplicates.
func (s *Service) Sync(ctx context.Context) (model.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.queue == nil {
		return model.SyncJob{}, docstore.ErrNotConfigured
	}

	job := model.SyncJob{
		ID:         uuid.NewString(),
		Records:    s.merged(),
		EnqueuedAt: time.Now(),
	}
	if !s.queue.Enqueue(ctx, job) {
		return model.SyncJob{}, fmt.Errorf("%w: job %s", syncqueue.ErrQueueFull, job.ID)
	}
	s.logger.Info(ctx, "sync job queued", logger.String("job", job.ID), logger.Int("records", len(job.Records)))
	return job, nil
}
