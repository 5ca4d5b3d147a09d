package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// BlacklistStore is the persistence surface needed by the purge job.
type BlacklistStore interface {
	PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

// BlacklistPurgeJob removes blacklist rows for tokens that already expired.
// Purging never un-revokes anything: an expired token fails verification
// before the blacklist is ever consulted.
type BlacklistPurgeJob struct {
	store  BlacklistStore
	logger *slog.Logger
}

// NewBlacklistPurgeJob constructs the job.
func NewBlacklistPurgeJob(store BlacklistStore, logger *slog.Logger) *BlacklistPurgeJob {
	return &BlacklistPurgeJob{store: store, logger: logger}
}

// Handle processes TaskBlacklistPurge tasks.
func (j *BlacklistPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload BlacklistPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	before := payload.Before
	if before.IsZero() {
		before = time.Now().UTC()
	}
	purged, err := j.store.PurgeExpiredTokens(ctx, before)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("purged expired blacklist tokens", slog.Int64("count", purged))
	}
	return nil
}
