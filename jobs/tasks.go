package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBlacklistPurge is the task type for purging expired blacklist rows.
	TaskBlacklistPurge = "token:purge_blacklist"
)

// BlacklistPurgePayload describes a purge run. Before defaults to now when zero.
type BlacklistPurgePayload struct {
	Before time.Time `json:"before"`
}

// NewBlacklistPurgeTask constructs an Asynq task.
func NewBlacklistPurgeTask(payload BlacklistPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBlacklistPurge, data), nil
}
