package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLocationRefresh rebuilds the cached location directory.
	TaskLocationRefresh = "locations:refresh"
	// TaskSessionPrune removes expired session rows.
	TaskSessionPrune = "sessions:prune"
	// TaskAuditPrune trims audit logs past the retention window.
	TaskAuditPrune = "audit:prune"
)

// NewLocationRefreshTask constructs the directory refresh task.
func NewLocationRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskLocationRefresh, nil)
}

// NewSessionPruneTask constructs the session prune task.
func NewSessionPruneTask() *asynq.Task {
	return asynq.NewTask(TaskSessionPrune, nil)
}

// AuditPrunePayload controls how much audit history survives a prune run.
type AuditPrunePayload struct {
	RetainDays int `json:"retainDays"`
}

// NewAuditPruneTask constructs the audit prune task.
func NewAuditPruneTask(payload AuditPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data), nil
}
