package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/workdesk/portal/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRecord persists one authorization audit entry.
	TaskAuditRecord = "audit:record"
	// TaskLeaveExpire moves overdue pending leaves to expired.
	TaskLeaveExpire = "leave:expire"
)

// LeaveExpirePayload configures a leave expiry run. A zero AsOf means the
// time the task is handled.
type LeaveExpirePayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// NewAuditRecordTask wraps an audit entry in a task.
func NewAuditRecordTask(entry shared.AuditLog) (*asynq.Task, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal audit entry: %w", err)
	}
	return asynq.NewTask(TaskAuditRecord, data, asynq.Queue(QueueDefault)), nil
}

// NewLeaveExpireTask builds the scheduled expiry task.
func NewLeaveExpireTask(payload LeaveExpirePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeaveExpire, data, asynq.Queue(QueueDefault)), nil
}
