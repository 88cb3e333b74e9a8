package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/workdesk/portal/internal/jobs"
	"github.com/workdesk/portal/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AuditEnqueuer is an audit sink that defers the database write to the
// worker. Entries get a timestamp at enqueue time so queue latency does not
// shift them.
type AuditEnqueuer struct {
	client enqueuer
	opts   []asynq.Option
}

// NewAuditEnqueuer wraps an Asynq client. Tasks retry up to five times.
func NewAuditEnqueuer(client enqueuer) *AuditEnqueuer {
	return &AuditEnqueuer{client: client, opts: []asynq.Option{asynq.MaxRetry(5)}}
}

// Record enqueues entry.
func (e *AuditEnqueuer) Record(ctx context.Context, entry shared.AuditLog) error {
	if e == nil || e.client == nil {
		return errors.New("audit enqueuer: client not configured")
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	task, err := NewAuditRecordTask(entry)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, e.opts...)
	return err
}

// AuditJob writes queued audit entries.
type AuditJob struct {
	Sink    shared.AuditSink
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAuditJob wires the handler to the synchronous sink.
func NewAuditJob(sink shared.AuditSink, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditJob {
	return &AuditJob{Sink: sink, Logger: logger, Metrics: metrics}
}

// Handle processes TaskAuditRecord tasks.
func (j *AuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sink == nil {
		return errors.New("audit job: sink not configured")
	}
	var entry shared.AuditLog
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return asynq.SkipRetry
	}
	if err := entry.Validate(); err != nil {
		j.logger().Warn("drop invalid audit entry", slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskAuditRecord)
	err := j.Sink.Record(ctx, entry)
	if err != nil {
		j.logger().Error("write audit entry",
			slog.String("entity", entry.Entity),
			slog.String("entity_id", entry.EntityID),
			slog.Any("error", err),
		)
	} else {
		j.metrics().AddItems(TaskAuditRecord, 1)
	}
	return tracker.End(err)
}

func (j *AuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAuditRecord))
	}
	return slog.Default().With(slog.String("job", TaskAuditRecord))
}

func (j *AuditJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
