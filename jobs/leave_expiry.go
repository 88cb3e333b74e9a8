package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/workdesk/portal/internal/authz"
	jobmetrics "github.com/workdesk/portal/internal/jobs"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
)

// LeaveStore is the part of the document store the expiry job needs.
type LeaveStore interface {
	Each(ctx context.Context, kind string, fn func(store.Document) error) error
	Update(ctx context.Context, kind, id string, guard store.Guard, patch store.Document) (store.Document, error)
}

// ReviewRecorder receives the EXPIRE history entries.
type ReviewRecorder interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// LeaveExpiryJob moves pending leaves whose start date has passed to expired.
type LeaveExpiryJob struct {
	Store   LeaveStore
	Reviews ReviewRecorder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewLeaveExpiryJob wires dependencies for the expiry handler.
func NewLeaveExpiryJob(docs LeaveStore, reviews ReviewRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *LeaveExpiryJob {
	return &LeaveExpiryJob{
		Store:   docs,
		Reviews: reviews,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskLeaveExpire tasks.
func (j *LeaveExpiryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("leave expiry: store not configured")
	}
	var payload LeaveExpirePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}

	tracker := j.metrics().Track(TaskLeaveExpire)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Time("as_of", asOf))
	expired, err := j.Run(ctx, asOf)
	if err != nil {
		resultErr = err
		logger.Error("expire leaves", slog.Any("error", err))
		return resultErr
	}
	logger.Info("completed leave expiry", slog.Int("expired", expired))
	return resultErr
}

// Run expires every pending leave starting before the day of asOf and
// returns how many it changed. Leaves reviewed concurrently are skipped.
func (j *LeaveExpiryJob) Run(ctx context.Context, asOf time.Time) (int, error) {
	cutoff := startOfDay(asOf)
	var due []string
	err := j.Store.Each(ctx, string(authz.ResourceLeave), func(doc store.Document) error {
		status, _ := doc["status"].(string)
		if authz.LeaveStatus(status) != authz.LeavePending {
			return nil
		}
		start, ok := parseLeaveDate(doc["startDate"])
		if !ok {
			return nil
		}
		if start.Before(cutoff) {
			id, _ := doc["id"].(string)
			if id != "" {
				due = append(due, id)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range due {
		next, _ := authz.NextLeaveStatus(authz.LeavePending, authz.ActionExpire)
		_, err := j.Store.Update(ctx, string(authz.ResourceLeave), id,
			store.FieldEquals("status", string(authz.LeavePending)),
			store.Document{"status": string(next)},
		)
		if errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrNotFound) {
			j.logger().Debug("skip leave", slog.String("leave_id", id), slog.Any("reason", err))
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++
		j.recordReview(ctx, id, next, asOf)
	}
	j.metrics().AddItems(TaskLeaveExpire, expired)
	return expired, nil
}

func (j *LeaveExpiryJob) recordReview(ctx context.Context, id string, to authz.LeaveStatus, at time.Time) {
	if j.Reviews == nil {
		return
	}
	err := j.Reviews.Record(ctx, shared.ApprovalLog{
		Module:  string(authz.ModuleLeave),
		RefID:   id,
		ActorID: "system",
		Action:  shared.ApprovalExpire,
		From:    authz.LeavePending,
		To:      to,
		At:      at,
	})
	if err != nil {
		j.logger().Warn("record leave expiry", slog.String("leave_id", id), slog.Any("error", err))
	}
}

// parseLeaveDate accepts plain dates and RFC3339 timestamps.
func parseLeaveDate(v any) (time.Time, bool) {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (j *LeaveExpiryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLeaveExpire))
	}
	return slog.Default().With(slog.String("job", TaskLeaveExpire))
}

func (j *LeaveExpiryJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LeaveExpiryJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
