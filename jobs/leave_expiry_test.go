package jobs_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdesk/portal/internal/authz"
	jobmetrics "github.com/workdesk/portal/internal/jobs"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
	"github.com/workdesk/portal/jobs"
	_ "github.com/workdesk/portal/testing"
)

type reviewLog struct {
	mu   sync.Mutex
	logs []shared.ApprovalLog
}

func (r *reviewLog) Record(_ context.Context, log shared.ApprovalLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func newLeaveStore(t *testing.T) *store.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	docs := store.NewRedisStore(client)

	ctx := context.Background()
	seed := map[string]store.Document{
		"l-overdue":   {"employeeId": "u-1", "status": "pending", "startDate": "2026-03-01"},
		"l-stamp":     {"employeeId": "u-2", "status": "pending", "startDate": "2026-03-09T09:00:00Z"},
		"l-today":     {"employeeId": "u-1", "status": "pending", "startDate": "2026-03-10"},
		"l-future":    {"employeeId": "u-3", "status": "pending", "startDate": "2026-04-01"},
		"l-approved":  {"employeeId": "u-3", "status": "approved", "startDate": "2026-02-01"},
		"l-undated":   {"employeeId": "u-4", "status": "pending"},
		"l-malformed": {"employeeId": "u-4", "status": "pending", "startDate": "next week"},
	}
	for id, doc := range seed {
		require.NoError(t, docs.Put(ctx, "leave", id, doc))
	}
	return docs
}

func TestLeaveExpiryRun(t *testing.T) {
	docs := newLeaveStore(t)
	reviews := &reviewLog{}
	job := jobs.NewLeaveExpiryJob(docs, reviews, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	asOf := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	expired, err := job.Run(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	ctx := context.Background()
	want := map[string]string{
		"l-overdue":   "expired",
		"l-stamp":     "expired",
		"l-today":     "pending",
		"l-future":    "pending",
		"l-approved":  "approved",
		"l-undated":   "pending",
		"l-malformed": "pending",
	}
	for id, status := range want {
		doc, err := docs.Get(ctx, "leave", id)
		require.NoError(t, err)
		assert.Equal(t, status, doc["status"], id)
	}

	require.Len(t, reviews.logs, 2)
	for _, log := range reviews.logs {
		assert.Equal(t, shared.ApprovalExpire, log.Action)
		assert.Equal(t, authz.LeavePending, log.From)
		assert.Equal(t, authz.LeaveExpired, log.To)
		assert.Equal(t, "system", log.ActorID)
	}

	expired, err = job.Run(ctx, asOf)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestLeaveExpiryHandle(t *testing.T) {
	docs := newLeaveStore(t)
	job := jobs.NewLeaveExpiryJob(docs, nil, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := jobs.NewLeaveExpireTask(jobs.LeaveExpirePayload{AsOf: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	doc, err := docs.Get(context.Background(), "leave", "l-overdue")
	require.NoError(t, err)
	assert.Equal(t, "expired", doc["status"])
	doc, err = docs.Get(context.Background(), "leave", "l-stamp")
	require.NoError(t, err)
	assert.Equal(t, "pending", doc["status"])

	err = job.Handle(context.Background(), asynq.NewTask(jobs.TaskLeaveExpire, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLeaveExpireTaskPayload(t *testing.T) {
	asOf := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	task, err := jobs.NewLeaveExpireTask(jobs.LeaveExpirePayload{AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskLeaveExpire, task.Type())

	var payload jobs.LeaveExpirePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.True(t, payload.AsOf.Equal(asOf))
}
