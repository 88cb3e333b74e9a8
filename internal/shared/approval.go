package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workdesk/portal/internal/authz"
)

// ApprovalAction enumerates review log actions on leaves.
type ApprovalAction string

const (
	// ApprovalApprove marks an approve action.
	ApprovalApprove ApprovalAction = "APPROVE"
	// ApprovalReject marks a reject action.
	ApprovalReject ApprovalAction = "REJECT"
	// ApprovalCancel marks a cancellation.
	ApprovalCancel ApprovalAction = "CANCEL"
	// ApprovalForceEdit marks an override edit of an approved leave.
	ApprovalForceEdit ApprovalAction = "FORCE_EDIT"
	// ApprovalExpire marks the scheduled expiry of a pending leave.
	ApprovalExpire ApprovalAction = "EXPIRE"
)

// ApprovalActionFor maps a leave action onto its review log action.
func ApprovalActionFor(action authz.Action) (ApprovalAction, bool) {
	switch action {
	case authz.ActionApprove:
		return ApprovalApprove, true
	case authz.ActionReject:
		return ApprovalReject, true
	case authz.ActionCancel:
		return ApprovalCancel, true
	case authz.ActionForceEdit:
		return ApprovalForceEdit, true
	case authz.ActionExpire:
		return ApprovalExpire, true
	}
	return "", false
}

// ApprovalLog represents a single review record.
type ApprovalLog struct {
	ID      int64             `json:"id"`
	Module  string            `json:"module"`
	RefID   string            `json:"ref_id"`
	ActorID string            `json:"actor_id"`
	Action  ApprovalAction    `json:"action"`
	From    authz.LeaveStatus `json:"from"`
	To      authz.LeaveStatus `json:"to"`
	Note    string            `json:"note,omitempty"`
	At      time.Time         `json:"at"`
}

type approvalDB interface {
	execer
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ApprovalRecorder persists review history.
type ApprovalRecorder struct {
	db     approvalDB
	logger *slog.Logger
}

// NewApprovalRecorder constructs ApprovalRecorder. A *pgxpool.Pool satisfies db.
func NewApprovalRecorder(db approvalDB, logger *slog.Logger) *ApprovalRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalRecorder{db: db, logger: logger}
}

// Record writes a review entry to the database.
func (r *ApprovalRecorder) Record(ctx context.Context, log ApprovalLog) error {
	if r == nil || r.db == nil {
		return errors.New("approval recorder not initialised")
	}
	if log.Module == "" {
		return errors.New("approval module required")
	}
	if log.ActorID == "" {
		return errors.New("approval actor required")
	}
	if log.RefID == "" {
		return errors.New("approval ref id required")
	}
	if log.Action == "" {
		return errors.New("approval action required")
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err := r.db.Exec(ctx, `INSERT INTO approvals (module, ref_id, actor_id, action, from_status, to_status, note, at)
VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))`,
		log.Module, log.RefID, log.ActorID, string(log.Action), string(log.From), string(log.To), log.Note, at)
	if err != nil {
		r.logger.Error("record approval", slog.String("ref_id", log.RefID), slog.Any("error", err))
		return err
	}
	return nil
}

// List returns review records for module/ref in chronological order.
func (r *ApprovalRecorder) List(ctx context.Context, module, ref string) ([]ApprovalLog, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("approval recorder not initialised")
	}
	rows, err := r.db.Query(ctx, `SELECT id, module, ref_id, actor_id, action, from_status, to_status, note, at
FROM approvals WHERE module=$1 AND ref_id=$2 ORDER BY at ASC`, module, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ApprovalLog
	for rows.Next() {
		var l ApprovalLog
		var action, from, to string
		if err := rows.Scan(&l.ID, &l.Module, &l.RefID, &l.ActorID, &action, &from, &to, &l.Note, &l.At); err != nil {
			return nil, err
		}
		l.Action = ApprovalAction(action)
		l.From = authz.LeaveStatus(from)
		l.To = authz.LeaveStatus(to)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

var _ approvalDB = (*pgxpool.Pool)(nil)
