package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/httpx"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
)

var leaveTransitions = map[string]authz.Action{
	"approve": authz.ActionApprove,
	"reject":  authz.ActionReject,
	"cancel":  authz.ActionCancel,
}

type reviewRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type forceEditRequest struct {
	Patch map[string]any `json:"patch" validate:"required,min=1"`
	Note  string         `json:"note" validate:"required,max=500"`
}

// handleTransition moves a pending leave to approved, rejected or cancelled.
// The write is conditional on the status the decision was made against, so
// a concurrent review turns into a 409 instead of a double transition.
func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		h.fail(w, r, httpx.ErrUnauthorized)
		return
	}
	action, ok := leaveTransitions[chi.URLParam(r, "transition")]
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: unknown leave transition", httpx.ErrNotFound))
		return
	}
	var req reviewRequest
	if r.ContentLength != 0 {
		if err := h.decodeBody(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	id := chi.URLParam(r, "id")
	doc, err := h.load(r.Context(), authz.ResourceLeave, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subj, err := h.subjectOf(r.Context(), actor, authz.ResourceLeave, doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.rbac.Authorize(r, action, subj.ctx); err != nil {
		h.recordAudit(r.Context(), actor, action, authz.ResourceLeave, id, err, nil)
		h.fail(w, r, err)
		return
	}
	from := subj.ctx.(authz.LeaveContext).Status
	to, ok := authz.NextLeaveStatus(from, action)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: cannot %s a %s leave", httpx.ErrConflict, action, from))
		return
	}

	now := h.clock()
	patch := store.Document{"status": string(to)}
	if action != authz.ActionCancel {
		patch["reviewedBy"] = actor.ID
		patch["reviewedAt"] = now.Format(time.RFC3339)
		if req.Note != "" {
			patch["reviewNote"] = req.Note
		}
	}
	updated, err := h.store.Update(r.Context(), string(authz.ResourceLeave), id, store.FieldEquals("status", string(from)), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.recordReview(r.Context(), actor, id, action, from, to, req.Note, now)
	h.recordAudit(r.Context(), actor, action, authz.ResourceLeave, id, nil, map[string]any{"from": string(from), "to": string(to)})
	h.respondView(w, r, http.StatusOK, authz.ResourceLeave, updated, actor, subj.own, nil)
}

// handleForceEdit applies an override edit to an approved leave. The status
// itself is never changed this way.
func (h *Handler) handleForceEdit(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		h.fail(w, r, httpx.ErrUnauthorized)
		return
	}
	var req forceEditRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	doc, err := h.load(r.Context(), authz.ResourceLeave, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subj, err := h.subjectOf(r.Context(), actor, authz.ResourceLeave, doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.rbac.Authorize(r, authz.ActionForceEdit, subj.ctx); err != nil {
		h.recordAudit(r.Context(), actor, authz.ActionForceEdit, authz.ResourceLeave, id, err, nil)
		h.fail(w, r, err)
		return
	}
	status := subj.ctx.(authz.LeaveContext).Status
	if status != authz.LeaveApproved {
		h.fail(w, r, fmt.Errorf("%w: force-edit applies to approved leaves, this one is %s", httpx.ErrConflict, status))
		return
	}
	edit, err := h.engine.FilterForEdit(authz.ResourceLeave, req.Patch, actor.Role, subj.own)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dropAccepted(&edit, "status")
	if len(edit.Accepted) == 0 {
		h.respondView(w, r, http.StatusOK, authz.ResourceLeave, doc, actor, subj.own, edit.Dropped)
		return
	}
	updated, err := h.store.Update(r.Context(), string(authz.ResourceLeave), id, store.FieldEquals("status", string(status)), edit.Accepted)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now := h.clock()
	h.recordReview(r.Context(), actor, id, authz.ActionForceEdit, status, status, req.Note, now)
	h.recordAudit(r.Context(), actor, authz.ActionForceEdit, authz.ResourceLeave, id, nil, map[string]any{
		"fields":  fieldNames(edit.Accepted),
		"dropped": edit.Dropped,
	})
	h.respondView(w, r, http.StatusOK, authz.ResourceLeave, updated, actor, subj.own, edit.Dropped)
}

// handleReviews lists the review history of a leave to anyone who may read it.
func (h *Handler) handleReviews(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		h.fail(w, r, httpx.ErrUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	doc, err := h.load(r.Context(), authz.ResourceLeave, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subj, err := h.subjectOf(r.Context(), actor, authz.ResourceLeave, doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.rbac.Authorize(r, authz.ActionRead, subj.ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	logs := []shared.ApprovalLog{}
	if h.reviews != nil {
		found, err := h.reviews.List(r.Context(), string(authz.ModuleLeave), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if found != nil {
			logs = found
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": logs})
}

func (h *Handler) recordReview(ctx context.Context, actor shared.Actor, id string, action authz.Action, from, to authz.LeaveStatus, note string, at time.Time) {
	if h.reviews == nil {
		return
	}
	kind, ok := shared.ApprovalActionFor(action)
	if !ok {
		return
	}
	err := h.reviews.Record(context.WithoutCancel(ctx), shared.ApprovalLog{
		Module:  string(authz.ModuleLeave),
		RefID:   id,
		ActorID: actor.ID,
		Action:  kind,
		From:    from,
		To:      to,
		Note:    note,
		At:      at,
	})
	if err != nil {
		h.logger.Warn("record leave review", slog.String("leave_id", id), slog.Any("error", err))
	}
}
