package portal

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/httpx"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
)

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// handleChangeRole sets a profile's role. The write is conditional on the
// role the decision was made against.
func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		h.fail(w, r, httpx.ErrUnauthorized)
		return
	}
	var req changeRoleRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	requested, err := authz.ParseRole(req.Role)
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %q is not a role", httpx.ErrValidation, req.Role))
		return
	}
	id := chi.URLParam(r, "id")
	doc, err := h.load(r.Context(), authz.ResourceProfile, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subj, err := h.subjectOf(r.Context(), actor, authz.ResourceProfile, doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pctx := subj.ctx.(authz.ProfileContext)
	pctx.RequestedRole = requested
	err = h.rbac.Authorize(r, authz.ActionChangeRole, pctx)
	if err == nil && !authz.CanChangeUserRole(actor.Role, requested) {
		err = fmt.Errorf("%w: cannot grant %s", httpx.ErrForbidden, requested)
	}
	if err != nil {
		h.recordAudit(r.Context(), actor, authz.ActionChangeRole, authz.ResourceProfile, id, err, map[string]any{"requested": string(requested)})
		h.fail(w, r, err)
		return
	}
	current := stringField(doc, "role")
	updated, err := h.store.Update(r.Context(), string(authz.ResourceProfile), id, store.FieldEquals("role", current), store.Document{"role": string(requested)})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.recordAudit(r.Context(), actor, authz.ActionChangeRole, authz.ResourceProfile, id, nil, map[string]any{"from": current, "to": string(requested)})
	h.respondView(w, r, http.StatusOK, authz.ResourceProfile, updated, actor, subj.own, nil)
}
