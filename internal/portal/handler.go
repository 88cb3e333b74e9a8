// Package portal serves the module resources over HTTP. Every route loads
// the resource, derives the ownership or membership context for the caller,
// asks the engine, and serialises only the fields the caller may see.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/httpx"
	"github.com/workdesk/portal/internal/rbac"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
)

// Store is the document storage the handler reads and writes through.
type Store interface {
	Get(ctx context.Context, kind, id string) (store.Document, error)
	Update(ctx context.Context, kind, id string, guard store.Guard, patch store.Document) (store.Document, error)
	Delete(ctx context.Context, kind, id string) error
}

// ReviewRecorder keeps the history of leave reviews.
type ReviewRecorder interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
	List(ctx context.Context, module, ref string) ([]shared.ApprovalLog, error)
}

// HandlerConfig collects the handler dependencies.
type HandlerConfig struct {
	Store   Store
	Engine  *authz.Engine
	RBAC    rbac.Middleware
	Audit   shared.AuditSink
	Reviews ReviewRecorder
	Logger  *slog.Logger
}

// Handler exposes the module routes.
type Handler struct {
	store    Store
	engine   *authz.Engine
	rbac     rbac.Middleware
	audit    shared.AuditSink
	reviews  ReviewRecorder
	logger   *slog.Logger
	validate *validator.Validate
	clock    func() time.Time
}

// NewHandler constructs the portal handler.
func NewHandler(cfg HandlerConfig) *Handler {
	engine := cfg.Engine
	if engine == nil {
		engine = authz.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mw := cfg.RBAC
	if mw.Engine == nil {
		mw.Engine = engine
	}
	if mw.Logger == nil {
		mw.Logger = logger
	}
	return &Handler{
		store:    cfg.Store,
		engine:   engine,
		rbac:     mw,
		audit:    cfg.Audit,
		reviews:  cfg.Reviews,
		logger:   logger,
		validate: validator.New(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type collection struct {
	path     string
	resource authz.Resource
}

var collections = []collection{
	{path: "profiles", resource: authz.ResourceProfile},
	{path: "projects", resource: authz.ResourceProject},
	{path: "tasks", resource: authz.ResourceTask},
	{path: "attendance", resource: authz.ResourceAttendance},
	{path: "leaves", resource: authz.ResourceLeave},
	{path: "chats", resource: authz.ResourceChat},
	{path: "timetracker", resource: authz.ResourceTimetracker},
}

// MountRoutes attaches the module routes. Callers must already be
// authenticated.
func (h *Handler) MountRoutes(r chi.Router) {
	for _, c := range collections {
		r.Route("/"+c.path, func(r chi.Router) {
			r.Get("/{id}", h.handleGet(c.resource))
			r.Patch("/{id}", h.handlePatch(c.resource))
			r.Delete("/{id}", h.handleDelete(c.resource))
			switch c.resource {
			case authz.ResourceProfile:
				r.Put("/{id}/role", h.handleChangeRole)
			case authz.ResourceLeave:
				r.Get("/{id}/reviews", h.handleReviews)
				r.Post("/{id}/force-edit", h.handleForceEdit)
				r.Post("/{id}/{transition}", h.handleTransition)
			case authz.ResourceChat:
				r.Get("/{id}/messages/{messageID}", h.handleGetMessage)
				r.Patch("/{id}/messages/{messageID}", h.handlePatchMessage)
			}
		})
	}
}

type dataResponse struct {
	Data    authz.Document `json:"data"`
	Dropped []string       `json:"dropped,omitempty"`
}

func (h *Handler) handleGet(resource authz.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok {
			h.fail(w, r, httpx.ErrUnauthorized)
			return
		}
		doc, err := h.load(r.Context(), resource, chi.URLParam(r, "id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		subj, err := h.subjectOf(r.Context(), actor, resource, doc)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.rbac.Authorize(r, authz.ActionRead, subj.ctx); err != nil {
			h.fail(w, r, err)
			return
		}
		h.respondView(w, r, http.StatusOK, resource, doc, actor, subj.own, nil)
	}
}

func (h *Handler) handlePatch(resource authz.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok {
			h.fail(w, r, httpx.ErrUnauthorized)
			return
		}
		var patch authz.Document
		if err := httpx.DecodeJSON(r, &patch); err != nil {
			h.fail(w, r, fmt.Errorf("%w: body must be a JSON object", httpx.ErrValidation))
			return
		}
		if len(patch) == 0 {
			h.fail(w, r, fmt.Errorf("%w: patch is empty", httpx.ErrValidation))
			return
		}
		id := chi.URLParam(r, "id")
		doc, err := h.load(r.Context(), resource, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		subj, err := h.subjectOf(r.Context(), actor, resource, doc)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.rbac.Authorize(r, authz.ActionUpdate, subj.ctx); err != nil {
			h.recordAudit(r.Context(), actor, authz.ActionUpdate, resource, id, err, nil)
			h.fail(w, r, err)
			return
		}

		var guard store.Guard
		if resource == authz.ResourceLeave {
			status := leaveStatusOf(doc)
			if status != authz.LeavePending {
				h.fail(w, r, fmt.Errorf("%w: leave is %s", httpx.ErrConflict, status))
				return
			}
			guard = store.FieldEquals("status", string(status))
		}

		edit, err := h.engine.FilterForEdit(resource, patch, actor.Role, subj.own)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		switch resource {
		case authz.ResourceProfile:
			if err := h.gateRoleChange(r, subj, &edit); err != nil {
				h.fail(w, r, err)
				return
			}
			if err := h.gateActivation(r, subj, &edit); err != nil {
				h.fail(w, r, err)
				return
			}
		case authz.ResourceLeave:
			// Status only moves through the transition routes.
			dropAccepted(&edit, "status")
		}
		if len(edit.Accepted) == 0 {
			h.respondView(w, r, http.StatusOK, resource, doc, actor, subj.own, edit.Dropped)
			return
		}
		updated, err := h.store.Update(r.Context(), string(resource), id, guard, edit.Accepted)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.recordAudit(r.Context(), actor, authz.ActionUpdate, resource, id, nil, map[string]any{
			"fields":  fieldNames(edit.Accepted),
			"dropped": edit.Dropped,
		})
		h.respondView(w, r, http.StatusOK, resource, updated, actor, subj.own, edit.Dropped)
	}
}

// gateRoleChange drops an accepted "role" key unless the caller may also
// perform change-role on this profile.
func (h *Handler) gateRoleChange(r *http.Request, subj subject, edit *authz.EditResult) error {
	raw, ok := edit.Accepted["role"]
	if !ok {
		return nil
	}
	requested, _ := authz.ParseRole(fmt.Sprint(raw))
	pctx, _ := subj.ctx.(authz.ProfileContext)
	pctx.RequestedRole = requested
	return h.gateKey(r, authz.ActionChangeRole, pctx, edit, "role")
}

// gateActivation drops an accepted "isActive" key unless the caller may
// activate or deactivate this profile. DELETE is refused for the same targets.
func (h *Handler) gateActivation(r *http.Request, subj subject, edit *authz.EditResult) error {
	if _, ok := edit.Accepted["isActive"]; !ok {
		return nil
	}
	return h.gateKey(r, authz.ActionActivateDeactivate, subj.ctx, edit, "isActive")
}

func (h *Handler) gateKey(r *http.Request, action authz.Action, ctx authz.Context, edit *authz.EditResult, key string) error {
	err := h.rbac.Authorize(r, action, ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, httpx.ErrForbidden) {
		return err
	}
	dropAccepted(edit, key)
	return nil
}

func dropAccepted(edit *authz.EditResult, key string) {
	if _, ok := edit.Accepted[key]; !ok {
		return
	}
	delete(edit.Accepted, key)
	edit.Dropped = insertSorted(edit.Dropped, key)
}

func (h *Handler) handleDelete(resource authz.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok {
			h.fail(w, r, httpx.ErrUnauthorized)
			return
		}
		id := chi.URLParam(r, "id")
		doc, err := h.load(r.Context(), resource, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		subj, err := h.subjectOf(r.Context(), actor, resource, doc)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if resource == authz.ResourceProfile && id == actor.ID {
			h.fail(w, r, fmt.Errorf("%w: cannot delete your own profile", httpx.ErrValidation))
			return
		}
		if err := h.rbac.Authorize(r, authz.ActionDelete, subj.ctx); err != nil {
			h.recordAudit(r.Context(), actor, authz.ActionDelete, resource, id, err, nil)
			h.fail(w, r, err)
			return
		}
		if resource == authz.ResourceProfile {
			// Profiles are deactivated, never removed.
			_, err = h.store.Update(r.Context(), string(resource), id, nil, store.Document{"isActive": false})
		} else {
			err = h.store.Delete(r.Context(), string(resource), id)
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.recordAudit(r.Context(), actor, authz.ActionDelete, resource, id, nil, nil)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) load(ctx context.Context, resource authz.Resource, id string) (authz.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id required", httpx.ErrValidation)
	}
	if h.store == nil {
		return nil, errors.New("portal: store not configured")
	}
	return h.store.Get(ctx, string(resource), id)
}

func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, status int, resource authz.Resource, doc authz.Document, actor shared.Actor, own bool, dropped []string) {
	view, err := h.engine.FilterForView(resource, doc, actor.Role, own)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, status, dataResponse{Data: view, Dropped: dropped})
}

func (h *Handler) decodeBody(r *http.Request, dst any) error {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		return fmt.Errorf("%w: malformed body", httpx.ErrValidation)
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s failed %s", httpx.ErrValidation, fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}

// fail maps store and engine errors onto problem responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = fmt.Errorf("%w: %w", httpx.ErrNotFound, err)
	case errors.Is(err, store.ErrConflict):
		err = fmt.Errorf("%w: %w", httpx.ErrConflict, err)
	case errors.Is(err, httpx.ErrNotFound), errors.Is(err, httpx.ErrConflict), errors.Is(err, httpx.ErrValidation),
		errors.Is(err, httpx.ErrForbidden), errors.Is(err, httpx.ErrUnauthorized):
	default:
		h.logger.Error("portal request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	httpx.RespondError(w, err)
}
