package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/httpx"
	"github.com/workdesk/portal/internal/shared"
)

// PermissionsHandler exposes the role registry and the caller's effective
// permissions so clients can shape their UI.
type PermissionsHandler struct {
	logger *slog.Logger
	engine *authz.Engine
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, engine *authz.Engine) *PermissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = authz.Default()
	}
	return &PermissionsHandler{logger: logger, engine: engine}
}

// MountRoutes registers permission routes. Callers must already be
// authenticated.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Get("/roles", h.roles)
}

type roleView struct {
	Role        authz.Role `json:"role"`
	Title       string     `json:"title"`
	Rank        int        `json:"rank"`
	Description string     `json:"description"`
}

type meView struct {
	ActorID      string                                    `json:"actorId"`
	Role         roleView                                  `json:"role"`
	Capabilities authz.Capabilities                        `json:"capabilities"`
	Modules      map[authz.Module]authz.Policy             `json:"modules"`
	Fields       map[authz.Resource]authz.FieldPermissions `json:"fields"`
}

func newRoleView(role authz.Role) roleView {
	return roleView{Role: role, Title: role.Title(), Rank: role.Rank(), Description: role.Description()}
}

func (h *PermissionsHandler) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	caps, err := h.engine.CapabilitiesOf(actor.Role)
	if err != nil {
		h.fail(w, err)
		return
	}
	modules, err := h.engine.PoliciesFor(actor.Role)
	if err != nil {
		h.fail(w, err)
		return
	}
	fields := make(map[authz.Resource]authz.FieldPermissions)
	for _, res := range authz.Resources() {
		f, err := h.engine.FieldPermissionsFor(res, actor.Role)
		if err != nil {
			h.fail(w, err)
			return
		}
		fields[res] = f
	}
	httpx.JSON(w, http.StatusOK, meView{
		ActorID:      actor.ID,
		Role:         newRoleView(actor.Role),
		Capabilities: caps,
		Modules:      modules,
		Fields:       fields,
	})
}

func (h *PermissionsHandler) roles(w http.ResponseWriter, _ *http.Request) {
	roles := authz.Roles()
	out := make([]roleView, 0, len(roles))
	for _, role := range roles {
		out = append(out, newRoleView(role))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *PermissionsHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("permissions", slog.Any("error", err))
	httpx.RespondError(w, err)
}
