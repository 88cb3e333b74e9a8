package portal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/httpx"
	"github.com/workdesk/portal/internal/shared"
)

// recordAudit writes a mutation decision to the audit sink. decisionErr is
// the authorization error, nil when the action was allowed. Sink failures are
// logged and never fail the request.
func (h *Handler) recordAudit(ctx context.Context, actor shared.Actor, action authz.Action, resource authz.Resource, id string, decisionErr error, meta map[string]any) {
	if h.audit == nil {
		return
	}
	outcome := shared.OutcomeAllow
	switch {
	case decisionErr == nil:
	case errors.Is(decisionErr, httpx.ErrForbidden):
		outcome = shared.OutcomeDeny
	case authz.IsConfigError(decisionErr):
		outcome = shared.OutcomeConfigError
	default:
		return
	}
	entry := shared.AuditLog{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Action:    string(action),
		Entity:    string(resource),
		EntityID:  id,
		Outcome:   outcome,
		Meta:      meta,
		At:        h.clock(),
	}
	if err := h.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		h.logger.Warn("record audit",
			slog.String("entity", entry.Entity),
			slog.String("entity_id", id),
			slog.Any("error", err),
		)
	}
}
