// Package rbac authenticates portal callers and turns engine decisions into
// HTTP outcomes.
package rbac

import (
	"context"

	"github.com/workdesk/portal/internal/shared"
)

// ActorResolver maps a bearer token to the calling actor.
type ActorResolver interface {
	Resolve(ctx context.Context, token string) (shared.Actor, error)
}

// DecisionObserver counts authorization decisions.
type DecisionObserver interface {
	ObserveDecision(module, action, outcome string)
}
