package rbac

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/httpx"
	"github.com/workdesk/portal/internal/shared"
)

// Outcomes reported to the DecisionObserver.
const (
	outcomeAllow       = "allow"
	outcomeDeny        = "deny"
	outcomeConfigError = "config_error"
)

// Middleware wires authentication and authorization helpers for HTTP handlers.
type Middleware struct {
	Sessions ActorResolver
	Engine   *authz.Engine
	Logger   *slog.Logger
	Metrics  DecisionObserver
}

// Authenticate resolves the bearer token into an actor and stores it in the
// request context. Unknown, expired or malformed tokens get a 401.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, fmt.Errorf("%w: bearer token required", httpx.ErrUnauthorized))
			return
		}
		if m.Sessions == nil {
			m.logger().Error("rbac authenticate: no session store configured")
			httpx.RespondError(w, errors.New("session store not configured"))
			return
		}
		actor, err := m.Sessions.Resolve(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, shared.ErrSessionNotFound):
			httpx.RespondError(w, fmt.Errorf("%w: session expired or revoked", httpx.ErrUnauthorized))
			return
		case errors.Is(err, authz.ErrUnknownRole):
			m.logger().Error("rbac authenticate: session carries unknown role", slog.Any("error", err))
			httpx.RespondError(w, fmt.Errorf("%w: session invalid", httpx.ErrUnauthorized))
			return
		default:
			m.logger().Error("rbac authenticate", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireCapability lets the request through when the actor's capability
// summary has the flag selected by pick.
func (m Middleware) RequireCapability(name string, pick func(authz.Capabilities) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			caps, err := m.engine().CapabilitiesOf(actor.Role)
			if err != nil {
				m.observe("capability", name, outcomeConfigError)
				m.logger().Error("rbac require capability", slog.String("capability", name), slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			if !pick(caps) {
				m.observe("capability", name, outcomeDeny)
				httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrForbidden, name))
				return
			}
			m.observe("capability", name, outcomeAllow)
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize asks the engine whether the request's actor may perform action
// in the given module context. It returns nil on allow, an error wrapping
// httpx.ErrForbidden on deny, and the engine's configuration error otherwise.
func (m Middleware) Authorize(r *http.Request, action authz.Action, ctx authz.Context) error {
	if ctx == nil {
		return m.AuthorizeFunc(r, "unknown", action, func(role authz.Role) (bool, error) {
			return m.engine().Can(role, action, nil)
		})
	}
	return m.AuthorizeFunc(r, string(ctx.Module()), action, func(role authz.Role) (bool, error) {
		return m.engine().Can(role, action, ctx)
	})
}

// AuthorizeFunc runs an arbitrary engine check for the request's actor and
// records the decision the same way Authorize does.
func (m Middleware) AuthorizeFunc(r *http.Request, module string, action authz.Action, decide func(authz.Role) (bool, error)) error {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		return fmt.Errorf("%w: %w", httpx.ErrUnauthorized, shared.ErrNoActor)
	}
	allowed, err := decide(actor.Role)
	logger := m.logger().With(
		slog.String("actor", actor.ID),
		slog.String("role", string(actor.Role)),
		slog.String("module", module),
		slog.String("action", string(action)),
	)
	if err != nil {
		m.observe(module, string(action), outcomeConfigError)
		logger.Error("authorization configuration error", slog.Any("error", err))
		return fmt.Errorf("authorize %s %s: %w", module, action, err)
	}
	if !allowed {
		m.observe(module, string(action), outcomeDeny)
		logger.Debug("authorization denied")
		return fmt.Errorf("%w: %s %s", httpx.ErrForbidden, action, module)
	}
	m.observe(module, string(action), outcomeAllow)
	return nil
}

func (m Middleware) engine() *authz.Engine {
	if m.Engine != nil {
		return m.Engine
	}
	return authz.Default()
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func (m Middleware) observe(module, action, outcome string) {
	if m.Metrics != nil {
		m.Metrics.ObserveDecision(module, action, outcome)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
