package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/workdesk/portal/internal/authz"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	ID   string     `json:"id"`
	Role authz.Role `json:"role"`
}

// SessionStore maps bearer tokens to actors. Tokens live in Redis and slide
// their expiry on every successful resolve.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

type sessionPayload struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Issue stores a new session for actor and returns its token.
func (s *SessionStore) Issue(ctx context.Context, actor Actor) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("session store not initialised")
	}
	if strings.TrimSpace(actor.ID) == "" {
		return "", errors.New("session actor id required")
	}
	if !actor.Role.Valid() {
		return "", fmt.Errorf("issue session: %w: %q", authz.ErrUnknownRole, actor.Role)
	}
	data, err := json.Marshal(sessionPayload{UserID: actor.ID, Role: string(actor.Role), IssuedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}
	token := generateToken()
	if err := s.client.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return token, nil
}

// Resolve returns the actor behind token. A stored role outside the registry
// is reported as authz.ErrUnknownRole so callers can tell corrupt sessions
// from missing ones.
func (s *SessionStore) Resolve(ctx context.Context, token string) (Actor, error) {
	if s == nil || s.client == nil {
		return Actor{}, errors.New("session store not initialised")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Actor{}, ErrSessionNotFound
	}
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Actor{}, ErrSessionNotFound
		}
		return Actor{}, fmt.Errorf("resolve session: %w", err)
	}
	var stored sessionPayload
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Actor{}, fmt.Errorf("resolve session: %w", err)
	}
	role, err := authz.ParseRole(stored.Role)
	if err != nil {
		return Actor{}, fmt.Errorf("resolve session: %w", err)
	}
	if err := s.client.Expire(ctx, sessionKey(token), s.ttl).Err(); err != nil {
		return Actor{}, fmt.Errorf("refresh session: %w", err)
	}
	return Actor{ID: stored.UserID, Role: role}, nil
}

// Revoke deletes the session behind token.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if s == nil || s.client == nil {
		return errors.New("session store not initialised")
	}
	n, err := s.client.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// TTL exposes the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func sessionKey(token string) string {
	return "session:" + token
}

func generateToken() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
