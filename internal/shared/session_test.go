package shared_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/shared"
	_ "github.com/workdesk/portal/testing"
)

func newSessionStore(t *testing.T, ttl time.Duration) (*shared.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionStore(client, ttl), mr
}

func TestSessionIssueAndResolve(t *testing.T) {
	store, mr := newSessionStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, shared.Actor{ID: "u-1", Role: authz.RoleHR})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, mr.Exists("session:"+token))

	actor, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, shared.Actor{ID: "u-1", Role: authz.RoleHR}, actor)
}

func TestSessionResolveSlidesExpiry(t *testing.T) {
	store, mr := newSessionStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, shared.Actor{ID: "u-1", Role: authz.RoleEmployee})
	require.NoError(t, err)

	mr.FastForward(45 * time.Minute)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("session:"+token))

	mr.FastForward(61 * time.Minute)
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
}

func TestSessionResolveUnknownToken(t *testing.T) {
	store, _ := newSessionStore(t, time.Hour)

	_, err := store.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)

	_, err = store.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
}

func TestSessionResolveRejectsUnknownRole(t *testing.T) {
	store, mr := newSessionStore(t, time.Hour)
	require.NoError(t, mr.Set("session:tampered", `{"user_id":"u-9","role":"owner"}`))

	_, err := store.Resolve(context.Background(), "tampered")
	require.Error(t, err)
	assert.ErrorIs(t, err, authz.ErrUnknownRole)
	assert.NotErrorIs(t, err, shared.ErrSessionNotFound)
}

func TestSessionIssueValidatesActor(t *testing.T) {
	store, _ := newSessionStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Issue(ctx, shared.Actor{Role: authz.RoleAdmin})
	assert.Error(t, err)

	_, err = store.Issue(ctx, shared.Actor{ID: "u-1", Role: "owner"})
	assert.ErrorIs(t, err, authz.ErrUnknownRole)
}

func TestSessionRevoke(t *testing.T) {
	store, _ := newSessionStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, shared.Actor{ID: "u-1", Role: authz.RoleClient})
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, token))
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
	assert.ErrorIs(t, store.Revoke(ctx, token), shared.ErrSessionNotFound)
}

func TestSessionDefaultTTL(t *testing.T) {
	store, _ := newSessionStore(t, 0)
	assert.Equal(t, 12*time.Hour, store.TTL())
}

func TestActorContext(t *testing.T) {
	_, ok := shared.ActorFromContext(context.Background())
	assert.False(t, ok)

	ctx := shared.ContextWithActor(context.Background(), shared.Actor{ID: "u-2", Role: authz.RoleAdmin})
	actor, ok := shared.ActorFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-2", actor.ID)
	assert.Equal(t, authz.RoleAdmin, actor.Role)
}
