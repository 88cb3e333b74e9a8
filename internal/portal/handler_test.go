package portal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/portal"
	"github.com/workdesk/portal/internal/rbac"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
	_ "github.com/workdesk/portal/testing"
)

type auditRecorder struct {
	mu      sync.Mutex
	entries []shared.AuditLog
}

func (a *auditRecorder) Record(_ context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, log)
	return nil
}

func (a *auditRecorder) last(t *testing.T) shared.AuditLog {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.entries)
	return a.entries[len(a.entries)-1]
}

type reviewRecorder struct {
	mu   sync.Mutex
	logs []shared.ApprovalLog
}

func (r *reviewRecorder) Record(_ context.Context, log shared.ApprovalLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, log)
	return nil
}

func (r *reviewRecorder) List(_ context.Context, module, ref string) ([]shared.ApprovalLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shared.ApprovalLog
	for _, l := range r.logs {
		if l.Module == module && l.RefID == ref {
			out = append(out, l)
		}
	}
	return out, nil
}

type fixture struct {
	store   *store.RedisStore
	audit   *auditRecorder
	reviews *reviewRecorder
	router  http.Handler
}

// actorFromHeaders stands in for bearer authentication in tests.
func actorFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Actor-ID"); id != "" {
			actor := shared.Actor{ID: id, Role: authz.Role(r.Header.Get("X-Actor-Role"))}
			r = r.WithContext(shared.ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newFixtureWithStore(t, store.NewRedisStore(client), nil)
}

func newFixtureWithStore(t *testing.T, docs *store.RedisStore, override portal.Store) *fixture {
	t.Helper()
	f := &fixture{store: docs, audit: &auditRecorder{}, reviews: &reviewRecorder{}}
	var backing portal.Store = docs
	if override != nil {
		backing = override
	}
	h := portal.NewHandler(portal.HandlerConfig{
		Store:   backing,
		Engine:  authz.Default(),
		RBAC:    rbac.Middleware{Engine: authz.Default()},
		Audit:   f.audit,
		Reviews: f.reviews,
	})
	r := chi.NewRouter()
	r.Use(actorFromHeaders)
	h.MountRoutes(r)
	f.router = r
	seed(t, docs)
	return f
}

func seed(t *testing.T, docs *store.RedisStore) {
	t.Helper()
	ctx := context.Background()
	put := func(kind, id string, doc store.Document) {
		require.NoError(t, docs.Put(ctx, kind, id, doc))
	}
	put("profile", "u-super", store.Document{"name": "Sam Root", "email": "root@workdesk.test", "role": "superadmin", "isActive": true})
	put("profile", "u-admin", store.Document{"name": "Ada Admin", "email": "ada@workdesk.test", "role": "admin", "isActive": true})
	put("profile", "u-hr", store.Document{"name": "Hana HR", "email": "hana@workdesk.test", "role": "hr", "isActive": true})
	put("profile", "u-emp", store.Document{
		"name": "Eli Employee", "email": "eli@workdesk.test", "role": "employee", "isActive": true,
		"employeeId": "E-100", "phone": "555-0100",
	})
	put("profile", "u-emp2", store.Document{"name": "Noor Employee", "email": "noor@workdesk.test", "role": "employee", "isActive": true})
	put("profile", "u-client", store.Document{"name": "Cal Client", "email": "cal@workdesk.test", "role": "client", "isActive": true})

	put("project", "p-1", store.Document{
		"name": "Billing revamp", "status": "active", "budget": 12000, "createdBy": "u-admin",
		"clientId": "u-client", "teamMembers": []any{"u-emp"},
	})
	put("project", "p-2", store.Document{"name": "Internal tools", "status": "active", "createdBy": "u-admin", "teamMembers": []any{}})
	put("task", "t-1", store.Document{
		"title": "Invoice export", "projectId": "p-1", "status": "todo", "assignedTo": "u-emp2",
		"createdBy": "u-admin", "estimatedHours": 8,
	})
	put("task", "t-2", store.Document{"title": "Admin panel", "projectId": "p-2", "status": "todo", "createdBy": "u-admin"})

	put("attendance", "a-1", store.Document{"employeeId": "u-emp", "date": "2026-03-02", "status": "present"})

	put("leave", "l-pending", store.Document{"employeeId": "u-emp", "type": "vacation", "status": "pending", "reason": "family trip"})
	put("leave", "l-approved", store.Document{"employeeId": "u-emp", "type": "sick", "status": "approved", "reason": "flu", "totalDays": 2})
	put("leave", "l-broken", store.Document{"employeeId": "u-emp", "type": "sick", "status": "archived"})

	put("chat", "c-1", store.Document{"name": "billing", "type": "group", "createdBy": "u-admin", "members": []any{"u-emp", "u-emp2"}})
	put("chat", "c-2", store.Document{"name": "leadership", "type": "group", "createdBy": "u-admin", "members": []any{"u-admin"}})
	put("message", "m-1", store.Document{"chatId": "c-1", "senderId": "u-emp", "content": "hello", "status": "sent", "readBy": []any{"u-emp2"}})
	put("message", "m-2", store.Document{"chatId": "c-1", "senderId": "u-emp2", "content": "hi", "status": "sent"})
	put("message", "m-3", store.Document{"chatId": "c-2", "senderId": "u-admin", "content": "budget", "status": "sent"})
}

func (f *fixture) do(t *testing.T, method, path, actorID string, role authz.Role, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
		req.Header.Set("X-Actor-Role", string(role))
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Data    map[string]any `json:"data"`
	Dropped []string       `json:"dropped"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func (f *fixture) stored(t *testing.T, kind, id string) store.Document {
	t.Helper()
	doc, err := f.store.Get(context.Background(), kind, id)
	require.NoError(t, err)
	return doc
}

func TestGetProfileFiltersFields(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/profiles/u-emp", "u-emp", authz.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	env := decode(t, rr)
	assert.Equal(t, "u-emp", env.Data["id"])
	assert.Equal(t, "Eli Employee", env.Data["name"])
	assert.NotContains(t, env.Data, "isActive")
	assert.NotContains(t, env.Data, "employeeId")

	rr = f.do(t, http.MethodGet, "/profiles/u-emp", "u-hr", authz.RoleHR, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	env = decode(t, rr)
	assert.Equal(t, "E-100", env.Data["employeeId"])
	assert.NotContains(t, env.Data, "isActive")

	rr = f.do(t, http.MethodGet, "/profiles/u-emp", "u-admin", authz.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr).Data["isActive"])
}

func TestGetStatusMapping(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		path   string
		actor  string
		role   authz.Role
		status int
	}{
		{"other profile", "/profiles/u-emp2", "u-emp", authz.RoleEmployee, http.StatusForbidden},
		{"missing profile", "/profiles/nobody", "u-admin", authz.RoleAdmin, http.StatusNotFound},
		{"no actor", "/profiles/u-emp", "", "", http.StatusUnauthorized},
		{"unknown role", "/profiles/u-emp", "u-emp", "owner", http.StatusInternalServerError},
		{"corrupt leave status", "/leaves/l-broken", "u-admin", authz.RoleAdmin, http.StatusInternalServerError},
		{"own attendance", "/attendance/a-1", "u-emp", authz.RoleEmployee, http.StatusOK},
		{"other attendance", "/attendance/a-1", "u-emp2", authz.RoleEmployee, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, tc.path, tc.actor, tc.role, nil)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestGetProjectAndTaskMembership(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/projects/p-1", "u-emp", authz.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	project := decode(t, rr).Data
	assert.Equal(t, "Billing revamp", project["name"])
	assert.NotContains(t, project, "budget")

	rr = f.do(t, http.MethodGet, "/projects/p-2", "u-emp", authz.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodGet, "/tasks/t-1", "u-emp", authz.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	task := decode(t, rr).Data
	assert.Equal(t, "u-emp2", task["assignedTo"])
	assert.NotContains(t, task, "createdBy")

	rr = f.do(t, http.MethodGet, "/tasks/t-1", "u-client", authz.RoleClient, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	task = decode(t, rr).Data
	assert.NotContains(t, task, "assignedTo")
	assert.NotContains(t, task, "estimatedHours")

	rr = f.do(t, http.MethodGet, "/tasks/t-2", "u-emp", authz.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodGet, "/tasks/t-2", "u-hr", authz.RoleHR, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPatchProfileDropsDisallowedFields(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPatch, "/profiles/u-emp", "u-emp", authz.RoleEmployee, map[string]any{
		"name":     "Eli E.",
		"isActive": false,
		"role":     "admin",
		"id":       "u-other",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env := decode(t, rr)
	assert.Equal(t, []string{"id", "isActive", "role"}, env.Dropped)
	assert.Equal(t, "Eli E.", env.Data["name"])

	doc := f.stored(t, "profile", "u-emp")
	assert.Equal(t, "Eli E.", doc["name"])
	assert.Equal(t, true, doc["isActive"])
	assert.Equal(t, "employee", doc["role"])
	assert.Equal(t, "u-emp", doc["id"])

	entry := f.audit.last(t)
	assert.Equal(t, shared.OutcomeAllow, entry.Outcome)
	assert.Equal(t, []string{"name"}, entry.Meta["fields"])
}

func TestPatchProfileRoleKey(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPatch, "/profiles/u-emp", "u-admin", authz.RoleAdmin, map[string]any{"role": "superadmin", "department": "Finance"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"role"}, decode(t, rr).Dropped)
	assert.Equal(t, "employee", f.stored(t, "profile", "u-emp")["role"])

	rr = f.do(t, http.MethodPatch, "/profiles/u-emp", "u-admin", authz.RoleAdmin, map[string]any{"role": "HR"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode(t, rr).Dropped)
	assert.Equal(t, "hr", f.stored(t, "profile", "u-emp")["role"])

	rr = f.do(t, http.MethodPatch, "/profiles/u-super", "u-admin", authz.RoleAdmin, map[string]any{"role": "employee"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"role"}, decode(t, rr).Dropped)
	assert.Equal(t, "superadmin", f.stored(t, "profile", "u-super")["role"])
}

func TestPatchProfileActivation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPatch, "/profiles/u-super", "u-admin", authz.RoleAdmin, map[string]any{"isActive": false, "department": "Ops"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{"isActive"}, decode(t, rr).Dropped)
	doc := f.stored(t, "profile", "u-super")
	assert.Equal(t, true, doc["isActive"])
	assert.Equal(t, "Ops", doc["department"])

	rr = f.do(t, http.MethodPatch, "/profiles/u-super", "u-admin", authz.RoleAdmin, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"isActive"}, decode(t, rr).Dropped)
	assert.Equal(t, true, f.stored(t, "profile", "u-super")["isActive"])

	rr = f.do(t, http.MethodPatch, "/profiles/u-emp", "u-admin", authz.RoleAdmin, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode(t, rr).Dropped)
	assert.Equal(t, false, f.stored(t, "profile", "u-emp")["isActive"])

	rr = f.do(t, http.MethodPatch, "/profiles/u-admin", "u-super", authz.RoleSuperAdmin, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, f.stored(t, "profile", "u-admin")["isActive"])
}

func TestPatchValidation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPatch, "/profiles/u-emp", "u-emp", authz.RoleEmployee, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPatch, "/profiles/u-emp", "u-emp", authz.RoleEmployee, []string{"name"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPatch, "/profiles/u-emp2", "u-emp", authz.RoleEmployee, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, shared.OutcomeDeny, f.audit.last(t).Outcome)
}

func TestDeleteProfile(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodDelete, "/profiles/u-admin", "u-admin", authz.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodDelete, "/profiles/u-emp", "u-emp2", authz.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodDelete, "/profiles/u-super", "u-admin", authz.RoleAdmin, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodDelete, "/profiles/u-emp", "u-admin", authz.RoleAdmin, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	doc := f.stored(t, "profile", "u-emp")
	assert.Equal(t, false, doc["isActive"])
	assert.Equal(t, "delete", f.audit.last(t).Action)
}

func TestDeleteRemovesDocument(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodDelete, "/attendance/a-1", "u-emp", authz.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodDelete, "/attendance/a-1", "u-admin", authz.RoleAdmin, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	_, err := f.store.Get(context.Background(), "attendance", "a-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	rr = f.do(t, http.MethodDelete, "/attendance/a-1", "u-admin", authz.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		target string
		actor  string
		role   authz.Role
		body   any
		status int
	}{
		{"admin promotes to hr", "u-emp", "u-admin", authz.RoleAdmin, map[string]string{"role": "hr"}, http.StatusOK},
		{"admin grants superadmin", "u-emp2", "u-admin", authz.RoleAdmin, map[string]string{"role": "superadmin"}, http.StatusForbidden},
		{"admin demotes superadmin", "u-super", "u-admin", authz.RoleAdmin, map[string]string{"role": "admin"}, http.StatusForbidden},
		{"hr changes role", "u-emp2", "u-hr", authz.RoleHR, map[string]string{"role": "client"}, http.StatusForbidden},
		{"unknown role", "u-emp2", "u-admin", authz.RoleAdmin, map[string]string{"role": "owner"}, http.StatusBadRequest},
		{"missing role", "u-emp2", "u-admin", authz.RoleAdmin, map[string]string{}, http.StatusBadRequest},
		{"superadmin grants superadmin", "u-admin", "u-super", authz.RoleSuperAdmin, map[string]string{"role": "superadmin"}, http.StatusOK},
		{"missing profile", "nobody", "u-super", authz.RoleSuperAdmin, map[string]string{"role": "hr"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPut, "/profiles/"+tc.target+"/role", tc.actor, tc.role, tc.body)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
	assert.Equal(t, "hr", f.stored(t, "profile", "u-emp")["role"])
	assert.Equal(t, "employee", f.stored(t, "profile", "u-emp2")["role"])
	assert.Equal(t, "superadmin", f.stored(t, "profile", "u-admin")["role"])
}

func TestMessages(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/chats/c-1/messages/m-2", "u-emp", authz.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	msg := decode(t, rr).Data
	assert.Equal(t, "hi", msg["content"])
	assert.NotContains(t, msg, "chatId")

	rr = f.do(t, http.MethodGet, "/chats/c-2/messages/m-3", "u-emp", authz.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodGet, "/chats/c-1/messages/m-3", "u-admin", authz.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, "/chats/c-9/messages/m-1", "u-admin", authz.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodPatch, "/chats/c-1/messages/m-2", "u-emp", authz.RoleEmployee, map[string]any{"content": "edited"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodPatch, "/chats/c-1/messages/m-1", "u-emp", authz.RoleEmployee, map[string]any{"content": "hello all", "status": "read"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env := decode(t, rr)
	assert.Equal(t, []string{"status"}, env.Dropped)
	assert.Equal(t, "hello all", env.Data["content"])
	assert.Equal(t, true, env.Data["isEdited"])

	doc := f.stored(t, "message", "m-1")
	assert.Equal(t, "sent", doc["status"])
	assert.Equal(t, "c-1", doc["chatId"])
}

func TestChatMembershipGate(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/chats/c-1", "u-emp", authz.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, decode(t, rr).Data, "createdBy")

	rr = f.do(t, http.MethodGet, "/chats/c-2", "u-emp", authz.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodPatch, "/chats/c-1", "u-emp", authz.RoleEmployee, map[string]any{"name": "renamed"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPatchRecordsAuditEntry(t *testing.T) {
	f := newFixture(t)
	before := time.Now().UTC().Add(-time.Second)

	rr := f.do(t, http.MethodPatch, "/profiles/u-emp", "u-emp", authz.RoleEmployee, map[string]any{"phone": "555-0199"})
	require.Equal(t, http.StatusOK, rr.Code)
	entry := f.audit.last(t)
	assert.Equal(t, "u-emp", entry.ActorID)
	assert.Equal(t, "employee", entry.ActorRole)
	assert.Equal(t, "profile", entry.Entity)
	assert.True(t, entry.At.After(before))
}
