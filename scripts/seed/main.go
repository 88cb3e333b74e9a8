package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/cache"
	"github.com/workdesk/portal/internal/platform/db"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
)

type demoUser struct {
	id    string
	name  string
	email string
	role  authz.Role
}

var users = []demoUser{
	{id: "u-root", name: "Sam Root", email: "root@workdesk.local", role: authz.RoleSuperAdmin},
	{id: "u-admin", name: "Ada Admin", email: "ada@workdesk.local", role: authz.RoleAdmin},
	{id: "u-hr", name: "Hana Rivera", email: "hana@workdesk.local", role: authz.RoleHR},
	{id: "u-eli", name: "Eli Novak", email: "eli@workdesk.local", role: authz.RoleEmployee},
	{id: "u-noor", name: "Noor Haddad", email: "noor@workdesk.local", role: authz.RoleEmployee},
	{id: "u-cal", name: "Cal Ortiz", email: "cal@acme.example", role: authz.RoleClient},
}

func main() {
	ctx := context.Background()

	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		pool, err := db.New(ctx, dsn)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		fmt.Println("→ Ensuring schema...")
		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		pool.Close()
	}

	client, err := cache.New(ctx, getenv("REDIS_ADDR", "127.0.0.1:6379"))
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer client.Close()
	docs := store.NewRedisStore(client)

	fmt.Println("→ Seeding profiles...")
	for _, u := range users {
		if err := docs.Put(ctx, string(authz.ResourceProfile), u.id, store.Document{
			"name":     u.name,
			"email":    u.email,
			"role":     string(u.role),
			"isActive": true,
		}); err != nil {
			log.Fatalf("seed profile %s: %v", u.id, err)
		}
	}

	fmt.Println("→ Seeding workspace...")
	if err := seedWorkspace(ctx, docs); err != nil {
		log.Fatalf("seed workspace: %v", err)
	}

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "12h"))
	if err != nil {
		log.Fatalf("parse SESSION_TTL: %v", err)
	}
	sessions := shared.NewSessionStore(client, ttl)
	fmt.Println("→ Issuing demo sessions...")
	for _, u := range users {
		token, err := sessions.Issue(ctx, shared.Actor{ID: u.id, Role: u.role})
		if err != nil {
			log.Fatalf("issue session for %s: %v", u.id, err)
		}
		fmt.Printf("  %-8s %-10s %s\n", u.id, u.role, token)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedWorkspace(ctx context.Context, docs *store.RedisStore) error {
	today := time.Now().UTC()
	seed := []struct {
		kind authz.Resource
		id   string
		doc  store.Document
	}{
		{authz.ResourceProject, "p-billing", store.Document{
			"name": "Billing revamp", "status": "active", "priority": "high", "budget": 48000,
			"createdBy": "u-admin", "clientId": "u-cal", "teamMembers": []string{"u-eli", "u-noor"},
		}},
		{authz.ResourceTask, "t-export", store.Document{
			"title": "Invoice CSV export", "projectId": "p-billing", "status": "in-progress",
			"assignedTo": "u-eli", "createdBy": "u-admin", "estimatedHours": 12, "progress": 40,
		}},
		{authz.ResourceAttendance, "a-eli-today", store.Document{
			"employeeId": "u-eli", "date": today.Format(time.DateOnly), "status": "present",
			"checkIn": today.Format(time.RFC3339),
		}},
		{authz.ResourceLeave, "l-noor-vacation", store.Document{
			"employeeId": "u-noor", "type": "vacation", "status": "pending", "reason": "Family visit",
			"startDate": today.AddDate(0, 0, 14).Format(time.DateOnly),
			"endDate":   today.AddDate(0, 0, 18).Format(time.DateOnly),
			"totalDays": 5,
		}},
		{authz.ResourceChat, "c-billing", store.Document{
			"name": "billing-team", "type": "group", "createdBy": "u-admin",
			"members": []string{"u-admin", "u-eli", "u-noor"},
		}},
		{authz.ResourceMessage, "m-kickoff", store.Document{
			"chatId": "c-billing", "senderId": "u-admin", "content": "Kickoff on Monday.", "status": "sent",
		}},
		{authz.ResourceTimetracker, "tt-eli-1", store.Document{
			"employeeId": "u-eli", "projectId": "p-billing", "title": "Export spike", "status": "completed",
			"totalHours": 3.5,
		}},
	}
	for _, s := range seed {
		if err := docs.Put(ctx, string(s.kind), s.id, s.doc); err != nil {
			return fmt.Errorf("%s %s: %w", s.kind, s.id, err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
