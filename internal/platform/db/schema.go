package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schemaStatements creates the tables written by the audit logger and the
// leave review recorder. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS authz_audit_logs (
	id BIGSERIAL PRIMARY KEY,
	actor_id TEXT NOT NULL,
	actor_role TEXT NOT NULL,
	action TEXT NOT NULL,
	entity TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK (outcome IN ('allow', 'deny', 'config_error')),
	meta JSONB,
	at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS authz_audit_logs_entity_idx ON authz_audit_logs (entity, entity_id, at)`,
	`CREATE TABLE IF NOT EXISTS approvals (
	id BIGSERIAL PRIMARY KEY,
	module TEXT NOT NULL,
	ref_id TEXT NOT NULL,
	actor_id TEXT NOT NULL,
	action TEXT NOT NULL,
	from_status TEXT NOT NULL DEFAULT '',
	to_status TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS approvals_ref_idx ON approvals (module, ref_id, at)`,
}

// EnsureSchema creates the portal tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool Beginner) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("platform/db: ensure schema: %w", err)
			}
		}
		return nil
	})
}
