package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Ordered, idempotent schema statements. Applied at boot; there is no
// down path, destructive changes get a new statement.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT,
		goal TEXT NOT NULL DEFAULT '',
		experience TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'onboarding',
		consultation_stage INT NOT NULL DEFAULT 0,
		transcript TEXT NOT NULL DEFAULT '',
		ai_response TEXT NOT NULL DEFAULT '',
		payment_link TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT 'New User',
		goal TEXT NOT NULL DEFAULT 'general_fitness',
		experience TEXT NOT NULL DEFAULT '',
		subscription_status TEXT NOT NULL DEFAULT 'pending',
		stripe_customer_id TEXT,
		stripe_subscription_id TEXT,
		welcome_shirt_sent BOOLEAN NOT NULL DEFAULT FALSE,
		shirt_size TEXT,
		ship_line1 TEXT,
		ship_city TEXT,
		ship_state TEXT,
		ship_zip TEXT,
		ship_country TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_message TEXT NOT NULL,
		ai_response TEXT NOT NULL,
		context JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_conversations_user_created
		ON conversations (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS fitness_records (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_fitness_records_user_kind
		ON fitness_records (user_id, kind, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS webhook_events (
		event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
