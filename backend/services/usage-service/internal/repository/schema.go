package repository

import (
	"context"
	"database/sql"
)

const schema = `
	CREATE TABLE IF NOT EXISTS usage_entries (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		date       DATE NOT NULL,
		usage_kwh  DOUBLE PRECISION NOT NULL CHECK (usage_kwh >= 0),
		appliance  TEXT NOT NULL DEFAULT 'General',
		cost       DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_usage_entries_user_date ON usage_entries (user_id, date);

	CREATE TABLE IF NOT EXISTS energy_goals (
		user_id            TEXT PRIMARY KEY,
		monthly_target_kwh DOUBLE PRECISION NOT NULL DEFAULT 0,
		monthly_budget     DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at         TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alert_settings (
		user_id             TEXT PRIMARY KEY,
		enabled             BOOLEAN NOT NULL DEFAULT false,
		daily_threshold_kwh DOUBLE PRECISION NOT NULL DEFAULT 0,
		email               TEXT NOT NULL DEFAULT '',
		updated_at          TIMESTAMPTZ NOT NULL
	);
`

// Migrate creates the tables used by the repositories when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
