package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations run in order on every Open. Each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
	user_id      TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	mok_tokens   INTEGER NOT NULL CHECK (mok_tokens >= 0),
	xp           INTEGER NOT NULL CHECK (xp >= 0),
	level        INTEGER NOT NULL CHECK (level >= 0),
	savings      TEXT NOT NULL,
	investment   TEXT NOT NULL,
	crypto       TEXT NOT NULL,
	usdc         TEXT NOT NULL,
	travel_miles TEXT NOT NULL,
	updated_at   INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS transactions (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	tx_id       TEXT NOT NULL UNIQUE,
	user_id     TEXT NOT NULL,
	group_id    TEXT NOT NULL,
	date        INTEGER NOT NULL,
	type        TEXT NOT NULL,
	amount      TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_date ON transactions (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS goals (
	user_id        TEXT NOT NULL,
	goal_id        TEXT NOT NULL,
	title          TEXT NOT NULL,
	target_amount  TEXT NOT NULL,
	current_amount TEXT NOT NULL,
	category       TEXT NOT NULL,
	due_date       INTEGER NOT NULL,
	priority       TEXT NOT NULL,
	created_at     INTEGER NOT NULL,
	PRIMARY KEY (user_id, goal_id)
)`,
	`CREATE TABLE IF NOT EXISTS missions (
	user_id      TEXT NOT NULL,
	mission_id   TEXT NOT NULL,
	title        TEXT NOT NULL,
	reward       INTEGER NOT NULL CHECK (reward > 0),
	completed    INTEGER NOT NULL,
	completed_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, mission_id)
)`,
	`CREATE TABLE IF NOT EXISTS module_progress (
	user_id           TEXT NOT NULL,
	module_id         TEXT NOT NULL,
	completions       INTEGER NOT NULL,
	best_score        INTEGER NOT NULL,
	last_completed_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, module_id)
)`,
}

// Migrate applies the schema to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
