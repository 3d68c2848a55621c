package store

import (
	"context"
	"fmt"
)

type migration struct {
	Name string
	SQL  map[Dialect]string
}

// Order matters; applied names are recorded in schema_migrations.
var migrations = []migration{
	{
		Name: "create_users",
		SQL: map[Dialect]string{
			Postgres: `CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	github_id BIGINT NOT NULL UNIQUE,
	login TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	stripe_customer_id TEXT,
	stripe_subscription_id TEXT,
	subscription_status TEXT,
	subscription_tier TEXT NOT NULL DEFAULT 'FREE',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
			SQLite: `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	github_id INTEGER NOT NULL UNIQUE,
	login TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	stripe_customer_id TEXT,
	stripe_subscription_id TEXT,
	subscription_status TEXT,
	subscription_tier TEXT NOT NULL DEFAULT 'FREE',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		},
	},
	{
		Name: "users_login_index",
		SQL: map[Dialect]string{
			Postgres: `CREATE INDEX IF NOT EXISTS users_login_idx ON users (login)`,
			SQLite:   `CREATE INDEX IF NOT EXISTS users_login_idx ON users (login)`,
		},
	},
}

// Migrate applies pending migrations and returns the names it ran.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []string
	for i, m := range migrations {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE name = $1`, m.Name).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", i, m.Name, err)
		}
		if exists > 0 {
			continue
		}

		stmt, ok := m.SQL[db.Dialect]
		if !ok {
			return applied, fmt.Errorf("migration %d (%s): no %s statement", i, m.Name, db.Dialect)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, err
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %d (%s): %w", i, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("record migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration %s: %w", m.Name, err)
		}
		applied = append(applied, m.Name)
	}
	return applied, nil
}
