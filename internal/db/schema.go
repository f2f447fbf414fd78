package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Site columns on items and movements are TEXT in both dialects: they hold a
// site id, or the site name on rows written before ids were stored.

// sqliteSchema is the full SQLite schema.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sites (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE CHECK (name <> ''),
    status     TEXT NOT NULL DEFAULT 'active',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS items (
    id           INTEGER PRIMARY KEY,
    brand        TEXT NOT NULL DEFAULT 'N/D',
    name         TEXT NOT NULL CHECK (name <> ''),
    category     TEXT NOT NULL CHECK (category IN ('electrical', 'combustion', 'hand_tool', 'material', 'equipment')),
    status       TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'in_use', 'maintenance', 'broken')),
    current_site TEXT,
    notes        TEXT,
    photo        BLOB,
    photo_mime   TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (status <> 'available' OR current_site IS NULL)
)`,
	`CREATE TABLE IF NOT EXISTS movements (
    id               INTEGER PRIMARY KEY,
    item_id          INTEGER NOT NULL REFERENCES items(id),
    origin_site      TEXT,
    destination_site TEXT NOT NULL,
    responsible      TEXT NOT NULL CHECK (responsible <> ''),
    reason           TEXT NOT NULL DEFAULT '',
    notes            TEXT,
    occurred_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

// postgresSchema is the full Postgres schema.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sites (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE CHECK (name <> ''),
    status     TEXT NOT NULL DEFAULT 'active',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS items (
    id           BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    brand        TEXT NOT NULL DEFAULT 'N/D',
    name         TEXT NOT NULL CHECK (name <> ''),
    category     TEXT NOT NULL CHECK (category IN ('electrical', 'combustion', 'hand_tool', 'material', 'equipment')),
    status       TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'in_use', 'maintenance', 'broken')),
    current_site TEXT,
    notes        TEXT,
    photo        BYTEA,
    photo_mime   TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (status <> 'available' OR current_site IS NULL)
)`,
	`CREATE TABLE IF NOT EXISTS movements (
    id               BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    item_id          BIGINT NOT NULL REFERENCES items(id),
    origin_site      TEXT,
    destination_site TEXT NOT NULL,
    responsible      TEXT NOT NULL CHECK (responsible <> ''),
    reason           TEXT NOT NULL DEFAULT '',
    notes            TEXT,
    occurred_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	stmts := sqliteSchema
	if IsPostgres(db) {
		stmts = postgresSchema
	}

	ctx := context.Background()
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}
	return nil
}
