package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent and valid in both dialects. Append new
// migrations at the end.
var migrations = []string{
	// Migration 1: stores created before sites.name carried UNIQUE need the
	// index for the insert-if-absent site resolution to work.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sites_name ON sites(name)`,
	// Migration 2: item history and newest-first listings.
	`CREATE INDEX IF NOT EXISTS idx_movements_item ON movements(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_occurred ON movements(occurred_at)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sqlx.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	ctx := context.Background()
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
