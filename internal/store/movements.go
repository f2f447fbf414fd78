package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/obras/internal/model"
)

// RegisterMovement records an item moving to a destination site and, in the
// same transaction, sets the item's current site to the destination and its
// status to in use. Sites named by origin or destination are created if
// missing. Nothing is written unless every step succeeds.
func RegisterMovement(ctx context.Context, db *sqlx.DB, in model.NewMovement) (int64, error) {
	const op = "register movement"

	responsible := strings.TrimSpace(in.Responsible)
	if responsible == "" {
		return 0, validationError(op, "responsible required")
	}
	if model.IsNoSite(in.Destination) {
		return 0, validationError(op, "destination required")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, classify(op, fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback()

	var itemID int64
	err = tx.GetContext(ctx, &itemID, tx.Rebind(`SELECT id FROM items WHERE id = ?`), in.ItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFoundError(op, fmt.Sprintf("item %d", in.ItemID))
	}
	if err != nil {
		return 0, txError(op, fmt.Errorf("checking item: %w", err))
	}

	origin, _, err := resolveSite(ctx, tx, in.Origin)
	if err != nil {
		return 0, txError(op, fmt.Errorf("resolving origin: %w", err))
	}
	destination, _, err := resolveSite(ctx, tx, in.Destination)
	if err != nil {
		return 0, txError(op, fmt.Errorf("resolving destination: %w", err))
	}
	if destination.IsNone() {
		return 0, validationError(op, "destination required")
	}

	var movementID int64
	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO movements (item_id, origin_site, destination_site, responsible, reason, notes)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		itemID, origin, destination, responsible, strings.TrimSpace(in.Reason), nullIfEmpty(in.Notes),
	).Scan(&movementID)
	if err != nil {
		return 0, txError(op, fmt.Errorf("recording movement: %w", err))
	}

	// A movement supersedes whatever status the item had.
	result, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE items SET current_site = ?, status = ? WHERE id = ?`),
		destination, model.ItemStatusInUse, itemID,
	)
	if err != nil {
		return 0, txError(op, fmt.Errorf("updating item location: %w", err))
	}
	if n, err := result.RowsAffected(); err != nil {
		return 0, txError(op, fmt.Errorf("checking updated rows: %w", err))
	} else if n != 1 {
		return 0, txError(op, fmt.Errorf("updating item location: %d rows affected", n))
	}

	if err := tx.Commit(); err != nil {
		return 0, txError(op, fmt.Errorf("committing movement: %w", err))
	}
	return movementID, nil
}
