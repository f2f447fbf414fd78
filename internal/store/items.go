package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/obras/internal/model"
)

// itemColumns selects everything but the photo bytes.
const itemColumns = `id, COALESCE(brand, 'N/D') AS brand, name, COALESCE(category, '') AS category,
	status, current_site, notes, (photo IS NOT NULL) AS has_photo, created_at`

type itemRow struct {
	ID          int64          `db:"id"`
	Brand       string         `db:"brand"`
	Name        string         `db:"name"`
	Category    string         `db:"category"`
	Status      string         `db:"status"`
	CurrentSite model.SiteRef  `db:"current_site"`
	Notes       sql.NullString `db:"notes"`
	HasPhoto    bool           `db:"has_photo"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r itemRow) toModel() model.Item {
	return model.Item{
		ID:          r.ID,
		Brand:       r.Brand,
		Name:        r.Name,
		Category:    r.Category,
		Status:      r.Status,
		CurrentSite: r.CurrentSite,
		Notes:       r.Notes.String,
		HasPhoto:    r.HasPhoto,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateItem validates and inserts a new item, resolving its site (creating
// the site if needed) in the same transaction. Returns the new item ID.
func CreateItem(ctx context.Context, db *sqlx.DB, in model.NewItem) (int64, error) {
	const op = "create item"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, validationError(op, "name required")
	}
	brand := strings.TrimSpace(in.Brand)
	if brand == "" {
		brand = model.DefaultBrand
	}
	category := model.NormalizeCode(in.Category)
	if !model.ValidCategory(category) {
		return 0, validationError(op, fmt.Sprintf("invalid category %q", category))
	}
	status := model.NormalizeCode(in.Status)
	if status == "" {
		status = model.ItemStatusAvailable
	}
	if !model.ValidItemStatus(status) {
		return 0, validationError(op, fmt.Sprintf("invalid status %q", status))
	}
	if status == model.ItemStatusAvailable && !model.IsNoSite(in.Site) {
		return 0, validationError(op, "available items cannot be assigned to a site")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, classify(op, fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback()

	site, _, err := resolveSite(ctx, tx, in.Site)
	if err != nil {
		return 0, txError(op, err)
	}

	var id int64
	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO items (brand, name, category, status, current_site, notes)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		brand, name, category, status, site, nullIfEmpty(in.Notes),
	).Scan(&id)
	if err != nil {
		return 0, txError(op, fmt.Errorf("inserting item: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return 0, txError(op, fmt.Errorf("committing item: %w", err))
	}
	return id, nil
}

// GetItem returns an item by ID with its stored site reference decoded.
func GetItem(ctx context.Context, db *sqlx.DB, id int64) (*model.Item, error) {
	const op = "get item"

	var row itemRow
	err := db.GetContext(ctx, &row,
		db.Rebind(`SELECT `+itemColumns+` FROM items WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError(op, fmt.Sprintf("item %d", id))
	}
	if err != nil {
		return nil, classify(op, fmt.Errorf("getting item: %w", err))
	}
	item := row.toModel()
	return &item, nil
}

// SetItemStatus changes an item's status. Making an item available also
// clears its current site.
func SetItemStatus(ctx context.Context, db *sqlx.DB, id int64, status string) error {
	const op = "set item status"

	status = model.NormalizeCode(status)
	if !model.ValidItemStatus(status) {
		return validationError(op, fmt.Sprintf("invalid status %q", status))
	}

	query := `UPDATE items SET status = ? WHERE id = ?`
	if status == model.ItemStatusAvailable {
		query = `UPDATE items SET status = ?, current_site = NULL WHERE id = ?`
	}

	result, err := db.ExecContext(ctx, db.Rebind(query), status, id)
	if err != nil {
		return classify(op, fmt.Errorf("updating item status: %w", err))
	}
	if n, err := result.RowsAffected(); err != nil {
		return classify(op, fmt.Errorf("checking updated rows: %w", err))
	} else if n == 0 {
		return notFoundError(op, fmt.Sprintf("item %d", id))
	}
	return nil
}

// SetItemPhoto stores an item's photo.
func SetItemPhoto(ctx context.Context, db *sqlx.DB, id int64, photo []byte, mime string) error {
	const op = "set item photo"

	result, err := db.ExecContext(ctx,
		db.Rebind(`UPDATE items SET photo = ?, photo_mime = ? WHERE id = ?`),
		photo, mime, id,
	)
	if err != nil {
		return classify(op, fmt.Errorf("setting item photo: %w", err))
	}
	if n, err := result.RowsAffected(); err != nil {
		return classify(op, fmt.Errorf("checking updated rows: %w", err))
	} else if n == 0 {
		return notFoundError(op, fmt.Sprintf("item %d", id))
	}
	return nil
}

// GetItemPhoto returns an item's photo and MIME type.
func GetItemPhoto(ctx context.Context, db *sqlx.DB, id int64) ([]byte, string, error) {
	const op = "get item photo"

	var photo []byte
	var mime sql.NullString
	err := db.QueryRowxContext(ctx,
		db.Rebind(`SELECT photo, photo_mime FROM items WHERE id = ?`), id,
	).Scan(&photo, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", notFoundError(op, fmt.Sprintf("item %d", id))
	}
	if err != nil {
		return nil, "", classify(op, fmt.Errorf("getting item photo: %w", err))
	}
	if photo == nil {
		return nil, "", notFoundError(op, fmt.Sprintf("item %d has no photo", id))
	}
	return photo, mime.String, nil
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
