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

// siteIndex resolves stored site references to display names.
type siteIndex struct {
	byID   map[int64]string
	byName map[string]struct{}
}

func loadSiteIndex(ctx context.Context, q sqlx.QueryerContext) (*siteIndex, error) {
	rows, err := q.QueryxContext(ctx, `SELECT id, name FROM sites`)
	if err != nil {
		return nil, fmt.Errorf("loading sites: %w", err)
	}
	defer rows.Close()

	ix := &siteIndex{byID: map[int64]string{}, byName: map[string]struct{}{}}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		ix.byID[id] = name
		ix.byName[name] = struct{}{}
	}
	return ix, rows.Err()
}

// name returns the display name for ref, or "" if no site matches. Id
// references fall back to a name match on the stored text, which covers
// legacy sites whose name is all digits.
func (ix *siteIndex) name(ref model.SiteRef) string {
	switch ref.Kind {
	case model.SiteRefID:
		if name, ok := ix.byID[ref.ID]; ok {
			return name
		}
		if _, ok := ix.byName[ref.Text()]; ok {
			return ref.Text()
		}
	case model.SiteRefName:
		if _, ok := ix.byName[ref.Name]; ok {
			return ref.Name
		}
	}
	return ""
}

// ListItemsWithSiteNames returns items newest first, each with its current
// site resolved to a name. The filter is applied after resolution so it can
// match on site names.
func ListItemsWithSiteNames(ctx context.Context, db *sqlx.DB, filter model.ItemFilter) ([]model.ItemView, error) {
	const op = "list items"

	var rows []itemRow
	if err := db.SelectContext(ctx, &rows, `SELECT `+itemColumns+` FROM items ORDER BY id DESC`); err != nil {
		return nil, classify(op, fmt.Errorf("listing items: %w", err))
	}

	ix, err := loadSiteIndex(ctx, db)
	if err != nil {
		return nil, classify(op, err)
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	site := strings.TrimSpace(filter.Site)

	views := []model.ItemView{}
	for _, row := range rows {
		v := model.ItemView{Item: row.toModel()}
		v.SiteName = ix.name(v.CurrentSite)
		if site != "" && v.SiteName != site {
			continue
		}
		if query != "" && !itemMatches(v, query) {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func itemMatches(v model.ItemView, query string) bool {
	for _, field := range []string{v.Brand, v.Name, v.Category, v.Status, v.SiteName, v.Notes} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// GetItemView returns one item with its current site name.
func GetItemView(ctx context.Context, db *sqlx.DB, id int64) (*model.ItemView, error) {
	const op = "get item view"

	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	ix, err := loadSiteIndex(ctx, db)
	if err != nil {
		return nil, classify(op, err)
	}
	return &model.ItemView{Item: *item, SiteName: ix.name(item.CurrentSite)}, nil
}

const movementSelect = `SELECT m.id, m.item_id, m.origin_site, m.destination_site, m.responsible,
	        COALESCE(m.reason, '') AS reason, m.notes, m.occurred_at,
	        COALESCE(i.brand, '') AS item_brand, COALESCE(i.name, '') AS item_name
	 FROM movements m
	 LEFT JOIN items i ON i.id = m.item_id`

type movementRow struct {
	ID          int64          `db:"id"`
	ItemID      int64          `db:"item_id"`
	Origin      model.SiteRef  `db:"origin_site"`
	Destination model.SiteRef  `db:"destination_site"`
	Responsible string         `db:"responsible"`
	Reason      string         `db:"reason"`
	Notes       sql.NullString `db:"notes"`
	OccurredAt  time.Time      `db:"occurred_at"`
	ItemBrand   string         `db:"item_brand"`
	ItemName    string         `db:"item_name"`
}

func (r movementRow) toView(ix *siteIndex) model.MovementView {
	return model.MovementView{
		Movement: model.Movement{
			ID:          r.ID,
			ItemID:      r.ItemID,
			Origin:      r.Origin,
			Destination: r.Destination,
			Responsible: r.Responsible,
			Reason:      r.Reason,
			Notes:       r.Notes.String,
			OccurredAt:  r.OccurredAt,
		},
		ItemBrand:       r.ItemBrand,
		ItemName:        r.ItemName,
		OriginName:      ix.name(r.Origin),
		DestinationName: ix.name(r.Destination),
	}
}

// ListMovementsWithNames returns movements newest first, joined with their
// item's brand and name and with both sites resolved to names.
func ListMovementsWithNames(ctx context.Context, db *sqlx.DB, filter model.MovementFilter) ([]model.MovementView, error) {
	const op = "list movements"

	query := movementSelect + ` WHERE 1=1`
	var args []any

	if filter.ItemID > 0 {
		query += ` AND m.item_id = ?`
		args = append(args, filter.ItemID)
	}
	if r := strings.TrimSpace(filter.Responsible); r != "" {
		query += ` AND m.responsible = ?`
		args = append(args, r)
	}

	query += ` ORDER BY m.occurred_at DESC, m.id DESC`

	var rows []movementRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, classify(op, fmt.Errorf("listing movements: %w", err))
	}

	ix, err := loadSiteIndex(ctx, db)
	if err != nil {
		return nil, classify(op, err)
	}

	views := []model.MovementView{}
	for _, row := range rows {
		// Compared here rather than in SQL: the two dialects store
		// timestamps differently.
		if !filter.Since.IsZero() && row.OccurredAt.Before(filter.Since) {
			continue
		}
		views = append(views, row.toView(ix))
	}
	return views, nil
}

// GetMovementView returns one movement with its names resolved.
func GetMovementView(ctx context.Context, db *sqlx.DB, id int64) (*model.MovementView, error) {
	const op = "get movement"

	var row movementRow
	err := db.GetContext(ctx, &row, db.Rebind(movementSelect+` WHERE m.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError(op, fmt.Sprintf("movement %d", id))
	}
	if err != nil {
		return nil, classify(op, fmt.Errorf("getting movement: %w", err))
	}

	ix, err := loadSiteIndex(ctx, db)
	if err != nil {
		return nil, classify(op, err)
	}
	v := row.toView(ix)
	return &v, nil
}

// Summary counts items per status and the movements since the start of now's day.
func Summary(ctx context.Context, db *sqlx.DB, now time.Time) (*model.Summary, error) {
	const op = "summary"

	var counts []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := db.SelectContext(ctx, &counts, `SELECT status, COUNT(*) AS n FROM items GROUP BY status`); err != nil {
		return nil, classify(op, fmt.Errorf("counting items: %w", err))
	}

	s := &model.Summary{ByStatus: map[string]int{}}
	for _, st := range model.ItemStatuses {
		s.ByStatus[st] = 0
	}
	for _, c := range counts {
		s.ByStatus[c.Status] = c.N
		s.TotalItems += c.N
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rows, err := db.QueryxContext(ctx, `SELECT occurred_at FROM movements ORDER BY occurred_at DESC`)
	if err != nil {
		return nil, classify(op, fmt.Errorf("counting movements: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, classify(op, fmt.Errorf("scanning movement time: %w", err))
		}
		if at.Before(startOfDay) {
			break
		}
		s.MovementsToday++
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return s, nil
}
