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

// ResolveOrCreateSite returns a reference to the site named raw, creating the
// site if no site has that exact trimmed name. Blank input and the no-site
// placeholder resolve to no site without touching the store. created reports
// whether a new site row was inserted.
func ResolveOrCreateSite(ctx context.Context, db *sqlx.DB, raw string) (ref model.SiteRef, created bool, err error) {
	const op = "resolve site"

	ref, created, err = resolve(ctx, db, raw)
	if errors.Is(err, ErrUniquenessConflict) {
		// Another writer inserted the same name first; the row exists now.
		ref, created, err = resolve(ctx, db, raw)
	}
	if err != nil {
		return model.NoSite(), false, classify(op, err)
	}
	return ref, created, nil
}

// resolve is the resolver used outside transactions. Tests replace it.
var resolve = resolveSite

// resolveSite runs the lookup-or-insert against q, which may be an open
// transaction. The insert is conditional on the unique name so two callers
// racing on a new name cannot both create it.
func resolveSite(ctx context.Context, q sqlx.ExtContext, raw string) (model.SiteRef, bool, error) {
	const op = "resolve site"

	name := strings.TrimSpace(raw)
	if model.IsNoSite(name) {
		return model.NoSite(), false, nil
	}

	id, err := lookupSiteID(ctx, q, name)
	if err == nil {
		return model.SiteByID(id), false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.NoSite(), false, classify(op, err)
	}

	result, err := q.ExecContext(ctx,
		q.Rebind(`INSERT INTO sites (name, status) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`),
		name, model.SiteStatusActive,
	)
	if err != nil {
		return model.NoSite(), false, classify(op, fmt.Errorf("inserting site: %w", err))
	}
	inserted, _ := result.RowsAffected()

	id, err = lookupSiteID(ctx, q, name)
	if err != nil {
		return model.NoSite(), false, classify(op, err)
	}
	return model.SiteByID(id), inserted > 0, nil
}

func lookupSiteID(ctx context.Context, q sqlx.ExtContext, name string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, q.Rebind(`SELECT id FROM sites WHERE name = ?`), name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up site: %w", err)
	}
	return id, err
}

// GetSite returns a site by ID.
func GetSite(ctx context.Context, db *sqlx.DB, id int64) (*model.Site, error) {
	const op = "get site"

	site := &model.Site{}
	err := db.GetContext(ctx, site,
		db.Rebind(`SELECT id, name, status, created_at FROM sites WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError(op, fmt.Sprintf("site %d", id))
	}
	if err != nil {
		return nil, classify(op, fmt.Errorf("getting site: %w", err))
	}
	return site, nil
}

// ListSites returns all sites ordered by name.
func ListSites(ctx context.Context, db *sqlx.DB) ([]model.Site, error) {
	sites := []model.Site{}
	err := db.SelectContext(ctx, &sites,
		`SELECT id, name, status, created_at FROM sites ORDER BY name`)
	if err != nil {
		return nil, classify("list sites", fmt.Errorf("listing sites: %w", err))
	}
	return sites, nil
}
