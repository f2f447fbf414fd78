package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/obras/internal/cache"
	"github.com/erazemk/obras/internal/imaging"
	"github.com/erazemk/obras/internal/metrics"
	"github.com/erazemk/obras/internal/model"
	"github.com/erazemk/obras/internal/store"
)

// Service is the entry point for callers. It runs store operations on its
// database, serves projections through the read cache and invalidates the
// cache on every mutation.
type Service struct {
	DB      *sqlx.DB
	Cache   *cache.Cache
	Metrics *metrics.Recorder

	// Now is the clock used for the daily summary. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Service with a cache of the given TTL reporting to rec.
func New(db *sqlx.DB, ttl time.Duration, rec *metrics.Recorder) *Service {
	var obs cache.Observer
	if rec != nil {
		obs = rec
	}
	return &Service{DB: db, Cache: cache.New(ttl, obs), Metrics: rec}
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	s.Metrics.Observe(ctx, op, err, time.Since(start))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// cached returns the value under key, or fills it from load. A fill that
// raced with an invalidation of its group is returned but not stored.
func cached[T any](s *Service, key string, load func() (T, error)) (T, error) {
	if v, ok := s.Cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	slog.Debug("cache miss", "key", key)
	gen := s.Cache.Generation(key)
	t, err := load()
	if err != nil {
		return t, err
	}
	if !s.Cache.SetIfCurrent(key, t, gen) {
		slog.Debug("cache fill dropped", "key", key)
	}
	return t, nil
}

// Ping checks the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// CreateSite resolves name to a site, creating it if needed.
func (s *Service) CreateSite(ctx context.Context, name string) (site *model.Site, created bool, err error) {
	const op = "create site"
	defer func(start time.Time) { s.observe(ctx, op, start, err) }(time.Now())

	if model.IsNoSite(name) {
		return nil, false, &store.Error{Kind: store.ErrValidation, Op: op, Msg: "name required"}
	}

	ref, created, err := store.ResolveOrCreateSite(ctx, s.DB, name)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.Metrics.SiteCreated()
		s.Cache.Invalidate(cache.Sites, cache.Items, cache.Movements)
	}

	site, err = store.GetSite(ctx, s.DB, ref.ID)
	if err != nil {
		return nil, false, err
	}
	return site, created, nil
}

// ListSites returns every site ordered by name.
func (s *Service) ListSites(ctx context.Context) (sites []model.Site, err error) {
	defer func(start time.Time) { s.observe(ctx, "list sites", start, err) }(time.Now())

	return cached(s, cache.Key(cache.Sites), func() ([]model.Site, error) {
		return store.ListSites(ctx, s.DB)
	})
}

// GetSite returns one site.
func (s *Service) GetSite(ctx context.Context, id int64) (*model.Site, error) {
	return store.GetSite(ctx, s.DB, id)
}

// CreateItem registers a new item and returns it with its site name.
func (s *Service) CreateItem(ctx context.Context, in model.NewItem) (view *model.ItemView, err error) {
	defer func(start time.Time) { s.observe(ctx, "create item", start, err) }(time.Now())

	id, err := store.CreateItem(ctx, s.DB, in)
	if err != nil {
		return nil, err
	}
	// The resolver may have created the item's site, which legacy movements
	// may already name.
	s.Cache.Invalidate(cache.Items, cache.Movements, cache.Sites, cache.Summary)
	return store.GetItemView(ctx, s.DB, id)
}

// GetItem returns one item with its current site name.
func (s *Service) GetItem(ctx context.Context, id int64) (*model.ItemView, error) {
	return store.GetItemView(ctx, s.DB, id)
}

// ListItems returns items newest first, filtered.
func (s *Service) ListItems(ctx context.Context, filter model.ItemFilter) (items []model.ItemView, err error) {
	defer func(start time.Time) { s.observe(ctx, "list items", start, err) }(time.Now())

	key := cache.Key(cache.Items, "q="+filter.Query, "site="+filter.Site)
	return cached(s, key, func() ([]model.ItemView, error) {
		return store.ListItemsWithSiteNames(ctx, s.DB, filter)
	})
}

// SetItemStatus changes an item's status.
func (s *Service) SetItemStatus(ctx context.Context, id int64, status string) (view *model.ItemView, err error) {
	defer func(start time.Time) { s.observe(ctx, "set item status", start, err) }(time.Now())

	if err := store.SetItemStatus(ctx, s.DB, id, status); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(cache.Items, cache.Summary)
	return store.GetItemView(ctx, s.DB, id)
}

// SetItemPhoto normalizes the photo read from r and stores it on the item.
func (s *Service) SetItemPhoto(ctx context.Context, id int64, r io.Reader) (photo *imaging.Photo, err error) {
	const op = "set item photo"
	defer func(start time.Time) { s.observe(ctx, op, start, err) }(time.Now())

	photo, err = imaging.Normalize(r)
	if errors.Is(err, imaging.ErrUnsupported) {
		return nil, &store.Error{Kind: store.ErrValidation, Op: op, Msg: err.Error()}
	}
	if err != nil {
		return nil, &store.Error{Kind: store.ErrPersistence, Op: op, Err: err}
	}

	if err := store.SetItemPhoto(ctx, s.DB, id, photo.Data, photo.MIME); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(cache.Items, cache.Summary)
	return photo, nil
}

// GetItemPhoto returns the stored photo and its MIME type.
func (s *Service) GetItemPhoto(ctx context.Context, id int64) ([]byte, string, error) {
	return store.GetItemPhoto(ctx, s.DB, id)
}

// RegisterMovement records a movement and returns it with names resolved.
func (s *Service) RegisterMovement(ctx context.Context, in model.NewMovement) (view *model.MovementView, err error) {
	defer func(start time.Time) { s.observe(ctx, "register movement", start, err) }(time.Now())

	id, err := store.RegisterMovement(ctx, s.DB, in)
	if err != nil {
		return nil, err
	}
	s.Metrics.MovementRegistered()
	s.Cache.Invalidate(cache.Items, cache.Movements, cache.Sites, cache.Summary)
	return store.GetMovementView(ctx, s.DB, id)
}

// GetMovement returns one movement.
func (s *Service) GetMovement(ctx context.Context, id int64) (*model.MovementView, error) {
	return store.GetMovementView(ctx, s.DB, id)
}

// ListMovements returns movements newest first, filtered.
func (s *Service) ListMovements(ctx context.Context, filter model.MovementFilter) (movements []model.MovementView, err error) {
	defer func(start time.Time) { s.observe(ctx, "list movements", start, err) }(time.Now())

	load := func() ([]model.MovementView, error) {
		return store.ListMovementsWithNames(ctx, s.DB, filter)
	}
	// Time-bounded queries are not cached.
	if !filter.Since.IsZero() {
		return load()
	}
	key := cache.Key(cache.Movements, "item="+strconv.FormatInt(filter.ItemID, 10), "responsible="+filter.Responsible)
	return cached(s, key, load)
}

// Summary returns the dashboard counts for today.
func (s *Service) Summary(ctx context.Context) (sum *model.Summary, err error) {
	defer func(start time.Time) { s.observe(ctx, "summary", start, err) }(time.Now())

	now := s.now()
	key := cache.Key(cache.Summary, fmt.Sprintf("%04d-%02d-%02d", now.Year(), now.Month(), now.Day()))
	return cached(s, key, func() (*model.Summary, error) {
		return store.Summary(ctx, s.DB, now)
	})
}
