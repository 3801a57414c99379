package app

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"ipo-radar/config"
	"ipo-radar/models"
	"ipo-radar/observability"
)

// IPOFetcher defines the IPO pipeline needed by App
type IPOFetcher interface {
	Fetch(ctx context.Context) ([]models.IPOListing, error)
	IsAvailable() bool
}

// StockPickFetcher defines the stock pick pipeline needed by App
type StockPickFetcher interface {
	Fetch(ctx context.Context, sector string) ([]models.StockPick, error)
	IsAvailable() bool
}

// Snapshot is one fetched list and the time the fetch completed
type Snapshot[T any] struct {
	Items     []T
	FetchedAt time.Time
	Cached    bool
}

// App struct holds application dependencies using interfaces for testability
type App struct {
	cfg    *config.Config
	ipos   IPOFetcher
	stocks StockPickFetcher
	now    func() time.Time

	group      singleflight.Group
	ipoCache   *SnapshotCache[models.IPOListing]
	stockCache *SnapshotCache[models.StockPick]
}

// Option configures an App
type Option func(*App)

// WithClock overrides the time source (for testing)
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// New creates a new App
func New(cfg *config.Config, ipos IPOFetcher, stocks StockPickFetcher, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		ipos:   ipos,
		stocks: stocks,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ipoCache = NewSnapshotCache[models.IPOListing](cfg.SnapshotTTL(), a.now)
	a.stockCache = NewSnapshotCache[models.StockPick](cfg.SnapshotTTL(), a.now)
	return a
}

// Startup is called when the server starts
func (a *App) Startup(ctx context.Context) {
	observability.WithContext(ctx).Info("app started",
		"anthropic_configured", a.Configured(),
		"snapshot_ttl", a.cfg.SnapshotTTL().String())
}

// Shutdown is called when the server is closing
func (a *App) Shutdown(ctx context.Context) {
	a.ipoCache.Invalidate()
	a.stockCache.Invalidate()
	observability.Info("app stopped")
}

// Config returns the application config
func (a *App) Config() *config.Config {
	return a.cfg
}

// Now returns the app's current time
func (a *App) Now() time.Time {
	return a.now()
}

// Configured reports whether both pipelines can reach the upstream
func (a *App) Configured() bool {
	return a.ipos != nil && a.ipos.IsAvailable() && a.stocks != nil && a.stocks.IsAvailable()
}

// IPOs returns upcoming listings. Concurrent callers share one upstream
// call; refresh skips the snapshot cache.
func (a *App) IPOs(ctx context.Context, refresh bool) (Snapshot[models.IPOListing], error) {
	const key = "ipos"
	if !refresh {
		if snap, ok := a.ipoCache.Get(key); ok {
			snap.Cached = true
			return snap, nil
		}
	}

	return coalesce(ctx, &a.group, key, func(ctx context.Context) (Snapshot[models.IPOListing], error) {
		items, err := a.ipos.Fetch(ctx)
		if err != nil {
			return Snapshot[models.IPOListing]{}, err
		}
		snap := Snapshot[models.IPOListing]{Items: items, FetchedAt: a.now()}
		a.ipoCache.Set(key, snap)
		return snap, nil
	})
}

// StockPicks returns momentum picks for sector ("all" or "" for every sector)
func (a *App) StockPicks(ctx context.Context, sector string, refresh bool) (Snapshot[models.StockPick], error) {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		sector = "all"
	}
	key := "stocks:" + strings.ToLower(sector)

	if !refresh {
		if snap, ok := a.stockCache.Get(key); ok {
			snap.Cached = true
			return snap, nil
		}
	}

	return coalesce(ctx, &a.group, key, func(ctx context.Context) (Snapshot[models.StockPick], error) {
		items, err := a.stocks.Fetch(ctx, sector)
		if err != nil {
			return Snapshot[models.StockPick]{}, err
		}
		snap := Snapshot[models.StockPick]{Items: items, FetchedAt: a.now()}
		a.stockCache.Set(key, snap)
		return snap, nil
	})
}

// coalesce runs fn once per key among concurrent callers. The shared call is
// detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx is done.
func coalesce[T any](ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	shared := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		return fn(shared)
	})

	select {
	case res := <-ch:
		if res.Shared {
			observability.WithContext(ctx).Debug("coalesced fetch", "key", key)
		}
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
