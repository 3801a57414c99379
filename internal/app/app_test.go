package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ipo-radar/config"
	"ipo-radar/models"
)

type mockIPOFetcher struct {
	calls     atomic.Int32
	fetchFunc func(ctx context.Context) ([]models.IPOListing, error)
}

func (m *mockIPOFetcher) Fetch(ctx context.Context) ([]models.IPOListing, error) {
	m.calls.Add(1)
	return m.fetchFunc(ctx)
}

func (m *mockIPOFetcher) IsAvailable() bool { return true }

type mockStockFetcher struct {
	calls      atomic.Int32
	lastSector atomic.Value
	fetchFunc  func(ctx context.Context, sector string) ([]models.StockPick, error)
}

func (m *mockStockFetcher) Fetch(ctx context.Context, sector string) ([]models.StockPick, error) {
	m.calls.Add(1)
	m.lastSector.Store(sector)
	return m.fetchFunc(ctx, sector)
}

func (m *mockStockFetcher) IsAvailable() bool { return true }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
}

func staticIPOs(listings ...models.IPOListing) *mockIPOFetcher {
	return &mockIPOFetcher{fetchFunc: func(context.Context) ([]models.IPOListing, error) {
		return listings, nil
	}}
}

func staticStocks(picks ...models.StockPick) *mockStockFetcher {
	return &mockStockFetcher{fetchFunc: func(context.Context, string) ([]models.StockPick, error) {
		return picks, nil
	}}
}

func TestApp_IPOs(t *testing.T) {
	clock := newClock()
	ipos := staticIPOs(models.IPOListing{Company: "Acme"})
	a := New(config.NewTestConfig(), ipos, staticStocks(), WithClock(clock.Now))

	snap, err := a.IPOs(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Company != "Acme" {
		t.Errorf("unexpected items: %+v", snap.Items)
	}
	if !snap.FetchedAt.Equal(clock.Now()) {
		t.Errorf("FetchedAt = %v, want %v", snap.FetchedAt, clock.Now())
	}
	if snap.Cached {
		t.Error("expected a live fetch")
	}
}

func TestApp_IPOs_Error(t *testing.T) {
	wantErr := errors.New("upstream down")
	ipos := &mockIPOFetcher{fetchFunc: func(context.Context) ([]models.IPOListing, error) {
		return nil, wantErr
	}}
	a := New(config.NewTestConfig(), ipos, staticStocks())

	if _, err := a.IPOs(context.Background(), false); !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
}

func TestApp_NoCacheByDefault(t *testing.T) {
	ipos := staticIPOs(models.IPOListing{Company: "Acme"})
	a := New(config.NewTestConfig(), ipos, staticStocks())

	for i := 0; i < 3; i++ {
		if _, err := a.IPOs(context.Background(), false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := ipos.calls.Load(); got != 3 {
		t.Errorf("expected every request to reach the upstream, got %d calls", got)
	}
}

func TestApp_SnapshotCache(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Screener.SnapshotTTLSeconds = 60
	clock := newClock()
	ipos := staticIPOs(models.IPOListing{Company: "Acme"})
	a := New(cfg, ipos, staticStocks(), WithClock(clock.Now))
	ctx := context.Background()

	first, _ := a.IPOs(ctx, false)
	clock.Advance(30 * time.Second)
	second, _ := a.IPOs(ctx, false)

	if ipos.calls.Load() != 1 {
		t.Errorf("expected cached snapshot within TTL, got %d calls", ipos.calls.Load())
	}
	if !second.Cached || !second.FetchedAt.Equal(first.FetchedAt) {
		t.Errorf("expected cached snapshot from first fetch, got %+v", second)
	}

	if _, err := a.IPOs(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ipos.calls.Load() != 2 {
		t.Errorf("expected refresh to bypass cache, got %d calls", ipos.calls.Load())
	}

	clock.Advance(61 * time.Second)
	if snap, _ := a.IPOs(ctx, false); snap.Cached {
		t.Error("expected expired snapshot to be refetched")
	}
	if ipos.calls.Load() != 3 {
		t.Errorf("expected 3 calls after expiry, got %d", ipos.calls.Load())
	}
}

func TestApp_FailuresAreNotCached(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Screener.SnapshotTTLSeconds = 60
	fail := true
	ipos := &mockIPOFetcher{fetchFunc: func(context.Context) ([]models.IPOListing, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []models.IPOListing{{Company: "Acme"}}, nil
	}}
	a := New(cfg, ipos, staticStocks())

	if _, err := a.IPOs(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	snap, err := a.IPOs(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Cached || len(snap.Items) != 1 {
		t.Errorf("expected a live successful fetch, got %+v", snap)
	}
}

func TestApp_CoalescesConcurrentRequests(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 10)
	ipos := &mockIPOFetcher{fetchFunc: func(context.Context) ([]models.IPOListing, error) {
		started <- struct{}{}
		<-release
		return []models.IPOListing{{Company: "Acme"}}, nil
	}}
	a := New(config.NewTestConfig(), ipos, staticStocks())

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := a.IPOs(context.Background(), false)
			if err == nil && len(snap.Items) != 1 {
				err = errors.New("missing items")
			}
			errs <- err
		}()
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if got := ipos.calls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call for %d concurrent callers, got %d", callers, got)
	}
}

func TestApp_CallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	release := make(chan struct{})
	var sawCancel atomic.Bool
	ipos := &mockIPOFetcher{fetchFunc: func(ctx context.Context) ([]models.IPOListing, error) {
		<-release
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		return []models.IPOListing{{Company: "Acme"}}, nil
	}}
	a := New(config.NewTestConfig(), ipos, staticStocks())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := a.IPOs(ctx, false)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected caller to see context.Canceled, got %v", err)
	}

	close(release)
	snap, err := a.IPOs(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Errorf("unexpected items: %+v", snap.Items)
	}
	if sawCancel.Load() {
		t.Error("shared fetch should not observe the first caller's cancellation")
	}
}

func TestApp_StockPicks_SectorKeys(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Screener.SnapshotTTLSeconds = 60
	stocks := staticStocks(models.StockPick{Ticker: "NVDA"})
	a := New(cfg, staticIPOs(), stocks)
	ctx := context.Background()

	if _, err := a.StockPicks(ctx, "", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stocks.lastSector.Load(); got != "all" {
		t.Errorf("expected empty sector to become all, got %v", got)
	}

	_, _ = a.StockPicks(ctx, "all", false)
	if stocks.calls.Load() != 1 {
		t.Errorf("expected '' and 'all' to share a cache entry, got %d calls", stocks.calls.Load())
	}

	_, _ = a.StockPicks(ctx, "Technology", false)
	_, _ = a.StockPicks(ctx, "technology", false)
	if stocks.calls.Load() != 2 {
		t.Errorf("expected sector keys to ignore case, got %d calls", stocks.calls.Load())
	}
	if got := stocks.lastSector.Load(); got != "Technology" {
		t.Errorf("expected sector to be passed as given, got %v", got)
	}
}

func TestApp_Configured(t *testing.T) {
	if !New(config.NewTestConfig(), staticIPOs(), staticStocks()).Configured() {
		t.Error("expected app with available fetchers to be configured")
	}
	if New(config.NewTestConfig(), nil, nil).Configured() {
		t.Error("expected app without fetchers to be unconfigured")
	}
}

func TestSnapshotCache_DisabledWithZeroTTL(t *testing.T) {
	clock := newClock()
	c := NewSnapshotCache[models.IPOListing](0, clock.Now)
	c.Set("k", Snapshot[models.IPOListing]{FetchedAt: clock.Now()})

	if _, ok := c.Get("k"); ok {
		t.Error("expected zero TTL to disable caching")
	}
	if c.TTL() != 0 {
		t.Errorf("TTL = %v", c.TTL())
	}
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	clock := newClock()
	c := NewSnapshotCache[models.StockPick](time.Minute, clock.Now)
	c.Set("k", Snapshot[models.StockPick]{FetchedAt: clock.Now()})

	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected fresh entry")
	}
	c.Invalidate()
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to be dropped")
	}
}
