// Package dashboard owns the single dashboard session: the application
// state, the last complete render, the popup controller and the theme. It
// runs refresh cycles for the scheduler and dispatches UI events.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/vire-markets/internal/cache"
	"github.com/bobmcallan/vire-markets/internal/client"
	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/config"
	"github.com/bobmcallan/vire-markets/internal/interfaces"
	"github.com/bobmcallan/vire-markets/internal/models"
	"github.com/bobmcallan/vire-markets/internal/popup"
	"github.com/bobmcallan/vire-markets/internal/render"
	"github.com/bobmcallan/vire-markets/internal/sorter"
	"github.com/bobmcallan/vire-markets/internal/state"
)

// ErrInvalidPeriod is returned for a period outside models.Periods.
var ErrInvalidPeriod = errors.New("invalid period")

// Fetcher retrieves one dashboard response from the analytics backend.
type Fetcher interface {
	FetchDashboard(ctx context.Context, params models.FetchParams) (*models.DashboardResponse, error)
}

// Coordinator is the dashboard session.
type Coordinator struct {
	cfg       config.DashboardConfig
	store     *state.Store
	fetcher   Fetcher
	snapshots *cache.SnapshotCache
	themes    *cache.ThemeStore
	popups    *popup.Controller
	logger    *common.Logger
	now       func() time.Time

	// renderMu orders build-and-swap so a render built from an older
	// state never replaces a newer one.
	renderMu sync.Mutex

	mu         sync.RWMutex
	table      *render.Table
	status     render.Status
	loading    bool
	refreshing bool
	report     state.MergeReport
}

// New creates a coordinator with an empty store and an empty render.
func New(cfg config.DashboardConfig, fetcher Fetcher, kv interfaces.KeyValueStorage, logger *common.Logger) *Coordinator {
	params := models.FetchParams{
		DrawdownPeriod: cfg.DrawdownPeriod,
		ChangePeriod:   cfg.ChangePeriod,
	}
	c := &Coordinator{
		cfg:       cfg,
		store:     state.NewStore(cfg.MarketSymbols, params, logger),
		fetcher:   fetcher,
		snapshots: cache.New(kv, logger),
		themes:    cache.NewThemeStore(kv, logger),
		popups:    popup.NewController(popup.NewSpecSurface(), logger),
		logger:    logger,
		now:       time.Now,
		status:    render.Status{Label: "Loading..."},
	}
	c.store.SetRetention(cfg.RetainAbsentDuration())
	c.render()
	return c
}

// SetClock replaces the clock used for staleness, durations and cache ages.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
	c.snapshots.SetClock(now)
}

// Bootstrap renders the cached snapshot when one exists and is younger
// than the cache max age. It reports whether the dashboard was rendered
// from cache; when false the first refresh must be an initial load.
func (c *Coordinator) Bootstrap(ctx context.Context) bool {
	snap, ok := c.snapshots.Load(ctx)
	if !ok {
		return false
	}

	maxAge := c.cfg.CacheMaxAgeDuration()
	if !c.snapshots.IsFresh(snap, maxAge) {
		c.logger.Info().
			Dur("age", c.snapshots.Age(snap)).
			Dur("max_age", maxAge).
			Msg("Cached snapshot too old, fetching before render")
		return false
	}

	c.store.Restore(snap)
	c.resort()
	c.setStatus(render.StatusUpdated(snap.SavedAt()))
	c.render()

	c.logger.Info().
		Dur("age", c.snapshots.Age(snap)).
		Int("assets", len(snap.AssetData)).
		Msg("Dashboard rendered from cache")
	return true
}

// Refresh runs one cycle: fetch, validate and merge, cache write, sort,
// render. A failed initial load clears all state and the cache; a failed
// later refresh keeps the last good state, marked stale. A cancelled cycle
// changes nothing.
func (c *Coordinator) Refresh(ctx context.Context, initial bool) error {
	resp, err := c.fetcher.FetchDashboard(ctx, c.store.Params())
	if err != nil {
		c.fail(ctx, initial, err)
		return fmt.Errorf("dashboard refresh failed: %w", err)
	}

	now := c.now()
	report := c.store.Apply(resp, now)
	c.snapshots.Save(ctx, c.store.Snapshot())
	c.resort()

	c.mu.Lock()
	c.report = report
	c.mu.Unlock()

	c.setStatus(render.StatusUpdated(now))
	c.render()
	return nil
}

func (c *Coordinator) fail(ctx context.Context, initial bool, err error) {
	if errors.Is(err, context.Canceled) {
		c.logger.Info().Bool("initial", initial).Msg("Refresh cancelled, state and cache left intact")
		return
	}
	if initial {
		c.store.Reset()
		c.snapshots.Clear(ctx)
		c.logger.Warn().Str("error", err.Error()).Msg("Initial load failed, state cleared")
	} else {
		c.store.MarkAllStale()
		c.logger.Warn().Str("error", err.Error()).Msg("Refresh failed, keeping last good state")
	}
	c.setStatus(render.StatusFailed(client.Message(err)))
	c.render()
}

// SetLoading records the loading indicator state.
func (c *Coordinator) SetLoading(loading, refreshing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = loading
	c.refreshing = refreshing
}

// Table returns the last complete render with the current loading state.
func (c *Coordinator) Table() *render.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := *c.table
	t.Status.Loading = c.loading
	t.Status.Refreshing = c.refreshing
	return &t
}

// LastReport returns the merge report of the last successful refresh.
func (c *Coordinator) LastReport() state.MergeReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.report
}

// Params returns the selected fetch periods.
func (c *Coordinator) Params() models.FetchParams {
	return c.store.Params()
}

// Record returns a copy of the record for symbol.
func (c *Coordinator) Record(symbol string) (*models.AssetRecord, bool) {
	return c.store.Record(symbol)
}

func (c *Coordinator) setStatus(s render.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

func (c *Coordinator) resort() {
	now := c.now()
	c.store.Reorder(func(assets models.AssetCollection, sort models.SortState) {
		sorter.Sort(assets, sort, now)
	})
}

// render builds a complete table and swaps it in. Readers never observe a
// partially built table.
func (c *Coordinator) render() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	var t *render.Table
	now := c.now()
	staleAfter := c.cfg.StaleAfterDuration()
	c.store.Read(func(v state.View) {
		t = render.Render(render.Input{
			Symbols:    v.Symbols,
			Market:     v.Market,
			Assets:     v.Assets,
			Sort:       v.Sort,
			Now:        now,
			StaleAfter: staleAfter,
		})
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	t.Status = c.status
	c.table = t
}
