// Package state holds the dashboard's application state: the market
// snapshot, the ordered asset collection, the shared reference history and
// the user's sort and period selections.
package state

import (
	"slices"
	"sync"
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/models"
)

// View is a read-only window onto the store, valid only inside Store.Read.
type View struct {
	Symbols     []string
	Market      models.MarketSnapshot
	Assets      models.AssetCollection
	Shared      *models.HistorySeries
	Sort        models.SortState
	Params      models.FetchParams
	LastUpdated time.Time
}

// Store is the single owner of mutable dashboard state. Record pointers in
// the asset collection keep their identity across merges and sorts.
type Store struct {
	mu           sync.RWMutex
	symbols      []string
	market       models.MarketSnapshot
	assets       models.AssetCollection
	shared       *models.HistorySeries
	sort         models.SortState
	params       models.FetchParams
	lastUpdated  time.Time
	// retainAbsent bounds how long assets missing from responses are kept.
	retainAbsent time.Duration
	logger       *common.Logger
}

// SetRetention sets how long after its last update an asset absent from
// responses is kept. Zero keeps absent assets indefinitely.
func (s *Store) SetRetention(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retainAbsent = d
}

// NewStore creates an empty store for the given fixed market symbols.
func NewStore(symbols []string, params models.FetchParams, logger *common.Logger) *Store {
	return &Store{
		symbols: slices.Clone(symbols),
		market:  make(models.MarketSnapshot),
		sort:    models.DefaultSortState(),
		params:  params,
		logger:  logger,
	}
}

// Read runs fn with a consistent view of the state under a read lock.
// fn must not retain the view or mutate records.
func (s *Store) Read(fn func(v View)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(View{
		Symbols:     s.symbols,
		Market:      s.market,
		Assets:      s.assets,
		Shared:      s.shared,
		Sort:        s.sort,
		Params:      s.params,
		LastUpdated: s.lastUpdated,
	})
}

// Reorder runs fn over the asset collection under the write lock so it can
// reorder records in place.
func (s *Store) Reorder(fn func(assets models.AssetCollection, sort models.SortState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.assets, s.sort)
}

// Record returns a copy of the asset or market record with the given name.
func (s *Store) Record(name string) (*models.AssetRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r := s.assets.Find(name); r != nil {
		return r.Clone(), true
	}
	if r, ok := s.market[name]; ok && r != nil {
		return r.Clone(), true
	}
	return nil, false
}

// SharedHistory returns the shared reference series.
func (s *Store) SharedHistory() *models.HistorySeries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shared
}

// Sort returns the current sort state.
func (s *Store) Sort() models.SortState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// SelectSort applies a user sort action and returns the new state.
func (s *Store) SelectSort(c models.Column) models.SortState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = s.sort.Select(c)
	return s.sort
}

// Params returns the selected fetch periods.
func (s *Store) Params() models.FetchParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams stores new fetch periods.
func (s *Store) SetParams(p models.FetchParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}

// LastUpdated returns when the last successful merge happened.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// IsEmpty reports whether the store holds no records at all.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.market) == 0 && len(s.assets) == 0
}

// Snapshot copies the current data for the persistent cache.
func (s *Store) Snapshot() models.CachedSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	market := make(models.MarketSnapshot, len(s.market))
	for k, r := range s.market {
		market[k] = r.Clone()
	}
	assets := make(models.AssetCollection, 0, len(s.assets))
	for _, r := range s.assets {
		assets = append(assets, r.Clone())
	}
	return models.CachedSnapshot{
		MarketData:    market,
		AssetData:     assets,
		SharedHistory: s.shared,
	}
}

// Restore replaces the data with a cached snapshot.
func (s *Store) Restore(snap *models.CachedSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.market = make(models.MarketSnapshot, len(snap.MarketData))
	for k, r := range snap.MarketData {
		if r != nil {
			s.market[k] = r
		}
	}
	s.assets = make(models.AssetCollection, 0, len(snap.AssetData))
	for _, r := range snap.AssetData {
		if r != nil {
			s.assets = append(s.assets, r)
		}
	}
	s.shared = snap.SharedHistory
	s.lastUpdated = snap.SavedAt()

	s.logger.Debug().Int("market", len(s.market)).Int("assets", len(s.assets)).Msg("State restored from cache")
}

// Reset clears all data. Sort and period selections are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.market = make(models.MarketSnapshot)
	s.assets = nil
	s.shared = nil
	s.lastUpdated = time.Time{}
}

// MarkAllStale flags every record as stale, used when a refresh fails.
func (s *Store) MarkAllStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.market {
		r.Stale = true
	}
	for _, r := range s.assets {
		r.Stale = true
	}
}
