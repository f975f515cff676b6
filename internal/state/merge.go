package state

import (
	"slices"
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/models"
)

// MergeReport lists the outcome of one merge by record identity.
type MergeReport struct {
	// Accepted entries passed validation and replaced the prior values.
	Accepted []string `json:"accepted"`
	// Fallback entries failed validation; the prior record was kept, marked stale.
	Fallback []string `json:"fallback"`
	// Dropped entries failed validation with no prior record to fall back to.
	Dropped []string `json:"dropped"`
	// Retained assets were absent from the response and kept, marked stale.
	Retained []string `json:"retained"`
	// Expired assets were absent and last updated before the retention window.
	Expired []string `json:"expired"`
	// Removed market symbols were absent from the response.
	Removed []string `json:"removed"`
}

// Apply validates a response and merges it into the state entry by entry.
// The shared history is replaced wholesale.
func (s *Store) Apply(resp *models.DashboardResponse, now time.Time) MergeReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report MergeReport
	s.mergeMarket(resp.MarketData, &report)
	s.mergeAssets(resp.AssetData, now, &report)
	s.shared = resp.SPY1YHistory
	s.lastUpdated = now

	s.logger.Info().
		Int("accepted", len(report.Accepted)).
		Int("fallback", len(report.Fallback)).
		Int("dropped", len(report.Dropped)).
		Int("retained", len(report.Retained)).
		Int("expired", len(report.Expired)).
		Int("removed", len(report.Removed)).
		Msg("Dashboard data merged")

	return report
}

func (s *Store) mergeMarket(incoming map[string]*models.AssetRecord, report *MergeReport) {
	if incoming == nil {
		for _, r := range s.market {
			r.Stale = true
		}
		return
	}

	for _, symbol := range sortedKeys(incoming) {
		rec := incoming[symbol]
		if rec != nil && rec.Name == "" {
			rec.Name = symbol
		}
		prior := s.market[symbol]

		if err := ValidateRecord(rec); err != nil {
			s.logger.Warn().Str("symbol", symbol).Str("error", err.Error()).Msg("Skipping invalid market data")
			if prior != nil && ValidateRecord(prior) == nil {
				prior.Stale = true
				report.Fallback = append(report.Fallback, symbol)
			} else {
				delete(s.market, symbol)
				report.Dropped = append(report.Dropped, symbol)
			}
			continue
		}

		rec.Stale = false
		if prior != nil {
			*prior = *rec
		} else {
			s.market[symbol] = rec
		}
		report.Accepted = append(report.Accepted, symbol)
	}

	for _, symbol := range sortedKeys(s.market) {
		if _, ok := incoming[symbol]; !ok {
			delete(s.market, symbol)
			report.Removed = append(report.Removed, symbol)
		}
	}
}

func (s *Store) mergeAssets(incoming map[string]*models.AssetRecord, now time.Time, report *MergeReport) {
	if incoming == nil {
		for _, r := range s.assets {
			r.Stale = true
		}
		return
	}

	seen := make(map[string]bool, len(incoming))
	var dropped []*models.AssetRecord

	for _, key := range sortedKeys(incoming) {
		rec := incoming[key]
		name := key
		if rec != nil && rec.Name != "" {
			name = rec.Name
		}
		seen[name] = true
		prior := s.assets.Find(name)

		if err := ValidateRecord(rec); err != nil {
			s.logger.Warn().Str("asset", name).Str("error", err.Error()).Msg("Skipping invalid asset data")
			if prior != nil && ValidateRecord(prior) == nil {
				prior.Stale = true
				report.Fallback = append(report.Fallback, name)
			} else {
				if prior != nil {
					dropped = append(dropped, prior)
				}
				report.Dropped = append(report.Dropped, name)
			}
			continue
		}

		rec.Stale = false
		if prior != nil {
			*prior = *rec
		} else {
			s.assets = append(s.assets, rec)
		}
		report.Accepted = append(report.Accepted, name)
	}

	for _, r := range s.assets {
		if seen[r.Name] {
			continue
		}
		if s.expired(r, now) {
			dropped = append(dropped, r)
			report.Expired = append(report.Expired, r.Name)
			continue
		}
		r.Stale = true
		report.Retained = append(report.Retained, r.Name)
	}
	if len(dropped) > 0 {
		s.assets = slices.DeleteFunc(s.assets, func(r *models.AssetRecord) bool {
			return slices.Contains(dropped, r)
		})
	}
}

// expired reports whether an absent asset has outlived the retention window.
// An undated record has nothing to anchor it and expires at once.
func (s *Store) expired(r *models.AssetRecord, now time.Time) bool {
	if s.retainAbsent <= 0 {
		return false
	}
	updated, _ := r.LastUpdatedTime()
	return !common.IsFreshAt(updated, now, s.retainAbsent)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
