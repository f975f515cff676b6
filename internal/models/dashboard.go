package models

import (
	"slices"
	"time"
)

// MarketSnapshot maps each fixed market symbol to its record.
type MarketSnapshot map[string]*AssetRecord

// AssetCollection is the ordered, sortable asset section.
type AssetCollection []*AssetRecord

// Find returns the record with the given name, or nil.
func (c AssetCollection) Find(name string) *AssetRecord {
	for _, r := range c {
		if r != nil && r.Name == name {
			return r
		}
	}
	return nil
}

// HistorySeries is a named (date, value) series, such as the shared
// reference index's one-year performance.
type HistorySeries struct {
	Dates  []string   `json:"dates"`
	Values []*float64 `json:"values"`
}

// Valid reports whether the series is paired, equal-length and has at least two points.
func (h *HistorySeries) Valid() bool {
	return h != nil && len(h.Dates) >= 2 && len(h.Dates) == len(h.Values)
}

// DashboardResponse is the analytics endpoint payload.
type DashboardResponse struct {
	MarketData   map[string]*AssetRecord `json:"market_data"`
	AssetData    map[string]*AssetRecord `json:"asset_data"`
	SPY1YHistory *HistorySeries          `json:"spy_1y_history"`
}

// CachedSnapshot is the last-known-good state persisted to durable storage.
// Timestamp is milliseconds since the Unix epoch.
type CachedSnapshot struct {
	MarketData    MarketSnapshot  `json:"marketData"`
	AssetData     AssetCollection `json:"assetData"`
	SharedHistory *HistorySeries  `json:"sharedHistory"`
	Timestamp     int64           `json:"timestamp"`
}

// SavedAt returns the snapshot timestamp as a time.
func (s *CachedSnapshot) SavedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Theme is the persisted colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Periods accepted by the analytics backend for drawdown and change windows.
var Periods = []string{"1d", "1w", "7d", "1m", "3m", "6m", "1y", "2y", "3y", "4y", "5y"}

// IsValidPeriod reports whether p is one of Periods.
func IsValidPeriod(p string) bool {
	return slices.Contains(Periods, p)
}

// FetchParams are the user-selectable request parameters.
type FetchParams struct {
	DrawdownPeriod string `json:"drawdown_period"`
	ChangePeriod   string `json:"change_period"`
}
