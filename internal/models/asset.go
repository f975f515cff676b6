// Package models defines data structures for the markets dashboard.
package models

import (
	"strings"
	"time"
)

// AssetType classifies a record for grouping and type ordering.
type AssetType string

const (
	AssetTypeETF     AssetType = "ETF"
	AssetTypeStock   AssetType = "Stock"
	AssetTypeCrypto  AssetType = "Crypto"
	AssetTypeUnknown AssetType = "Unknown"
)

// Ordinal returns the fixed group order: ETF=1, Stock=2, Crypto=3, anything else 99.
func (t AssetType) Ordinal() int {
	switch t {
	case AssetTypeETF:
		return 1
	case AssetTypeStock:
		return 2
	case AssetTypeCrypto:
		return 3
	default:
		return 99
	}
}

// Label returns the type as displayed, with an empty type shown as "Unknown".
func (t AssetType) Label() string {
	if t == "" {
		return string(AssetTypeUnknown)
	}
	return string(t)
}

// Signal is a moving-average crossover classification supplied by the backend.
type Signal string

const (
	SignalBuy     Signal = "Buy"
	SignalSell    Signal = "Sell"
	SignalNeutral Signal = "Neutral"
)

// OrNeutral returns the signal, with an empty value treated as Neutral.
func (s Signal) OrNeutral() Signal {
	if s == "" {
		return SignalNeutral
	}
	return s
}

// Ordinal returns the fixed signal order: Buy=1, Neutral=2, Sell=3.
func (s Signal) Ordinal() int {
	switch s.OrNeutral() {
	case SignalBuy:
		return 1
	case SignalSell:
		return 3
	default:
		return 2
	}
}

// AssetRecord is one row's full metric set for a single poll cycle.
// Numeric metrics are pointers because the backend reports absent values as null.
type AssetRecord struct {
	Name        string    `json:"name" validate:"required"`
	DisplayName string    `json:"display_name,omitempty"`
	Type        AssetType `json:"type,omitempty"`

	LatestPrice        *float64 `json:"latest_price" validate:"required,finite"`
	DailyChangePct     *float64 `json:"daily_change_pct"`
	RSI14              *float64 `json:"rsi14"`
	EMA13              *float64 `json:"ema13"`
	EMA21              *float64 `json:"ema21"`
	EMA50              *float64 `json:"ema50"`
	EMA100             *float64 `json:"ema100,omitempty"`
	EMA200             *float64 `json:"ema200"`
	CurrentDrawdownPct *float64 `json:"current_drawdown_pct"`
	RelativePerf1Y     *float64 `json:"relative_perf_1y"`

	EMASignal              Signal `json:"ema_signal,omitempty"`
	EMALongSignal          Signal `json:"ema_long_signal,omitempty"`
	EMAShortLastSignalDate string `json:"ema_short_last_signal_date,omitempty"`
	EMALongLastSignalDate  string `json:"ema_long_last_signal_date,omitempty"`

	LastUpdated string `json:"last_updated,omitempty"`

	SparklineData []*float64 `json:"sparkline_data,omitempty"`

	Asset1YHistoryDates  []string   `json:"asset_1y_history_dates,omitempty"`
	Asset1YHistoryValues []*float64 `json:"asset_1y_history_values,omitempty"`

	RSI1YHistoryDates  []string   `json:"rsi_1y_history_dates,omitempty"`
	RSI1YHistoryValues []*float64 `json:"rsi_1y_history_values,omitempty"`

	EMA1YHistoryDates      []string   `json:"ema_1y_history_dates,omitempty"`
	EMA13_1YHistoryValues  []*float64 `json:"ema13_1y_history_values,omitempty"`
	EMA21_1YHistoryValues  []*float64 `json:"ema21_1y_history_values,omitempty"`
	EMA50_1YHistoryValues  []*float64 `json:"ema50_1y_history_values,omitempty"`
	EMA100_1YHistoryValues []*float64 `json:"ema100_1y_history_values,omitempty"`
	EMA200_1YHistoryValues []*float64 `json:"ema200_1y_history_values,omitempty"`

	DrawdownHistoryDates  []string   `json:"drawdown_history_dates,omitempty"`
	DrawdownHistoryValues []*float64 `json:"drawdown_history_values,omitempty"`

	Error string `json:"error,omitempty"`
	Stale bool   `json:"stale,omitempty"`
}

// Label returns the display name, falling back to the symbol name.
func (r *AssetRecord) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}

// HasError reports whether the backend flagged this record. Metrics of an
// errored record are treated as absent regardless of their raw value.
func (r *AssetRecord) HasError() bool {
	return r.Error != ""
}

// Metric returns v unless the record carries an error.
func (r *AssetRecord) Metric(v *float64) *float64 {
	if r.HasError() {
		return nil
	}
	return v
}

// LastUpdatedTime parses last_updated; ok is false when absent or malformed.
func (r *AssetRecord) LastUpdatedTime() (time.Time, bool) {
	return ParseTimestamp(r.LastUpdated)
}

// Clone returns a shallow copy of the record. Series slices are shared;
// they are replaced wholesale on merge and never mutated in place.
func (r *AssetRecord) Clone() *AssetRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses the date/time formats the analytics backend emits.
// Values without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
