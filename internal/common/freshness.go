package common

import (
	"math"
	"time"
)

// Freshness thresholds for dashboard data.
//
// A record is stale once its own last_updated timestamp is older than
// FreshnessRecord. A cached snapshot older than FreshnessSnapshot is not
// rendered on startup; a fresh fetch is performed first instead. An asset
// missing from responses is dropped once FreshnessRetainAbsent has passed
// since its last update.
const (
	FreshnessRecord       = 5 * time.Minute
	FreshnessSnapshot     = 10 * time.Minute
	FreshnessRetainAbsent = 24 * time.Hour
)

// IsFreshAt reports whether updated is no more than ttl before now. A zero
// timestamp is never fresh.
func IsFreshAt(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) <= ttl
}

// IsFinite reports whether v is present and neither NaN nor infinite.
func IsFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Float returns a pointer to v, for building optional metric values.
func Float(v float64) *float64 {
	return &v
}
