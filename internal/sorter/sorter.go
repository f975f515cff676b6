// Package sorter orders the asset collection for display. Records are
// always grouped by asset type first unless the type column itself is
// selected, and ties fall back to the display name.
package sorter

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bobmcallan/vire-markets/internal/models"
)

type sortKey struct {
	num   float64
	str   string
	isStr bool
}

// Sort reorders assets in place. The sort is stable and record pointers are
// untouched, so callers holding a record keep a valid reference.
func Sort(assets models.AssetCollection, state models.SortState, now time.Time) {
	if len(assets) < 2 {
		return
	}

	// A Collator is not safe for concurrent use.
	coll := collate.New(language.English, collate.IgnoreCase)
	dir := state.Direction.Sign()

	keys := make(map[*models.AssetRecord]sortKey, len(assets))
	for _, r := range assets {
		keys[r] = keyFor(r, state.Column, dir, now)
	}

	slices.SortStableFunc(assets, func(a, b *models.AssetRecord) int {
		if state.Column != models.ColumnType {
			if c := cmp.Compare(a.Type.Ordinal(), b.Type.Ordinal()); c != 0 {
				return c
			}
		}

		ka, kb := keys[a], keys[b]
		var c int
		if ka.isStr && kb.isStr {
			c = coll.CompareString(ka.str, kb.str)
		} else {
			c = cmp.Compare(ka.num, kb.num)
		}

		// Duration keys already carry the direction.
		if !state.Column.IsDuration() {
			c *= dir
		}

		if c == 0 && state.Column != models.ColumnName {
			return coll.CompareString(a.Label(), b.Label())
		}
		return c
	})
}

func keyFor(r *models.AssetRecord, column models.Column, dir int, now time.Time) sortKey {
	switch {
	case column.IsDuration():
		date := r.EMAShortLastSignalDate
		if column == models.ColumnDurationLong {
			date = r.EMALongLastSignalDate
		}
		t, ok := models.ParseTimestamp(date)
		if !ok || r.HasError() {
			return sortKey{num: math.Inf(-1)}
		}
		return sortKey{num: float64(now.Sub(t)) * float64(dir)}

	case column.IsSignal():
		sig := r.EMASignal
		if column == models.ColumnLongSignal {
			sig = r.EMALongSignal
		}
		if r.HasError() {
			sig = models.SignalNeutral
		}
		return sortKey{num: float64(sig.Ordinal())}

	case column == models.ColumnType:
		return sortKey{num: float64(r.Type.Ordinal())}

	case column == models.ColumnName:
		return sortKey{str: strings.ToLower(r.Name), isStr: true}
	}

	v := NumericValue(r, column)
	if v == nil || math.IsNaN(*v) {
		// Missing values sort last in either direction.
		if dir > 0 {
			return sortKey{num: math.Inf(1)}
		}
		return sortKey{num: math.Inf(-1)}
	}
	return sortKey{num: *v}
}

// NumericValue returns the metric behind a numeric column, or nil when the
// column is not numeric or the record carries an error.
func NumericValue(r *models.AssetRecord, column models.Column) *float64 {
	var v *float64
	switch column {
	case models.ColumnPrice:
		v = r.LatestPrice
	case models.ColumnChange:
		v = r.DailyChangePct
	case models.ColumnRSI:
		v = r.RSI14
	case models.ColumnEMA13:
		v = r.EMA13
	case models.ColumnEMA21:
		v = r.EMA21
	case models.ColumnEMA50:
		v = r.EMA50
	case models.ColumnEMA200:
		v = r.EMA200
	case models.ColumnDrawdown:
		v = r.CurrentDrawdownPct
	}
	return r.Metric(v)
}
