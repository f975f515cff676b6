// Package popup implements the hover chart controller: a single popup that
// shows one chart view for one row at a time.
package popup

import "github.com/bobmcallan/vire-markets/internal/models"

// ViewKind is one of the chart views a hover can open.
type ViewKind string

const (
	ViewRelativePerf ViewKind = "relative-perf"
	ViewRSI          ViewKind = "rsi"
	ViewEMAShort     ViewKind = "ema-short"
	ViewEMALong      ViewKind = "ema-long"
	ViewDrawdown     ViewKind = "drawdown"
)

// ViewForZone maps a hover zone to its chart view.
func ViewForZone(z models.Zone) (ViewKind, bool) {
	switch z {
	case models.ZoneSymbol:
		return ViewRelativePerf, true
	case models.ZoneRSI:
		return ViewRSI, true
	case models.ZoneEMA13, models.ZoneEMA21:
		return ViewEMAShort, true
	case models.ZoneEMA50, models.ZoneEMA200:
		return ViewEMALong, true
	case models.ZoneDrawdown:
		return ViewDrawdown, true
	default:
		return "", false
	}
}

// unavailableText is the overlay shown when a view has no usable series.
func unavailableText(kind ViewKind) string {
	switch kind {
	case ViewRelativePerf:
		return "Rel Perf Data N/A"
	case ViewRSI:
		return "RSI Data N/A"
	case ViewEMAShort:
		return "SHORT EMA Data N/A"
	case ViewEMALong:
		return "LONG EMA Data N/A"
	default:
		return "Drawdown Data N/A"
	}
}
