package render

import (
	"fmt"
	"math"
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/models"
)

func recordRow(r *models.AssetRecord, market bool, now time.Time, staleAfter time.Duration) Row {
	row := Row{
		Kind:   RowRecord,
		Symbol: r.Name,
		Market: market,
		Stale:  IsStale(r, now, staleAfter),
	}

	typeText := ""
	if !market {
		typeText = string(r.Type)
		if typeText == "" {
			typeText = common.NotAvailable
		}
	}

	if r.HasError() {
		row.Error = true
		row.Cells = degradedCells(r, typeText)
		return row
	}

	short := r.EMASignal.OrNeutral()
	long := r.EMALongSignal.OrNeutral()

	row.Cells = []Cell{
		{Key: "symbol", Text: r.Label(), Zone: models.ZoneSymbol},
		{Key: "type", Text: typeText},
		{Key: "price", Text: common.FormatPrice(r.LatestPrice)},
		{Key: "change", Text: common.FormatPercent(r.DailyChangePct), Class: SignClass(r.DailyChangePct)},
		sparklineCell(r.SparklineData),
		{Key: "rsi", Text: common.FormatNumber(r.RSI14, 0), Zone: models.ZoneRSI},
		{Key: "rsi-status", Text: RSIStatus(r.RSI14), Class: RSIClass(r.RSI14)},
		{Key: "ema13", Text: common.FormatNumber(r.EMA13, 2), Zone: models.ZoneEMA13},
		{Key: "ema21", Text: common.FormatNumber(r.EMA21, 2), Zone: models.ZoneEMA21},
		{Key: "signal", Text: string(short), Class: SignalClass(short)},
		{Key: "duration-short", Text: DurationText(r.EMAShortLastSignalDate, now)},
		{Key: "ema50", Text: common.FormatNumber(r.EMA50, 2), Zone: models.ZoneEMA50},
		{Key: "ema200", Text: common.FormatNumber(r.EMA200, 2), Zone: models.ZoneEMA200},
		{Key: "signal-long", Text: string(long), Class: SignalClass(long)},
		{Key: "duration-long", Text: DurationText(r.EMALongLastSignalDate, now)},
		{Key: "drawdown", Text: common.FormatPercent(r.CurrentDrawdownPct), Class: DrawdownClass(r.CurrentDrawdownPct), Zone: models.ZoneDrawdown},
	}
	return row
}

// degradedCells renders an errored record: the price cell carries the
// error text, every derived cell is N/A and no cell has a hover zone.
func degradedCells(r *models.AssetRecord, typeText string) []Cell {
	cells := make([]Cell, len(Columns))
	for i, c := range Columns {
		cells[i] = Cell{Key: c.Key, Text: common.NotAvailable}
	}
	cells[0].Text = r.Label()
	cells[1].Text = typeText
	cells[2].Text = r.Error
	cells[2].Class = ClassNegative
	return cells
}

func sparklineCell(data []*float64) Cell {
	spark := NewSparkline(data)
	if spark == nil {
		return Cell{Key: "sparkline", Text: common.NotAvailable}
	}
	return Cell{Key: "sparkline", Sparkline: spark}
}

// DurationText is the rounded number of days since a signal date, as
// "12 days", or N/A when the date is absent.
func DurationText(date string, now time.Time) string {
	t, ok := models.ParseTimestamp(date)
	if !ok {
		return common.NotAvailable
	}
	days := math.Round(now.Sub(t).Hours() / 24)
	return fmt.Sprintf("%d days", int(days))
}
