// Package render projects dashboard state into row view-models for the
// table. Rendering is pure: the same input always yields the same table.
package render

import (
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/models"
)

// RowKind distinguishes headers, placeholders and record rows.
type RowKind string

const (
	RowMarketHeader RowKind = "market-header"
	RowGroupHeader  RowKind = "group-header"
	RowPlaceholder  RowKind = "placeholder"
	RowRecord       RowKind = "record"
)

// Header and placeholder texts.
const (
	MarketHeaderLabel = "Market Overview"
	PlaceholderText   = "Loading or unavailable..."
)

// ColumnDef describes one table column. SortKey is empty for columns
// that cannot be sorted.
type ColumnDef struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	SortKey models.Column `json:"sort_key,omitempty"`
}

// Columns is the fixed column order of the table.
var Columns = []ColumnDef{
	{Key: "symbol", Label: "Symbol", SortKey: models.ColumnName},
	{Key: "type", Label: "Type", SortKey: models.ColumnType},
	{Key: "price", Label: "Price", SortKey: models.ColumnPrice},
	{Key: "change", Label: "Change", SortKey: models.ColumnChange},
	{Key: "sparkline", Label: "Trend"},
	{Key: "rsi", Label: "RSI", SortKey: models.ColumnRSI},
	{Key: "rsi-status", Label: "RSI Status"},
	{Key: "ema13", Label: "EMA13", SortKey: models.ColumnEMA13},
	{Key: "ema21", Label: "EMA21", SortKey: models.ColumnEMA21},
	{Key: "signal", Label: "Signal", SortKey: models.ColumnSignal},
	{Key: "duration-short", Label: "Duration", SortKey: models.ColumnDurationShort},
	{Key: "ema50", Label: "EMA50", SortKey: models.ColumnEMA50},
	{Key: "ema200", Label: "EMA200", SortKey: models.ColumnEMA200},
	{Key: "signal-long", Label: "Long Signal", SortKey: models.ColumnLongSignal},
	{Key: "duration-long", Label: "Long Duration", SortKey: models.ColumnDurationLong},
	{Key: "drawdown", Label: "Drawdown", SortKey: models.ColumnDrawdown},
}

// Header is a column header with the current sort indicator.
type Header struct {
	ColumnDef
	Indicator models.Direction `json:"indicator,omitempty"`
}

// Cell is one formatted table cell. Zone is set when hovering the cell
// opens a popup chart.
type Cell struct {
	Key       string      `json:"key"`
	Text      string      `json:"text"`
	Class     string      `json:"class,omitempty"`
	Zone      models.Zone `json:"zone,omitempty"`
	Sparkline *Sparkline  `json:"sparkline,omitempty"`
}

// Row is one table row.
type Row struct {
	Kind   RowKind `json:"kind"`
	Symbol string  `json:"symbol,omitempty"`
	Label  string  `json:"label,omitempty"`
	Market bool    `json:"market,omitempty"`
	Stale  bool    `json:"stale,omitempty"`
	Error  bool    `json:"error,omitempty"`
	Cells  []Cell  `json:"cells,omitempty"`
}

// Status is the loading indicator and "last updated" label.
type Status struct {
	Label      string `json:"label"`
	Error      bool   `json:"error,omitempty"`
	Loading    bool   `json:"loading"`
	Refreshing bool   `json:"refreshing"`
}

// Table is one complete render.
type Table struct {
	Headers    []Header  `json:"headers"`
	Rows       []Row     `json:"rows"`
	Status     Status    `json:"status"`
	RenderedAt time.Time `json:"rendered_at"`
}

// Input is everything a render reads.
type Input struct {
	Symbols    []string
	Market     models.MarketSnapshot
	Assets     models.AssetCollection
	Sort       models.SortState
	Now        time.Time
	StaleAfter time.Duration
}

// Render builds the table: the market header and fixed market rows, then
// the sorted assets with a group header at every type boundary.
func Render(in Input) *Table {
	t := &Table{
		Headers:    Headers(in.Sort),
		Rows:       make([]Row, 0, len(in.Symbols)+len(in.Assets)+5),
		RenderedAt: in.Now,
	}

	t.Rows = append(t.Rows, Row{Kind: RowMarketHeader, Label: MarketHeaderLabel})
	for _, symbol := range in.Symbols {
		rec := in.Market[symbol]
		if rec == nil {
			t.Rows = append(t.Rows, Row{Kind: RowPlaceholder, Symbol: symbol, Label: PlaceholderText, Market: true})
			continue
		}
		t.Rows = append(t.Rows, recordRow(rec, true, in.Now, in.StaleAfter))
	}

	group := ""
	for i, rec := range in.Assets {
		label := rec.Type.Label()
		if i == 0 || label != group {
			group = label
			t.Rows = append(t.Rows, Row{Kind: RowGroupHeader, Label: GroupLabel(rec.Type)})
		}
		t.Rows = append(t.Rows, recordRow(rec, false, in.Now, in.StaleAfter))
	}

	return t
}

// Headers returns the column headers with the sort indicator set on the
// active column.
func Headers(sort models.SortState) []Header {
	headers := make([]Header, len(Columns))
	for i, c := range Columns {
		headers[i] = Header{ColumnDef: c}
		if c.SortKey != "" && c.SortKey == sort.Column {
			headers[i].Indicator = sort.Direction
		}
	}
	return headers
}

// GroupLabel is the group header text for a type, such as "ETFs".
func GroupLabel(t models.AssetType) string {
	return t.Label() + "s"
}

// IsStale reports whether a record should be flagged: explicitly stale from
// validation, or last updated longer ago than staleAfter. A record without a
// usable timestamp is stale.
func IsStale(r *models.AssetRecord, now time.Time, staleAfter time.Duration) bool {
	if r.Stale {
		return true
	}
	updated, ok := r.LastUpdatedTime()
	if !ok {
		return true
	}
	return !common.IsFreshAt(updated, now, staleAfter)
}

// StatusUpdated is the label after a successful render.
func StatusUpdated(at time.Time) Status {
	return Status{Label: "Last Updated: " + at.Format("15:04:05")}
}

// StatusFailed is the label after a failed refresh.
func StatusFailed(msg string) Status {
	return Status{Label: "Update Error: " + msg, Error: true}
}
