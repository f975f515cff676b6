package models

// Column identifies a sortable table column by its sort key.
type Column string

const (
	ColumnName          Column = "name"
	ColumnType          Column = "type"
	ColumnPrice         Column = "latest_price"
	ColumnChange        Column = "daily_change_pct"
	ColumnRSI           Column = "rsi14"
	ColumnEMA13         Column = "ema13"
	ColumnEMA21         Column = "ema21"
	ColumnSignal        Column = "ema_signal"
	ColumnDurationShort Column = "duration-short"
	ColumnEMA50         Column = "ema50"
	ColumnEMA200        Column = "ema200"
	ColumnLongSignal    Column = "ema_long_signal"
	ColumnDurationLong  Column = "duration-long"
	ColumnDrawdown      Column = "current_drawdown_pct"
)

// SortableColumns lists every column a sort action may select.
var SortableColumns = []Column{
	ColumnName, ColumnType, ColumnPrice, ColumnChange, ColumnRSI, ColumnEMA13, ColumnEMA21,
	ColumnSignal, ColumnDurationShort, ColumnEMA50, ColumnEMA200, ColumnLongSignal,
	ColumnDurationLong, ColumnDrawdown,
}

// Valid reports whether c is a sortable column.
func (c Column) Valid() bool {
	for _, s := range SortableColumns {
		if s == c {
			return true
		}
	}
	return false
}

// IsDuration reports whether c sorts by days elapsed since a signal date.
func (c Column) IsDuration() bool {
	return c == ColumnDurationShort || c == ColumnDurationLong
}

// IsSignal reports whether c sorts by signal text.
func (c Column) IsSignal() bool {
	return c == ColumnSignal || c == ColumnLongSignal
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sign returns 1 for ascending and -1 for descending.
func (d Direction) Sign() int {
	if d == Descending {
		return -1
	}
	return 1
}

// SortState is the current column and direction of the asset section.
type SortState struct {
	Column    Column    `json:"column"`
	Direction Direction `json:"direction"`
}

// DefaultSortState groups assets by type, ascending.
func DefaultSortState() SortState {
	return SortState{Column: ColumnType, Direction: Ascending}
}

// Select applies a user sort action: reselecting the current column toggles
// the direction, a new column starts ascending.
func (s SortState) Select(c Column) SortState {
	if s.Column == c {
		if s.Direction == Ascending {
			return SortState{Column: c, Direction: Descending}
		}
		return SortState{Column: c, Direction: Ascending}
	}
	return SortState{Column: c, Direction: Ascending}
}
