package models

// Zone is a hover trigger area within a table row.
type Zone string

const (
	ZoneSymbol   Zone = "symbol"
	ZoneRSI      Zone = "rsi"
	ZoneEMA13    Zone = "ema13"
	ZoneEMA21    Zone = "ema21"
	ZoneEMA50    Zone = "ema50"
	ZoneEMA200   Zone = "ema200"
	ZoneDrawdown Zone = "drawdown"
)
