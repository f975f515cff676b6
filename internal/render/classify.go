package render

import "github.com/bobmcallan/vire-markets/internal/models"

// Cell classifications used by the stylesheet.
const (
	ClassPositive = "positive"
	ClassNegative = "negative"
	ClassNeutral  = ""
)

// RSI thresholds.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// SignClass classifies by sign: non-negative is positive.
func SignClass(v *float64) string {
	if v == nil {
		return ClassNeutral
	}
	if *v >= 0 {
		return ClassPositive
	}
	return ClassNegative
}

// RSIClass marks oversold as positive and overbought as negative.
func RSIClass(v *float64) string {
	switch {
	case v == nil:
		return ClassNeutral
	case *v < RSIOversold:
		return ClassPositive
	case *v > RSIOverbought:
		return ClassNegative
	default:
		return ClassNeutral
	}
}

// RSIStatus returns "Oversold", "Overbought", "" or "N/A" when absent.
func RSIStatus(v *float64) string {
	switch {
	case v == nil:
		return "N/A"
	case *v < RSIOversold:
		return "Oversold"
	case *v > RSIOverbought:
		return "Overbought"
	default:
		return ""
	}
}

// DrawdownClass marks any drawdown below zero as negative.
func DrawdownClass(v *float64) string {
	if v != nil && *v < 0 {
		return ClassNegative
	}
	return ClassNeutral
}

// SignalClass maps Buy to positive and Sell to negative.
func SignalClass(s models.Signal) string {
	switch s.OrNeutral() {
	case models.SignalBuy:
		return ClassPositive
	case models.SignalSell:
		return ClassNegative
	default:
		return ClassNeutral
	}
}
