package popup

import (
	"math"
)

// EMAShortWindow is roughly six months of trading days.
const EMAShortWindow = 126

// pairedSeries reports whether dates and values form a usable series.
func pairedSeries(dates []string, values []*float64) bool {
	return len(dates) >= 2 && len(dates) == len(values)
}

// ForwardFill aligns a reference series onto the asset's date axis. Each
// asset date takes the latest reference value dated on or before it; dates
// before the first reference date get nil. Dates compare as ISO strings and
// both axes must be ascending.
func ForwardFill(assetDates, refDates []string, refValues []*float64) []*float64 {
	aligned := make([]*float64, len(assetDates))
	var current *float64
	j := 0
	for i, d := range assetDates {
		for j < len(refDates) && j < len(refValues) && refDates[j] <= d {
			current = refValues[j]
			j++
		}
		aligned[i] = current
	}
	return aligned
}

// Tail returns the start index of the trailing window of n points.
func Tail(length, n int) int {
	return max(0, length-n)
}

// DrawdownAxisMin floors min(0, min(values)) to the nearest 10 below.
func DrawdownAxisMin(values []*float64) float64 {
	lowest := 0.0
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) && *v < lowest {
			lowest = *v
		}
	}
	return math.Floor(lowest/10) * 10
}

// trendUp reports whether the last value is at or above the first. Missing
// endpoints count as up.
func trendUp(values []*float64) bool {
	if len(values) == 0 {
		return true
	}
	first, last := values[0], values[len(values)-1]
	if first == nil || last == nil {
		return true
	}
	return *last >= *first
}
