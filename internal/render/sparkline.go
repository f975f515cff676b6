package render

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/bobmcallan/vire-markets/internal/common"
)

// Sparkline geometry defaults.
const (
	SparklineWidth  = 80.0
	SparklineHeight = 20.0
	SparklineStroke = 1.5
)

// Sparkline is the polyline drawn in the trend cell.
type Sparkline struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeWidth float64 `json:"stroke_width"`
	Points      string  `json:"points"`
}

// NewSparkline scales data into the default box. Null and non-finite points
// are skipped; fewer than two remaining points returns nil.
func NewSparkline(raw []*float64) *Sparkline {
	data := make([]float64, 0, len(raw))
	for _, v := range raw {
		if common.IsFinite(v) {
			data = append(data, *v)
		}
	}
	if len(data) < 2 {
		return nil
	}

	lo, hi := slices.Min(data), slices.Max(data)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	points := make([]string, len(data))
	last := float64(len(data) - 1)
	for i, d := range data {
		x := float64(i) / last * SparklineWidth
		y := SparklineHeight - (d-lo)/span*SparklineHeight
		// Keep the stroke inside the box.
		y = math.Max(SparklineStroke, math.Min(SparklineHeight-SparklineStroke, y))
		points[i] = formatCoord(x) + "," + formatCoord(y)
	}

	return &Sparkline{
		Width:       SparklineWidth,
		Height:      SparklineHeight,
		StrokeWidth: SparklineStroke,
		Points:      strings.Join(points, " "),
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
