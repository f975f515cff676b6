package popup

import (
	"github.com/bobmcallan/vire-markets/internal/models"
)

// ChartSpec is a theme-resolved line chart description. The page draws it
// with Chart.js; the controller only builds and hands it to a surface.
type ChartSpec struct {
	Kind      ViewKind  `json:"kind"`
	Labels    []string  `json:"labels"`
	Datasets  []Dataset `json:"datasets"`
	Y         Axis      `json:"y"`
	Legend    bool      `json:"legend"`
	TextColor string    `json:"text_color"`
	GridColor string    `json:"grid_color"`
}

// Dataset is one line of a chart.
type Dataset struct {
	Label           string     `json:"label"`
	Data            []*float64 `json:"data"`
	BorderColor     string     `json:"border_color"`
	BackgroundColor string     `json:"background_color,omitempty"`
	BorderWidth     float64    `json:"border_width"`
	BorderDash      []int      `json:"border_dash,omitempty"`
	Fill            bool       `json:"fill,omitempty"`
}

// Axis is the y-axis configuration.
type Axis struct {
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	SuggestedMin *float64 `json:"suggested_min,omitempty"`
	StepSize     float64  `json:"step_size,omitempty"`
	TickSuffix   string   `json:"tick_suffix,omitempty"`
	Bands        []Band   `json:"bands,omitempty"`
}

// Band is a highlighted horizontal grid line.
type Band struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type palette struct {
	grid, text           string
	rsi                  string
	emaShort1, emaShort2 string
	emaLong1, emaLong2   string
	drawdown, drawdownBg string
}

const (
	colorUp        = "rgba(76, 175, 80, 0.8)"
	colorDown      = "rgba(244, 67, 54, 0.8)"
	colorReference = "rgba(150, 150, 150, 0.7)"
	colorOversold  = "rgba(76, 175, 80, 0.5)"
	colorOverbuy   = "rgba(244, 67, 54, 0.5)"
)

var palettes = map[models.Theme]palette{
	models.ThemeLight: {
		grid:       "rgba(0, 0, 0, 0.1)",
		text:       "#333",
		rsi:        "rgba(0, 100, 200, 0.8)",
		emaShort1:  "rgba(0, 150, 136, 0.8)",
		emaShort2:  "rgba(255, 87, 34, 0.8)",
		emaLong1:   "rgba(63, 81, 181, 0.8)",
		emaLong2:   "rgba(233, 30, 99, 0.8)",
		drawdown:   "rgba(156, 39, 176, 0.8)",
		drawdownBg: "rgba(156, 39, 176, 0.2)",
	},
	models.ThemeDark: {
		grid:       "rgba(255, 255, 255, 0.1)",
		text:       "#eee",
		rsi:        "rgba(100, 180, 255, 0.8)",
		emaShort1:  "rgba(77, 182, 172, 0.8)",
		emaShort2:  "rgba(255, 138, 101, 0.8)",
		emaLong1:   "rgba(121, 134, 203, 0.8)",
		emaLong2:   "rgba(240, 98, 146, 0.8)",
		drawdown:   "rgba(186, 104, 200, 0.8)",
		drawdownBg: "rgba(186, 104, 200, 0.2)",
	},
}

func paletteFor(t models.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[models.ThemeDark]
}

func ptr(v float64) *float64 {
	return &v
}
