package popup

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/models"
	"github.com/bobmcallan/vire-markets/internal/render"
)

// ErrChartData is returned when a view's series is missing or malformed.
var ErrChartData = errors.New("chart data unavailable")

// Overlay is the text shown over the chart.
type Overlay struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

// Build constructs the chart and overlay for one view of a record. When the
// view's series is unusable the returned overlay is the "Data N/A" text and
// the error wraps ErrChartData.
func Build(kind ViewKind, rec *models.AssetRecord, shared *models.HistorySeries, theme models.Theme) (*ChartSpec, Overlay, error) {
	p := paletteFor(theme)

	var (
		spec *ChartSpec
		err  error
	)
	switch kind {
	case ViewRelativePerf:
		spec, err = relativePerfChart(rec, shared, p)
	case ViewRSI:
		spec, err = rsiChart(rec, p)
	case ViewEMAShort, ViewEMALong:
		spec, err = emaChart(kind, rec, p)
	case ViewDrawdown:
		spec, err = drawdownChart(rec, p)
	default:
		return nil, Overlay{}, fmt.Errorf("unknown chart view %q", kind)
	}
	if err != nil {
		return nil, Overlay{Text: unavailableText(kind)}, err
	}

	spec.Kind = kind
	spec.TextColor = p.text
	spec.GridColor = p.grid
	return spec, OverlayFor(kind, rec), nil
}

// OverlayFor derives the overlay text from the record's current scalar.
func OverlayFor(kind ViewKind, rec *models.AssetRecord) Overlay {
	switch kind {
	case ViewRelativePerf:
		v := rec.Metric(rec.RelativePerf1Y)
		if v == nil {
			return Overlay{Text: "1Y • Rel Perf: N/A"}
		}
		return Overlay{Text: "1Y • Rel Perf: " + common.FormatPercent(v), Class: render.SignClass(v)}
	case ViewRSI:
		v := rec.Metric(rec.RSI14)
		if v == nil {
			return Overlay{Text: "RSI: N/A"}
		}
		return Overlay{Text: "RSI: " + common.FormatNumber(v, 2), Class: render.RSIClass(v)}
	case ViewEMAShort:
		sig := rec.EMASignal.OrNeutral()
		return Overlay{Text: "6M • EMA Short Signal: " + string(sig), Class: render.SignalClass(sig)}
	case ViewEMALong:
		sig := rec.EMALongSignal.OrNeutral()
		return Overlay{Text: "1Y • EMA Long Signal: " + string(sig), Class: render.SignalClass(sig)}
	default:
		v := rec.Metric(rec.CurrentDrawdownPct)
		return Overlay{Text: "Drawdown: " + common.FormatPercent(v), Class: render.DrawdownClass(v)}
	}
}

func relativePerfChart(rec *models.AssetRecord, shared *models.HistorySeries, p palette) (*ChartSpec, error) {
	if !pairedSeries(rec.Asset1YHistoryDates, rec.Asset1YHistoryValues) {
		return nil, fmt.Errorf("%w: %s has no 1y performance history", ErrChartData, rec.Name)
	}
	if !shared.Valid() {
		return nil, fmt.Errorf("%w: reference history missing", ErrChartData)
	}

	lineColor := colorDown
	if trendUp(rec.Asset1YHistoryValues) {
		lineColor = colorUp
	}

	return &ChartSpec{
		Labels: rec.Asset1YHistoryDates,
		Datasets: []Dataset{
			{Label: rec.Label() + " Perf (%)", Data: rec.Asset1YHistoryValues, BorderColor: lineColor, BorderWidth: 1.5},
			{
				Label:       "SPY Perf (%)",
				Data:        ForwardFill(rec.Asset1YHistoryDates, shared.Dates, shared.Values),
				BorderColor: colorReference,
				BorderWidth: 1,
				BorderDash:  []int{4, 4},
			},
		},
		Legend: true,
	}, nil
}

func rsiChart(rec *models.AssetRecord, p palette) (*ChartSpec, error) {
	if !pairedSeries(rec.RSI1YHistoryDates, rec.RSI1YHistoryValues) {
		return nil, fmt.Errorf("%w: %s has no RSI history", ErrChartData, rec.Name)
	}
	return &ChartSpec{
		Labels: rec.RSI1YHistoryDates,
		Datasets: []Dataset{
			{Label: "RSI (14)", Data: rec.RSI1YHistoryValues, BorderColor: p.rsi, BorderWidth: 1.5},
		},
		Y: Axis{
			Min:      ptr(0),
			Max:      ptr(100),
			StepSize: 10,
			Bands: []Band{
				{Value: render.RSIOversold, Color: colorOversold},
				{Value: render.RSIOverbought, Color: colorOverbuy},
			},
		},
	}, nil
}

func emaChart(kind ViewKind, rec *models.AssetRecord, p palette) (*ChartSpec, error) {
	dates := rec.EMA1YHistoryDates
	first, second := rec.EMA13_1YHistoryValues, rec.EMA21_1YHistoryValues
	labels := [2]string{"EMA 13", "EMA 21"}
	colors := [2]string{p.emaShort1, p.emaShort2}
	if kind == ViewEMALong {
		first, second = rec.EMA50_1YHistoryValues, rec.EMA200_1YHistoryValues
		labels = [2]string{"EMA 50", "EMA 200"}
		colors = [2]string{p.emaLong1, p.emaLong2}
	}

	if !pairedSeries(dates, first) || !pairedSeries(dates, second) {
		return nil, fmt.Errorf("%w: %s has no %s history", ErrChartData, rec.Name, kind)
	}

	if kind == ViewEMAShort {
		start := Tail(len(dates), EMAShortWindow)
		dates, first, second = dates[start:], first[start:], second[start:]
	}

	return &ChartSpec{
		Labels: dates,
		Datasets: []Dataset{
			{Label: labels[0], Data: first, BorderColor: colors[0], BorderWidth: 1.5},
			{Label: labels[1], Data: second, BorderColor: colors[1], BorderWidth: 1.5},
		},
		Legend: true,
	}, nil
}

func drawdownChart(rec *models.AssetRecord, p palette) (*ChartSpec, error) {
	if !pairedSeries(rec.DrawdownHistoryDates, rec.DrawdownHistoryValues) {
		return nil, fmt.Errorf("%w: %s has no drawdown history", ErrChartData, rec.Name)
	}
	return &ChartSpec{
		Labels: rec.DrawdownHistoryDates,
		Datasets: []Dataset{
			{
				Label:           "Drawdown %",
				Data:            rec.DrawdownHistoryValues,
				BorderColor:     p.drawdown,
				BackgroundColor: p.drawdownBg,
				BorderWidth:     1.5,
				Fill:            true,
			},
		},
		Y: Axis{
			SuggestedMin: ptr(DrawdownAxisMin(rec.DrawdownHistoryValues)),
			Max:          ptr(0),
			TickSuffix:   "%",
		},
	}, nil
}
