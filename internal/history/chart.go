package history

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/wonny/divcal/internal/contracts"
)

// ChartMode selects annual totals or one bar per event
type ChartMode string

const (
	ChartAnnual ChartMode = "annual"
	ChartDetail ChartMode = "detail"
)

// ErrEmptyChart is returned when there is nothing to plot
var ErrEmptyChart = errors.New("no cash dividends to chart")

// ParseChartMode defaults to annual for unknown input.
func ParseChartMode(s string) ChartMode {
	if ChartMode(s) == ChartDetail {
		return ChartDetail
	}
	return ChartAnnual
}

type bar struct {
	label string
	value float64
}

// chartBars builds the bars for mode; only events with a pay date and a
// positive cash dividend are plotted.
func chartBars(records []contracts.DividendRecord, mode ChartMode) []bar {
	paid := make([]contracts.DividendRecord, 0, len(records))
	for _, r := range records {
		if r.PayDate != nil && r.CashDividend > 0 {
			paid = append(paid, r)
		}
	}

	bars := make([]bar, 0, len(paid))
	if mode == ChartDetail {
		for _, p := range DetailSeries(paid) {
			bars = append(bars, bar{label: p.Label, value: p.CashDividend})
		}
		return bars
	}

	for _, a := range AggregateByYear(paid) {
		bars = append(bars, bar{label: a.Year, value: a.TotalCash})
	}
	return bars
}

// RenderChart renders the cash dividend trend as a PNG bar chart.
// The newest bar is highlighted.
func RenderChart(records []contracts.DividendRecord, mode ChartMode) ([]byte, error) {
	bars := chartBars(records, mode)
	if len(bars) == 0 {
		return nil, ErrEmptyChart
	}

	maxValue := 0.0
	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		color := drawing.ColorFromHex("93c5fd") // blue-300
		if i == len(bars)-1 {
			color = drawing.ColorFromHex("3b82f6") // blue-500
		}
		values[i] = chart.Value{
			Label: b.label,
			Value: b.value,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		}
		if b.value > maxValue {
			maxValue = b.value
		}
	}

	barWidth, barSpacing := 40, 20
	if len(bars) > 12 {
		barWidth, barSpacing = 20, 10
	}
	width := 900
	if need := len(bars)*(barWidth+barSpacing) + 120; need > width {
		width = need
	}

	graph := chart.BarChart{
		Title:      "Cash Dividends",
		Width:      width,
		Height:     400,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
