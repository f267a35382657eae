package export

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"tally/internal/report"
)

// CategoryPie renders a category breakdown as a pie chart PNG. Returns nil
// bytes when there is nothing to draw.
func CategoryPie(entries []report.BreakdownEntry) ([]byte, error) {
	values := make([]chart.Value, 0, len(entries))
	for _, e := range entries {
		if e.Amount.Cents <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", e.Category.Name, e.Percent),
			Value: e.Amount.Units(),
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// DailyBars renders a daily total series as a bar chart PNG. Returns nil
// bytes when every day is empty.
func DailyBars(points []report.DailyPoint) ([]byte, error) {
	bars := make([]chart.Value, 0, len(points))
	hasData := false
	for _, p := range points {
		if p.Total.Cents != 0 {
			hasData = true
		}
		bars = append(bars, chart.Value{
			Label: p.Day.Start.Format("02"),
			Value: p.Total.Units(),
		})
	}
	if !hasData {
		return nil, nil
	}

	graph := chart.BarChart{
		Width:    1200,
		Height:   400,
		BarWidth: 20,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
