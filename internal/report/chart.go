// Package report renders a store.Report as a chart, text, or export stub.
package report

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

const dayLabelLayout = "Mon 02"

// DayLabel formats a date as a short weekday label like "Mon 02".
func DayLabel(d civil.Date) string {
	return d.In(time.UTC).Format(dayLabelLayout)
}

// Title returns the report heading for the window size.
func Title(r store.Report) string {
	return fmt.Sprintf("Expense Report (Last %d Days)", len(r.Days))
}

// BarChartPNG renders daily totals as a bar chart.
// Returns PNG image as bytes.
func BarChartPNG(r store.Report) ([]byte, error) {
	if len(r.DailyTotals) == 0 {
		return nil, fmt.Errorf("report has no days to chart")
	}

	labels := make([]string, len(r.DailyTotals))
	values := make([]float64, len(r.DailyTotals))
	for i, dt := range r.DailyTotals {
		labels[i] = DayLabel(dt.Date)
		values[i] = majorUnits(dt.Amount)
	}

	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleOptionFunc(charts.TitleOption{
			Text: Title(r),
		}),
		charts.XAxisLabelsOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Spent"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// ChartFilename creates a filename like "report_2026-10-19.png".
func ChartFilename(r store.Report) string {
	return fmt.Sprintf("report_%s.png", r.Today)
}

func majorUnits(minor int64) float64 {
	return decimal.New(minor, -2).InexactFloat64()
}
