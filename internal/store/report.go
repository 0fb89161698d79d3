package store

import (
	"cloud.google.com/go/civil"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
)

// ReportDays is the default report window.
const ReportDays = 7

// MaxReportDays bounds the window a caller may request.
const MaxReportDays = 31

// Report is the aggregate view over a trailing window of days.
type Report struct {
	Today          civil.Date      `json:"today"`
	Days           []civil.Date    `json:"days"`
	DailyTotals    []DayTotal      `json:"daily_totals"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
	// Total is the sum of DailyTotals.
	Total    int64 `json:"total"`
	MaxDaily int64 `json:"max_daily"`
}

// BuildReport aggregates entries over the days-long window ending on today.
// Category totals cover every entry dated on or after the first day.
func BuildReport(entries []models.Expense, today civil.Date, days int) Report {
	if days <= 0 {
		days = ReportDays
	}
	if days > MaxReportDays {
		days = MaxReportDays
	}

	window := TrailingDays(today, days)
	daily := DailyTotals(entries, window)

	r := Report{
		Today:          today,
		Days:           window,
		DailyTotals:    daily,
		CategoryTotals: CategoryTotals(entries, window[0]),
	}
	for _, d := range daily {
		r.Total += d.Amount
		if d.Amount > r.MaxDaily {
			r.MaxDaily = d.Amount
		}
	}
	return r
}
