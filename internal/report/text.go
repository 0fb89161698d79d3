package report

import (
	"fmt"
	"strings"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

// DefaultBarWidth is the width of the longest bar in TextBars.
const DefaultBarWidth = 12

const barRune = "█"

// TextBars renders one line per day with a bar scaled to the busiest day.
// An all-zero window renders empty bars.
func TextBars(r store.Report, width int) []string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	maxDaily := r.MaxDaily
	if maxDaily <= 0 {
		maxDaily = 1
	}

	lines := make([]string, 0, len(r.DailyTotals))
	for _, dt := range r.DailyTotals {
		n := int(dt.Amount * int64(width) / maxDaily)
		if n == 0 && dt.Amount > 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("%s %-*s %s",
			DayLabel(dt.Date), width, strings.Repeat(barRune, n), models.FormatAmount(dt.Amount)))
	}
	return lines
}

// ShareText is the plain-text summary handed to a share target.
func ShareText(r store.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Expense report (last %d days)\n", len(r.Days))
	if len(r.Days) > 0 {
		fmt.Fprintf(&sb, "%s to %s\n", r.Days[0], r.Days[len(r.Days)-1])
	}

	sb.WriteString("\nDaily totals:\n")
	for _, dt := range r.DailyTotals {
		fmt.Fprintf(&sb, "%s: %s\n", DayLabel(dt.Date), models.FormatAmount(dt.Amount))
	}

	sb.WriteString("\nBy category:\n")
	if len(r.CategoryTotals) == 0 {
		sb.WriteString("No expenses\n")
	}
	for _, ct := range r.CategoryTotals {
		fmt.Fprintf(&sb, "%s: %s\n", ct.Category, models.FormatAmount(ct.Amount))
	}

	fmt.Fprintf(&sb, "\nTotal: %s", models.FormatAmount(r.Total))
	return sb.String()
}
