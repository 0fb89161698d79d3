//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/report"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

func main() {
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	st := store.New(
		store.WithClock(func() time.Time { return now }),
		store.WithLocation(time.UTC),
	)

	samples := []struct {
		title    string
		amount   int64
		category string
		daysAgo  int
	}{
		{"Groceries", 150050, models.CategoryFood, 6},
		{"Dinner out", 130050, models.CategoryFood, 4},
		{"Metro card", 60000, models.CategoryTravel, 3},
		{"Cleaner", 25000, models.CategoryStaff, 2},
		{"Electricity", 120000, models.CategoryUtility, 1},
		{"Taxi", 25000, models.CategoryTravel, 0},
	}
	for _, s := range samples {
		_, err := st.Add(models.Expense{
			Title:     s.title,
			Amount:    s.amount,
			Category:  s.category,
			Timestamp: now.AddDate(0, 0, -s.daysAgo),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	chartData, err := report.BarChartPNG(st.Report(store.ReportDays))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example 7-day expense report chart")
}
