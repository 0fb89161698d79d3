package store

import (
	"slices"

	"cloud.google.com/go/civil"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
)

// CategoryGroup holds the expenses of one category in insertion order.
type CategoryGroup struct {
	Category string           `json:"category"`
	Expenses []models.Expense `json:"expenses"`
}

// DayTotal is the sum of amounts for one calendar date.
type DayTotal struct {
	Date   civil.Date `json:"date"`
	Amount int64      `json:"amount"`
}

// CategoryTotal is the sum of amounts for one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

// FilterByDate returns the entries dated d, in their original order.
func FilterByDate(entries []models.Expense, d civil.Date) []models.Expense {
	out := make([]models.Expense, 0)
	for i := range entries {
		if entries[i].Date == d {
			out = append(out, entries[i])
		}
	}
	return out
}

// SumAmounts adds up the amounts of entries.
func SumAmounts(entries []models.Expense) int64 {
	var total int64
	for i := range entries {
		total += entries[i].Amount
	}
	return total
}

// sumForDate is FilterByDate followed by SumAmounts without the allocation.
func sumForDate(entries []models.Expense, d civil.Date) int64 {
	var total int64
	for i := range entries {
		if entries[i].Date == d {
			total += entries[i].Amount
		}
	}
	return total
}

// GroupByCategory groups entries by category. Groups appear in the order their
// category was first seen and keep insertion order inside each group.
func GroupByCategory(entries []models.Expense) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := make(map[string]int)
	for i := range entries {
		cat := entries[i].Category
		pos, ok := index[cat]
		if !ok {
			pos = len(groups)
			index[cat] = pos
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[pos].Expenses = append(groups[pos].Expenses, entries[i])
	}
	return groups
}

// SortByTimestampDescending returns a copy of entries ordered newest first.
// Entries with equal timestamps keep their relative order.
func SortByTimestampDescending(entries []models.Expense) []models.Expense {
	out := slices.Clone(entries)
	if out == nil {
		out = make([]models.Expense, 0)
	}
	slices.SortStableFunc(out, func(a, b models.Expense) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// DailyTotals returns one total per requested date, in the requested order.
// Dates without entries total zero.
func DailyTotals(entries []models.Expense, days []civil.Date) []DayTotal {
	out := make([]DayTotal, len(days))
	for i, d := range days {
		out[i] = DayTotal{Date: d, Amount: sumForDate(entries, d)}
	}
	return out
}

// CategoryTotals sums amounts per category over entries dated on or after
// since. Categories appear in first-seen order; categories without matching
// entries are omitted.
func CategoryTotals(entries []models.Expense, since civil.Date) []CategoryTotal {
	out := make([]CategoryTotal, 0)
	index := make(map[string]int)
	for i := range entries {
		if entries[i].Date.Before(since) {
			continue
		}
		cat := entries[i].Category
		pos, ok := index[cat]
		if !ok {
			pos = len(out)
			index[cat] = pos
			out = append(out, CategoryTotal{Category: cat})
		}
		out[pos].Amount += entries[i].Amount
	}
	return out
}

// TrailingDays returns the n calendar days ending on today, oldest first.
func TrailingDays(today civil.Date, n int) []civil.Date {
	if n <= 0 {
		return []civil.Date{}
	}
	days := make([]civil.Date, n)
	for i := range n {
		days[i] = today.AddDays(i - n + 1)
	}
	return days
}
