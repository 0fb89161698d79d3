package store

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"pgregory.net/rapid"
)

var testCategories = []string{"Staff", "Travel", "Food", "Utility"}

// expenseGen draws expenses dated within ten days before testNow.
func expenseGen() *rapid.Generator[models.Expense] {
	return rapid.Custom(func(t *rapid.T) models.Expense {
		daysBack := rapid.IntRange(0, 9).Draw(t, "days_back")
		minutes := rapid.IntRange(0, 600).Draw(t, "minutes")
		ts := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC).
			AddDate(0, 0, -daysBack).
			Add(time.Duration(minutes) * time.Minute)
		return models.Expense{
			Title:     rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(t, "title"),
			Amount:    rapid.Int64Range(1, 1_000_000).Draw(t, "amount"),
			Category:  rapid.SampledFrom(testCategories).Draw(t, "category"),
			Timestamp: ts,
			Date:      civil.DateOf(ts),
		}
	})
}

func TestTrailingDays(t *testing.T) {
	t.Parallel()

	today := civil.Date{Year: 2026, Month: time.March, Day: 2}
	days := TrailingDays(today, 7)
	require.Len(t, days, 7)
	require.Equal(t, civil.Date{Year: 2026, Month: time.February, Day: 24}, days[0])
	require.Equal(t, today, days[6])
	for i := 1; i < len(days); i++ {
		require.Equal(t, days[i-1].AddDays(1), days[i])
	}

	require.Empty(t, TrailingDays(today, 0))
}

func TestSortByTimestampDescending(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	entries := []models.Expense{
		{Title: "early", Amount: 1, Timestamp: base},
		{Title: "late", Amount: 2, Timestamp: base.Add(2 * time.Hour)},
		{Title: "tie-a", Amount: 3, Timestamp: base.Add(time.Hour)},
		{Title: "tie-b", Amount: 4, Timestamp: base.Add(time.Hour)},
	}

	sorted := SortByTimestampDescending(entries)
	require.Equal(t, []int64{2, 3, 4, 1}, amounts(sorted))
	require.Equal(t, []int64{1, 2, 3, 4}, amounts(entries), "input must not be reordered")
}

func TestDailyTotals(t *testing.T) {
	t.Parallel()

	today := civil.DateOf(testNow)
	entries := []models.Expense{
		{Amount: 100, Date: today},
		{Amount: 250, Date: today.AddDays(-2)},
		{Amount: 50, Date: today},
		{Amount: 999, Date: today.AddDays(-30)},
	}

	totals := DailyTotals(entries, TrailingDays(today, 7))
	require.Len(t, totals, 7)
	require.Equal(t, int64(150), totals[6].Amount)
	require.Equal(t, int64(250), totals[4].Amount)
	require.Equal(t, int64(0), totals[0].Amount)
}

func TestCategoryTotals(t *testing.T) {
	t.Parallel()

	today := civil.DateOf(testNow)
	entries := []models.Expense{
		{Category: "Travel", Amount: 5000, Date: today.AddDays(-1)},
		{Category: "Staff", Amount: 500000, Date: today.AddDays(-10)},
		{Category: "Food", Amount: 1500, Date: today},
		{Category: "Travel", Amount: 700, Date: today.AddDays(-6)},
	}

	got := CategoryTotals(entries, today.AddDays(-6))
	require.Equal(t, []CategoryTotal{
		{Category: "Travel", Amount: 5700},
		{Category: "Food", Amount: 1500},
	}, got)
}

func TestBuildReport(t *testing.T) {
	t.Parallel()

	today := civil.DateOf(testNow)
	entries := []models.Expense{
		{Category: "Food", Amount: 1500, Date: today},
		{Category: "Travel", Amount: 5000, Date: today.AddDays(-1)},
		{Category: "Food", Amount: 700, Date: today.AddDays(-2)},
		{Category: "Utility", Amount: 12000, Date: today.AddDays(-3)},
		{Category: "Staff", Amount: 500000, Date: today.AddDays(-4)},
		{Category: "Staff", Amount: 1, Date: today.AddDays(-7)},
	}

	t.Run("default window is seven days", func(t *testing.T) {
		t.Parallel()
		r := BuildReport(entries, today, 0)
		require.Len(t, r.Days, ReportDays)
		require.Len(t, r.DailyTotals, ReportDays)
		require.Equal(t, today, r.Days[len(r.Days)-1])
		require.Equal(t, int64(519200), r.Total)
		require.Equal(t, int64(500000), r.MaxDaily)
		require.Equal(t, []CategoryTotal{
			{Category: "Food", Amount: 2200},
			{Category: "Travel", Amount: 5000},
			{Category: "Utility", Amount: 12000},
			{Category: "Staff", Amount: 500000},
		}, r.CategoryTotals)
	})

	t.Run("window is capped", func(t *testing.T) {
		t.Parallel()
		r := BuildReport(entries, today, 400)
		require.Len(t, r.Days, MaxReportDays)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		r := BuildReport(nil, today, 7)
		require.Len(t, r.DailyTotals, 7)
		require.Zero(t, r.Total)
		require.Zero(t, r.MaxDaily)
		require.Empty(t, r.CategoryTotals)
	})
}

func TestProperties_TotalSpentTodayMatchesList(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clock := newFakeClock(testNow)
		s := New(WithClock(clock.Now), WithLocation(time.UTC))
		entries := rapid.SliceOfN(expenseGen(), 0, 40).Draw(t, "entries")

		var want int64
		today := civil.DateOf(testNow)
		for _, e := range entries {
			if _, err := s.Add(e); err != nil {
				t.Fatalf("add: %v", err)
			}
			if e.Date == today {
				want += e.Amount
			}
			if got := s.TotalSpentToday(); got != want {
				t.Fatalf("total after add = %d, want %d", got, want)
			}
		}
	})
}

func TestProperties_ListForDatePreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := rapid.SliceOfN(expenseGen(), 0, 40).Draw(t, "entries")
		d := civil.DateOf(testNow).AddDays(-rapid.IntRange(0, 9).Draw(t, "day"))

		got := FilterByDate(entries, d)
		j := 0
		for _, e := range entries {
			if e.Date != d {
				continue
			}
			if j >= len(got) || got[j] != e {
				t.Fatalf("entry %d out of order", j)
			}
			j++
		}
		if j != len(got) {
			t.Fatalf("got %d entries, want %d", len(got), j)
		}
	})
}

func TestProperties_GroupByCategoryKeepsInsertionOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := rapid.SliceOfN(expenseGen(), 0, 40).Draw(t, "entries")
		groups := GroupByCategory(entries)

		count := 0
		seen := map[string]bool{}
		for _, g := range groups {
			if seen[g.Category] {
				t.Fatalf("category %q grouped twice", g.Category)
			}
			seen[g.Category] = true

			var want []models.Expense
			for _, e := range entries {
				if e.Category == g.Category {
					want = append(want, e)
				}
			}
			if len(want) != len(g.Expenses) {
				t.Fatalf("group %q has %d entries, want %d", g.Category, len(g.Expenses), len(want))
			}
			for i := range want {
				if want[i] != g.Expenses[i] {
					t.Fatalf("group %q entry %d out of order", g.Category, i)
				}
			}
			count += len(g.Expenses)
		}
		if count != len(entries) {
			t.Fatalf("grouped %d entries, want %d", count, len(entries))
		}
	})
}

func TestProperties_DailyTotalsCoversEveryDay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := rapid.SliceOfN(expenseGen(), 0, 40).Draw(t, "entries")
		n := rapid.IntRange(1, 14).Draw(t, "days")
		days := TrailingDays(civil.DateOf(testNow), n)

		totals := DailyTotals(entries, days)
		if len(totals) != n {
			t.Fatalf("got %d totals, want %d", len(totals), n)
		}
		for i, dt := range totals {
			if dt.Date != days[i] {
				t.Fatalf("total %d is for %s, want %s", i, dt.Date, days[i])
			}
			if want := SumAmounts(FilterByDate(entries, days[i])); dt.Amount != want {
				t.Fatalf("total for %s = %d, want %d", dt.Date, dt.Amount, want)
			}
		}
	})
}

func TestProperties_CategoryTotalsSumToWindow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := rapid.SliceOfN(expenseGen(), 0, 40).Draw(t, "entries")
		since := civil.DateOf(testNow).AddDays(-rapid.IntRange(0, 9).Draw(t, "since"))

		var want int64
		for _, e := range entries {
			if !e.Date.Before(since) {
				want += e.Amount
			}
		}

		var got int64
		for _, ct := range CategoryTotals(entries, since) {
			if ct.Amount <= 0 {
				t.Fatalf("category %q has non-positive total %d", ct.Category, ct.Amount)
			}
			got += ct.Amount
		}
		if got != want {
			t.Fatalf("category totals sum to %d, want %d", got, want)
		}
	})
}
