// Package store holds the in-memory expense log and answers aggregate queries
// over it.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
)

// ErrInvalidExpense is returned by Add when an expense breaks an invariant.
var ErrInvalidExpense = errors.New("invalid expense")

var zeroDate civil.Date

// Snapshot is the state of the store after one mutation. Snapshots handed to
// callers own their Expenses slice.
type Snapshot struct {
	Expenses   []models.Expense `json:"expenses"`
	TotalToday int64            `json:"total_today"`
	Today      civil.Date       `json:"today"`
	Version    uint64           `json:"version"`
}

// Option configures an ExpenseStore.
type Option func(*ExpenseStore)

// WithClock sets the time source used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseStore) {
		s.now = now
	}
}

// WithLocation sets the location calendar dates are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *ExpenseStore) {
		s.loc = loc
	}
}

// WithAddHook registers fn to run after every successful Add, outside the
// store's lock.
func WithAddHook(fn func(models.Expense)) Option {
	return func(s *ExpenseStore) {
		s.onAdd = append(s.onAdd, fn)
	}
}

// ExpenseStore owns the append-only expense log. Writers are serialized by mu;
// readers load the current snapshot without locking.
type ExpenseStore struct {
	mu    sync.Mutex
	state atomic.Pointer[Snapshot]

	now   func() time.Time
	loc   *time.Location
	onAdd []func(models.Expense)

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// New creates an empty ExpenseStore.
func New(opts ...Option) *ExpenseStore {
	s := &ExpenseStore{
		now:  time.Now,
		loc:  time.Local,
		subs: make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(&Snapshot{Expenses: []models.Expense{}, Today: s.Today()})
	return s
}

// Today returns the current calendar date in the store's location.
func (s *ExpenseStore) Today() civil.Date {
	return civil.DateOf(s.now().In(s.loc))
}

// Location returns the location calendar dates are evaluated in.
func (s *ExpenseStore) Location() *time.Location {
	return s.loc
}

// Add validates e, appends it and recomputes today's total. Subscribers see
// the new list and the new total in a single snapshot.
func (s *ExpenseStore) Add(e models.Expense) (models.Expense, error) {
	e, err := s.prepare(e)
	if err != nil {
		return models.Expense{}, err
	}

	s.mu.Lock()
	cur := s.state.Load()
	today := s.Today()

	// Readers only ever see cur.Expenses[:len], so appending in place is safe.
	items := append(cur.Expenses, e)

	total := cur.TotalToday
	if cur.Today != today {
		total = sumForDate(cur.Expenses, today)
	}
	if e.Date == today {
		total += e.Amount
	}

	next := &Snapshot{
		Expenses:   items,
		TotalToday: total,
		Today:      today,
		Version:    cur.Version + 1,
	}
	s.state.Store(next)
	s.publish(next)
	s.mu.Unlock()

	logger.Log.Debug().
		Str("expense_id", e.ID.String()).
		Str("category", e.Category).
		Int64("amount", e.Amount).
		Str("date", e.Date.String()).
		Uint64("version", next.Version).
		Msg("Expense added")

	for _, fn := range s.onAdd {
		fn(e)
	}
	return e, nil
}

// prepare enforces the expense invariants and fills generated fields.
func (s *ExpenseStore) prepare(e models.Expense) (models.Expense, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return e, fmt.Errorf("%w: title is blank", ErrInvalidExpense)
	}
	if e.Amount <= 0 {
		return e, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidExpense)
	}

	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	tsDate := civil.DateOf(e.Timestamp.In(s.loc))
	switch {
	case e.Date == zeroDate:
		e.Date = tsDate
	case e.Date != tsDate:
		return e, fmt.Errorf("%w: date %s does not match timestamp date %s", ErrInvalidExpense, e.Date, tsDate)
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return e, nil
}

// Refresh recomputes today's total for the current date and publishes a new
// snapshot if the date changed since the last mutation.
func (s *ExpenseStore) Refresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	today := s.Today()
	if cur.Today == today {
		return false
	}

	next := &Snapshot{
		Expenses:   cur.Expenses,
		TotalToday: sumForDate(cur.Expenses, today),
		Today:      today,
		Version:    cur.Version + 1,
	}
	s.state.Store(next)
	s.publish(next)

	logger.Log.Info().
		Str("today", today.String()).
		Int64("total_today", next.TotalToday).
		Msg("Expense store rolled over to a new day")
	return true
}

// Snapshot returns a copy of the current state.
func (s *ExpenseStore) Snapshot() Snapshot {
	return external(s.state.Load())
}

// Expenses returns a copy of every stored expense in insertion order.
func (s *ExpenseStore) Expenses() []models.Expense {
	cur := s.state.Load()
	out := make([]models.Expense, len(cur.Expenses))
	copy(out, cur.Expenses)
	return out
}

// Len returns the number of stored expenses.
func (s *ExpenseStore) Len() int {
	return len(s.state.Load().Expenses)
}

// TodayView is today's expenses and their total, read from one snapshot.
type TodayView struct {
	Date     civil.Date
	Expenses []models.Expense
	Total    int64
}

// TodayView returns today's entries in insertion order together with their
// total. Both come from the same snapshot, so Total always covers Expenses.
func (s *ExpenseStore) TodayView() TodayView {
	today := s.Today()
	cur := s.state.Load()

	entries := FilterByDate(cur.Expenses, today)
	total := cur.TotalToday
	if cur.Today != today {
		total = SumAmounts(entries)
	}
	return TodayView{Date: today, Expenses: entries, Total: total}
}

// TotalSpentToday returns the sum of amounts dated today. The cached total is
// used while its date is still today.
func (s *ExpenseStore) TotalSpentToday() int64 {
	cur := s.state.Load()
	today := s.Today()
	if cur.Today == today {
		return cur.TotalToday
	}
	return sumForDate(cur.Expenses, today)
}

// ListForDate returns the expenses dated d in insertion order.
func (s *ExpenseStore) ListForDate(d civil.Date) []models.Expense {
	return FilterByDate(s.state.Load().Expenses, d)
}

// GroupByCategory groups entries by category.
func (s *ExpenseStore) GroupByCategory(entries []models.Expense) []CategoryGroup {
	return GroupByCategory(entries)
}

// SortByTimestampDescending orders entries newest first.
func (s *ExpenseStore) SortByTimestampDescending(entries []models.Expense) []models.Expense {
	return SortByTimestampDescending(entries)
}

// DailyTotals sums stored amounts for each of days.
func (s *ExpenseStore) DailyTotals(days []civil.Date) []DayTotal {
	return DailyTotals(s.state.Load().Expenses, days)
}

// CategoryTotals sums stored amounts per category for entries dated on or
// after since.
func (s *ExpenseStore) CategoryTotals(since civil.Date) []CategoryTotal {
	return CategoryTotals(s.state.Load().Expenses, since)
}

// Report builds the aggregate report for the days-long window ending today.
func (s *ExpenseStore) Report(days int) Report {
	return BuildReport(s.state.Load().Expenses, s.Today(), days)
}

// RefreshEvery calls Refresh on every tick of interval until ctx is done.
func (s *ExpenseStore) RefreshEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh()
		}
	}
}

// external copies snap for a caller. Add appends to the shared backing array
// in place, so callers never get it.
func external(snap *Snapshot) Snapshot {
	out := *snap
	out.Expenses = slices.Clone(snap.Expenses)
	return out
}
