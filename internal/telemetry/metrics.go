package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
)

// Metric names.
const (
	MetricExpensesAdded   = "expenses.added"
	MetricAmountAdded     = "expenses.amount"
	MetricReportsRendered = "reports.rendered"
	MetricTotalToday      = "expenses.today.total"
)

// TodayTotaler reports the running total for the current day.
type TodayTotaler interface {
	TotalSpentToday() int64
}

// Metrics records expense tracker counters.
type Metrics struct {
	expensesAdded   metric.Int64Counter
	amountAdded     metric.Int64Counter
	reportsRendered metric.Int64Counter
}

// NewMetrics creates the instruments on meter. When totals is non-nil a
// gauge of today's total is registered against it.
func NewMetrics(meter metric.Meter, totals TodayTotaler) (*Metrics, error) {
	added, err := meter.Int64Counter(MetricExpensesAdded,
		metric.WithDescription("Number of expenses recorded"),
		metric.WithUnit("{expense}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricExpensesAdded, err)
	}

	amount, err := meter.Int64Counter(MetricAmountAdded,
		metric.WithDescription("Sum of recorded expense amounts in minor units"),
		metric.WithUnit("{paise}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricAmountAdded, err)
	}

	reports, err := meter.Int64Counter(MetricReportsRendered,
		metric.WithDescription("Number of reports rendered by kind"),
		metric.WithUnit("{report}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricReportsRendered, err)
	}

	if totals != nil {
		_, err = meter.Int64ObservableGauge(MetricTotalToday,
			metric.WithDescription("Total spent today in minor units"),
			metric.WithUnit("{paise}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(totals.TotalSpentToday())
				return nil
			}))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s gauge: %w", MetricTotalToday, err)
		}
	}

	return &Metrics{
		expensesAdded:   added,
		amountAdded:     amount,
		reportsRendered: reports,
	}, nil
}

// RecordExpense counts one stored expense. It matches the store add hook.
func (m *Metrics) RecordExpense(e models.Expense) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("category", e.Category),
		attribute.Bool("receipt", e.HasReceipt()),
	)
	ctx := context.Background()
	m.expensesAdded.Add(ctx, 1, attrs)
	m.amountAdded.Add(ctx, e.Amount, attrs)
}

// RecordReport counts a rendered report of the given kind such as chart or export.
func (m *Metrics) RecordReport(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.reportsRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
