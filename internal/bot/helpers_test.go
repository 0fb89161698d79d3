package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/bot/mocks"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/config"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	testUserID = int64(123456)
	testChatID = int64(123456)
)

// testNow is a Monday evening in the test location.
var testNow = time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)

// testClock is a settable clock shared by a test bot and its store.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeSuggester returns a fixed suggestion or error.
type fakeSuggester struct {
	suggestion *gemini.CategorySuggestion
	err        error
	calls      int
}

func (f *fakeSuggester) SuggestCategory(_ context.Context, _ string, _ []string) (*gemini.CategorySuggestion, error) {
	f.calls++
	return f.suggestion, f.err
}

// setupTestBot creates a Bot backed by an in-memory store, a fixed clock and
// a MockBot as message sender. The Telegram client itself is not created.
func setupTestBot(t *testing.T) (*Bot, *mocks.MockBot, *testClock) {
	t.Helper()

	clock := &testClock{now: testNow}
	cfg := &config.Config{
		TelegramBotToken:    "test-token",
		WhitelistedUserIDs:  []int64{testUserID},
		DailySummaryEnabled: true,
		SummaryHour:         21,
		Timezone:            "UTC",
	}

	mockBot := mocks.NewMockBot()
	b := &Bot{
		cfg:           cfg,
		store:         store.New(store.WithClock(clock.Now), store.WithLocation(time.UTC)),
		tracer:        noop.NewTracerProvider().Tracer("test"),
		messageSender: mockBot,
		now:           clock.Now,
	}

	return b, mockBot, clock
}
