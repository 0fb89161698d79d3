package bot

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/bot/mocks"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/gemini"
	appmodels "gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

// addTestExpense stores an expense directly, bypassing the handlers.
func addTestExpense(t *testing.T, b *Bot, title string, amount int64, category string, ts time.Time) {
	t.Helper()
	_, err := b.store.Add(appmodels.Expense{
		Title:     title,
		Amount:    amount,
		Category:  category,
		Timestamp: ts,
	})
	require.NoError(t, err)
}

func at(day, hour int) time.Time {
	return time.Date(2026, 10, day, hour, 0, 0, 0, time.UTC)
}

func TestHandleStartCore(t *testing.T) {
	t.Parallel()

	t.Run("greets user by first name", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		update := mocks.MessageUpdate(testChatID, testUserID, "/start",
			mocks.FromUser(testUserID, "alice", "Alice <3"))
		b.handleStartCore(context.Background(), mockBot, update)

		msg := mockBot.LastSentMessage()
		require.NotNil(t, msg)
		require.Contains(t, msg.Text, "Welcome, Alice &lt;3!")
		require.Equal(t, models.ParseModeHTML, msg.ParseMode)
	})

	t.Run("nil message is ignored", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handleStartCore(context.Background(), mockBot, &models.Update{})
		require.Zero(t, mockBot.SentMessageCount())
	})
}

func TestHandleHelpCore(t *testing.T) {
	t.Parallel()
	b, mockBot, _ := setupTestBot(t)

	b.handleHelpCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/help"))

	msg := mockBot.LastSentMessage()
	require.NotNil(t, msg)
	for _, cmd := range []string{"/add", "/today", "/list", "/report", "/chart", "/export", "/share", "/categories"} {
		require.Contains(t, msg.Text, cmd)
	}
}

func TestHandleCategoriesCore(t *testing.T) {
	t.Parallel()
	b, mockBot, _ := setupTestBot(t)

	b.handleCategoriesCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/categories"))

	msg := mockBot.LastSentMessage()
	require.NotNil(t, msg)
	for _, cat := range appmodels.Categories {
		require.Contains(t, msg.Text, cat)
	}
	require.Contains(t, msg.Text, "Staff (default)")
}

func TestHandleAddCore(t *testing.T) {
	t.Parallel()

	t.Run("adds expense with parsed category", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handleAddCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/add 250 Taxi Travel | airport"))

		expenses := b.store.Expenses()
		require.Len(t, expenses, 1)
		require.Equal(t, "Taxi", expenses[0].Title)
		require.Equal(t, int64(25000), expenses[0].Amount)
		require.Equal(t, appmodels.CategoryTravel, expenses[0].Category)
		require.Equal(t, "airport", expenses[0].Notes)

		msg := mockBot.LastSentMessage()
		require.NotNil(t, msg)
		require.Contains(t, msg.Text, "Expense Added")
		require.Contains(t, msg.Text, "₹250.00")
		require.Contains(t, msg.Text, "🗒️ airport")
		require.Contains(t, msg.Text, "Today: <b>₹250.00</b>")
	})

	t.Run("defaults to Staff without suggester", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handleAddCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/add 100 Cleaner"))

		expenses := b.store.Expenses()
		require.Len(t, expenses, 1)
		require.Equal(t, appmodels.DefaultCategory, expenses[0].Category)
	})

	t.Run("escapes title in confirmation", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handleAddCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/add 10 <b>Tea</b>"))

		msg := mockBot.LastSentMessage()
		require.Contains(t, msg.Text, "&lt;b&gt;Tea&lt;/b&gt;")
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handleAddCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/add Coffee"))

		require.Zero(t, b.store.Len())
		require.Contains(t, mockBot.LastSentMessage().Text, "Invalid format")
	})
}

func TestResolveCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		suggester *fakeSuggester
		parsed    *ParsedExpense
		want      string
		wantCalls int
	}{
		{
			name:      "parsed category wins",
			suggester: &fakeSuggester{suggestion: &gemini.CategorySuggestion{Category: "Food", Confidence: 0.9}},
			parsed:    &ParsedExpense{Title: "Taxi", CategoryName: appmodels.CategoryTravel},
			want:      appmodels.CategoryTravel,
			wantCalls: 0,
		},
		{
			name:      "confident suggestion is applied",
			suggester: &fakeSuggester{suggestion: &gemini.CategorySuggestion{Category: "food", Confidence: 0.9}},
			parsed:    &ParsedExpense{Title: "Lunch"},
			want:      appmodels.CategoryFood,
			wantCalls: 1,
		},
		{
			name:      "low confidence falls back to default",
			suggester: &fakeSuggester{suggestion: &gemini.CategorySuggestion{Category: "Food", Confidence: 0.5}},
			parsed:    &ParsedExpense{Title: "Lunch"},
			want:      appmodels.DefaultCategory,
			wantCalls: 1,
		},
		{
			name:      "unknown category falls back to default",
			suggester: &fakeSuggester{suggestion: &gemini.CategorySuggestion{Category: "Luxury", Confidence: 0.99}},
			parsed:    &ParsedExpense{Title: "Watch"},
			want:      appmodels.DefaultCategory,
			wantCalls: 1,
		},
		{
			name:      "suggester error falls back to default",
			suggester: &fakeSuggester{err: errors.New("quota exceeded")},
			parsed:    &ParsedExpense{Title: "Lunch"},
			want:      appmodels.DefaultCategory,
			wantCalls: 1,
		},
		{
			name:      "nil suggestion falls back to default",
			suggester: &fakeSuggester{},
			parsed:    &ParsedExpense{Title: "Lunch"},
			want:      appmodels.DefaultCategory,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, _, _ := setupTestBot(t)
			b.suggester = tt.suggester

			require.Equal(t, tt.want, b.resolveCategory(context.Background(), tt.parsed))
			require.Equal(t, tt.wantCalls, tt.suggester.calls)
		})
	}
}

func TestSaveExpenseCore_SendError(t *testing.T) {
	t.Parallel()
	b, mockBot, _ := setupTestBot(t)
	mockBot.SendMessageError = errors.New("network down")

	b.saveExpenseCore(context.Background(), mockBot, testChatID, &ParsedExpense{Amount: 500, Title: "Tea"}, "")

	require.Equal(t, 1, b.store.Len())
}

func TestHandleFreeTextExpenseCore(t *testing.T) {
	t.Parallel()

	t.Run("recognized expense is saved", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		ok := b.handleFreeTextExpenseCore(context.Background(), mockBot, mocks.MessageUpdate(testChatID, testUserID, "15 Lunch Food"))

		require.True(t, ok)
		require.Equal(t, 1, b.store.Len())
		require.Equal(t, int64(1500), b.store.TotalSpentToday())
	})

	t.Run("commands are not parsed", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		ok := b.handleFreeTextExpenseCore(context.Background(), mockBot, mocks.MessageUpdate(testChatID, testUserID, "/unknown 15 Lunch"))

		require.False(t, ok)
		require.Zero(t, mockBot.SentMessageCount())
	})

	t.Run("non expense text", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		ok := b.handleFreeTextExpenseCore(context.Background(), mockBot, mocks.MessageUpdate(testChatID, testUserID, "hello there"))

		require.False(t, ok)
		require.Zero(t, b.store.Len())
	})
}

func TestDefaultHandlerCore(t *testing.T) {
	t.Parallel()

	t.Run("free text expense", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.defaultHandlerCore(context.Background(), mockBot, mocks.MessageUpdate(testChatID, testUserID, "5.50 Coffee"))

		require.Equal(t, 1, b.store.Len())
		require.Contains(t, mockBot.LastSentMessage().Text, "Expense Added")
	})

	t.Run("unrecognized text", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.defaultHandlerCore(context.Background(), mockBot, mocks.MessageUpdate(testChatID, testUserID, "what?"))

		require.Contains(t, mockBot.LastSentMessage().Text, "I didn't understand that")
	})

	t.Run("photo is routed to receipt handler", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.defaultHandlerCore(context.Background(), mockBot, mocks.PhotoUpdate(testChatID, testUserID, "photo-1", "80 Bus Travel"))

		expenses := b.store.Expenses()
		require.Len(t, expenses, 1)
		require.Equal(t, "tg-file:photo-1", expenses[0].ReceiptURI)
	})

	t.Run("callback only update is ignored", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.defaultHandlerCore(context.Background(), mockBot, mocks.CallbackQueryUpdate(testChatID, testUserID, 1, "x"))

		require.Zero(t, mockBot.SentMessageCount())
	})
}

func TestHandlePhotoCore(t *testing.T) {
	t.Parallel()

	t.Run("caption creates expense with receipt", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handlePhotoCore(context.Background(), mockBot, mocks.PhotoUpdate(testChatID, testUserID, "photo-123", "50 Lunch Food"))

		expenses := b.store.Expenses()
		require.Len(t, expenses, 1)
		require.Equal(t, "tg-file:photo-123", expenses[0].ReceiptURI)
		require.Equal(t, appmodels.CategoryFood, expenses[0].Category)
		require.Contains(t, mockBot.LastSentMessage().Text, "Receipt attached")
	})

	t.Run("missing caption sends usage hint", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handlePhotoCore(context.Background(), mockBot, mocks.PhotoUpdate(testChatID, testUserID, "photo-123", ""))

		require.Zero(t, b.store.Len())
		require.Contains(t, mockBot.LastSentMessage().Text, "send the photo with the expense as its caption")
	})
}

func TestReceiptURI(t *testing.T) {
	t.Parallel()

	require.Empty(t, receiptURI(nil))
	require.Equal(t, "tg-file:big", receiptURI([]models.PhotoSize{
		{FileID: "big", Width: 1280, Height: 960},
		{FileID: "small", Width: 90, Height: 90},
	}))
}

func TestHandleTodayCore(t *testing.T) {
	t.Parallel()

	t.Run("no expenses", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		b.handleTodayCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/today"))

		msg := mockBot.LastSentMessage()
		require.Contains(t, msg.Text, "No expenses recorded today")
		require.Contains(t, msg.Text, "₹0.00")
	})

	t.Run("lists only today newest first", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)
		addTestExpense(t, b, "Breakfast", 1500, appmodels.CategoryFood, at(19, 8))
		addTestExpense(t, b, "Taxi", 25000, appmodels.CategoryTravel, at(19, 10))
		addTestExpense(t, b, "Yesterday", 9900, appmodels.CategoryFood, at(18, 10))

		b.handleTodayCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/today"))

		text := mockBot.LastSentMessage().Text
		require.NotContains(t, text, "Yesterday")
		require.Less(t, strings.Index(text, "Taxi"), strings.Index(text, "Breakfast"))
		require.Contains(t, text, "Total spent today: <b>₹265.00</b>")
	})

	t.Run("add during the read keeps list and total together", func(t *testing.T) {
		t.Parallel()
		b, mockBot, _ := setupTestBot(t)

		var armed, inAdd atomic.Bool
		b.store = store.New(store.WithLocation(time.UTC), store.WithClock(func() time.Time {
			if armed.Load() && !inAdd.Load() {
				inAdd.Store(true)
				_, _ = b.store.Add(appmodels.Expense{Title: "Coffee", Amount: 5000, Category: appmodels.CategoryFood, Timestamp: testNow})
				inAdd.Store(false)
			}
			return testNow
		}))

		armed.Store(true)
		b.handleTodayCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/today"))
		armed.Store(false)

		text := mockBot.LastSentMessage().Text
		n := strings.Count(text, "Coffee")
		require.Positive(t, n)
		require.Contains(t, text, "Total spent today: <b>"+appmodels.FormatAmount(int64(n)*5000)+"</b>")
	})
}

func TestHandleExportCore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "default pdf", text: "/export", want: []string{"Simulating PDF export...", "expense_report_2026-10-19.pdf"}},
		{name: "csv", text: "/export csv", want: []string{"Simulating CSV export...", "expense_report_2026-10-19.csv"}},
		{name: "upper case", text: "/export PDF", want: []string{"Simulating PDF export..."}},
		{name: "unsupported", text: "/export xls", want: []string{"Unsupported format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, mockBot, _ := setupTestBot(t)

			b.handleExportCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, tt.text))

			msg := mockBot.LastSentMessage()
			require.NotNil(t, msg)
			for _, w := range tt.want {
				require.Contains(t, msg.Text, w)
			}
		})
	}
}

func TestHandleShareCore(t *testing.T) {
	t.Parallel()
	b, mockBot, _ := setupTestBot(t)
	addTestExpense(t, b, "Taxi", 25000, appmodels.CategoryTravel, at(19, 10))

	b.handleShareCore(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, "/share"))

	msg := mockBot.LastSentMessage()
	require.NotNil(t, msg)
	require.Empty(t, msg.ParseMode)
	require.True(t, strings.HasPrefix(msg.Text, "Expense report (last 7 days)"))
	require.Contains(t, msg.Text, "₹250.00")
}
