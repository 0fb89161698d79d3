package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

// suggestionThreshold is the minimum confidence for applying an AI suggestion.
const suggestionThreshold = 0.5

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I'm your daily expense tracker. I keep today's running total and a 7-day report.

<b>Quick Start:</b>
• Send an expense like: <code>250 Taxi Travel</code>
• Or use structured format: <code>/add 15 Lunch Food | with team</code>
• Send a receipt photo with the expense as its caption

Use /help to see all available commands.`,
		formatGreeting(firstName))

	logger.Log.Debug().Int64("chat_id", update.Message.Chat.ID).Msg("Sending /start response")
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /start response")
	}
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := `📚 <b>Available Commands</b>

<b>Expense Tracking:</b>
• <code>/add &lt;amount&gt; &lt;title&gt; [category] [| notes]</code> - Add an expense
• Just send a message like <code>250 Taxi Travel</code> to quickly add
• Send a receipt photo with the same text as its caption

<b>Viewing Expenses:</b>
• <code>/today</code> - Today's expenses and total
• <code>/list [YYYY-MM-DD] [category|time]</code> - Expenses for a date

<b>Reports:</b>
• <code>/report</code> - 7-day summary
• <code>/chart</code> - 7-day bar chart
• <code>/export pdf|csv</code> - Export the report
• <code>/share</code> - Plain-text summary to forward

<b>Categories:</b>
• <code>/categories</code> - List all categories

<b>Other:</b>
• <code>/help</code> - Show this help message`

	logger.Log.Debug().Int64("chat_id", update.Message.Chat.ID).Msg("Sending /help response")
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /help response")
	}
}

// handleCategories handles the /categories command.
func (b *Bot) handleCategories(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCategoriesCore(ctx, tgBot, update)
}

// handleCategoriesCore is the testable implementation of handleCategories.
func (b *Bot) handleCategoriesCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("📁 <b>Expense Categories</b>\n\n")
	for i, cat := range appmodels.Categories {
		fmt.Fprintf(&sb, "%d. %s", i+1, escapeHTML(cat))
		if cat == appmodels.DefaultCategory {
			sb.WriteString(" (default)")
		}
		sb.WriteString("\n")
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /categories response")
	}
}

// handleAdd handles the /add command for structured expense input.
func (b *Bot) handleAdd(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddCore(ctx, tgBot, update)
}

// handleAddCore is the testable implementation of handleAdd.
func (b *Bot) handleAddCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	parsed := ParseAddCommand(update.Message.Text)
	if parsed == nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Invalid format. Use: <code>/add 15 Lunch [category] [| notes]</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	b.saveExpenseCore(ctx, tg, chatID, parsed, "")
}

// handleFreeTextExpenseCore handles free-text expense input like "250 Taxi".
// It reports whether the text was recognized as an expense.
func (b *Bot) handleFreeTextExpenseCore(ctx context.Context, tg TelegramAPI, update *models.Update) bool {
	if update.Message == nil || update.Message.Text == "" {
		return false
	}

	text := update.Message.Text
	if strings.HasPrefix(text, "/") {
		return false
	}

	parsed := ParseExpenseInput(text)
	if parsed == nil {
		return false
	}

	b.saveExpenseCore(ctx, tg, update.Message.Chat.ID, parsed, "")
	return true
}

// resolveCategory picks the parsed category, then a confident AI suggestion,
// then the default category.
func (b *Bot) resolveCategory(ctx context.Context, parsed *ParsedExpense) string {
	if parsed.CategoryName != "" {
		return parsed.CategoryName
	}

	if b.suggester == nil {
		return appmodels.DefaultCategory
	}

	suggestion, err := b.suggester.SuggestCategory(ctx, parsed.Title, appmodels.Categories)
	if err != nil {
		logger.Log.Debug().Err(err).
			Str("title", logger.SanitizeTitle(parsed.Title)).
			Msg("Failed to get AI category suggestion")
		return appmodels.DefaultCategory
	}
	if suggestion == nil || suggestion.Confidence <= suggestionThreshold {
		return appmodels.DefaultCategory
	}

	cat, ok := appmodels.IsKnownCategory(suggestion.Category)
	if !ok {
		return appmodels.DefaultCategory
	}

	logger.Log.Info().
		Str("title", logger.SanitizeTitle(parsed.Title)).
		Str("suggested_category", cat).
		Float64("confidence", suggestion.Confidence).
		Msg("AI category suggestion applied")
	return cat
}

// saveExpenseCore adds the parsed expense to the store and confirms it.
func (b *Bot) saveExpenseCore(
	ctx context.Context,
	tg TelegramAPI,
	chatID int64,
	parsed *ParsedExpense,
	receiptURI string,
) {
	expense, err := b.store.Add(appmodels.Expense{
		Title:      parsed.Title,
		Amount:     parsed.Amount,
		Category:   b.resolveCategory(ctx, parsed),
		Notes:      parsed.Notes,
		ReceiptURI: receiptURI,
	})
	if err != nil {
		logger.Log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to add expense")
		text := "❌ Failed to save expense. Please try again."
		if errors.Is(err, store.ErrInvalidExpense) {
			text = "❌ " + escapeHTML(err.Error())
		}
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ <b>Expense Added</b>\n\n")
	fmt.Fprintf(&sb, "💰 %s\n", appmodels.FormatAmount(expense.Amount))
	fmt.Fprintf(&sb, "📝 %s\n", escapeHTML(expense.Title))
	fmt.Fprintf(&sb, "📁 %s", escapeHTML(expense.Category))
	if expense.Notes != "" {
		fmt.Fprintf(&sb, "\n🗒️ %s", escapeHTML(expense.Notes))
	}
	if expense.HasReceipt() {
		sb.WriteString("\n📎 Receipt attached")
	}
	fmt.Fprintf(&sb, "\n\nToday: <b>%s</b>", appmodels.FormatAmount(b.store.TotalSpentToday()))

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send expense confirmation")
	}
}

// handleToday handles the /today command to show today's expenses.
func (b *Bot) handleToday(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleTodayCore(ctx, tgBot, update)
}

// handleTodayCore is the testable implementation of handleToday.
func (b *Bot) handleTodayCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	view := b.store.TodayView()
	entries := b.store.SortByTimestampDescending(view.Expenses)

	if len(entries) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "📅 No expenses recorded today.\n\nTotal spent today: <b>" + appmodels.FormatAmount(0) + "</b>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>Today's Expenses</b> (%s)\n\n", view.Date)
	for _, e := range entries {
		sb.WriteString(formatExpenseLine(e, b.store.Location(), true))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nTotal spent today: <b>%s</b>", appmodels.FormatAmount(view.Total))

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /today response")
	}
}
