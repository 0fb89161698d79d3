package bot

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

// listCallbackPrefix prefixes callback data of the /list grouping buttons.
const listCallbackPrefix = "list:"

// listMode selects how /list presents the day's expenses.
type listMode string

const (
	listByCategory listMode = "category"
	listByTime     listMode = "time"
)

func parseListMode(s string) (listMode, bool) {
	switch listMode(strings.ToLower(s)) {
	case listByCategory:
		return listByCategory, true
	case listByTime:
		return listByTime, true
	default:
		return "", false
	}
}

// parseListArgs reads "[YYYY-MM-DD] [category|time]" in any order.
func parseListArgs(args string, today civil.Date) (civil.Date, listMode, error) {
	date := today
	mode := listByCategory
	for _, tok := range strings.Fields(args) {
		if m, ok := parseListMode(tok); ok {
			mode = m
			continue
		}
		d, err := civil.ParseDate(tok)
		if err != nil {
			return date, mode, fmt.Errorf("unrecognized argument %q", tok)
		}
		date = d
	}
	return date, mode, nil
}

// listCallbackData encodes the grouping button payload.
func listCallbackData(date civil.Date, mode listMode) string {
	return listCallbackPrefix + date.String() + ":" + string(mode)
}

// parseListCallbackData decodes "list:<date>:<mode>".
func parseListCallbackData(data string) (civil.Date, listMode, bool) {
	rest, ok := strings.CutPrefix(data, listCallbackPrefix)
	if !ok {
		return civil.Date{}, "", false
	}
	dateStr, modeStr, ok := strings.Cut(rest, ":")
	if !ok {
		return civil.Date{}, "", false
	}
	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return civil.Date{}, "", false
	}
	mode, ok := parseListMode(modeStr)
	if !ok {
		return civil.Date{}, "", false
	}
	return date, mode, true
}

// listKeyboard builds the grouping toggle, marking the active mode.
func listKeyboard(date civil.Date, mode listMode) *models.InlineKeyboardMarkup {
	label := func(m listMode, text string) string {
		if m == mode {
			return "✓ " + text
		}
		return text
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: label(listByCategory, "By category"), CallbackData: listCallbackData(date, listByCategory)},
				{Text: label(listByTime, "By time"), CallbackData: listCallbackData(date, listByTime)},
			},
		},
	}
}

// renderList formats the expenses dated date in the given mode.
func (b *Bot) renderList(date civil.Date, mode listMode) string {
	entries := b.store.ListForDate(date)
	loc := b.store.Location()

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Expenses for %s</b>\n", date)
	fmt.Fprintf(&sb, "%d expense(s) · Total <b>%s</b>\n", len(entries), appmodels.FormatAmount(store.SumAmounts(entries)))

	if len(entries) == 0 {
		sb.WriteString("\nNo expenses recorded for this date.")
		return sb.String()
	}

	switch mode {
	case listByTime:
		sb.WriteString("\n")
		for _, e := range b.store.SortByTimestampDescending(entries) {
			sb.WriteString(formatExpenseLine(e, loc, true))
			sb.WriteString("\n")
		}
	default:
		for _, g := range b.store.GroupByCategory(entries) {
			fmt.Fprintf(&sb, "\n<b>%s</b> (%s)\n", escapeHTML(g.Category), appmodels.FormatAmount(store.SumAmounts(g.Expenses)))
			for _, e := range g.Expenses {
				sb.WriteString(formatExpenseLine(e, loc, false))
				sb.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// handleList handles the /list command.
func (b *Bot) handleList(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleListCore(ctx, tgBot, update)
}

// handleListCore is the testable implementation of handleList.
func (b *Bot) handleListCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	args := extractCommandArgs(update.Message.Text, "/list")

	date, mode, err := parseListArgs(args, b.store.Today())
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ " + escapeHTML(err.Error()) + "\n\nUsage: <code>/list [YYYY-MM-DD] [category|time]</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        b.renderList(date, mode),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: listKeyboard(date, mode),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /list response")
	}
}

// handleListCallback handles the grouping toggle buttons of /list.
func (b *Bot) handleListCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleListCallbackCore(ctx, tgBot, update)
}

// handleListCallbackCore is the testable implementation of handleListCallback.
func (b *Bot) handleListCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	_, err := tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to answer callback query")
	}

	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return
	}

	date, mode, ok := parseListCallbackData(update.CallbackQuery.Data)
	if !ok {
		logger.Log.Warn().Str("data", update.CallbackQuery.Data).Msg("Invalid list callback data")
		return
	}

	_, err = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        b.renderList(date, mode),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: listKeyboard(date, mode),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit /list message")
	}
}
