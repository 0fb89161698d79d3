package bot

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/daily-expense-tracker/internal/models"
)

const (
	// SummaryCheckInterval is how often the summary loop checks whether to send summaries.
	SummaryCheckInterval = 15 * time.Minute
	// SummaryTimeout is the maximum time a single summary check can take.
	SummaryTimeout = 2 * time.Minute
)

// startDailySummaryLoop rolls the store over at midnight and sends the day's
// total to whitelisted users at the configured hour.
func (b *Bot) startDailySummaryLoop(ctx context.Context) {
	loc := b.cfg.Location()

	logger.Log.Info().
		Bool("summary_enabled", b.cfg.DailySummaryEnabled).
		Int("hour", b.cfg.SummaryHour).
		Str("timezone", loc.String()).
		Msg("Daily summary loop started")

	sent := make(map[int64]string)
	ticker := time.NewTicker(SummaryCheckInterval)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		logger.Log.Info().Msg("Daily summary loop stopped")
		return
	default:
	}

	// Run one check immediately so the summary isn't skipped when the process
	// starts during the configured hour.
	b.checkDailySummary(ctx, b.now().In(loc), sent)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Daily summary loop stopped")
			return
		case <-ticker.C:
			b.checkDailySummary(ctx, b.now().In(loc), sent)
		}
	}
}

// checkDailySummary refreshes the store's daily total and, during the summary
// hour, sends it to every whitelisted user id not yet notified today.
func (b *Bot) checkDailySummary(ctx context.Context, now time.Time, sent map[int64]string) {
	b.store.Refresh()

	if !b.cfg.DailySummaryEnabled || now.Hour() != b.cfg.SummaryHour {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, SummaryTimeout)
	defer cancel()

	todayStr := now.Format("2006-01-02")

	// Prune entries from previous days so the map doesn't grow unbounded.
	for uid, dateStr := range sent {
		if dateStr != todayStr {
			delete(sent, uid)
		}
	}

	view := b.store.TodayView()
	count := len(view.Expenses)
	text := fmt.Sprintf("🌙 <b>Daily Summary</b> (%s)\n\nTotal spent today: <b>%s</b>\nExpenses recorded: %d",
		view.Date, appmodels.FormatAmount(view.Total), count)
	if count == 0 {
		text += "\n\nNothing logged today. Send an expense like <code>250 Taxi Travel</code> to get started."
	}

	for _, userID := range b.cfg.WhitelistedUserIDs {
		if sent[userID] == todayStr {
			continue
		}

		_, err := b.messageSender.SendMessage(checkCtx, &tgbot.SendMessageParams{
			ChatID:    userID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Str("user_hash", logger.HashUserID(userID)).Msg("Failed to send daily summary")
			continue
		}

		sent[userID] = todayStr
		logger.Log.Debug().Str("user_hash", logger.HashUserID(userID)).Msg("Sent daily summary")
	}
}
