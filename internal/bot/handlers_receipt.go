package bot

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
)

// receiptURIPrefix marks receipt references that point at a Telegram file.
const receiptURIPrefix = "tg-file:"

// receiptURI references the largest size of a photo. The file is never
// downloaded.
func receiptURI(photos []models.PhotoSize) string {
	if len(photos) == 0 {
		return ""
	}
	best := photos[0]
	for _, p := range photos[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return receiptURIPrefix + best.FileID
}

// handlePhotoCore attaches a receipt photo to the expense in its caption.
func (b *Bot) handlePhotoCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || len(update.Message.Photo) == 0 {
		return
	}

	chatID := update.Message.Chat.ID

	parsed := ParseExpenseInput(update.Message.Caption)
	if parsed == nil {
		_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "📎 To attach a receipt, send the photo with the expense as its caption, e.g. <code>250 Taxi Travel</code>",
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			logger.Log.Error().Err(err).Msg("Failed to send receipt usage hint")
		}
		return
	}

	uri := receiptURI(update.Message.Photo)
	logger.Log.Debug().Int64("chat_id", chatID).Str("receipt_uri", uri).Msg("Attaching receipt reference")

	b.saveExpenseCore(ctx, tg, chatID, parsed, uri)
}
