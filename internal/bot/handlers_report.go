package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/report"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

// Report kinds recorded in metrics.
const (
	reportKindText   = "text"
	reportKindChart  = "chart"
	reportKindShare  = "share"
	reportKindExport = "export"
)

// handleReport handles the /report command.
func (b *Bot) handleReport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleReportCore(ctx, tgBot, update)
}

// handleReportCore is the testable implementation of handleReport.
func (b *Bot) handleReportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	r := b.store.Report(store.ReportDays)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>%s</b>\n", escapeHTML(report.Title(r)))
	fmt.Fprintf(&sb, "%s to %s\n\n", r.Days[0], r.Days[len(r.Days)-1])

	sb.WriteString("<pre>")
	sb.WriteString(escapeHTML(strings.Join(report.TextBars(r, report.DefaultBarWidth), "\n")))
	sb.WriteString("</pre>\n")

	sb.WriteString("\n<b>By category:</b>\n")
	if len(r.CategoryTotals) == 0 {
		sb.WriteString("No expenses\n")
	}
	for _, ct := range r.CategoryTotals {
		fmt.Fprintf(&sb, "• %s: %s\n", escapeHTML(ct.Category), appmodels.FormatAmount(ct.Amount))
	}
	fmt.Fprintf(&sb, "\nTotal: <b>%s</b>", appmodels.FormatAmount(r.Total))

	b.metrics.RecordReport(ctx, reportKindText)

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /report response")
	}
}

// handleChart handles the /chart command.
func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

// handleChartCore is the testable implementation of handleChart.
func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	r := b.store.Report(store.ReportDays)

	if r.Total == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("📊 No expenses in the last %d days.", len(r.Days)),
		})
		return
	}

	chartPNG, err := report.BarChartPNG(r)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to render expense chart")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate chart. Please try again.",
		})
		return
	}

	b.metrics.RecordReport(ctx, reportKindChart)

	caption := fmt.Sprintf("📊 <b>%s</b>\nTotal: %s",
		escapeHTML(report.Title(r)), appmodels.FormatAmount(r.Total))

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: report.ChartFilename(r),
			Data:     bytes.NewReader(chartPNG),
		},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send chart")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to send chart. Please try again.",
		})
	}
}

// handleExport handles the /export command.
func (b *Bot) handleExport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

// handleExportCore is the testable implementation of handleExport.
func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	format := extractCommandArgs(update.Message.Text, "/export")
	if format == "" {
		format = report.FormatPDF
	}

	res, err := report.Export(format, b.store.Report(store.ReportDays))
	if err != nil {
		text := "❌ Failed to export report. Please try again."
		if errors.Is(err, report.ErrUnsupportedFormat) {
			text = "❌ Unsupported format. Use <code>/export pdf</code> or <code>/export csv</code>."
		}
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	b.metrics.RecordReport(ctx, reportKindExport)

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("📤 %s\n<code>%s</code>", escapeHTML(res.Message), escapeHTML(res.Filename)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /export response")
	}
}

// handleShare handles the /share command.
func (b *Bot) handleShare(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleShareCore(ctx, tgBot, update)
}

// handleShareCore is the testable implementation of handleShare. The text is
// sent without a parse mode so it can be forwarded as-is.
func (b *Bot) handleShareCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	r := b.store.Report(store.ReportDays)
	b.metrics.RecordReport(ctx, reportKindShare)

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   report.ShareText(r),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /share response")
	}
}
