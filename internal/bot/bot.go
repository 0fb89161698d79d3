// Package bot provides the Telegram bot initialization and handlers.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/bot/mocks"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/config"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/telemetry"
)

// pollTimeout is the long-polling timeout used with a custom HTTP client.
const pollTimeout = time.Minute

// TelegramAPI is the set of Telegram calls handlers make. Handlers take it
// instead of *bot.Bot so tests can pass a mocks.MockBot.
type TelegramAPI = mocks.TelegramAPI

var _ TelegramAPI = (*bot.Bot)(nil)

// CategorySuggester suggests a category for an expense title.
type CategorySuggester interface {
	SuggestCategory(ctx context.Context, title string, categories []string) (*gemini.CategorySuggestion, error)
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot           *bot.Bot
	cfg           *config.Config
	store         *store.ExpenseStore
	suggester     CategorySuggester
	metrics       *telemetry.Metrics
	tracer        trace.Tracer
	httpClient    *http.Client
	messageSender TelegramAPI
	now           func() time.Time
}

// Option configures a Bot.
type Option func(*Bot)

// WithSuggester enables AI category suggestions.
func WithSuggester(s CategorySuggester) Option {
	return func(b *Bot) {
		b.suggester = s
	}
}

// WithMetrics records expense and report metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithTracer sets the tracer used for update spans.
func WithTracer(t trace.Tracer) Option {
	return func(b *Bot) {
		b.tracer = t
	}
}

// WithHTTPClient sets the client used to talk to the Telegram API.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bot) {
		b.httpClient = c
	}
}

// New creates a new Bot instance.
func New(cfg *config.Config, st *store.ExpenseStore, opts ...Option) (*Bot, error) {
	b := &Bot{
		cfg:   cfg,
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracer == nil {
		b.tracer = otel.Tracer(telemetry.InstrumentationName)
	}
	if b.httpClient == nil {
		b.httpClient = &http.Client{
			Timeout:   pollTimeout + 10*time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	botOpts := []bot.Option{
		bot.WithMiddlewares(b.tracingMiddleware, b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithHTTPClient(pollTimeout, b.httpClient),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start runs the daily summary loop and begins polling for updates. It
// returns when ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go b.startDailySummaryLoop(ctx)

	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/categories", bot.MatchTypePrefix, b.handleCategories)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/add", bot.MatchTypePrefix, b.handleAdd)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/today", bot.MatchTypePrefix, b.handleToday)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/list", bot.MatchTypePrefix, b.handleList)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/report", bot.MatchTypePrefix, b.handleReport)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chart", bot.MatchTypePrefix, b.handleChart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypePrefix, b.handleExport)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/share", bot.MatchTypePrefix, b.handleShare)

	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, listCallbackPrefix, bot.MatchTypePrefix, b.handleListCallback)
}

// tracingMiddleware wraps every update in a span.
func (b *Bot) tracingMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		ctx, span := b.tracer.Start(ctx, "telegram.update",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.Int64("telegram.update_id", update.ID),
				attribute.String("telegram.update_type", updateType(update)),
			))
		defer span.End()

		defer func() {
			if r := recover(); r != nil {
				span.SetStatus(codes.Error, fmt.Sprint(r))
				logger.Log.Error().Interface("panic", r).Int64("update_id", update.ID).Msg("Handler panicked")
			}
		}()

		next(ctx, tgBot, update)
	}
}

// whitelistMiddleware checks if the user is whitelisted before processing.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		userID := extractUserID(update)
		if userID == 0 {
			return
		}

		username := extractUsername(update)
		logUserAction(userID, update)

		if !b.cfg.IsUserWhitelisted(userID, username) {
			logger.Log.Warn().
				Str("user_hash", logger.HashUserID(userID)).
				Msg("Blocked non-whitelisted user")
			if update.Message != nil && tgBot != nil {
				_, _ = tgBot.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   "⛔ Sorry, you are not authorized to use this bot.",
				})
			}
			return
		}

		next(ctx, tgBot, update)
	}
}

// logUserAction logs the user's input/action without raw content.
func logUserAction(userID int64, update *tgmodels.Update) {
	userHash := logger.HashUserID(userID)
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Str("user_hash", userHash).
			Int64("chat_id", msg.Chat.ID)

		if msg.Text != "" {
			event = event.Str("text", logger.SanitizeText(msg.Text))
		}
		if len(msg.Photo) > 0 {
			event = event.Str("type", "photo")
		}

		event.Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("user_hash", userHash).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}

func updateType(update *tgmodels.Update) string {
	switch {
	case update.Message != nil && len(update.Message.Photo) > 0:
		return "photo"
	case update.Message != nil:
		return "message"
	case update.CallbackQuery != nil:
		return "callback_query"
	default:
		return "other"
	}
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.Username
	}
	return ""
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// defaultHandler handles unrecognized messages, attempting free-text expense parsing.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

// defaultHandlerCore is the testable implementation of defaultHandler.
func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	if len(update.Message.Photo) > 0 {
		b.handlePhotoCore(ctx, tg, update)
		return
	}

	if b.handleFreeTextExpenseCore(ctx, tg, update) {
		return
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      "I didn't understand that. Use /help to see available commands, or send an expense like <code>250 Taxi Travel</code>",
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send default response")
	}
}
