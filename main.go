// Package main is the entry point for the daily expense tracker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/bot"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/config"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/httpapi"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	geminiTimeout    = 30 * time.Second
	telemetryTimeout = 5 * time.Second
	refreshInterval  = time.Minute
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("daily-expense-tracker %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	if err := run(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Expense tracker stopped with error")
	}
	logger.Log.Info().Msg("Shutdown complete")
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.InitHashSalt()
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Exporter:       cfg.OTelExporter,
		Protocol:       cfg.OTelProtocol,
		ServiceName:    cfg.OTelServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	// The add hook runs after New returns, by which time metrics is set.
	var metrics *telemetry.Metrics
	st := store.New(
		store.WithLocation(cfg.Location()),
		store.WithAddHook(func(e models.Expense) { metrics.RecordExpense(e) }),
	)
	metrics, err = telemetry.NewMetrics(providers.Meter(), st)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	logger.Log.Info().
		Str("version", version).
		Str("timezone", cfg.Timezone).
		Bool("bot", cfg.BotEnabled()).
		Bool("http", cfg.HTTPEnabled()).
		Msg("Expense tracker starting")

	g, gctx := errgroup.WithContext(ctx)

	if cfg.BotEnabled() {
		opts := []bot.Option{
			bot.WithMetrics(metrics),
			bot.WithTracer(providers.Tracer()),
		}
		if suggester := newSuggester(ctx, cfg); suggester != nil {
			opts = append(opts, bot.WithSuggester(suggester))
		}

		telegramBot, err := bot.New(cfg, st, opts...)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		g.Go(func() error {
			telegramBot.Start(gctx)
			return nil
		})
	}

	// Keeps today's total and subscriber snapshots current across midnight.
	g.Go(func() error {
		st.RefreshEvery(gctx, refreshInterval)
		return nil
	})

	if cfg.HTTPEnabled() {
		api := httpapi.New(st,
			httpapi.WithMetrics(metrics),
			httpapi.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		)
		g.Go(func() error {
			return api.Run(gctx, cfg.HTTPAddr)
		})
	}

	<-gctx.Done()
	logger.Log.Info().Msg("Shutting down...")
	return g.Wait()
}

// newSuggester returns a Gemini category suggester, or nil when no API key is
// configured or the client cannot be created.
func newSuggester(ctx context.Context, cfg *config.Config) *gemini.Client {
	if cfg.GeminiAPIKey == "" {
		return nil
	}

	httpClient := &http.Client{
		Timeout:   geminiTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, httpClient, gemini.WithModel(cfg.GeminiModel))
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Gemini disabled, category suggestions off")
		return nil
	}
	logger.Log.Info().Str("model", client.Model()).Msg("Gemini category suggestions enabled")
	return client
}
