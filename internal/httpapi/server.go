// Package httpapi exposes the expense store over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/telemetry"
)

const (
	// ShutdownTimeout bounds how long Run waits for in-flight requests.
	ShutdownTimeout = 5 * time.Second

	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	maxHeaderBytes    = 1 << 16
)

// Server serves the JSON API for one ExpenseStore.
type Server struct {
	store          *store.ExpenseStore
	metrics        *telemetry.Metrics
	allowedOrigins []string
	engine         *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records rendered reports on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAllowedOrigins restricts CORS to origins. An empty list or "*" allows
// every origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// New builds the router for st.
func New(st *store.ExpenseStore, opts ...Option) *Server {
	s := &Server{store: st}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), cors.New(s.corsConfig()))

	engine.GET("/healthz", s.healthz)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/expenses", s.createExpense)
		v1.GET("/expenses", s.listExpenses)
		v1.GET("/summary/today", s.todaySummary)
		v1.GET("/report", s.report)
		v1.GET("/report/chart.png", s.reportChart)
		v1.GET("/report/share", s.reportShare)
		v1.POST("/report/export/:format", s.reportExport)
		v1.GET("/stream", s.stream)
	}

	s.engine = engine
	return s
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	if len(s.allowedOrigins) == 0 || (len(s.allowedOrigins) == 1 && s.allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.allowedOrigins
	return cfg
}

// Handler returns the router wrapped with otel HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "http.api")
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Request contexts derive from ctx so open event streams end with it.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", addr).Msg("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Log.Info().Msg("HTTP API stopped")
	return nil
}

// requestLogger logs one line per request with zerolog.
func requestLogger() gin.HandlerFunc {
	log := logger.Component("httpapi")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
