package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gspc/statement-insights/internal/config"
	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/handler"
	"github.com/gspc/statement-insights/internal/infra/anthropic"
	"github.com/gspc/statement-insights/internal/infra/cache"
	"github.com/gspc/statement-insights/internal/infra/observability"
	"github.com/gspc/statement-insights/internal/infra/resilience"
	"github.com/gspc/statement-insights/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Int("target_year", cfg.TargetYear),
		zap.Int64("max_upload_bytes", cfg.MaxUploadBytes),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("chat_enabled", cfg.HasAnthropicKey()),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "statement-insights")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	reportCache := cache.New[*domain.StatementReport](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("anthropic")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	chatClient := anthropic.NewClient(
		httpClient,
		cfg.AnthropicBaseURL,
		cfg.AnthropicAPIKey,
		cfg.ChatModel,
		cfg.ChatMaxTokens,
		cb,
		resilienceCfg,
	)

	// --- Services ---
	stmtSvc := service.NewStatementService(
		cfg.TargetYear,
		cfg.MaxConcurrency,
		reportCache,
		metrics,
		logger,
	)
	chatSvc := service.NewChatService(chatClient, metrics, logger)

	if !cfg.HasAnthropicKey() {
		logger.Warn("chat assistant: ANTHROPIC_API_KEY not configured, /v1/chat unavailable")
	}

	// --- Router ---
	router := handler.NewRouter(stmtSvc, chatSvc, cfg, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: chat responses stream for as long as the
		// assistant keeps producing tokens.
		IdleTimeout: 60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
