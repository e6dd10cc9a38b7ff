package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/config"
	"github.com/prombank/prompthouse/internal/server/handlers"
	"github.com/prombank/prompthouse/internal/server/middleware"
	"github.com/prombank/prompthouse/internal/server/oauth"
	"github.com/prombank/prompthouse/internal/server/session"
	"github.com/prombank/prompthouse/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Лимит на login/register: 10 попыток с одного IP за 5 минут
const (
	credentialRateLimit  = 10
	credentialRateWindow = 5 * time.Minute
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Log.Level)
	logger.Info("starting prompthouse server",
		"version", Version,
		"addr", cfg.Server.Addr(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, logger, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	sessions := session.NewManager(cfg.Auth.SessionSecret, int(cfg.Auth.SessionTTL.Seconds()))
	jwtService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	provider := oauth.NewGoogleProvider(cfg.OAuth)
	if provider == nil {
		logger.Warn("google oauth is not configured, oauth login disabled")
	}

	limiter := middleware.NewRateLimiter(credentialRateLimit, credentialRateWindow, logger)
	defer limiter.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:            logger,
		Users:             store,
		Tokens:            store,
		Prompts:           store,
		Articles:          store,
		DB:                store,
		Sessions:          sessions,
		JWT:               jwtService,
		Provider:          provider,
		CredentialLimiter: limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")

	return nil
}

// openStorage открывает БД и ждет ее готовности с экспоненциальным
// backoff: при старте в контейнере volume может появиться не сразу
func openStorage(ctx context.Context, logger *slog.Logger, cfg config.StorageConfig) (*sqlite.Storage, error) {
	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	backoff := retry.NewExponential(cfg.ConnectRetryDelay)
	backoff = retry.WithCappedDuration(30*time.Second, backoff)
	backoff = retry.WithMaxRetries(uint64(cfg.ConnectRetries), backoff)

	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			logger.Warn("database not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("database readiness check failed: %w", err)
	}

	return store, nil
}

// newLogger создает slog логгер с уровнем из конфигурации
func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel,
	}))
}

func printVersion() {
	fmt.Printf("Prompt House Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
