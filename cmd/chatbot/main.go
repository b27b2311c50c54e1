package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/app"
	"github.com/alcaldiayopal/chatbot-backend/config"
	"github.com/alcaldiayopal/chatbot-backend/internal/observability"
	"github.com/alcaldiayopal/chatbot-backend/routes"
	"github.com/alcaldiayopal/chatbot-backend/services/knowledge"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := app.NewDependencies(cfg, logger)

	// The knowledge base must be in memory before traffic is accepted.
	if err := deps.Knowledge.Load(ctx); err != nil {
		logger.Fatal("failed to load knowledge base", zap.Error(err))
	}
	deps.SetReady()
	logger.Info("knowledge base ready", zap.Int("chunks", deps.Knowledge.Len()))

	if cfg.Knowledge.WatchEnabled {
		watcher, err := knowledge.NewWatcher(cfg.Knowledge.SourcePath, deps.Knowledge, logger)
		if err != nil {
			logger.Warn("knowledge watcher disabled", zap.Error(err))
		} else {
			watcher.Start(ctx)
			logger.Info("knowledge watcher started", zap.String("path", cfg.Knowledge.SourcePath))
		}
	}

	deps.Sessions.StartReaper(ctx, cfg.Session.ReapInterval)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           routes.SetupRoutes(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := deps.Close(shutdownCtx); err != nil {
		logger.Error("dependency shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
