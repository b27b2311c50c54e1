package app

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/config"
	"github.com/alcaldiayopal/chatbot-backend/middleware"
	"github.com/alcaldiayopal/chatbot-backend/services/chat"
	"github.com/alcaldiayopal/chatbot-backend/services/embedding"
	"github.com/alcaldiayopal/chatbot-backend/services/generation"
	"github.com/alcaldiayopal/chatbot-backend/services/knowledge"
	"github.com/alcaldiayopal/chatbot-backend/services/review"
	"github.com/alcaldiayopal/chatbot-backend/services/session"
	"github.com/alcaldiayopal/chatbot-backend/services/stats"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Knowledge *knowledge.Store
	Retriever *knowledge.Retriever
	Sessions  *session.Registry
	Chat      *chat.Service
	Stats     *stats.Store
	Review    *review.Store

	AdminMiddleware *middleware.AdminMiddleware

	ready atomic.Bool
}

// NewDependencies creates and wires up all application dependencies. The
// knowledge base is NOT loaded here; main loads it and flips readiness once
// the base is in memory.
func NewDependencies(cfg *config.Config, logger *zap.Logger) *Dependencies {
	embedder := embedding.NewClient(embedding.Config{
		URL:      cfg.Providers.Embedding.URL,
		Model:    cfg.Providers.Embedding.Model,
		Timeout:  cfg.Providers.Embedding.Timeout,
		MaxChars: cfg.Providers.Embedding.MaxChars,
	}, logger)

	generator := generation.NewClient(generation.Config{
		URL:         cfg.Providers.LLM.URL,
		Model:       cfg.Providers.LLM.Model,
		Timeout:     cfg.Providers.LLM.Timeout,
		MaxTokens:   cfg.Providers.LLM.MaxTokens,
		Temperature: cfg.Providers.LLM.Temperature,
	}, logger)

	source := knowledge.NewFileSource(cfg.Knowledge.SourcePath)
	store := knowledge.NewStore(source, cfg.Knowledge.CachePath, embedder, logger)
	retriever := knowledge.NewRetriever(store, embedder, cfg.Retrieval, logger)

	sessions := session.NewRegistry(cfg.Session.Expiration, logger)
	reviewStore := review.NewStore(cfg.Knowledge.UnansweredPath, logger)
	statsStore := stats.NewStore(cfg.Knowledge.StatsPath, logger)

	chatService := chat.NewService(
		retriever,
		generator,
		sessions,
		reviewStore,
		statsStore,
		cfg.Session,
		cfg.Retrieval.StrictThreshold,
		logger,
	)

	deps := &Dependencies{
		Config:          cfg,
		Logger:          logger,
		Knowledge:       store,
		Retriever:       retriever,
		Sessions:        sessions,
		Chat:            chatService,
		Stats:           statsStore,
		Review:          reviewStore,
		AdminMiddleware: middleware.NewAdminMiddleware(cfg.Admin.JWTSecret, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps
}

// SetReady marks the service ready to answer conversation traffic.
func (d *Dependencies) SetReady() {
	d.ready.Store(true)
}

// Ready reports whether the knowledge base has been loaded.
func (d *Dependencies) Ready() bool {
	return d.ready.Load()
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	return nil
}
