package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shipsy/feedback-assistant/internal/assistant"
	"github.com/shipsy/feedback-assistant/internal/configs"
	"github.com/shipsy/feedback-assistant/internal/feedback"
	"github.com/shipsy/feedback-assistant/internal/httpserver/handlers"
	"github.com/shipsy/feedback-assistant/internal/httpserver/middleware"
	"github.com/shipsy/feedback-assistant/internal/llm"
	"github.com/shipsy/feedback-assistant/internal/memory"
	"github.com/shipsy/feedback-assistant/internal/metrics"
	"github.com/shipsy/feedback-assistant/internal/similarity"
	"github.com/shipsy/feedback-assistant/internal/store"
)

type Application struct {
	server *http.Server
	store  *store.RedisStore
}

func newApplication(cfg *configs.Config) (*Application, error) {
	redisStore, err := store.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	cache, err := similarity.NewCache(similarity.CacheConfig{
		Type:      cfg.EmbeddingCacheType,
		KeyPrefix: cfg.EmbeddingCacheKeyPrefix,
		MaxSize:   cfg.EmbeddingCacheMaxSize,
		TTL:       cfg.EmbeddingCacheTTL,
	}, redisStore)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	var embedClient *similarity.EmbedClient
	if cfg.EmbeddingServiceURL != "" {
		embedClient = similarity.NewEmbedClient(cfg.EmbeddingServiceURL, cfg.EmbeddingAPIKey, cache, cfg.EmbeddingTimeout)
	} else {
		log.Info().Msg("No embedding service configured, using local fallback only")
	}

	engine := similarity.NewEngine(embedClient, cfg.RelevanceThreshold)

	manager := memory.NewManager(redisStore, engine, memory.Config{
		HistoryLimit: cfg.HistoryLimit,
		TopK:         cfg.MemoryTopK,
	})

	classifier := feedback.NewClassifier(feedback.ClassifierConfig{})
	processor := feedback.NewProcessor(classifier, manager)

	chatClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	if !chatClient.Configured() {
		log.Info().Msg("No LLM API key configured, chat path will use canned replies")
	}

	service := assistant.NewService(manager, processor, chatClient)
	handler := handlers.NewAssistantHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handler.HandleHealth)
	mux.HandleFunc("/v1/assistant", handler.HandleMessage)
	mux.Handle("/metrics", metrics.Handler())

	wrapped := middleware.TimeoutMiddleware(cfg.RequestTimeout)(mux)
	wrapped = middleware.AuthMiddleware(cfg.APIKey)(wrapped)
	wrapped = middleware.RequestIDMiddleware()(wrapped)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      wrapped,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Application{
		server: server,
		store:  redisStore,
	}, nil
}

func (a *Application) Start(ctx context.Context) error {
	log.Info().Msg("Starting Feedback Assistant Service")

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.server.Addr).Msg("Feedback Assistant Service listening")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("Server exited")
	return nil
}
