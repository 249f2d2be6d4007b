package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/ai"
	"inkwell/internal/ai/anthropic"
	"inkwell/internal/ai/openai"
	"inkwell/internal/api"
	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/contentstore"
	"inkwell/internal/db"
	"inkwell/internal/repository"
	"inkwell/internal/services"
	"inkwell/internal/services/events"
	"inkwell/internal/session"
	"inkwell/internal/telemetry"
)

func main() {
	log.Println("🚀 Starting Inkwell document collaboration backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Tracing first so everything after it is traced.
	jaegerShutdown, err := telemetry.InitJaeger("inkwell", cfg.JaegerEndpoint)
	if err != nil {
		log.Printf("⚠️  Failed to initialize Jaeger: %v (continuing without tracing)", err)
		jaegerShutdown = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jaegerShutdown(ctx); err != nil {
			log.Printf("⚠️  Failed to shutdown Jaeger: %v", err)
		}
	}()

	database, err := db.NewGorm(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	sessions, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer sessions.Close()
	log.Println("✓ Session store connected")

	// Content store: MinIO when configured, otherwise in-memory (dev only).
	var content services.ContentStore
	if cfg.MinioEndpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStore, err := contentstore.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		cancel()
		if err != nil {
			log.Fatalf("❌ Failed to connect to MinIO: %v", err)
		}
		content = minioStore
		log.Println("✓ MinIO content store connected")
	} else {
		content = contentstore.NewMemoryStore()
		log.Println("⚠️  MINIO_ENDPOINT not set, using in-memory content store")
	}

	// AI provider backends
	openaiClient := openai.NewClient(cfg.OpenAIAPIKey)

	var primary ai.Provider = openaiClient
	var anthropicClient *anthropic.Client
	if cfg.AnthropicAPIKey != "" {
		anthropicClient = anthropic.NewClient(cfg.AnthropicAPIKey)
		if cfg.AIPrimaryProvider == "anthropic" {
			primary = anthropicClient
		}
	}
	dispatcher := ai.NewDispatcher(primary)
	dispatcher.Register(openaiClient)
	if anthropicClient != nil {
		dispatcher.Register(anthropicClient)
	}
	log.Printf("✓ AI dispatcher initialized (primary: %s)", primary.Name())

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	docRepo := repository.NewDocumentRepository(database.DB)
	versionRepo := repository.NewVersionRepository(database.DB)
	collabRepo := repository.NewCollaborationRepository(database.DB)
	usageRepo := repository.NewUsageRepository(database.DB)
	embRepo := repository.NewEmbeddingRepository(database.DB)

	// Live event feed
	hub := events.NewHub()
	hub.Start()

	// Background embedding indexer
	indexer := services.NewIndexerService(openaiClient, embRepo, cfg.IndexerWorkers, cfg.IndexerQueueSize)
	indexer.Start()

	// Services
	authService := auth.NewService(userRepo)
	docService := services.NewDocumentService(docRepo, versionRepo, collabRepo, content, hub, indexer)
	versionService := services.NewVersionService(docRepo, versionRepo, collabRepo, content, hub, indexer)
	collabService := services.NewCollaborationService(docRepo, collabRepo, userRepo, hub)
	usageService := services.NewUsageService(usageRepo)
	searchService := services.NewSearchService(openaiClient, embRepo)

	aiService := services.NewAIService(dispatcher, usageService, docRepo, collabRepo, cfg.UsageLogQueue)
	aiService.Start()

	handler := api.NewHandler(
		authService,
		sessions,
		userRepo,
		docService,
		versionService,
		collabService,
		aiService,
		usageService,
		searchService,
		hub,
		cfg.SessionTTL,
	)
	router := api.SetupRoutes(handler, sessions)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	// Drain in dependency order: no new requests, then pending usage
	// records, then the indexer, then live connections.
	aiService.Shutdown()
	indexer.Shutdown()
	hub.Shutdown()

	log.Println("✓ Server shutdown complete")
}
