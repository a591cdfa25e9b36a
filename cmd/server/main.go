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

	"journalmind/internal/api"
	"journalmind/internal/config"
	"journalmind/internal/db"
	"journalmind/internal/openai"
	"journalmind/internal/repository"
	"journalmind/internal/services"
	"journalmind/internal/telemetry"
)

func main() {
	log.Println("starting journalmind...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Tracing first so everything below is traced.
	jaegerShutdown, err := telemetry.InitJaeger("journalmind", cfg.JaegerEndpoint)
	if err != nil {
		log.Printf("failed to initialize Jaeger: %v (continuing without tracing)", err)
		jaegerShutdown = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jaegerShutdown(ctx); err != nil {
			log.Printf("failed to shutdown Jaeger: %v", err)
		}
	}()

	database, err := db.NewGorm(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	openaiClient := openai.NewClient(cfg.OpenAIAPIKey)
	openaiClient.EmbeddingModel = cfg.OpenAIEmbeddingModel
	openaiClient.ChatModel = cfg.OpenAIChatModel
	openaiClient.SetTimeout(cfg.OpenAITimeout)

	embRepo := repository.NewEmbeddingRepository(database.DB)

	embedder := services.NewEmbedderService(openaiClient, embRepo)
	retriever := services.NewRetrieverService(openaiClient, embRepo, cfg.RetrievalLimit, cfg.RetrievalMinSimilarity)
	ragService := services.NewRAGService(retriever, openaiClient)

	indexer := services.NewIndexer(embedder, cfg.IndexWorkers, cfg.IndexQueueSize)
	indexer.Start()

	handler := api.NewHandler(indexer, retriever, ragService)
	router := api.SetupRoutes(handler)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	// Drain in-flight index jobs after the HTTP surface stops accepting new
	// ones.
	indexer.Shutdown()

	log.Println("server shutdown complete")
}
