// Package main provides the MCP server entry point for Dublin planning queries.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/blindspotlabs/dublin-planning-rag/internal/config"
	"github.com/blindspotlabs/dublin-planning-rag/internal/embedding"
	"github.com/blindspotlabs/dublin-planning-rag/internal/engine"
	"github.com/blindspotlabs/dublin-planning-rag/internal/generation"
	mcpserver "github.com/blindspotlabs/dublin-planning-rag/internal/mcp"
	"github.com/blindspotlabs/dublin-planning-rag/internal/retrieval"
	"github.com/blindspotlabs/dublin-planning-rag/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize storage
	store, err := storage.NewStore(cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	// The index must exist and match the configured embedding model before
	// any query is served.
	if err := store.EnsureExists(ctx); err != nil {
		log.Fatalf("index check failed: %v", err)
	}
	if err := store.VerifyEmbeddingModel(ctx, embedding.Model); err != nil {
		log.Fatalf("embedding model check failed: %v", err)
	}

	// Initialize embedding client
	embeddingClient, err := embedding.NewClient(cfg.OpenAIAPIKey)
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// Wire retrieval, generation and the query engine
	retriever := retrieval.NewRetriever(embedder, store)

	generator, err := generation.NewGenerator(cfg)
	if err != nil {
		log.Fatalf("failed to create generator: %v", err)
	}
	log.Printf("Generation provider: %s", cfg.Provider)

	eng := engine.New(retriever, generator, nil)

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Engine:    eng,
		Retriever: retriever,
		Store:     store,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()

	// Landing page and health endpoint
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))

	// MCP HTTP endpoint (for remote client connections)
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	if cfg.ServerMode {
		// HTTP mode: serve MCP over HTTP for remote clients
		addr := "0.0.0.0:" + cfg.Port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + cfg.Port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting Dublin Planning MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}
