// Package main provides the sync CLI for the Dublin planning record index.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/blindspotlabs/dublin-planning-rag/internal/arcgis"
	"github.com/blindspotlabs/dublin-planning-rag/internal/config"
	"github.com/blindspotlabs/dublin-planning-rag/internal/embedding"
	"github.com/blindspotlabs/dublin-planning-rag/internal/indexer"
	"github.com/blindspotlabs/dublin-planning-rag/internal/planning"
	"github.com/blindspotlabs/dublin-planning-rag/internal/retrieval"
	"github.com/blindspotlabs/dublin-planning-rag/internal/storage"
)

const rawRecordsPath = "data/raw_records.json"

var rootCmd = &cobra.Command{
	Use:   "planning-sync",
	Short: "Dublin City Council planning record indexing tool",
	Long:  "CLI tool for fetching Dublin City Council planning applications and building the vector index in Qdrant",
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download all Dublin City Council planning records",
	Long: `Fetches every Dublin City Council planning application from the public
Irish Planning Applications ArcGIS feature service and saves the raw
records to ` + rawRecordsPath + `.

The service needs no authentication. A full fetch covers roughly 90k
records and takes a few minutes.`,
	RunE: runFetch,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the vector index from fetched records",
	Long: `Clears the existing index and rebuilds it from ` + rawRecordsPath + `.

This command:
1. Connects to Qdrant and verifies health
2. Normalizes the raw records and classifies each development
3. Recreates the planning collection
4. Generates embeddings and upserts records in batches
5. Runs a smoke query against the fresh index

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(buildCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if info, err := os.Stat(rawRecordsPath); err == nil && info.Size() > 0 {
		fmt.Printf("Already downloaded (%dKB). Delete %s to re-download.\n",
			info.Size()/1024, rawRecordsPath)
		return nil
	}

	fmt.Println("Fetching Dublin City Council planning records...")
	fmt.Println()

	client := arcgis.NewClient("", 0, slog.Default())
	records, result, err := client.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(rawRecordsPath), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := os.WriteFile(rawRecordsPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rawRecordsPath, err)
	}

	fmt.Println()
	fmt.Println("Fetch complete!")
	fmt.Printf("  Records: %d/%d\n", result.Fetched, result.Total)
	if result.SkippedPages > 0 {
		fmt.Printf("  Skipped pages: %d\n", result.SkippedPages)
	}
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))
	fmt.Printf("  Saved to %s\n", rawRecordsPath)

	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	fmt.Println("Starting index build...")
	fmt.Println()

	cfg := config.Load()
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not found: embeddings require an OpenAI key, set it in .env")
	}

	// 1. Load and normalize raw records
	fmt.Printf("Loading %s...\n", rawRecordsPath)
	raw, err := loadRawRecords(rawRecordsPath)
	if err != nil {
		return err
	}
	records := planning.Normalize(raw)
	fmt.Printf("Normalized %d valid records from %d raw rows\n", len(records), len(raw))

	// 2. Connect to Qdrant
	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.QdrantHost, cfg.QdrantPort)
	store, err := storage.NewStore(cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer store.Close()
	fmt.Println("Qdrant healthy")

	// 3. Initialize embedding client
	embeddingClient, err := embedding.NewClient(cfg.OpenAIAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// 4. Run the build pipeline
	fmt.Println()
	fmt.Println("Building vector index...")
	pipeline := indexer.NewPipeline(embedder, store, 0, slog.Default())

	result, err := pipeline.Build(ctx, records)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Build complete!")
	fmt.Printf("  Indexed: %d/%d\n", result.Indexed, result.TotalRecords)
	fmt.Printf("  Skipped: %d\n", result.Skipped)
	fmt.Printf("  Failed batches: %d\n", result.FailedBatches)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))

	// 5. Smoke query against the fresh index
	fmt.Println()
	fmt.Println("Running smoke query...")
	retriever := retrieval.NewRetriever(embedder, store)
	_, hits, err := retriever.Retrieve(ctx, "house extension Rathmines", 3)
	if err != nil {
		return fmt.Errorf("smoke query failed: %w", err)
	}
	fmt.Printf("  Retrieved %d records\n", len(hits))
	for _, hit := range hits {
		if ref, ok := hit.Metadata["ref"].(string); ok {
			fmt.Printf("  - %s (relevance %.2f)\n", ref, hit.Relevance)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))

	return nil
}

func loadRawRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found: run `planning-sync fetch` first", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return raw, nil
}
