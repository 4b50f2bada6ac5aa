// Package indexer builds the vector index from normalized planning records.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/blindspotlabs/dublin-planning-rag/internal/document"
	"github.com/blindspotlabs/dublin-planning-rag/internal/embedding"
	"github.com/blindspotlabs/dublin-planning-rag/internal/planning"
	"github.com/blindspotlabs/dublin-planning-rag/internal/storage"
)

// DefaultBatchSize is the number of records per insert batch. Sequential
// batches of this size keep backpressure on the embedding backend simple.
const DefaultBatchSize = 100

// Embedder generates one vector per input text.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the slice of the storage layer the pipeline needs.
type Store interface {
	RecreateCollection(ctx context.Context, embeddingModel string) error
	UpsertBatch(ctx context.Context, points []*qdrant.PointStruct) error
}

// BuildResult contains statistics about an index build.
type BuildResult struct {
	TotalRecords  int
	Indexed       int
	Skipped       int // Documents below the minimum text length.
	FailedBatches int
	Duration      time.Duration
}

// Pipeline orchestrates synthesize -> embed -> upsert over record batches.
type Pipeline struct {
	embedder  Embedder
	store     Store
	batchSize int
	logger    *slog.Logger
}

// NewPipeline creates a build pipeline. A batchSize of 0 selects the default.
func NewPipeline(embedder Embedder, store Store, batchSize int, logger *slog.Logger) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Build recreates the collection and indexes all records in sequential
// batches. A failed batch is logged, counted and skipped. Indexing
// continues with the remaining batches and failures are never retried.
func (p *Pipeline) Build(ctx context.Context, records []planning.Record) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{TotalRecords: len(records)}

	if err := p.store.RecreateCollection(ctx, embedding.Model); err != nil {
		return nil, fmt.Errorf("recreate collection: %w", err)
	}
	p.logger.Info("Starting index build", "records", len(records), "batch_size", p.batchSize)

	for batchStart := 0; batchStart < len(records); batchStart += p.batchSize {
		batchEnd := min(batchStart+p.batchSize, len(records))

		docs := make([]document.IndexedDocument, 0, batchEnd-batchStart)
		positions := make([]int, 0, batchEnd-batchStart)
		for i, rec := range records[batchStart:batchEnd] {
			doc := document.Synthesize(rec)
			if !doc.Indexable() {
				result.Skipped++
				continue
			}
			docs = append(docs, doc)
			positions = append(positions, batchStart+i)
		}
		if len(docs) == 0 {
			continue
		}

		if err := p.indexBatch(ctx, docs, positions); err != nil {
			p.logger.Warn("Batch failed, skipping",
				"batch_start", batchStart, "batch_end", batchEnd, "error", err)
			result.FailedBatches++
			continue
		}
		result.Indexed += len(docs)
	}

	result.Duration = time.Since(start)
	p.logger.Info("Index build complete",
		"indexed", result.Indexed,
		"skipped", result.Skipped,
		"failed_batches", result.FailedBatches,
		"duration", result.Duration,
	)

	return result, nil
}

// indexBatch embeds and upserts one batch of documents.
func (p *Pipeline) indexBatch(ctx context.Context, docs []document.IndexedDocument, positions []int) error {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	vectors, err := p.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embeddings: got %d vectors for %d documents", len(vectors), len(docs))
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = storage.BuildPoint(doc, vectors[i], positions[i])
	}

	if err := p.store.UpsertBatch(ctx, points); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
