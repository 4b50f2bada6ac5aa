// Package engine ties retrieval and generation into a single query path.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blindspotlabs/dublin-planning-rag/internal/document"
	"github.com/blindspotlabs/dublin-planning-rag/internal/generation"
	"github.com/blindspotlabs/dublin-planning-rag/internal/retrieval"
)

// MaxCitations caps how many retrieved records surface as citations. The
// full retrieved set still reaches the model through the context block.
const MaxCitations = 5

// unknownValue fills citation fields the record never provided.
const unknownValue = "Unknown"

// Citation points a reader back at the public record behind an answer.
type Citation struct {
	Ref       string `json:"ref"`
	Location  string `json:"location"`
	Decision  string `json:"decision"`
	Relevance string `json:"relevance"`
	Category  string `json:"category,omitempty"`
	LandType  string `json:"land_type,omitempty"`
}

// QueryOutcome is the full result of one answered query.
type QueryOutcome struct {
	Answer     string     `json:"answer"`
	Sources    []Citation `json:"sources"`
	Context    string     `json:"context"`
	NumResults int        `json:"num_results"`
}

// Retriever is the slice of the retrieval layer the engine needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (string, []retrieval.Result, error)
}

// Engine answers planning questions over the built index.
type Engine struct {
	retriever Retriever
	generator generation.Generator
	logger    *slog.Logger
}

// New creates an engine over the given retriever and generator.
func New(retriever Retriever, generator generation.Generator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Answer retrieves context for the query, generates a grounded answer and
// assembles citations. Retrieval and generation errors propagate to the
// caller unretried. An empty result set is not an error: the model is
// asked anyway with the no-results context and answers honestly.
func (e *Engine) Answer(ctx context.Context, query string, history []generation.Turn) (*QueryOutcome, error) {
	start := time.Now()

	contextBlock, results, err := e.retriever.Retrieve(ctx, query, retrieval.DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	answer, err := e.generator.Generate(ctx, query, contextBlock, history)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	e.logger.Info("Query answered",
		"results", len(results),
		"history_turns", len(history),
		"duration", time.Since(start),
	)

	return &QueryOutcome{
		Answer:     answer,
		Sources:    buildCitations(results),
		Context:    contextBlock,
		NumResults: len(results),
	}, nil
}

// buildCitations converts the top retrieved records into citations, in
// retrieval order.
func buildCitations(results []retrieval.Result) []Citation {
	n := min(len(results), MaxCitations)
	citations := make([]Citation, 0, n)
	for _, result := range results[:n] {
		citations = append(citations, Citation{
			Ref:       metaString(result.Metadata, document.KeyRef, unknownValue),
			Location:  metaString(result.Metadata, document.KeyLocation, unknownValue),
			Decision:  metaString(result.Metadata, document.KeyDecision, unknownValue),
			Relevance: fmt.Sprintf("%.2f", result.Relevance),
			Category:  metaString(result.Metadata, document.KeyDevCategory, ""),
			LandType:  metaString(result.Metadata, document.KeyLandType, ""),
		})
	}
	return citations
}

func metaString(meta map[string]any, key, fallback string) string {
	if s, ok := meta[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
