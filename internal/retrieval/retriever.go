// Package retrieval turns a user query into a ranked set of planning
// records and a context block ready for the generation backend.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/blindspotlabs/dublin-planning-rag/internal/storage"
)

// DefaultTopK is the number of records retrieved per query.
const DefaultTopK = 10

// NoResultsContext is returned in place of a context block when nothing
// matches. It propagates to generation as an honest insufficient-information
// signal; an empty index is a valid state, not a failure.
const NoResultsContext = "No relevant planning records found."

// Result is one retrieved record. Relevance is 1 - distance, which the
// cosine metric pinned in storage keeps in [0,1] for real embeddings.
type Result struct {
	Document  string
	Metadata  map[string]any
	Distance  float64
	Relevance float64
}

// Embedder embeds a query with the same model used at build time.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Searcher performs nearest-neighbour search over the index.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]storage.SearchHit, error)
}

// Retriever is stateless per call: it holds only its collaborators.
type Retriever struct {
	embedder Embedder
	searcher Searcher
}

// NewRetriever creates a retriever over the given embedder and index.
func NewRetriever(embedder Embedder, searcher Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
	}
}

// Retrieve embeds the query, searches the index for the k nearest records
// and formats them into a single context block. Results keep the index's
// ascending-distance order; there is no re-ranking or deduplication.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (string, []Result, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.searcher.Search(ctx, vector, k)
	if err != nil {
		return "", nil, fmt.Errorf("search: %w", err)
	}

	if len(hits) == 0 {
		return NoResultsContext, []Result{}, nil
	}

	results := make([]Result, 0, len(hits))
	var parts []string
	for i, hit := range hits {
		result := Result{
			Document:  hit.Text,
			Metadata:  hit.Meta,
			Distance:  hit.Distance,
			Relevance: 1 - hit.Distance,
		}
		results = append(results, result)

		parts = append(parts, fmt.Sprintf("--- Planning Record %d (relevance: %.2f) ---", i+1, result.Relevance))
		parts = append(parts, hit.Text)
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n"), results, nil
}
