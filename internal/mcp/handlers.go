package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blindspotlabs/dublin-planning-rag/internal/document"
	"github.com/blindspotlabs/dublin-planning-rag/internal/engine"
	"github.com/blindspotlabs/dublin-planning-rag/internal/generation"
	"github.com/blindspotlabs/dublin-planning-rag/internal/retrieval"
	"github.com/blindspotlabs/dublin-planning-rag/internal/storage"
)

const defaultSearchResults = 5

// makeQueryHandler creates the query_planning tool handler. It runs the
// full retrieve-then-generate path and returns the answer plus citations.
func makeQueryHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, QueryPlanningInput,
) (*mcp.CallToolResult, QueryPlanningOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input QueryPlanningInput) (
		*mcp.CallToolResult, QueryPlanningOutput, error,
	) {
		if input.Question == "" {
			return nil, QueryPlanningOutput{}, fmt.Errorf("question must not be empty")
		}

		history := make([]generation.Turn, 0, len(input.History))
		for _, turn := range input.History {
			history = append(history, generation.Turn{Role: turn.Role, Content: turn.Content})
		}

		outcome, err := eng.Answer(ctx, input.Question, history)
		if err != nil {
			return nil, QueryPlanningOutput{}, fmt.Errorf("query failed: %w", err)
		}

		sources := outcome.Sources
		if sources == nil {
			sources = []engine.Citation{} // Ensure non-nil for JSON marshaling
		}

		return nil, QueryPlanningOutput{
			Answer:     outcome.Answer,
			Sources:    sources,
			Context:    outcome.Context,
			NumResults: outcome.NumResults,
		}, nil
	}
}

// makeSearchHandler creates the search_records tool handler. Pure
// retrieval: embed, search, filter by relevance threshold.
func makeSearchHandler(retriever *retrieval.Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchRecordsInput,
) (*mcp.CallToolResult, SearchRecordsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchRecordsInput) (
		*mcp.CallToolResult, SearchRecordsOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultSearchResults
		}

		_, results, err := retriever.Retrieve(ctx, input.Query, maxResults)
		if err != nil {
			return nil, SearchRecordsOutput{}, fmt.Errorf("search failed: %w", err)
		}

		records := make([]RecordResult, 0, len(results))
		for _, result := range results {
			if result.Relevance < input.MinRelevance {
				continue
			}
			records = append(records, RecordResult{
				Ref:       metaString(result.Metadata, document.KeyRef),
				Location:  metaString(result.Metadata, document.KeyLocation),
				Decision:  metaString(result.Metadata, document.KeyDecision),
				Relevance: result.Relevance,
				Text:      result.Document,
			})
		}

		if len(records) == 0 {
			return nil, SearchRecordsOutput{
				Results: []RecordResult{},
				Message: "No matching planning records found. Try broader search terms.",
			}, nil
		}

		return nil, SearchRecordsOutput{Results: records}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		status, err := store.Status(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("qdrant_error: failed to read index status: %w", err)
		}

		return nil, StatusOutput{
			Records:        int(status.Records),
			EmbeddingModel: status.EmbeddingModel,
			BuiltAt:        status.BuiltAt.UTC().Format(time.RFC3339),
			Collection:     storage.CollectionName,
		}, nil
	}
}

func metaString(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}
