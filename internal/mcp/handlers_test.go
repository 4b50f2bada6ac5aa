package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blindspotlabs/dublin-planning-rag/internal/engine"
	"github.com/blindspotlabs/dublin-planning-rag/internal/generation"
	"github.com/blindspotlabs/dublin-planning-rag/internal/retrieval"
)

type fakeRetriever struct {
	contextBlock string
	results      []retrieval.Result
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) (string, []retrieval.Result, error) {
	return f.contextBlock, f.results, nil
}

type fakeGenerator struct {
	answer string
}

func (f *fakeGenerator) Generate(ctx context.Context, query, contextBlock string, history []generation.Turn) (string, error) {
	return f.answer, nil
}

func TestQueryHandler_ProjectsFullOutcome(t *testing.T) {
	retriever := &fakeRetriever{
		contextBlock: "--- Planning Record 1 (relevance: 0.90) ---\nsome record text",
		results: []retrieval.Result{
			{
				Document:  "some record text",
				Metadata:  map[string]any{"ref": "2458/24", "location": "10 Main St", "decision": "GRANTED"},
				Relevance: 0.9,
			},
		},
	}
	eng := engine.New(retriever, &fakeGenerator{answer: "One extension was granted."}, nil)
	handler := makeQueryHandler(eng)

	_, out, err := handler(context.Background(), nil, QueryPlanningInput{Question: "extensions on Main St?"})
	require.NoError(t, err)

	assert.Equal(t, "One extension was granted.", out.Answer)
	assert.Equal(t, retriever.contextBlock, out.Context)
	assert.Equal(t, 1, out.NumResults)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, "2458/24", out.Sources[0].Ref)
}

func TestQueryHandler_RejectsEmptyQuestion(t *testing.T) {
	eng := engine.New(&fakeRetriever{}, &fakeGenerator{}, nil)
	handler := makeQueryHandler(eng)

	_, _, err := handler(context.Background(), nil, QueryPlanningInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question must not be empty")
}
