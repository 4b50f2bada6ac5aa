// Package mcp exposes the planning engine over the Model Context Protocol.
package mcp

import "github.com/blindspotlabs/dublin-planning-rag/internal/engine"

// HistoryTurn is one prior conversation message passed by the client.
type HistoryTurn struct {
	// Role is "user" or "assistant".
	Role string `json:"role" jsonschema:"required,description=Role of the message author: user or assistant"`
	// Content is the message text.
	Content string `json:"content" jsonschema:"required,description=The message text"`
}

// QueryPlanningInput defines the input parameters for the query_planning tool.
type QueryPlanningInput struct {
	// Question is the natural-language planning question.
	Question string `json:"question" jsonschema:"required,description=Natural-language question about Dublin City Council planning applications"`
	// History is optional prior conversation, oldest first.
	History []HistoryTurn `json:"history,omitempty" jsonschema:"description=Prior conversation turns for follow-up questions, oldest first"`
}

// QueryPlanningOutput contains the grounded answer with citations.
type QueryPlanningOutput struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`
	// Sources cites the planning records behind the answer.
	Sources []engine.Citation `json:"sources"`
	// Context is the raw retrieved context the answer was grounded on.
	Context string `json:"context"`
	// NumResults is how many records were retrieved for the answer.
	NumResults int `json:"num_results"`
}

// SearchRecordsInput defines the input parameters for the search_records tool.
type SearchRecordsInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=Semantic search query for planning records"`
	// MaxResults is the maximum number of records to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of records to return"`
	// MinRelevance drops records scoring below the threshold (0-1).
	MinRelevance float64 `json:"min_relevance,omitempty" jsonschema:"minimum=0,maximum=1,default=0,description=Minimum relevance score threshold (0-1)"`
}

// SearchRecordsOutput contains the raw retrieval results, no LLM involved.
type SearchRecordsOutput struct {
	// Results is the list of matching planning records.
	Results []RecordResult `json:"results"`
	// Message provides informational context (e.g. nothing matched).
	Message string `json:"message,omitempty"`
}

// RecordResult is a single retrieved planning record.
type RecordResult struct {
	// Ref is the planning application reference number.
	Ref string `json:"ref"`
	// Location is the development address.
	Location string `json:"location"`
	// Decision is the current decision status.
	Decision string `json:"decision"`
	// Relevance is the similarity score (0-1).
	Relevance float64 `json:"relevance"`
	// Text is the full synthesized record text.
	Text string `json:"text"`
}

// StatusInput defines the input parameters for the get_index_status tool.
// The tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the current state of the planning index.
type StatusOutput struct {
	// Records is the number of indexed planning records.
	Records int `json:"records"`
	// EmbeddingModel is the model the index was built with.
	EmbeddingModel string `json:"embedding_model"`
	// BuiltAt is when the index was last rebuilt (RFC 3339).
	BuiltAt string `json:"built_at"`
	// Collection is the Qdrant collection name.
	Collection string `json:"collection"`
}
