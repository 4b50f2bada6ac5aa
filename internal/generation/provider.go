// Package generation composes grounded chat requests over retrieved
// planning records and dispatches them to a configurable LLM backend.
package generation

import (
	"context"
	"fmt"

	"github.com/blindspotlabs/dublin-planning-rag/internal/config"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message in the conversation. History is owned by the
// caller; the composer caps it to the most recent turns before sending.
type Turn struct {
	Role    string
	Content string
}

// Generator produces an answer from the query, the retrieved context and
// the conversation history. Implementations are stateless per call.
type Generator interface {
	Generate(ctx context.Context, query, contextBlock string, history []Turn) (string, error)
}

// NewGenerator selects the generation backend from configuration. Both
// backends receive semantically identical composed messages; they differ
// only in how the system instructions are attached. A missing credential
// for the selected provider is a construction error, never discovered
// mid-request.
func NewGenerator(cfg *config.Config) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicGenerator(cfg.AnthropicAPIKey)
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
