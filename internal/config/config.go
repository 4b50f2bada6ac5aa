// Package config holds process-wide configuration loaded once at startup.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Provider identifiers for the generation backend.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is constructed once in main and passed by reference into the
// storage, retrieval and generation constructors. Core packages never read
// the environment themselves.
type Config struct {
	// Provider selects the generation backend: "openai" (default) or "anthropic".
	Provider string

	// OpenAIAPIKey is required always: embeddings use OpenAI regardless of
	// the generation provider.
	OpenAIAPIKey string

	// AnthropicAPIKey is required when Provider is "anthropic".
	AnthropicAPIKey string

	// QdrantHost and QdrantPort locate the Qdrant gRPC endpoint.
	QdrantHost string
	QdrantPort int

	// Port is the HTTP listen port for health/landing/MCP endpoints.
	Port string

	// ServerMode switches the MCP server from stdio to HTTP transport.
	ServerMode bool
}

// Load reads configuration from the environment. Callers are expected to
// have run godotenv.Load() beforehand if a .env file should apply.
func Load() *Config {
	return &Config{
		Provider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		QdrantHost:      getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:      getEnvInt("QDRANT_PORT", 6334),
		Port:            getEnv("PORT", "8080"),
		ServerMode:      getEnv("SERVER_MODE", "false") == "true",
	}
}

// Validate enforces startup-time credential requirements. A missing
// credential for the selected provider is a fatal configuration error, not
// something to discover mid-request.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not found: embeddings require an OpenAI key, set it in .env")
	}
	switch c.Provider {
	case ProviderOpenAI:
		// Already covered by the embedding key check above.
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY not found: set it in .env or switch LLM_PROVIDER to openai")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q: expected %q or %q", c.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
