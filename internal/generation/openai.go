package generation

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIModel is the chat model used for answer generation.
const OpenAIModel = openai.ChatModelGPT4oMini

// OpenAIGenerator answers queries through the OpenAI chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator creates an OpenAI-backed generator.
func NewOpenAIGenerator(apiKey string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not found: set it in .env")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGenerator{client: &client}, nil
}

// Generate sends the system prompt, the capped history and the composed
// user message as a single chat completion request.
func (g *OpenAIGenerator) Generate(ctx context.Context, query, contextBlock string, history []Turn) (string, error) {
	trimmed := capHistory(history)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(trimmed)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, turn := range trimmed {
		if turn.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userMessage(query, contextBlock)))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       OpenAIModel,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxOutputTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
