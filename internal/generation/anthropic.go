package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicModel is the chat model used for answer generation.
const AnthropicModel = "claude-sonnet-4-20250514"

// AnthropicGenerator answers queries through the Anthropic messages API.
// Anthropic takes the system prompt as a separate request field rather
// than a leading message.
type AnthropicGenerator struct {
	client anthropic.Client
}

// NewAnthropicGenerator creates an Anthropic-backed generator.
func NewAnthropicGenerator(apiKey string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not found: set it in .env or switch LLM_PROVIDER to openai")
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Generate sends the capped history and the composed user message, with
// the system prompt on its dedicated channel.
func (g *AnthropicGenerator) Generate(ctx context.Context, query, contextBlock string, history []Turn) (string, error) {
	trimmed := capHistory(history)

	messages := make([]anthropic.MessageParam, 0, len(trimmed)+1)
	for _, turn := range trimmed {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage(query, contextBlock))))

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(AnthropicModel),
		MaxTokens:   maxOutputTokens,
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("message request failed: %w", err)
	}

	var answer strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer.WriteString(block.Text)
		}
	}
	if answer.Len() == 0 {
		return "", fmt.Errorf("message response contained no text")
	}

	return answer.String(), nil
}
