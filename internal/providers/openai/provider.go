package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/kidonrage/ai-labs/internal/providers"
)

// Provider adapts OpenAI-compatible chat-completions backends (Ollama,
// LM Studio, proxies) to the same single round-trip contract the native
// responses client implements. The whole linearized prompt travels as one
// user message.
type Provider struct {
	client *openai.Client
}

// NewProvider creates a chat-completions provider. BaseURL is optional; when
// empty the client talks to the official API host. The key is not validated
// here: the conversation rejects sends without one before any call is made.
func NewProvider(apiKey, baseURL string) (*Provider, error) {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	}

	return &Provider{client: openai.NewClientWithConfig(cfg)}, nil
}

// Complete performs a non-streaming completion.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.Completion, error) {
	started := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: float32(req.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Input},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("response contained no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("response contained no assistant message text")
	}

	duration := time.Since(started).Seconds()
	completion := &providers.Completion{
		Text:            text,
		Model:           resp.Model,
		DurationSeconds: &duration,
	}
	if completion.Model == "" {
		completion.Model = req.Model
	}
	// Chat-completions usage is always present on success; map it to the
	// input/output naming the rest of the system uses.
	completion.Usage = &providers.Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}

	return completion, nil
}
