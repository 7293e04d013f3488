package agent

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o"

// OpenAIProvider implements Provider against any OpenAI-compatible
// chat-completions API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// ProviderOption configures an OpenAIProvider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	model   string
	baseURL string
}

// WithModel sets the model used for completions.
func WithModel(model string) ProviderOption {
	return func(c *providerConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the provider at a non-default OpenAI-compatible API.
func WithBaseURL(baseURL string) ProviderOption {
	return func(c *providerConfig) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// NewOpenAIProvider creates a provider with the given credential.
func NewOpenAIProvider(apiKey string, opts ...ProviderOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("agent API key is required")
	}

	cfg := providerConfig{model: defaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(clientOpts...),
		model:  cfg.model,
	}, nil
}

// Complete sends the task as a single user message and waits for the full
// response. Errors from the API surface unmodified to the caller.
func (p *OpenAIProvider) Complete(ctx context.Context, task string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(task),
		},
	})
	if err != nil {
		return "", fmt.Errorf("agent completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string { return p.model }
