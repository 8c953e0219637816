// Package openai adapts OpenAI-compatible chat completion APIs to llm.Provider.
package openai

import (
	"context"
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"doc-analyzer/internal/llm"
)

const (
	providerName = "openai"

	defaultTemperature = 0.2
	defaultMaxTokens   = 1200
)

// Client implements llm.Provider using Chat Completions.
type Client struct {
	client *goopenai.Client
}

// NewClient constructs a client. baseURL may point at any OpenAI-compatible
// server; empty keeps the public endpoint.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(baseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	return &Client{client: goopenai.NewClientWithConfig(cfg)}, nil
}

func (c *Client) Name() string { return providerName }

func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// gpt-5 models reject temperature and max_tokens.
	if isGPT5(model) {
		req.MaxCompletionTokens = defaultMaxTokens
	} else {
		req.Temperature = defaultTemperature
		req.MaxTokens = defaultMaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai response missing choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the SDK holds no long-lived resources.
func (c *Client) Close() error { return nil }

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Provider = (*Client)(nil)
