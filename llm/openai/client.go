// Package openai implements the model backend client on OpenAI-compatible
// chat completion endpoints.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/snow-ghost/advisor/core"
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client sends the full ordered turn list as one chat completion request
// and returns the single textual completion.
type Client struct {
	api   *openai.Client
	cfg   Config
	usage core.UsageRecorder
}

// Option configures optional client behavior.
type Option func(*Client)

// WithUsageRecorder reports token usage of every call to the recorder.
func WithUsageRecorder(rec core.UsageRecorder) Option {
	return func(c *Client) { c.usage = rec }
}

// NewClient creates a backend client for the configured endpoint.
func NewClient(cfg Config, opts ...Option) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	c := &Client{
		api: openai.NewClientWithConfig(apiConfig),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

// Complete performs one chat completion over the conversation. Backend
// failures come back as *core.TransportError so the retry coordinator can
// keep them out of the content-feedback budget.
func (c *Client) Complete(ctx context.Context, turns []core.DialogTurn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, turn := range turns {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", &core.TransportError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &core.TransportError{Err: errors.New("completion returned no choices")}
	}

	if c.usage != nil {
		c.usage.RecordUsage(ctx, c.cfg.Model, core.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		})
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ core.ModelClient = (*Client)(nil)
