package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 8192
	DefaultTimeout   = 120 * time.Second
)

// Config configures the OpenAI-compatible gateway.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIGateway talks to any OpenAI-compatible chat completions endpoint.
type OpenAIGateway struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewOpenAIGateway builds a gateway. Empty fields fall back to the defaults.
// Outgoing calls are traced through otelhttp.
func NewOpenAIGateway(cfg Config) *OpenAIGateway {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	g := &OpenAIGateway{
		client:    openai.NewClientWithConfig(oc),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = DefaultMaxTokens
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	return g
}

// Configured reports whether an API key was supplied.
func (g *OpenAIGateway) Configured() bool {
	return strings.TrimSpace(g.apiKey) != ""
}

// Model returns the model name requests are sent with.
func (g *OpenAIGateway) Model() string {
	return g.model
}

func (g *OpenAIGateway) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// Reasoning models reject max_tokens.
	if usesCompletionTokens(g.model) {
		req.MaxCompletionTokens = g.maxTokens
	} else {
		req.MaxTokens = g.maxTokens
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrProviderError)
	}
	return resp.Choices[0].Message.Content, nil
}

func usesCompletionTokens(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// classify maps client errors onto the gateway sentinels, keeping the cause.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if retryable(apiErr.HTTPStatusCode) {
			return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return fmt.Errorf("%w: %w", ErrProviderError, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if retryable(reqErr.HTTPStatusCode) {
			return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return fmt.Errorf("%w: %w", ErrProviderError, err)
	}
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
