package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"alcyxob/microcycle/internal/config"
)

// Message roles accepted by the completion backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Options carries per-request generation parameters.
type Options struct {
	Temperature float64
	MaxTokens   int
	Retries     int // corrective retries after a parse failure
}

// Option overrides one generation parameter for a single request.
type Option func(*Options)

func WithTemperature(t float64) Option { return func(o *Options) { o.Temperature = t } }
func WithMaxTokens(n int) Option       { return func(o *Options) { o.MaxTokens = n } }
func WithRetries(n int) Option         { return func(o *Options) { o.Retries = n } }

// Observer receives request outcomes and retry notifications, for
// instrumentation.
type Observer interface {
	CompletionRequest(outcome string)
	CompletionRetry()
}

// Client wraps an OpenAI-compatible chat backend. A Client without a backing
// model is a valid state: it reports itself unavailable and every call
// returns ErrServiceUnavailable, which callers treat as the signal to use
// their deterministic fallback.
type Client struct {
	model    llms.Model
	defaults Options
	observer Observer
}

// NewClient builds a client from configuration. A missing API key is not a
// construction error; it yields an unavailable client.
func NewClient(cfg config.CompletionConfig) (*Client, error) {
	defaults := defaultOptions(cfg)
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Client{defaults: defaults}, nil
	}

	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion backend: %w", err)
	}
	return &Client{model: model, defaults: defaults}, nil
}

// NewClientWithModel wires an existing backend. Tests use it to inject fakes.
func NewClientWithModel(model llms.Model, cfg config.CompletionConfig) *Client {
	return &Client{model: model, defaults: defaultOptions(cfg)}
}

// SetObserver attaches an instrumentation sink to the client.
func (c *Client) SetObserver(o Observer) {
	if c != nil {
		c.observer = o
	}
}

func (c *Client) observe(outcome string) {
	if c.observer != nil {
		c.observer.CompletionRequest(outcome)
	}
}

func (c *Client) observeRetry() {
	if c.observer != nil {
		c.observer.CompletionRetry()
	}
}

func defaultOptions(cfg config.CompletionConfig) Options {
	o := Options{Temperature: 0.7, MaxTokens: 2000, Retries: 2}
	if cfg.Temperature > 0 {
		o.Temperature = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		o.MaxTokens = cfg.MaxTokens
	}
	if cfg.Retries > 0 {
		o.Retries = cfg.Retries
	}
	return o
}

// IsAvailable reports whether a generation backend is configured. It is a
// local check only and performs no network calls.
func (c *Client) IsAvailable() bool {
	return c != nil && c.model != nil
}

// GenerateText requests a plain-text completion. An empty model string uses
// the backend's configured default.
func (c *Client) GenerateText(ctx context.Context, model string, msgs []Message, opts ...Option) (string, error) {
	if !c.IsAvailable() {
		return "", ErrServiceUnavailable
	}
	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}
	return c.generate(ctx, model, msgs, o, false)
}

func (c *Client) generate(ctx context.Context, model string, msgs []Message, o Options, jsonMode bool) (string, error) {
	callOpts := []llms.CallOption{
		llms.WithTemperature(o.Temperature),
		llms.WithMaxTokens(o.MaxTokens),
	}
	if model != "" {
		callOpts = append(callOpts, llms.WithModel(model))
	}
	if jsonMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	resp, err := c.model.GenerateContent(ctx, toMessageContent(msgs), callOpts...)
	if err != nil {
		err = translateTransportError(err)
		c.observe(outcomeFor(err))
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		c.observe("empty")
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		c.observe("empty")
		return "", ErrEmptyResponse
	}
	c.observe("ok")
	return content, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	default:
		return "error"
	}
}

func toMessageContent(msgs []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}
	return out
}
