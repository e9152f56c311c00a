// Package openai implements reblog.Generator against an OpenAI-compatible
// chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/reblog"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 120 * time.Second

	maxAttempts = 3
)

// Ensure Generator implements reblog.Generator.
var _ reblog.Generator = (*Generator)(nil)

// Generator sends the prompt as a user message after the writer persona
// system message. Rate-limited requests are retried with backoff.
type Generator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	backoff time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithBaseURL points the client at another OpenAI-compatible API root.
func WithBaseURL(u string) Option {
	return func(g *Generator) { g.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// WithHTTPClient overrides the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Generator) { g.client = c }
}

// WithBackoff sets the initial wait after a 429; it doubles per attempt.
func WithBackoff(d time.Duration) Option {
	return func(g *Generator) { g.backoff = d }
}

// NewGenerator returns a Generator using apiKey.
func NewGenerator(apiKey string, opts ...Option) *Generator {
	g := &Generator{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		client:  &http.Client{Timeout: DefaultTimeout},
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// errRateLimited marks a 429 response.
var errRateLimited = errors.New("rate limited")

// Generate implements reblog.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", reblog.Errorf(reblog.ECONFIG, "OpenAI API key not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []message{
			{Role: "system", Content: reblog.SystemInstruction},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   reblog.DefaultMaxOutputTokens,
		Temperature: reblog.DefaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	wait := g.backoff
	for attempt := 1; ; attempt++ {
		text, err := g.complete(ctx, body)
		if !errors.Is(err, errRateLimited) {
			return text, err
		}
		if attempt == maxAttempts {
			return "", reblog.Errorf(reblog.EINTERNAL, "openai: rate limited after %d attempts", maxAttempts)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func (g *Generator) complete(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", reblog.Errorf(reblog.EINTERNAL, "openai: HTTP %d: %s", resp.StatusCode, msg)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", reblog.Errorf(reblog.EMALFORMED, "openai: decoding response: %v", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", reblog.Errorf(reblog.EMALFORMED, "openai: response has no message content")
	}
	return *out.Choices[0].Message.Content, nil
}
