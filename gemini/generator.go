// Package gemini implements reblog services on top of Google Gemini via
// google.golang.org/genai.
package gemini

import (
	"context"
	"net/http"
	"strings"

	"github.com/fwojciec/reblog"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for article enhancement.
const DefaultModel = "gemini-2.5-flash"

// Ensure Generator implements reblog.Generator at compile time.
var _ reblog.Generator = (*Generator)(nil)

// ClientConfig holds what is needed to reach the Gemini API.
type ClientConfig struct {
	APIKey string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string

	// HTTPClient overrides the SDK's client.
	HTTPClient *http.Client
}

// NewClient creates a genai client for the Gemini API backend.
// Returns ECONFIG when no API key is configured.
func NewClient(ctx context.Context, cfg ClientConfig) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, reblog.Errorf(reblog.ECONFIG, "Gemini API key not configured")
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, reblog.Errorf(reblog.ECONFIG, "creating Gemini client: %v", err)
	}
	return client, nil
}

// Generator implements reblog.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", reblog.Errorf(reblog.ECONFIG, "Gemini client not configured")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", reblog.Errorf(reblog.EINTERNAL, "gemini: %v", err)
	}
	return ExtractText(result)
}

// BuildConfig returns the GenerateContentConfig for enhancement calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(reblog.DefaultTemperature)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: reblog.SystemInstruction}},
		},
		Temperature:     &temp,
		MaxOutputTokens: reblog.DefaultMaxOutputTokens,
	}
}

// ExtractText returns the concatenated text parts of the first candidate,
// skipping thought parts. Missing candidates or text yield EMALFORMED.
func ExtractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", reblog.Errorf(reblog.EMALFORMED, "gemini returned no candidates")
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return "", reblog.Errorf(reblog.EMALFORMED, "gemini candidate has no content (finish reason %q)", finishReason(c))
	}

	var sb strings.Builder
	found := false
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought || p.Text == "" {
			continue
		}
		sb.WriteString(p.Text)
		found = true
	}
	if !found {
		return "", reblog.Errorf(reblog.EMALFORMED, "gemini candidate has no text (finish reason %q)", finishReason(c))
	}
	return sb.String(), nil
}

func finishReason(c *genai.Candidate) string {
	if c == nil {
		return ""
	}
	return string(c.FinishReason)
}
