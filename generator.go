package reblog

import (
	"context"
	"strings"
)

// Generation defaults shared by every LLM backend.
const (
	DefaultMaxOutputTokens = 4000
	DefaultTemperature     = 0.7
)

// SystemInstruction establishes the content writer persona for backends
// that accept a separate system message.
const SystemInstruction = "You are an expert content writer. Your task is to improve article content by taking inspiration from top-ranking articles while maintaining originality and the core message."

// Generator produces text from a prompt using a large language model.
type Generator interface {
	// Generate returns the first candidate's text.
	// Returns ECONFIG if the backend credential is missing and EMALFORMED
	// if the provider response does not contain generated text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider identifies an LLM backend.
type Provider string

// Provider constants.
const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ParseProvider converts a configuration value into a Provider.
// Matching is case-insensitive; an empty value selects Gemini.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini, "":
		return ProviderGemini, nil
	default:
		return "", Errorf(EINVALID, "unknown LLM provider %q (want openai or gemini)", s)
	}
}

// TokenCounter counts the tokens a text occupies for a model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
