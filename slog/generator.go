package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/reblog"
)

var _ reblog.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator logs generation calls. Prompts and
// completions are logged by size only.
type LoggingGenerator struct {
	next   reblog.Generator
	name   string
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next reblog.Generator, name string, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, name: name, logger: logger}
}

// Generate delegates to the wrapped generator and logs the call.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt string) (text string, err error) {
	defer func(begin time.Time) {
		logDone(ctx, g.logger, "generate", begin, err,
			"provider", g.name,
			"prompt_chars", len(prompt),
			"chars", len(text),
		)
	}(time.Now())
	return g.next.Generate(ctx, prompt)
}
