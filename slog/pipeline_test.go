package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/reblog"
	"github.com/fwojciec/reblog/mock"
	reblogslog "github.com/fwojciec/reblog/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingScraper_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("logs title and content size", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Scraper{
			ScrapeFn: func(ctx context.Context, url string) (*reblog.Page, error) {
				return &reblog.Page{URL: url, Title: "Chatbots", Content: "0123456789"}, nil
			},
		}

		s := reblogslog.NewLoggingScraper(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		page, err := s.Scrape(context.Background(), "https://example.com/blog/chatbots")

		require.NoError(t, err)
		assert.Equal(t, "Chatbots", page.Title)
		output := buf.String()
		assert.Contains(t, output, "scrape")
		assert.Contains(t, output, "title=Chatbots")
		assert.Contains(t, output, "chars=10")
	})

	t.Run("logs error without page", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Scraper{
			ScrapeFn: func(ctx context.Context, url string) (*reblog.Page, error) {
				return nil, errors.New("HTTP 403")
			},
		}

		s := reblogslog.NewLoggingScraper(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := s.Scrape(context.Background(), "https://example.com/blog/x")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "chars=0")
		assert.Contains(t, buf.String(), "err=\"HTTP 403\"")
	})
}

func TestLoggingSearcher_Search(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.Searcher{
		SearchFn: func(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
			return []*reblog.SearchResult{{URL: "https://a.example/blog/1"}}, nil
		},
	}

	s := reblogslog.NewLoggingSearcher(inner, "serpapi", slog.New(slog.NewTextHandler(&buf, nil)))
	results, err := s.Search(context.Background(), "AI chatbots", 2)

	require.NoError(t, err)
	assert.Len(t, results, 1)
	output := buf.String()
	assert.Contains(t, output, "provider=serpapi")
	assert.Contains(t, output, "query=\"AI chatbots\"")
	assert.Contains(t, output, "limit=2")
	assert.Contains(t, output, "count=1")
}

func TestLoggingGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("logs sizes, not text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Generator{
			GenerateFn: func(ctx context.Context, prompt string) (string, error) {
				return "<h2>secret body</h2>", nil
			},
		}

		g := reblogslog.NewLoggingGenerator(inner, "gemini", slog.New(slog.NewTextHandler(&buf, nil)))
		text, err := g.Generate(context.Background(), "prompt text")

		require.NoError(t, err)
		assert.Equal(t, "<h2>secret body</h2>", text)
		output := buf.String()
		assert.Contains(t, output, "provider=gemini")
		assert.Contains(t, output, "prompt_chars=11")
		assert.Contains(t, output, "chars=20")
		assert.NotContains(t, output, "secret")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Generator{
			GenerateFn: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("quota")
			},
		}

		g := reblogslog.NewLoggingGenerator(inner, "openai", slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := g.Generate(context.Background(), "p")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=quota")
	})
}
