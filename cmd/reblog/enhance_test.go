package main_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/reblog"
	main "github.com/fwojciec/reblog/cmd/reblog"
	"github.com/fwojciec/reblog/enhance"
	"github.com/fwojciec/reblog/mock"
	reblogprom "github.com/fwojciec/reblog/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnhancer(articles []*reblog.Article, searchResults int) *enhance.Enhancer {
	store := &mock.ArticleService{
		FindArticlesFn: func(context.Context, reblog.ArticleFilter) ([]*reblog.Article, error) {
			return articles, nil
		},
		FindArticleByIDFn: func(_ context.Context, id string) (*reblog.Article, error) {
			for _, a := range articles {
				if a.ID == id {
					return a, nil
				}
			}
			return nil, reblog.Errorf(reblog.ENOTFOUND, "article not found")
		},
		UpdateArticleFn: func(_ context.Context, id string, _ reblog.ArticleUpdate) (*reblog.Article, error) {
			return &reblog.Article{ID: id}, nil
		},
	}
	searcher := &mock.Searcher{
		SearchFn: func(_ context.Context, _ string, limit int) ([]*reblog.SearchResult, error) {
			results := []*reblog.SearchResult{
				{URL: "https://a.example/blog/one"},
				{URL: "https://b.example/post/two"},
			}
			return results[:min(searchResults, limit)], nil
		},
	}
	scraper := &mock.Scraper{
		ScrapeFn: func(_ context.Context, url string) (*reblog.Page, error) {
			if url == "https://b.example/post/two" {
				return nil, errors.New("HTTP 403")
			}
			return &reblog.Page{URL: url, Title: "Ref", Content: "reference text"}, nil
		},
	}
	generator := &mock.Generator{
		GenerateFn: func(context.Context, string) (string, error) {
			return "<h2>Rewritten</h2><p>Body</p>", nil
		},
	}
	e := enhance.New(store, searcher, scraper, generator)
	e.Delay = 0
	return e
}

func TestEnhanceCmd_Run(t *testing.T) {
	t.Parallel()

	articles := []*reblog.Article{
		{ID: "1", Title: "First", Content: "c"},
		{ID: "2", Title: "Second", Content: "c", IsUpdated: true},
		{ID: "3", Title: "Third", Content: "c"},
	}

	t.Run("runs the batch and prints a summary", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Enhancer: testEnhancer(articles, 2)}

		err := (&main.EnhanceCmd{}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "Found 2 pending articles")
		assert.Contains(t, output, "[1/2] First")
		assert.Contains(t, output, "[2/2] Third")
		assert.Contains(t, output, "updated (")
		assert.Contains(t, output, "Enhanced 2 of 2 pending articles (0 skipped, 3 total)")
		assert.Contains(t, stderr.String(), "skip reference https://b.example/post/two")
	})

	t.Run("reports skipped articles", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Enhancer: testEnhancer(articles, 0)}

		err := (&main.EnhanceCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Enhanced 0 of 2 pending articles (2 skipped, 3 total)")
		assert.Contains(t, stderr.String(), "skipped at searching: no search results")
	})

	t.Run("enhances a single article by ID", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Enhancer: testEnhancer(articles, 2)}

		err := (&main.EnhanceCmd{ID: "3"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Third")
		assert.NotContains(t, stdout.String(), "First")
	})

	t.Run("returns skip for an already enhanced article", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Enhancer: testEnhancer(articles, 2)}

		err := (&main.EnhanceCmd{ID: "2"}).Run(deps)

		assert.True(t, enhance.IsSkip(err))
		assert.Contains(t, stderr.String(), "already enhanced")
	})

	t.Run("reports unknown article ID", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Enhancer: testEnhancer(articles, 2)}

		err := (&main.EnhanceCmd{ID: "404"}).Run(deps)

		assert.Equal(t, reblog.ENOTFOUND, reblog.ErrorCode(err))
		assert.Contains(t, stderr.String(), "article not found")
	})

	t.Run("writes metrics file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "reblog.prom")
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   &bytes.Buffer{},
			Enhancer: testEnhancer(articles, 2),
			Metrics:  reblogprom.NewRecorder(),
		}

		err := (&main.EnhanceCmd{MetricsFile: path}).Run(deps)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "reblog_articles_enhanced_total 2")
		assert.Contains(t, string(data), "reblog_reference_failures_total 2")
	})
}
