package enhance_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/reblog"
	"github.com/fwojciec/reblog/enhance"
	"github.com/fwojciec/reblog/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture wires an Enhancer to mocks that succeed by default and records
// what reached the store and the generator.
type fixture struct {
	enhancer *enhance.Enhancer

	mu        sync.Mutex
	updates   map[string]reblog.ArticleUpdate
	scraped   []string
	prompts   []string
	events    []enhance.ProgressEvent
	searchLim int
}

func newFixture(t *testing.T, articles ...*reblog.Article) *fixture {
	t.Helper()

	f := &fixture{updates: make(map[string]reblog.ArticleUpdate)}

	store := &mock.ArticleService{
		FindArticlesFn: func(ctx context.Context, filter reblog.ArticleFilter) ([]*reblog.Article, error) {
			return articles, nil
		},
		FindArticleByIDFn: func(ctx context.Context, id string) (*reblog.Article, error) {
			for _, a := range articles {
				if a.ID == id {
					return a, nil
				}
			}
			return nil, reblog.Errorf(reblog.ENOTFOUND, "article not found")
		},
		UpdateArticleFn: func(ctx context.Context, id string, upd reblog.ArticleUpdate) (*reblog.Article, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.updates[id] = upd
			return &reblog.Article{ID: id}, nil
		},
	}
	searcher := &mock.Searcher{
		SearchFn: func(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
			f.mu.Lock()
			f.searchLim = limit
			f.mu.Unlock()
			return []*reblog.SearchResult{
				{URL: "https://a.example/blog/one"},
				{URL: "https://b.example/post/two"},
			}, nil
		},
	}
	scraper := &mock.Scraper{
		ScrapeFn: func(ctx context.Context, url string) (*reblog.Page, error) {
			f.mu.Lock()
			f.scraped = append(f.scraped, url)
			f.mu.Unlock()
			return &reblog.Page{URL: url, Title: "Ref", Content: "reference body for " + url}, nil
		},
	}
	generator := &mock.Generator{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			f.mu.Lock()
			f.prompts = append(f.prompts, prompt)
			f.mu.Unlock()
			return "<h2>Improved</h2>", nil
		},
	}

	f.enhancer = enhance.New(store, searcher, scraper, generator)
	f.enhancer.Delay = 0
	return f
}

func (f *fixture) progress(ev enhance.ProgressEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fixture) eventTypes() []enhance.ProgressType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]enhance.ProgressType, 0, len(f.events))
	for _, ev := range f.events {
		types = append(types, ev.Type)
	}
	return types
}

func pendingArticle(id string) *reblog.Article {
	return &reblog.Article{ID: id, Title: "Article " + id, Content: "short", SourceURL: "https://beyondchats.com/blogs/" + id + "/"}
}

func TestEnhancer_EnhanceArticle(t *testing.T) {
	t.Parallel()

	t.Run("persists generated content with scraped references", func(t *testing.T) {
		t.Parallel()

		article := &reblog.Article{ID: "1", Title: "X", Content: "short"}
		f := newFixture(t, article)

		err := f.enhancer.EnhanceArticle(context.Background(), article, f.progress)

		require.NoError(t, err)
		upd, ok := f.updates["1"]
		require.True(t, ok)
		assert.Equal(t, "<h2>Improved</h2>", *upd.Content)
		assert.True(t, *upd.IsUpdated)
		assert.Equal(t, []string{"https://a.example/blog/one", "https://b.example/post/two"}, *upd.References)
		assert.Equal(t, enhance.DefaultSearchLimit, f.searchLim)

		require.Len(t, f.prompts, 1)
		assert.Contains(t, f.prompts[0], "Title: X")
		assert.Contains(t, f.prompts[0], "Reference Article 2 (https://b.example/post/two):")

		assert.Equal(t, []enhance.ProgressType{
			enhance.ProgressArticleStarted,
			enhance.ProgressStage, // searching
			enhance.ProgressStage, // scraping
			enhance.ProgressStage, // composing
			enhance.ProgressStage, // generating
			enhance.ProgressStage, // persisting
			enhance.ProgressArticleEnhanced,
		}, f.eventTypes())
	})

	t.Run("skips without scraping when search finds nothing", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		f.enhancer.Searcher = &mock.Searcher{
			SearchFn: func(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
				return []*reblog.SearchResult{}, nil
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, f.progress)

		var skip *enhance.SkipError
		require.ErrorAs(t, err, &skip)
		assert.Equal(t, enhance.StageSearching, skip.Stage)
		assert.Empty(t, f.scraped)
		assert.Empty(t, f.prompts)
		assert.Empty(t, f.updates)
	})

	t.Run("skips when search fails", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		searchErr := errors.New("quota exceeded")
		f.enhancer.Searcher = &mock.Searcher{
			SearchFn: func(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
				return nil, searchErr
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, nil)

		require.ErrorIs(t, err, searchErr)
		assert.True(t, enhance.IsSkip(err))
		assert.Empty(t, f.updates)
	})

	t.Run("tolerates individual reference failures", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		f.enhancer.Scraper = &mock.Scraper{
			ScrapeFn: func(ctx context.Context, url string) (*reblog.Page, error) {
				if url == "https://a.example/blog/one" {
					return nil, errors.New("HTTP 403")
				}
				return &reblog.Page{URL: url, Content: "usable"}, nil
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, f.progress)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://b.example/post/two"}, *f.updates["1"].References)
		assert.Contains(t, f.eventTypes(), enhance.ProgressReferenceFailed)
	})

	t.Run("skips when no reference is usable", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		f.enhancer.Scraper = &mock.Scraper{
			ScrapeFn: func(ctx context.Context, url string) (*reblog.Page, error) {
				if url == "https://a.example/blog/one" {
					return nil, reblog.Errorf(reblog.ENOTFOUND, "no content")
				}
				return &reblog.Page{URL: url, Title: "Title only"}, nil
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, nil)

		var skip *enhance.SkipError
		require.ErrorAs(t, err, &skip)
		assert.Equal(t, enhance.StageScraping, skip.Stage)
		assert.Empty(t, f.prompts)
		assert.Empty(t, f.updates)
	})

	t.Run("skips without update when generation is malformed", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		f.enhancer.Generator = &mock.Generator{
			GenerateFn: func(ctx context.Context, prompt string) (string, error) {
				return "", reblog.Errorf(reblog.EMALFORMED, "gemini returned no candidates")
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, nil)

		var skip *enhance.SkipError
		require.ErrorAs(t, err, &skip)
		assert.Equal(t, enhance.StageGenerating, skip.Stage)
		assert.Equal(t, reblog.EMALFORMED, reblog.ErrorCode(err))
		assert.Empty(t, f.updates)
	})

	t.Run("skips blank generation", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		f.enhancer.Generator = &mock.Generator{
			GenerateFn: func(ctx context.Context, prompt string) (string, error) {
				return "  \n", nil
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, nil)

		assert.True(t, enhance.IsSkip(err))
		assert.Empty(t, f.updates)
	})

	t.Run("never reprocesses an enhanced article", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		article.IsUpdated = true
		f := newFixture(t, article)
		f.enhancer.Searcher = &mock.Searcher{
			SearchFn: func(ctx context.Context, query string, limit int) ([]*reblog.SearchResult, error) {
				t.Error("search should not be called")
				return nil, nil
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, f.progress)

		var skip *enhance.SkipError
		require.ErrorAs(t, err, &skip)
		assert.Equal(t, enhance.StagePending, skip.Stage)
		assert.Equal(t, "already enhanced", skip.Reason)
		assert.Equal(t, []enhance.ProgressType{enhance.ProgressArticleStarted, enhance.ProgressArticleSkipped}, f.eventTypes())
	})

	t.Run("reports persistence failure as skip", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		f.enhancer.Articles = &mock.ArticleService{
			UpdateArticleFn: func(ctx context.Context, id string, upd reblog.ArticleUpdate) (*reblog.Article, error) {
				return nil, reblog.Errorf(reblog.EINTERNAL, "store down")
			},
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, nil)

		var skip *enhance.SkipError
		require.ErrorAs(t, err, &skip)
		assert.Equal(t, enhance.StagePersisting, skip.Stage)
	})

	t.Run("reports prompt tokens when counter is set", func(t *testing.T) {
		t.Parallel()

		article := pendingArticle("1")
		f := newFixture(t, article)
		f.enhancer.Tokens = &mock.TokenCounter{
			CountTokensFn: func(ctx context.Context, text string) (int, error) { return 321, nil },
		}

		err := f.enhancer.EnhanceArticle(context.Background(), article, f.progress)

		require.NoError(t, err)
		f.mu.Lock()
		defer f.mu.Unlock()
		var tokens int
		for _, ev := range f.events {
			if ev.Stage == enhance.StageGenerating {
				tokens = ev.PromptTokens
			}
		}
		assert.Equal(t, 321, tokens)
	})
}

func TestEnhancer_EnhanceByID(t *testing.T) {
	t.Parallel()

	t.Run("enhances loaded article", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, pendingArticle("7"))

		err := f.enhancer.EnhanceByID(context.Background(), "7", nil)

		require.NoError(t, err)
		assert.Contains(t, f.updates, "7")
	})

	t.Run("returns not found", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		err := f.enhancer.EnhanceByID(context.Background(), "404", nil)

		assert.Equal(t, reblog.ENOTFOUND, reblog.ErrorCode(err))
		assert.False(t, enhance.IsSkip(err))
	})
}

func TestEnhancer_Run(t *testing.T) {
	t.Parallel()

	t.Run("processes only pending articles and tallies outcomes", func(t *testing.T) {
		t.Parallel()

		done := pendingArticle("1")
		done.IsUpdated = true
		f := newFixture(t, done, pendingArticle("2"), pendingArticle("3"), pendingArticle("4"))
		f.enhancer.Generator = &mock.Generator{
			GenerateFn: func(ctx context.Context, prompt string) (string, error) {
				if strings.Contains(prompt, "Title: Article 3\n") {
					return "", reblog.Errorf(reblog.EMALFORMED, "no choices")
				}
				return "<p>new</p>", nil
			},
		}

		result, err := f.enhancer.Run(context.Background(), f.progress)

		require.NoError(t, err)
		assert.Equal(t, &enhance.Result{Total: 4, Pending: 3, Enhanced: 2, Skipped: 1}, result)
		assert.NotContains(t, f.updates, "1")
		assert.Contains(t, f.updates, "2")
		assert.NotContains(t, f.updates, "3")
		assert.Contains(t, f.updates, "4")
	})

	t.Run("stamps batch position and waits between articles only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, pendingArticle("1"), pendingArticle("2"))
		f.enhancer.Delay = time.Millisecond

		_, err := f.enhancer.Run(context.Background(), f.progress)

		require.NoError(t, err)
		f.mu.Lock()
		defer f.mu.Unlock()

		var waits, starts []enhance.ProgressEvent
		for _, ev := range f.events {
			switch ev.Type {
			case enhance.ProgressWaiting:
				waits = append(waits, ev)
			case enhance.ProgressArticleStarted:
				starts = append(starts, ev)
			}
		}
		require.Len(t, waits, 1)
		assert.Equal(t, 1, waits[0].Index)
		assert.Equal(t, time.Millisecond, waits[0].Delay)
		require.Len(t, starts, 2)
		assert.Equal(t, 1, starts[0].Index)
		assert.Equal(t, 2, starts[1].Index)
		assert.Equal(t, 2, starts[1].Total)
		assert.Equal(t, enhance.ProgressBatchStarted, f.events[0].Type)
		assert.Equal(t, enhance.ProgressBatchFinished, f.events[len(f.events)-1].Type)
	})

	t.Run("stops during delay when cancelled", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, pendingArticle("1"), pendingArticle("2"))
		f.enhancer.Delay = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		progress := func(ev enhance.ProgressEvent) {
			f.progress(ev)
			if ev.Type == enhance.ProgressWaiting {
				cancel()
			}
		}

		result, err := f.enhancer.Run(ctx, progress)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, &enhance.Result{Total: 2, Pending: 2, Enhanced: 1}, result)
		assert.NotContains(t, f.updates, "2")
	})

	t.Run("returns store error when listing fails", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.enhancer.Articles = &mock.ArticleService{
			FindArticlesFn: func(ctx context.Context, filter reblog.ArticleFilter) ([]*reblog.Article, error) {
				return nil, reblog.Errorf(reblog.EINTERNAL, "connection refused")
			},
		}

		result, err := f.enhancer.Run(context.Background(), nil)

		assert.Nil(t, result)
		assert.Equal(t, reblog.EINTERNAL, reblog.ErrorCode(err))
	})

	t.Run("finishes immediately with nothing pending", func(t *testing.T) {
		t.Parallel()

		done := pendingArticle("1")
		done.IsUpdated = true
		f := newFixture(t, done)

		result, err := f.enhancer.Run(context.Background(), f.progress)

		require.NoError(t, err)
		assert.Equal(t, &enhance.Result{Total: 1}, result)
		assert.Equal(t, []enhance.ProgressType{enhance.ProgressBatchStarted, enhance.ProgressBatchFinished}, f.eventTypes())
	})
}

func TestSkipError(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := &enhance.SkipError{Stage: enhance.StageGenerating, Reason: "generation failed", Err: inner}

	assert.Equal(t, "skipped at generating: generation failed: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "skipped at searching: no search results", (&enhance.SkipError{Stage: enhance.StageSearching, Reason: "no search results"}).Error())
}
