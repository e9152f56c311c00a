// Package enhance rewrites pending articles using search-derived reference
// material and an LLM, one article at a time.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/reblog"
)

// Defaults for Enhancer.
const (
	DefaultSearchLimit = 2
	DefaultDelay       = 60 * time.Second
)

// Stage is a step of the per-article pipeline.
type Stage string

const (
	StagePending    Stage = "pending"
	StageSearching  Stage = "searching"
	StageScraping   Stage = "scraping"
	StageComposing  Stage = "composing"
	StageGenerating Stage = "generating"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
)

// SkipError reports why an article was not enhanced and at which stage the
// attempt stopped. The article stays pending for a later run.
type SkipError struct {
	Stage  Stage
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *SkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skipped at %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("skipped at %s: %s", e.Stage, e.Reason)
}

// Unwrap returns the underlying stage error, if any.
func (e *SkipError) Unwrap() error { return e.Err }

// Result holds the outcome of a batch run.
type Result struct {
	Total    int // articles in the store
	Pending  int // articles not yet enhanced
	Enhanced int
	Skipped  int
}

// Enhancer coordinates search, reference scraping, prompt composition,
// generation and persistence for articles.
type Enhancer struct {
	Articles  reblog.ArticleService
	Searcher  reblog.Searcher
	Scraper   reblog.Scraper
	Composer  *reblog.Composer
	Generator reblog.Generator

	// Tokens, when set, measures each prompt for progress reporting.
	Tokens reblog.TokenCounter

	// SearchLimit is the number of search results requested per article.
	SearchLimit int

	// Delay is the pause between consecutive articles in Run.
	Delay time.Duration
}

// New returns an Enhancer with default search limit, delay and composer.
func New(articles reblog.ArticleService, searcher reblog.Searcher, scraper reblog.Scraper, generator reblog.Generator) *Enhancer {
	return &Enhancer{
		Articles:    articles,
		Searcher:    searcher,
		Scraper:     scraper,
		Composer:    reblog.NewComposer(),
		Generator:   generator,
		SearchLimit: DefaultSearchLimit,
		Delay:       DefaultDelay,
	}
}

// Run enhances every pending article in store order, pausing Delay between
// articles. Failing to list articles is fatal; individual article failures
// are counted as skips. If ctx is cancelled the batch stops and the tally
// so far is returned together with the context error.
func (e *Enhancer) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	all, err := e.Articles.FindArticles(ctx, reblog.ArticleFilter{})
	if err != nil {
		return nil, err
	}
	pending := reblog.PendingArticles(all)

	result := &Result{Total: len(all), Pending: len(pending)}
	notify(progress, ProgressEvent{Type: ProgressBatchStarted, Total: len(pending), Result: result})

	var runErr error
	for i, article := range pending {
		index := i + 1
		stamped := func(ev ProgressEvent) {
			ev.Index, ev.Total = index, len(pending)
			notify(progress, ev)
		}

		if err := e.EnhanceArticle(ctx, article, stamped); err != nil {
			result.Skipped++
		} else {
			result.Enhanced++
		}

		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		if index < len(pending) && e.Delay > 0 {
			stamped(ProgressEvent{Type: ProgressWaiting, Delay: e.Delay})
			if err := wait(ctx, e.Delay); err != nil {
				runErr = err
				break
			}
		}
	}

	notify(progress, ProgressEvent{Type: ProgressBatchFinished, Total: len(pending), Result: result, Err: runErr})
	return result, runErr
}

// EnhanceByID loads one article and enhances it.
func (e *Enhancer) EnhanceByID(ctx context.Context, id string, progress ProgressFunc) error {
	article, err := e.Articles.FindArticleByID(ctx, id)
	if err != nil {
		return err
	}
	return e.EnhanceArticle(ctx, article, progress)
}

// EnhanceArticle runs the pipeline for a single article. Any reason not to
// enhance it is returned as a *SkipError; no update is written in that case.
func (e *Enhancer) EnhanceArticle(ctx context.Context, article *reblog.Article, progress ProgressFunc) error {
	base := ProgressEvent{ArticleID: article.ID, Title: article.Title}
	emit := func(ev ProgressEvent) {
		ev.ArticleID, ev.Title = base.ArticleID, base.Title
		notify(progress, ev)
	}

	emit(ProgressEvent{Type: ProgressArticleStarted, Stage: StagePending})

	err := e.enhance(ctx, article, emit)
	if err != nil {
		emit(ProgressEvent{Type: ProgressArticleSkipped, Stage: err.Stage, Err: err})
		return err
	}
	return nil
}

func (e *Enhancer) enhance(ctx context.Context, article *reblog.Article, emit ProgressFunc) *SkipError {
	if article.IsUpdated {
		return &SkipError{Stage: StagePending, Reason: "already enhanced"}
	}

	emit(ProgressEvent{Type: ProgressStage, Stage: StageSearching})
	results, err := e.Searcher.Search(ctx, article.Title, e.searchLimit())
	if err != nil {
		return &SkipError{Stage: StageSearching, Reason: "search failed", Err: err}
	}
	if len(results) == 0 {
		return &SkipError{Stage: StageSearching, Reason: "no search results"}
	}

	emit(ProgressEvent{Type: ProgressStage, Stage: StageScraping, Results: len(results)})
	refs := e.scrapeReferences(ctx, results, emit)
	if err := ctx.Err(); err != nil {
		return &SkipError{Stage: StageScraping, Reason: "cancelled", Err: err}
	}
	if len(refs) == 0 {
		return &SkipError{Stage: StageScraping, Reason: "no usable references"}
	}

	emit(ProgressEvent{Type: ProgressStage, Stage: StageComposing, References: len(refs)})
	prompt := e.composer().Compose(article, refs)

	emit(ProgressEvent{Type: ProgressStage, Stage: StageGenerating, References: len(refs), PromptTokens: e.countTokens(ctx, prompt)})
	content, err := e.Generator.Generate(ctx, prompt)
	if err != nil {
		return &SkipError{Stage: StageGenerating, Reason: "generation failed", Err: err}
	}
	if strings.TrimSpace(content) == "" {
		return &SkipError{Stage: StageGenerating, Reason: "empty generation", Err: reblog.Errorf(reblog.EMALFORMED, "generator returned empty text")}
	}

	emit(ProgressEvent{Type: ProgressStage, Stage: StagePersisting})
	urls := make([]string, 0, len(refs))
	for _, r := range refs {
		urls = append(urls, r.URL)
	}
	updated := true
	if _, err := e.Articles.UpdateArticle(ctx, article.ID, reblog.ArticleUpdate{
		Content:    &content,
		IsUpdated:  &updated,
		References: &urls,
	}); err != nil {
		return &SkipError{Stage: StagePersisting, Reason: "update failed", Err: err}
	}

	emit(ProgressEvent{Type: ProgressArticleEnhanced, Stage: StageDone, References: len(urls), Chars: len(content)})
	return nil
}

// scrapeReferences scrapes results one by one. Failed or empty pages are
// reported and dropped.
func (e *Enhancer) scrapeReferences(ctx context.Context, results []*reblog.SearchResult, emit ProgressFunc) []*reblog.Page {
	refs := make([]*reblog.Page, 0, len(results))
	for _, r := range results {
		if ctx.Err() != nil {
			break
		}
		page, err := e.Scraper.Scrape(ctx, r.URL)
		if err == nil && strings.TrimSpace(page.Content) == "" {
			err = reblog.Errorf(reblog.ENOTFOUND, "no content at %s", r.URL)
		}
		if err != nil {
			emit(ProgressEvent{Type: ProgressReferenceFailed, Stage: StageScraping, URL: r.URL, Err: err})
			continue
		}
		if page.URL == "" {
			page.URL = r.URL
		}
		refs = append(refs, page)
	}
	return refs
}

func (e *Enhancer) countTokens(ctx context.Context, prompt string) int {
	if e.Tokens == nil {
		return 0
	}
	n, err := e.Tokens.CountTokens(ctx, prompt)
	if err != nil {
		return 0
	}
	return n
}

func (e *Enhancer) composer() *reblog.Composer {
	if e.Composer == nil {
		return reblog.NewComposer()
	}
	return e.Composer
}

func (e *Enhancer) searchLimit() int {
	if e.SearchLimit <= 0 {
		return DefaultSearchLimit
	}
	return e.SearchLimit
}

func notify(progress ProgressFunc, ev ProgressEvent) {
	if progress != nil {
		progress(ev)
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsSkip reports whether err is a *SkipError.
func IsSkip(err error) bool {
	var skip *SkipError
	return errors.As(err, &skip)
}
