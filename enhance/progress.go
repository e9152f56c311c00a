package enhance

import "time"

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressBatchStarted ProgressType = iota
	ProgressArticleStarted
	ProgressStage
	ProgressReferenceFailed
	ProgressArticleEnhanced
	ProgressArticleSkipped
	ProgressWaiting
	ProgressBatchFinished
)

// String returns a short lowercase name for the type.
func (t ProgressType) String() string {
	switch t {
	case ProgressBatchStarted:
		return "batch_started"
	case ProgressArticleStarted:
		return "article_started"
	case ProgressStage:
		return "stage"
	case ProgressReferenceFailed:
		return "reference_failed"
	case ProgressArticleEnhanced:
		return "article_enhanced"
	case ProgressArticleSkipped:
		return "article_skipped"
	case ProgressWaiting:
		return "waiting"
	case ProgressBatchFinished:
		return "batch_finished"
	default:
		return "unknown"
	}
}

// ProgressEvent reports progress during enhancement. Fields not relevant
// to the event type are left zero.
type ProgressEvent struct {
	Type ProgressType

	// Index is the 1-based position of the article in the batch and Total
	// the number of pending articles. Both are zero outside a batch.
	Index int
	Total int

	ArticleID string
	Title     string
	Stage     Stage

	// URL is the reference that failed for ProgressReferenceFailed.
	URL string

	// Results is the number of search results once scraping starts.
	// References is the number of usable references once composing starts
	// and on ProgressArticleEnhanced.
	Results    int
	References int

	// PromptTokens is set on the generating stage when a token counter is
	// configured. Chars is the generated length on ProgressArticleEnhanced.
	PromptTokens int
	Chars        int

	// Delay is the pause announced by ProgressWaiting.
	Delay time.Duration

	// Result is the final tally on ProgressBatchFinished.
	Result *Result

	Err error
}

// ProgressFunc is a callback for reporting enhancement progress.
type ProgressFunc func(event ProgressEvent)
