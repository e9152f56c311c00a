package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/reblog"
	"github.com/fwojciec/reblog/enhance"
)

// Run executes the enhance command.
func (c *EnhanceCmd) Run(deps *Dependencies) error {
	progress := enhanceProgress(deps.Stdout, deps.Stderr)
	if deps.Metrics != nil {
		printer := progress
		progress = func(ev enhance.ProgressEvent) {
			deps.Metrics.ObserveEnhance(ev)
			printer(ev)
		}
	}

	err := c.run(deps, progress)

	if deps.Metrics != nil {
		if werr := deps.Metrics.WriteTextfile(c.MetricsFile); werr != nil {
			fmt.Fprintf(deps.Stderr, "error writing metrics: %v\n", werr)
		}
	}
	return err
}

func (c *EnhanceCmd) run(deps *Dependencies, progress enhance.ProgressFunc) error {
	if c.ID != "" {
		if err := deps.Enhancer.EnhanceByID(deps.Ctx, c.ID, progress); err != nil {
			if !enhance.IsSkip(err) {
				fmt.Fprintf(deps.Stderr, "error: %s\n", reblog.ErrorMessage(err))
			}
			return err
		}
		return nil
	}

	result, err := deps.Enhancer.Run(deps.Ctx, progress)
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", reblog.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Enhanced %d of %d pending articles (%d skipped, %d total)\n",
		result.Enhanced, result.Pending, result.Skipped, result.Total)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "stopped early: %v\n", err)
	}
	return err
}

// enhanceProgress prints pipeline progress. Problems with individual
// references or articles go to stderr.
func enhanceProgress(stdout, stderr io.Writer) enhance.ProgressFunc {
	return func(ev enhance.ProgressEvent) {
		switch ev.Type {
		case enhance.ProgressBatchStarted:
			if ev.Total == 0 {
				fmt.Fprintln(stdout, "No pending articles. Use 'reblog ingest' to capture some.")
				return
			}
			fmt.Fprintf(stdout, "Found %d pending articles\n", ev.Total)
		case enhance.ProgressArticleStarted:
			if ev.Total > 0 {
				fmt.Fprintf(stdout, "[%d/%d] %s\n", ev.Index, ev.Total, ev.Title)
			} else {
				fmt.Fprintf(stdout, "%s\n", ev.Title)
			}
		case enhance.ProgressStage:
			switch ev.Stage {
			case enhance.StageScraping:
				fmt.Fprintf(stdout, "  %d search results\n", ev.Results)
			case enhance.StageGenerating:
				if ev.PromptTokens > 0 {
					fmt.Fprintf(stdout, "  generating from %d references (~%d prompt tokens)\n", ev.References, ev.PromptTokens)
				} else {
					fmt.Fprintf(stdout, "  generating from %d references\n", ev.References)
				}
			}
		case enhance.ProgressReferenceFailed:
			fmt.Fprintf(stderr, "  skip reference %s: %v\n", ev.URL, ev.Err)
		case enhance.ProgressArticleEnhanced:
			fmt.Fprintf(stdout, "  updated (%d chars, %d references)\n", ev.Chars, ev.References)
		case enhance.ProgressArticleSkipped:
			fmt.Fprintf(stderr, "  %v\n", ev.Err)
		case enhance.ProgressWaiting:
			fmt.Fprintf(stdout, "  waiting %s\n", ev.Delay)
		}
	}
}
