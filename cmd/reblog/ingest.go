package main

import (
	"fmt"

	"github.com/fwojciec/reblog"
	"github.com/fwojciec/reblog/ingest"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	progress := func(ev ingest.ProgressEvent) {
		if deps.Metrics != nil {
			deps.Metrics.ObserveIngest(ev)
		}
		switch ev.Type {
		case ingest.ProgressDiscovered:
			fmt.Fprintf(deps.Stdout, "Found %d article links\n", ev.Total)
		case ingest.ProgressSaved:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] saved %s\n", ev.Completed, ev.Total, ev.Title)
		case ingest.ProgressExisting:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] exists %s\n", ev.Completed, ev.Total, ev.Title)
		case ingest.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] skip %s: %v\n", ev.Completed, ev.Total, ev.URL, ev.Err)
		}
	}

	result, err := deps.Ingester.Ingest(deps.Ctx, c.Count, progress)

	if deps.Metrics != nil {
		if werr := deps.Metrics.WriteTextfile(c.MetricsFile); werr != nil {
			fmt.Fprintf(deps.Stderr, "error writing metrics: %v\n", werr)
		}
	}

	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", reblog.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d new articles (%d existing, %d failed)\n",
		result.Saved, result.Existing, result.Failed)
	return err
}
