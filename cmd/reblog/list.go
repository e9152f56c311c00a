package main

import (
	"fmt"

	"github.com/fwojciec/reblog"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var filter reblog.ArticleFilter
	if c.Pending {
		pending := false
		filter.IsUpdated = &pending
	}

	articles, err := deps.Articles.FindArticles(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", reblog.ErrorMessage(err))
		return err
	}

	if len(articles) == 0 {
		fmt.Fprintln(deps.Stdout, "No articles found. Use 'reblog ingest' to capture some.")
		return nil
	}

	for _, a := range articles {
		fmt.Fprintf(deps.Stdout, "%s  %-8s  %s  %s\n", a.ID, status(a), a.Title, a.SourceURL)
	}

	return nil
}

func status(a *reblog.Article) string {
	if a.IsUpdated {
		return "updated"
	}
	return "pending"
}
