package main

import (
	"fmt"

	"github.com/fwojciec/reblog"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	a, err := deps.Articles.FindArticleByID(deps.Ctx, c.ID)
	if err != nil {
		if reblog.ErrorCode(err) == reblog.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: article %q not found. Use 'reblog list' to see available articles.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", reblog.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s\n", a.Title)
	fmt.Fprintf(deps.Stdout, "Source:  %s\n", a.SourceURL)
	fmt.Fprintf(deps.Stdout, "Status:  %s\n", status(a))
	for i, ref := range a.References {
		fmt.Fprintf(deps.Stdout, "Ref %d:   %s\n", i+1, ref)
	}
	fmt.Fprintln(deps.Stdout)

	if c.Original {
		fmt.Fprintln(deps.Stdout, a.OriginalContent)
	} else {
		fmt.Fprintln(deps.Stdout, a.Content)
	}
	return nil
}
