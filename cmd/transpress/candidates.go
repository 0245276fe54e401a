package main

import (
	"fmt"

	"github.com/fwojciec/transpress"
	"github.com/mattn/go-runewidth"
)

// titleWidth is the display width of the title column.
const titleWidth = 60

// Run executes the candidates command.
func (c *CandidatesCmd) Run(deps *Dependencies) error {
	candidates, err := deps.Scanner.FetchCandidates(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", transpress.ErrorMessage(err))
		return err
	}

	if len(candidates) == 0 {
		fmt.Fprintln(deps.Stdout, "No unpublished articles found.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%d unpublished articles (%d listed, %d already published):\n\n",
		len(candidates), deps.Scanner.Scanned(), deps.Scanner.Skipped())

	shown := candidates
	if c.Limit > 0 && len(shown) > c.Limit {
		shown = shown[:c.Limit]
	}
	for _, a := range shown {
		fmt.Fprintf(deps.Stdout, "  %s  %s  %s\n",
			a.PublishedAt.In(deps.Location).Format("2006-01-02 15:04"),
			fitWidth(a.Title, titleWidth),
			a.Key(),
		)
	}
	if len(shown) < len(candidates) {
		fmt.Fprintf(deps.Stdout, "  ... %d more\n", len(candidates)-len(shown))
	}
	return nil
}

// fitWidth truncates or pads s to exactly width display columns, counting
// East Asian wide characters as two.
func fitWidth(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
