package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/fs"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	records, err := fs.NewDedupFile(c.From).LoadRecords(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: reading %s: %s\n", c.From, transpress.ErrorMessage(err))
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(deps.Stdout, "No records found in %s.\n", c.From)
		return nil
	}

	// Legacy files hold URLs as listed at the time, often on alias hosts.
	aliases := deps.Config.Aliases()
	for _, r := range records {
		if strings.Contains(r.Key, "://") {
			r.Key = aliases.NormalizeSourceURL(r.Key)
		}
	}
	if err := deps.Store.SaveRecords(deps.Ctx, records); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", transpress.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Imported %d records from %s into %s\n", len(records), c.From, deps.Config.Run.State)
	return nil
}
