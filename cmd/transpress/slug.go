package main

import (
	"fmt"

	"github.com/fwojciec/transpress"
)

// Run executes the slug command.
func (c *SlugCmd) Run(deps *Dependencies) error {
	slug := transpress.TruncateSlug(deps.Slugger.MakeSlug(c.Title), transpress.MaxSlugLen)
	if slug == "" {
		fmt.Fprintf(deps.Stderr, "error: title %q has no sluggable characters\n", c.Title)
		return transpress.Errorf(transpress.EINVALID, "title %q has no sluggable characters", c.Title)
	}
	fmt.Fprintln(deps.Stdout, slug)
	return nil
}
