package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/pipeline"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	report, err := deps.Pipeline.Run(deps.Ctx)

	if deps.Previews != nil {
		if err == nil {
			if cerr := deps.Previews.Commit(); cerr != nil {
				fmt.Fprintf(deps.Stderr, "error: saving previews: %v\n", cerr)
				err = cerr
			}
		} else if aerr := deps.Previews.Abort(); aerr != nil {
			deps.Logger.Warn("discard previews", "err", aerr)
		}
	}

	if report != nil {
		printReport(deps.Stdout, report, deps.Pipeline.DryRun)
	}

	if deps.PushMetrics != nil {
		if perr := deps.PushMetrics(deps.Ctx); perr != nil {
			deps.Logger.Warn("push metrics", "err", perr)
		}
	}

	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", transpress.ErrorMessage(err))
		return err
	}
	return nil
}

func printReport(w io.Writer, r *pipeline.Report, dryRun bool) {
	fmt.Fprintf(w, "Scanned:            %d\n", r.Scanned)
	fmt.Fprintf(w, "Skipped duplicate:  %d\n", r.SkippedDuplicate)
	fmt.Fprintf(w, "Translation failed: %d\n", r.TranslationFailed)
	fmt.Fprintf(w, "Publish failed:     %d\n", r.PublishFailed)
	fmt.Fprintf(w, "Failed:             %d\n", r.Failed)
	if dryRun {
		fmt.Fprintf(w, "Previewed:          %d\n", r.Previewed)
	} else {
		fmt.Fprintf(w, "Published:          %d\n", r.Published)
		fmt.Fprintf(w, "Images relocated:   %d (%d kept original)\n", r.ImagesRelocated, r.ImageFallbacks)
	}
	if r.CapRemaining == 0 {
		fmt.Fprintln(w, "Daily cap reached.")
	}
}
