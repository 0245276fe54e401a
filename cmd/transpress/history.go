package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/pipeline"
)

// Column widths of the history table.
const (
	slugWidth = 40
	urlWidth  = 60
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	total, err := deps.History.CountRecords(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", transpress.ErrorMessage(err))
		return err
	}
	if total == 0 {
		fmt.Fprintln(deps.Stdout, "No published articles recorded. Use 'transpress run' or 'transpress import' first.")
		return nil
	}

	records, err := deps.History.FindRecords(deps.Ctx, c.Limit, c.Offset)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", transpress.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d records (showing %d):\n\n", total, len(records))
	fmt.Fprintf(deps.Stdout, "  %-16s  %8s  %s  %s\n", "RECORDED", "POST", fitWidth("SLUG", slugWidth), "SOURCE")
	for _, r := range records {
		recorded := "-"
		if !r.RecordedAt.IsZero() {
			recorded = r.RecordedAt.In(deps.Location).Format("2006-01-02 15:04")
		}
		post := "-"
		if r.PostID != 0 {
			post = fmt.Sprintf("%d", r.PostID)
		}
		fmt.Fprintf(deps.Stdout, "  %-16s  %8s  %s  %s\n",
			recorded, post, fitWidth(r.Slug, slugWidth), pipeline.TruncateURL(r.Key, urlWidth))
	}
	return nil
}

// storeHistory serves RecordFinder from a DedupStore without native
// paging.
type storeHistory struct {
	store transpress.DedupStore
}

func (h storeHistory) FindRecords(ctx context.Context, limit, offset int) ([]*transpress.DedupRecord, error) {
	tracker := transpress.NewTracker(h.store)
	if err := tracker.Load(ctx); err != nil {
		return nil, err
	}
	records := tracker.Records()
	if offset >= len(records) {
		return nil, nil
	}
	records = records[offset:]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (h storeHistory) CountRecords(ctx context.Context) (int, error) {
	records, err := h.store.LoadRecords(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
