package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	// Location renders times in the destination zone.
	Location *time.Location

	Store    transpress.DedupStore
	History  RecordFinder
	Scanner  *pipeline.Scanner
	Pipeline *pipeline.Pipeline
	Slugger  transpress.Slugger

	// Previews receives dry-run previews. Nil when not a dry run.
	Previews PreviewSink

	// PushMetrics exports run metrics. Nil when no Pushgateway is set.
	PushMetrics func(ctx context.Context) error
}

// RecordFinder lists dedup records, most recently recorded first.
type RecordFinder interface {
	FindRecords(ctx context.Context, limit, offset int) ([]*transpress.DedupRecord, error)
	CountRecords(ctx context.Context) (int, error)
}

// PreviewSink stores dry-run previews and publishes them atomically.
type PreviewSink interface {
	Save(slug, content string) error
	Commit() error
	Abort() error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"Config file (default: $TRANSPRESS_CONFIG or transpress.yaml)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	JSON    bool   `name:"log-json" help:"Log as JSON"`

	Run        RunCmd        `cmd:"" help:"Translate and publish new articles"`
	Candidates CandidatesCmd `cmd:"" help:"List unpublished source articles"`
	History    HistoryCmd    `cmd:"" help:"List published articles"`
	Import     ImportCmd     `cmd:"" help:"Import a JSON dedup state file"`
	Slug       SlugCmd       `cmd:"" help:"Print the slug for a title"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	DryRun     bool   `short:"n" name:"dry-run" help:"Write Markdown previews instead of publishing"`
	Force      bool   `short:"f" help:"Process articles even if already published"`
	Cap        int    `help:"Override run.daily_cap"`
	MaxPages   int    `name:"max-pages" help:"Override run.max_pages"`
	PreviewDir string `name:"preview-dir" type:"path" default:"previews" help:"Dry-run preview directory"`
}

// CandidatesCmd is the "candidates" subcommand.
type CandidatesCmd struct {
	Limit    int `short:"l" default:"20" help:"Maximum number of candidates to show (0 for all)"`
	MaxPages int `name:"max-pages" help:"Override run.max_pages"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit  int `short:"l" default:"20" help:"Maximum number of records to show (0 for all)"`
	Offset int `help:"Number of records to skip"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	From string `arg:"" type:"existingfile" help:"JSON state file (current or legacy format)"`
}

// SlugCmd is the "slug" subcommand.
type SlugCmd struct {
	Title string `arg:"" help:"Post title"`
}
