package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/transpress"
	"github.com/fwojciec/transpress/bluemonday"
	"github.com/fwojciec/transpress/fs"
	"github.com/fwojciec/transpress/gemini"
	"github.com/fwojciec/transpress/gofeed"
	"github.com/fwojciec/transpress/goquery"
	"github.com/fwojciec/transpress/htmltomarkdown"
	tphttp "github.com/fwojciec/transpress/http"
	"github.com/fwojciec/transpress/kagome"
	"github.com/fwojciec/transpress/pipeline"
	"github.com/fwojciec/transpress/prometheus"
	"github.com/fwojciec/transpress/readability"
	tpslog "github.com/fwojciec/transpress/slog"
	"github.com/fwojciec/transpress/sqlite"
	"github.com/fwojciec/transpress/trafilatura"
	"github.com/fwojciec/transpress/wordpress"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// SQLite database backing the dedup store when state is a .db file.
	DB *sqlite.DB

	// Services for end-to-end testing. Nil services are built from the
	// configuration.
	Source     transpress.ArticleSource
	Translator transpress.Translator
	Posts      transpress.PostService
	Media      transpress.MediaService
	Downloader transpress.Downloader
	Fetcher    transpress.Fetcher

	// Now is the pipeline clock. Defaults to time.Now.
	Now func() time.Time
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv: os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("transpress"),
		kong.Description("Translate WordPress articles and republish them on another WordPress site"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'transpress --help' to see available commands")
	}
	if wantsHelp(args) {
		_, _ = parser.Parse(args)
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose, cli.JSON)

	if cmd == "slug" || cmd == "run" {
		slugger, err := kagome.NewSlugger()
		if err != nil {
			return fmt.Errorf("failed to load Japanese dictionary: %w", err)
		}
		deps.Slugger = slugger
	}
	if cmd == "slug" {
		return kongCtx.Run(deps)
	}

	cfg, err := m.loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: set %s or pass --config to use a different file\n", EnvConfig)
		return err
	}
	switch cmd {
	case "run":
		if cli.Run.Cap > 0 {
			cfg.Run.DailyCap = cli.Run.Cap
		}
		if cli.Run.MaxPages > 0 {
			cfg.Run.MaxPages = cli.Run.MaxPages
		}
	case "candidates":
		if cli.Candidates.MaxPages > 0 {
			cfg.Run.MaxPages = cli.Candidates.MaxPages
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	deps.Config = cfg
	deps.Location, _ = ParseLocation(cfg.Destination.Timezone)

	store, history, err := m.openStore(cfg.Run.State)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: run.state selects the dedup state file (.db for SQLite, .json for JSON)")
		return fmt.Errorf("failed to open dedup state at %q: %w", cfg.Run.State, err)
	}
	defer m.Close()
	deps.Store = store
	deps.History = history

	switch cmd {
	case "candidates":
		tracker := transpress.NewTracker(store)
		if err := tracker.Load(ctx); err != nil {
			return fmt.Errorf("failed to load dedup state: %w", err)
		}
		deps.Scanner = m.buildScanner(cfg, tracker, deps.Logger)
	case "run":
		translate := m.Translator == nil
		publish := !cli.Run.DryRun && (m.Posts == nil || m.Media == nil)
		if err := cfg.RequireCredentials(translate, publish); err != nil {
			fmt.Fprintln(stderr, "Hint: secrets are read from the environment or the .env file at $ENV_PATH")
			return err
		}
		if err := m.wirePipeline(deps, cfg, &cli.Run); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

func wantsHelp(args []string) bool {
	if args[0] == "help" {
		return true
	}
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return true
		}
	}
	return false
}

func (m *Main) getenv(key string) string {
	if m.Getenv == nil {
		return os.Getenv(key)
	}
	return m.Getenv(key)
}

// loadConfig loads .env, then the config file, then secrets from the
// environment. A missing file is only an error when it was named
// explicitly.
func (m *Main) loadConfig(path string) (*Config, error) {
	if err := LoadDotEnv(m.getenv(EnvPath)); err != nil {
		return nil, err
	}

	if path == "" {
		path = m.getenv(EnvConfig)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}
	cfg.ApplyEnv(m.getenv)
	return cfg, nil
}

// openStore opens the dedup state: JSON for .json paths, SQLite otherwise.
func (m *Main) openStore(path string) (transpress.DedupStore, RecordFinder, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		store := fs.NewDedupFile(path)
		return store, storeHistory{store: store}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, err
		}
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		return nil, nil, err
	}
	store := sqlite.NewDedupStore(m.DB)
	return store, store, nil
}

func (m *Main) buildScanner(cfg *Config, tracker *transpress.Tracker, logger *slog.Logger) *pipeline.Scanner {
	source := m.Source
	if source == nil {
		source = newSource(cfg)
	}
	scanner := pipeline.NewScanner(tpslog.NewLoggingSource(source, logger), tracker)
	scanner.MaxPages = cfg.Run.MaxPages
	scanner.Logger = logger
	return scanner
}

func newSource(cfg *Config) transpress.ArticleSource {
	loc, _ := ParseLocation(cfg.Source.Timezone)
	aliases := cfg.Aliases()
	if cfg.Source.Type == SourceRSS {
		return gofeed.NewSource(cfg.Source.URL, aliases, cfg.Run.RequestTimeout)
	}
	return wordpress.NewSource(cfg.Source.URL,
		wordpress.WithPerPage(cfg.Source.PerPage),
		wordpress.WithLocation(loc),
		wordpress.WithAliases(aliases),
		wordpress.WithHTTPClient(&nethttp.Client{Timeout: cfg.Run.RequestTimeout}),
	)
}

// wirePipeline builds the pipeline for the run command.
func (m *Main) wirePipeline(deps *Dependencies, cfg *Config, c *RunCmd) error {
	ctx, logger := deps.Ctx, deps.Logger
	timeout := cfg.Run.RequestTimeout

	tracker := transpress.NewTracker(deps.Store)
	scanner := m.buildScanner(cfg, tracker, logger)
	scanner.Force = c.Force

	backend, err := m.buildTranslator(ctx, cfg)
	if err != nil {
		return err
	}
	translator := pipeline.NewChunkedTranslator(
		tpslog.NewLoggingTranslator(backend, logger),
		cfg.Translation.ChunkLimit,
		cfg.Translation.Rate,
	)
	translator.Logger = logger

	patterns, err := cfg.MetadataPatterns()
	if err != nil {
		return err
	}

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = tphttp.NewFetcher(tphttp.WithTimeout(timeout))
	}

	metrics := prometheus.NewMetrics()
	if url := cfg.Metrics.Pushgateway; url != "" {
		deps.PushMetrics = func(ctx context.Context) error {
			return metrics.Push(ctx, url)
		}
	}

	aliases := cfg.Aliases()
	dstLoc, _ := ParseLocation(cfg.Destination.Timezone)
	p := &pipeline.Pipeline{
		Scanner: scanner,
		Tracker: tracker,
		Fetcher: tpslog.NewLoggingFetcher(fetcher, logger),
		Extractors: []transpress.Extractor{
			goquery.NewExtractor(),
			trafilatura.NewExtractor(),
			readability.NewExtractor(),
		},
		MainImage:   goquery.MainImage,
		Sanitizer:   goquery.NewSanitizer(cfg.BoilerplateMarkers(), patterns),
		Headings:    goquery.NewHeadingPreserver(),
		Translator:  translator,
		Scrubber:    bluemonday.NewScrubber(),
		Links:       goquery.NewLinkNormalizer(aliases),
		Aliases:     aliases,
		Rewriter:    goquery.NewImageRewriter(),
		Slugger:     deps.Slugger,
		Metrics:     metrics,
		Logger:      logger,
		PageLimiter: pipeline.NewHostLimiter(cfg.Run.PageRate),
		DailyCap:    cfg.Run.DailyCap,
		MaxAttempts: cfg.Run.MaxAttempts,
		Location:    dstLoc,
		PostStatus:  cfg.Destination.Status,
		Labels:      cfg.Labels,
		Persist:     cfg.Run.Persist,
		DryRun:      c.DryRun,
		Now:         m.Now,
	}

	if c.DryRun {
		previews := fs.NewPreviewDir(filepath.Dir(c.PreviewDir), filepath.Base(c.PreviewDir))
		converter := htmltomarkdown.NewConverter()
		p.Preview = func(_ context.Context, _ *transpress.SourceArticle, post *transpress.Post) error {
			doc, err := htmltomarkdown.Preview(converter, post)
			if err != nil {
				return err
			}
			return previews.Save(post.Slug, doc)
		}
		deps.Previews = previews
		deps.Pipeline = p
		return nil
	}

	var posts transpress.PostService = m.Posts
	var media transpress.MediaService = m.Media
	if posts == nil || media == nil {
		client := wordpress.NewClient(cfg.Destination.URL, cfg.WPUser, cfg.WPPassword, dstLoc, timeout)
		if posts == nil {
			posts = client
		}
		if media == nil {
			media = client
		}
	}
	downloader := m.Downloader
	if downloader == nil {
		downloader = tphttp.NewDownloader(timeout, cfg.Images.MaxBytes)
	}

	p.Posts = tpslog.NewLoggingPostService(posts, logger)
	p.Images = &pipeline.ImageRelocator{
		Downloader:  downloader,
		Media:       tpslog.NewLoggingMediaService(media, logger),
		Rewriter:    p.Rewriter,
		Limiter:     pipeline.NewHostLimiter(cfg.Images.Rate),
		Concurrency: cfg.Images.Concurrency,
		Metrics:     metrics,
		Logger:      logger,
	}
	deps.Pipeline = p
	return nil
}

func (m *Main) buildTranslator(ctx context.Context, cfg *Config) (transpress.Translator, error) {
	if m.Translator != nil {
		return m.Translator, nil
	}

	t := cfg.Translation
	if t.Backend == BackendGoogle {
		return tphttp.NewGoogleTranslator(cfg.GoogleAPIKey, t.SourceCode, t.TargetCode, cfg.Run.RequestTimeout), nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return gemini.NewTranslator(client, t.Model, t.SourceLanguage, t.TargetLanguage), nil
}

func newLogger(w io.Writer, verbose, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
