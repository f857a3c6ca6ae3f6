package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/immocrawl"
	"github.com/fwojciec/immocrawl/config"
	"github.com/fwojciec/immocrawl/crawl"
	"github.com/fwojciec/immocrawl/fs"
	"github.com/fwojciec/immocrawl/goquery"
	"github.com/fwojciec/immocrawl/htmltomarkdown"
	immohttp "github.com/fwojciec/immocrawl/http"
	"github.com/fwojciec/immocrawl/readability"
	"github.com/fwojciec/immocrawl/rod"
	immoslog "github.com/fwojciec/immocrawl/slog"
	"github.com/fwojciec/immocrawl/sqlite"
	"github.com/fwojciec/immocrawl/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("immocrawl"),
		kong.Description("Crawl a real-estate search and report listings added or removed since the last run"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	mode, err := immocrawl.ParseMode(cli.Mode)
	if err != nil {
		return err
	}
	format, err := fs.ParseFormat(cli.Format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.EnvFile)
	if err != nil {
		return err
	}
	cli.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if cli.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.RunTimeout)
		defer cancel()
	}

	fetcher, err := newFetcher(cli, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = fetcher.Close() }()
	if cli.Verbose {
		fetcher = immoslog.NewLoggingFetcher(fetcher, logger)
	}

	var state immocrawl.StateStore
	if cli.DB != "" {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		state = sqlite.NewStateStore(db, cli.URL)
	} else {
		state = fs.NewStateStore(cli.State, fs.WithSearchURL(cli.URL))
	}
	if cli.Verbose {
		state = immoslog.NewLoggingStateStore(state, logger)
	}

	var detailOpts []goquery.DetailOption
	switch cli.Extractor {
	case "trafilatura":
		detailOpts = append(detailOpts, goquery.WithExtractor(trafilatura.NewExtractor()))
	case "readability":
		detailOpts = append(detailOpts, goquery.WithExtractor(readability.NewExtractor()))
	}
	if cli.Markdown {
		detailOpts = append(detailOpts, goquery.WithConverter(htmltomarkdown.NewConverter()))
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		State:  state,
		Crawler: &crawl.Crawler{
			Fetcher:     fetcher,
			Listings:    goquery.NewListingParser(),
			Details:     goquery.NewDetailParser(detailOpts...),
			Limiter:     crawl.NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
			Logger:      logger,
			Concurrency: cfg.Concurrency,
			MaxPages:    cfg.MaxPages,
			MaxResults:  cli.MaxResults,
			PageRetry:   cfg.PageRetry(),
			DetailRetry: cfg.DetailRetry(),
		},
	}

	cmd := &CrawlCmd{
		URL:    cli.URL,
		Mode:   mode,
		Output: cli.Output,
		Format: format,
		Report: cli.Report,
	}

	return cmd.Run(deps)
}

// newFetcher builds the HTTP fetcher, or the browser fetcher with --browser.
func newFetcher(cli *CLI, cfg *config.Config) (immocrawl.Fetcher, error) {
	proxies, err := cfg.ProxyURLs()
	if err != nil {
		return nil, err
	}

	if !cli.Browser {
		return immohttp.NewFetcher(
			immohttp.WithTimeout(cfg.Timeout),
			immohttp.WithUserAgent(cfg.UserAgent),
			immohttp.WithProxies(proxies...),
		), nil
	}

	opts := []rod.Option{rod.WithFetchTimeout(cfg.Timeout), rod.WithUserAgent(cfg.UserAgent)}
	if len(proxies) > 0 {
		// The browser takes a single proxy for its lifetime.
		opts = append(opts, rod.WithProxy(proxies[0].String()))
	}
	f, err := rod.NewFetcher(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
	}
	return f, nil
}
