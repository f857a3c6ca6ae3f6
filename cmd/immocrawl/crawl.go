package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/immocrawl"
	"github.com/fwojciec/immocrawl/crawl"
	"github.com/fwojciec/immocrawl/fs"
)

// Dependencies holds injected dependencies for the crawl command.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Crawler *crawl.Crawler
	State   immocrawl.StateStore
}

// CrawlCmd runs one crawl and reconciles it with the previous run.
type CrawlCmd struct {
	URL    string
	Mode   immocrawl.Mode
	Output string
	Format fs.Format
	Report string
}

// Report is the machine-readable run report written with --report.
type Report struct {
	Summary immocrawl.Summary `json:"summary"`
	Delta   immocrawl.Delta   `json:"delta"`
}

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	previous, err := deps.State.LoadState(deps.Ctx)
	if err != nil {
		if immocrawl.ErrorCode(err) != immocrawl.ECORRUPT {
			return fmt.Errorf("load state: %w", err)
		}
		logger.Warn("state unreadable, starting from empty state", "error", err)
		previous = &immocrawl.RunState{}
	}

	result, err := deps.Crawler.Run(deps.Ctx, crawl.Request{
		StartURL: c.URL,
		Mode:     c.Mode,
		Previous: previous,
	})
	if err != nil {
		return err
	}

	// Listings go to stdout unless a file is given, so the summary moves
	// to stderr to keep stdout parseable.
	summaryOut := deps.Stdout
	if c.Output == "" {
		summaryOut = deps.Stderr
		if err := fs.Export(deps.Stdout, c.Format, result.Listings); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	} else if err := fs.ExportFile(c.Output, c.Format, result.Listings); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if c.Report != "" {
		if err := fs.WriteJSON(c.Report, Report{Summary: result.Summary, Delta: result.Delta}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	// Persist even when the run was interrupted.
	if err := deps.State.SaveState(context.WithoutCancel(deps.Ctx), result.State); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	crawl.WriteSummary(summaryOut, result.Summary, result.Delta)
	return nil
}
