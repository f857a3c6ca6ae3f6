package main

import (
	"time"

	"github.com/fwojciec/immocrawl/config"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL string `arg:"" required:"" help:"Search results URL to crawl"`

	Mode        string `short:"m" enum:"shallow,deep" default:"shallow" help:"shallow reads search cards only, deep also fetches each listing page"`
	Concurrency int    `short:"c" help:"Concurrent detail fetches (default from IMMOCRAWL_CONCURRENCY)"`
	MaxPages    int    `name:"max-pages" help:"Maximum number of search pages (default from IMMOCRAWL_MAX_PAGES)"`
	MaxResults  int    `name:"max-results" help:"Stop after this many listings (0 = unlimited)"`

	State string `default:"immocrawl-state.json" type:"path" help:"State file used to compute the delta between runs"`
	DB    string `type:"path" help:"SQLite database for state instead of the state file"`

	Output   string `short:"o" type:"path" help:"Write listings to this file instead of stdout"`
	Format   string `short:"f" enum:"json,csv,html" default:"json" help:"Output format"`
	Report   string `type:"path" help:"Write the run summary and delta as JSON to this file"`
	Markdown bool   `help:"Keep listing descriptions as Markdown"`

	Extractor string `enum:"trafilatura,readability,none" default:"trafilatura" help:"Description fallback when a listing page has no known description block"`

	Timeout    time.Duration `short:"t" help:"Per-request timeout (default from IMMOCRAWL_TIMEOUT)"`
	RunTimeout time.Duration `name:"run-timeout" help:"Stop the crawl after this long and keep what was collected"`
	Browser    bool          `help:"Fetch pages with headless Chrome"`
	EnvFile    string        `name:"env-file" type:"path" help:"Read IMMOCRAWL_* settings from this file"`
	Verbose    bool          `short:"v" help:"Log every request"`
}

// apply overrides environment configuration with explicitly set flags.
func (c *CLI) apply(cfg *config.Config) {
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.MaxPages > 0 {
		cfg.MaxPages = c.MaxPages
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
}
