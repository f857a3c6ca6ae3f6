// Package slog provides logging decorators for immocrawl services using
// the standard log/slog package.
package slog
