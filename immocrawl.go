// Package immocrawl extracts real-estate listings from paginated search
// results and reconciles them against the previous run.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package immocrawl
