// Package logging configures slog output for the CLI and pipeline components.
//
// It provides a compact console handler for interactive sessions, JSON output
// for ingestion, attribute helpers shared across the codebase, and component
// loggers so every subsystem tags its records uniformly.
package logging
