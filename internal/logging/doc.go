// Package logging assembles the structured slog loggers used across ytscribe.
//
// It owns the console and JSON handlers, level parsing, and output plumbing
// (stdout plus the log file in the configured log directory), and exposes
// context helpers so a single transcript request can be followed through the
// adapter, the YouTube client, and the window by its correlation ID.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits lines with the same shape.
package logging
