// Package logging assembles structured slog loggers and formatting helpers used
// across songpatch.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing (including the optional daily log file and its retention), and
// exposes context-aware helpers so pipeline code tags log lines with run IDs,
// command kinds, and validation stages. NewNop provides a discard logger for
// tests and wiring code that cannot fail.
package logging
