// Package logging assembles structured slog loggers used across onepace.
//
// It owns the console and JSON handlers, mirrors records into the persistent
// log file, and exposes context-aware helpers so pipeline steps tag log lines
// with the run ID and step name. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
