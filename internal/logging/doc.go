// Package logging assembles structured slog loggers and formatting helpers
// used across mapi.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so provider code can tag
// log lines with the provider name and the search correlation ID. The package
// also provides a no-op logger for tests and library callers that do not
// configure logging.
package logging
