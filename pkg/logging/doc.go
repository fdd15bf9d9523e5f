// Package logging configures log/slog for appinv.
//
// Logs are JSON on stderr and always carry the module and version attributes.
// Debug level adds the source location. The level comes from --log-level or,
// when that is empty, from LOG_LEVEL; unknown names fall back to info.
//
//	logging.SetDefaultStructuredLoggerWithLevel("appinv", version, "debug")
//	slog.Info("inventory collected", "applications", 12, "collection_id", id)
//
// Output:
//
//	{"time":"2025-03-01T10:00:00Z","level":"INFO","msg":"inventory collected",
//	 "module":"appinv","version":"v1.0.0","applications":12,"collection_id":"..."}
//
// Library packages never configure logging themselves; they call the slog
// package functions and leave handler setup to the CLI.
package logging
