// Package logging wraps log/slog with the attribute helpers, standardized
// field keys, and handler construction the rest of the codebase relies on.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log aggregation. WithContext enriches a logger with
// session/stage/correlation fields stamped on the context by the services
// package, so every log line emitted inside a stage carries the same keys.
package logging
