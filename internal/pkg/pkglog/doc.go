// Package pkglog sets up the process-wide slog logger.
//
// Records are JSON on stdout with "ts", "severity" and "file" keys. When the
// context carries a correlation ID it is added as "_cID", so every line of a
// request, including the AI provider call, can be grouped.
package pkglog
