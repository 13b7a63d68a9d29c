// Package logger provides structured logging for graphdev.
//
// This package offers one Logger interface over two backends:
//
//   - logger.go: log/slog backend (default) and package-level helpers
//   - zap.go: go.uber.org/zap backend, selected with Backend: "zap"
//   - context.go: context-aware logging with trace IDs and subgraph names
//   - redact.go: sensitive data redaction shared by both backends
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Automatic masking of registry API keys and secret-looking fields
package logger
