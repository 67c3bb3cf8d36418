// Package logger provides structured logging for the session engine.
//
// Loggers are log/slog handlers behind a small interface. Every logger
// built with New shares one level, adjustable at runtime with SetLevel.
// Request-scoped loggers travel in the context (WithLogger, L).
//
// Session identifiers are bearer credentials: any attribute named like a
// session id is masked, and attributes named like secrets are redacted,
// before they reach the output.
package logger
