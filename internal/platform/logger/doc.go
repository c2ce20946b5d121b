// Package logger provides structured logging for the application.
//
// It builds on log/slog: Setup installs a JSON (or text) handler as the process
// default, and WithContext/FromContext carry request-scoped loggers (with trace
// ids and principal attributes) through context.Context.
package logger
