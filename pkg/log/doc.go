// Package log provides a logging abstraction for evbatch components.
//
// It defines a Logger interface that can be implemented by any logging
// library. A zerolog adapter and a no-op logger are provided out of the
// box; the batcher, background flusher, and transport all accept a
// Logger so callers can wire in their own sink.
//
// # Usage
//
//	logger := log.NewZerologAdapter()
//	flusherLog := logger.With(log.String("component", "flusher"))
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
//
// # Custom loggers
//
// Implement the Logger interface to integrate with existing logging
// infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) With(fields ...log.Field) log.Logger { ... }
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package log
