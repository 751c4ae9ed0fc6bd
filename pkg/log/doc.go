// Package log provides snowgen's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by the standard library's
// slog through a bridge handler that feeds our formatter and outputs, so the
// CLI and the servers render logs the same way.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("injector"), log.Str("input", path))
//	l.Info("processed", log.Int("rows", 42))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config: level, text or JSON
// formatting, outputs (console, stdout, null, file:<path>), redacted keys and
// per-message sampling.
//
// # Interop
//
// RedirectStdLog routes the standard library logger (used by Pebble) through
// a Logger. ToStdLogger returns a *log.Logger for APIs that need one.
package log
