// Package log provides the logging abstraction used by every swga stage.
//
// Stages never import a logging library directly. They receive a Logger
// and emit structured fields; the command line wires the zerolog adapter,
// tests wire the no-op logger.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	logger.Info("counted k-mers", log.Int("k", 8), log.String("genome", id))
//
// Or, in tests:
//
//	logger := log.NewNoopLogger()
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
