package swga

import (
	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/log"
)

// CommandRunner starts the external counter and enumerator.
type CommandRunner = ports.CommandRunner

// Command is one external program invocation.
type Command = ports.Command

// Process is a started command whose stdout is read incrementally.
type Process = ports.Process

// Option configures optional behavior of a Pipeline.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventHandler EventHandler
	runner       CommandRunner
}

func defaultOptions() options {
	return options{logger: log.NoopLogger{}}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for stage transitions.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithRunner replaces the subprocess runner used for the counter and the
// enumerator.
func WithRunner(runner CommandRunner) Option {
	return func(o *options) {
		o.runner = runner
	}
}
