package ports

import (
	"context"
	"fmt"
	"io"
)

// Command describes an external process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
}

// String renders the command line for logs.
func (c Command) String() string {
	return fmt.Sprint(append([]string{c.Path}, c.Args...))
}

// ExitError is returned when a process exits with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Code, e.Stderr)
}

// Process is a started command whose output is consumed incrementally.
type Process interface {
	Stdout() io.Reader

	// Wait blocks until exit. A non-zero exit is an *ExitError.
	Wait() error

	// Kill stops the process. It is safe to call after exit.
	Kill() error

	// Stderr returns what the process has written to stderr so far.
	Stderr() string
}

// CommandRunner runs external executables. Cancelling ctx kills the process.
type CommandRunner interface {
	// Run waits for the command to finish.
	Run(ctx context.Context, cmd Command) error

	Start(ctx context.Context, cmd Command) (Process, error)
}
