package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the swga domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrPrimerNotInForeground matches *PrimerNotInForegroundError.
	ErrPrimerNotInForeground = errors.New("swga: primer not in foreground genome")

	// ErrEnumerator matches *EnumeratorFailure.
	ErrEnumerator = errors.New("swga: set enumerator failed")

	// ErrGraphConstraint matches *GraphConstraintViolation.
	ErrGraphConstraint = errors.New("swga: graph constraint violated")

	// ErrInvalidPrimer is returned when a primer breaks a catalog invariant.
	ErrInvalidPrimer = errors.New("swga: invalid primer")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("swga: invalid configuration")

	// ErrCounter is returned when the k-mer counter exits unsuccessfully.
	ErrCounter = errors.New("swga: k-mer counter failed")

	// ErrAlreadyRunning is returned when a pipeline run overlaps another.
	ErrAlreadyRunning = errors.New("swga: already running")
)

// PrimerNotInForegroundError reports a sequence with no foreground occurrence.
type PrimerNotInForegroundError struct {
	Seq string
}

func (e *PrimerNotInForegroundError) Error() string {
	return fmt.Sprintf("swga: primer %s does not occur in the foreground genome", e.Seq)
}

func (e *PrimerNotInForegroundError) Is(target error) bool {
	return target == ErrPrimerNotInForeground
}

// EnumeratorFailure reports a non-zero exit or unparseable output line.
type EnumeratorFailure struct {
	// ExitCode is -1 when the process did not exit on its own.
	ExitCode int

	// Line is the offending output line, empty for exit failures.
	Line string

	// Stderr is the enumerator's diagnostic output, verbatim up to the
	// runner's capture limit (the last 64 KiB by default; see
	// swga.Config.StderrLimit). Longer output keeps its tail.
	Stderr string

	Reason string
}

func (e *EnumeratorFailure) Error() string {
	switch {
	case e.Line != "":
		return fmt.Sprintf("swga: set enumerator output %q: %s", e.Line, e.Reason)
	case e.Stderr != "":
		return fmt.Sprintf("swga: set enumerator exited with %d: %s", e.ExitCode, e.Stderr)
	default:
		return fmt.Sprintf("swga: set enumerator: %s", e.Reason)
	}
}

func (e *EnumeratorFailure) Is(target error) bool {
	return target == ErrEnumerator
}

// GraphConstraintViolation reports enumerator output that does not match
// the graph it was given.
type GraphConstraintViolation struct {
	Line   string
	Reason string
}

func (e *GraphConstraintViolation) Error() string {
	return fmt.Sprintf("swga: enumerator set %q breaks the graph: %s", e.Line, e.Reason)
}

func (e *GraphConstraintViolation) Is(target error) bool {
	return target == ErrGraphConstraint
}

// StageError tags a failure with the pipeline stage it left.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// InStage wraps err with stage unless it is nil or already tagged.
func InStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
