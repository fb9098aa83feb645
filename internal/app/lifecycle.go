package app

import (
	"fmt"
	"sync"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

// State represents the position of a pipeline run.
type State int

const (
	StateIdle State = iota
	StateCounting
	StateImporting
	StateLocating
	StateGraphing
	StateSearching
	StateScoring
	StateDone
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCounting:
		return "Counting"
	case StateImporting:
		return "Importing"
	case StateLocating:
		return "Locating"
	case StateGraphing:
		return "Graphing"
	case StateSearching:
		return "Searching"
	case StateScoring:
		return "Scoring"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Stage returns the pipeline stage a working state belongs to.
func (s State) Stage() domain.Stage {
	switch s {
	case StateCounting:
		return domain.StageCount
	case StateImporting:
		return domain.StageImport
	case StateLocating:
		return domain.StageLocate
	case StateGraphing:
		return domain.StageGraph
	case StateSearching:
		return domain.StageSets
	case StateScoring:
		return domain.StageScore
	default:
		return ""
	}
}

func (s State) working() bool {
	return s > StateIdle && s < StateDone
}

func (s State) terminal() bool {
	return s == StateIdle || s == StateDone || s == StateFailed
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle tracks a run through its stages. Stages only move forward; a
// run may start at any stage and may skip stages.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a new lifecycle tracker.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	valid := false
	switch {
	case oldState.terminal():
		valid = newState.working() || newState == StateIdle
	case oldState.working():
		valid = newState > oldState || newState == StateFailed
	}
	if !valid {
		l.mu.Unlock()
		if oldState.working() && newState.working() {
			return fmt.Errorf("%w: cannot move from %s to %s", domain.ErrAlreadyRunning, oldState, newState)
		}
		return fmt.Errorf("invalid transition from %s to %s", oldState, newState)
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Debug("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

// Running returns true while a stage is in progress.
func (l *Lifecycle) Running() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.working()
}

// Fail moves a working run to StateFailed and tags err with the current stage.
func (l *Lifecycle) Fail(err error) error {
	l.mu.RLock()
	stage := l.state.Stage()
	l.mu.RUnlock()

	if stage != "" {
		err = domain.InStage(stage, err)
	}
	if terr := l.TransitionTo(StateFailed, err.Error()); terr != nil {
		l.logger.Warn("lifecycle", ports.Err(terr))
	}
	return err
}
