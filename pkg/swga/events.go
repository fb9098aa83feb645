package swga

import "github.com/bft-labs/swga/internal/app"

// State is the position of a pipeline run.
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
	return toInternal(s).String()
}

// StateChangeEvent describes one stage transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives pipeline events.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
}

type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

var stateMap = map[app.State]State{
	app.StateIdle:      StateIdle,
	app.StateCounting:  StateCounting,
	app.StateImporting: StateImporting,
	app.StateLocating:  StateLocating,
	app.StateGraphing:  StateGraphing,
	app.StateSearching: StateSearching,
	app.StateScoring:   StateScoring,
	app.StateDone:      StateDone,
	app.StateFailed:    StateFailed,
}

func convertState(s app.State) State {
	if out, ok := stateMap[s]; ok {
		return out
	}
	return StateIdle
}

func toInternal(s State) app.State {
	for in, out := range stateMap {
		if out == s {
			return in
		}
	}
	return app.State(-1)
}
