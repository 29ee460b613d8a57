// Package lifecycle implements the batcher's state machine from
// spec.md §3: Created at construction, Active once the background
// flusher is running, Draining while shutdown flushes remaining
// events, Destroyed once that drain completes.
package lifecycle

import "time"

// State represents a batcher's lifecycle state.
type State int

const (
	// StateCreated is the state after construction but before Init
	// has started the background flusher.
	StateCreated State = iota

	// StateActive is the state once the background flusher is
	// running and Append admits events into the pipeline.
	StateActive

	// StateDraining is the state during shutdown: the background
	// flusher has been stopped and a final synchronous flush of
	// remaining events is in progress.
	StateDraining

	// StateDestroyed is the terminal state after the final drain
	// completes and the transport has been released.
	StateDestroyed

	// StateCrashed marks an unrecoverable failure during Init or the
	// background flush loop's own bookkeeping (not per-batch
	// serializer/transport errors, which route through the error
	// callback instead per spec.md §7).
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActive:
		return "Active"
	case StateDraining:
		return "Draining"
	case StateDestroyed:
		return "Destroyed"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when the lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Manager manages the batcher's lifecycle state machine.
type Manager interface {
	// State returns the current lifecycle state.
	State() State

	// CanActivate returns true if Init() can transition to Active.
	CanActivate() bool

	// CanDrain returns true if shutdown can begin.
	CanDrain() bool

	// TransitionTo attempts to transition to a new state.
	// Returns an error if the transition is not valid.
	TransitionTo(newState State, reason string) error

	// WaitWithTimeout waits for the background flusher goroutine to
	// finish with a timeout. Returns ErrShutdownTimeout if it expires.
	WaitWithTimeout(timeout time.Duration) error

	// AddWorker increments the running-goroutine count.
	AddWorker()

	// WorkerDone decrements the running-goroutine count.
	WorkerDone()
}
