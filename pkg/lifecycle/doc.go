// Package lifecycle provides orchestration and state machine functionality.
//
// This package manages the lifecycle of the event batcher, including
// state transitions (Created, Active, Draining, Destroyed, Crashed),
// graceful shutdown with a bounded drain timeout, and background
// flusher coordination.
//
// # Usage
//
// Create a lifecycle manager:
//
//	manager := lifecycle.NewManager(logger, eventEmitter)
//
//	if !manager.CanActivate() {
//	    return ErrAlreadyActive
//	}
//
//	if err := manager.TransitionTo(lifecycle.StateActive, "flusher started"); err != nil {
//	    return err
//	}
//
//	// ... background flusher runs in its own goroutine ...
//
//	// Graceful shutdown
//	manager.Cancel()
//	if err := manager.WaitWithTimeout(30 * time.Second); err != nil {
//	    return ErrShutdownTimeout
//	}
//
// # State Machine
//
// Valid state transitions:
//   - Created -> Active, Crashed
//   - Active -> Draining, Crashed
//   - Draining -> Destroyed, Crashed
//   - Crashed -> Destroyed
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package lifecycle
