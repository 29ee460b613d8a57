package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/banditml/evbatch/pkg/log"
)

// Common lifecycle errors.
var (
	ErrNotActive       = errors.New("lifecycle: not active")
	ErrAlreadyActive   = errors.New("lifecycle: already active")
	ErrShutdownTimeout = errors.New("lifecycle: shutdown timeout")
)

// ShutdownTimeout is the default maximum time to wait for the
// background flusher to finish draining.
const ShutdownTimeout = 30 * time.Second

// DefaultManager implements Manager with the Created/Active/Draining/
// Destroyed state machine from spec.md §3.
type DefaultManager struct {
	mu           sync.RWMutex
	state        State
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewManager creates a lifecycle manager starting in StateCreated.
func NewManager(logger log.Logger, emitter EventEmitter) *DefaultManager {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &DefaultManager{
		state:        StateCreated,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *DefaultManager) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
func (l *DefaultManager) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch oldState {
	case StateCreated:
		if newState != StateActive && newState != StateCrashed {
			l.mu.Unlock()
			return ErrNotActive
		}
	case StateActive:
		if newState != StateDraining && newState != StateCrashed {
			l.mu.Unlock()
			return ErrAlreadyActive
		}
	case StateDraining:
		if newState != StateDestroyed && newState != StateCrashed {
			l.mu.Unlock()
			return ErrAlreadyActive
		}
	case StateDestroyed:
		l.mu.Unlock()
		return ErrNotActive
	case StateCrashed:
		if newState != StateDestroyed {
			l.mu.Unlock()
			return ErrNotActive
		}
	}

	l.state = newState
	l.mu.Unlock()

	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

// CanActivate returns true if Init() can transition to Active.
func (l *DefaultManager) CanActivate() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateCreated
}

// CanDrain returns true if shutdown can begin.
func (l *DefaultManager) CanDrain() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateActive
}

// SetCancel stores the cancel function used to stop the background flusher.
func (l *DefaultManager) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel stops the background flusher.
func (l *DefaultManager) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// AddWorker increments the running-goroutine count.
func (l *DefaultManager) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the running-goroutine count.
func (l *DefaultManager) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for the background flusher goroutine to finish.
func (l *DefaultManager) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing drain",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}
}
