package batcher

import "errors"

// Sentinel errors for the abstract error kinds from spec.md §7. Init
// errors are returned synchronously; serializer_error and send_error
// are returned directly only by RunIteration, and on the background
// flush path and in Close's final drain they reach callers through the
// optional error callback (see WithErrorCallback).
var (
	// ErrInvalidArgument is returned by Init when a configuration value
	// is out of range (currently only SubsampleRate).
	ErrInvalidArgument = errors.New("batcher: invalid argument")

	// ErrSerializerError wraps a failure from Serializer.Add or
	// Serializer.Finalize/FinalizeCounted.
	ErrSerializerError = errors.New("batcher: serializer error")

	// ErrSendError wraps a failure from transport.Sender.
	ErrSendError = errors.New("batcher: send error")

	// ErrQueueError marks a queue invariant violation. It should be
	// unreachable in normal operation; its presence here documents the
	// taxonomy rather than anything the queue itself currently returns.
	ErrQueueError = errors.New("batcher: queue error")

	// ErrNotActive is returned by Append and Close when Init has not
	// yet been called or the batcher has already begun draining.
	ErrNotActive = errors.New("batcher: not active")

	// ErrAlreadyActive is returned by Init when it is called more than
	// once.
	ErrAlreadyActive = errors.New("batcher: already active")
)
