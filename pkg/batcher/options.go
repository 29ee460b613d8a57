package batcher

import (
	"github.com/banditml/evbatch/pkg/event"
	"github.com/banditml/evbatch/pkg/log"
	"github.com/banditml/evbatch/pkg/watchdog"
)

// ErrorCallback receives background-path failures (serializer or
// transport errors) that would otherwise have no caller to surface to,
// per spec.md §7. It is never called from Append or Init.
type ErrorCallback func(error)

// Option configures optional Batcher behavior. Required collaborators
// (the serializer Kind and the transport Sender) are constructor
// arguments; Option covers everything with a sensible default.
type Option[E event.Event] func(*options[E])

type options[E event.Event] struct {
	logger      log.Logger
	watchdog    watchdog.Pinger
	onError     ErrorCallback
	sharedState any
}

func defaultOptions[E event.Event]() options[E] {
	return options[E]{
		logger:   log.NewNoopLogger(),
		watchdog: watchdog.NoopPinger{},
	}
}

// WithLogger sets a structured logger. If not provided, a no-op logger
// is used.
func WithLogger[E event.Event](logger log.Logger) Option[E] {
	return func(o *options[E]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWatchdog sets the liveness pinger the background flusher calls
// once per iteration. If not provided, pings are discarded.
func WithWatchdog[E event.Event](pinger watchdog.Pinger) Option[E] {
	return func(o *options[E]) {
		if pinger != nil {
			o.watchdog = pinger
		}
	}
}

// WithErrorCallback sets the callback invoked for background-path
// serializer and transport failures. If not provided, such failures
// are only logged.
func WithErrorCallback[E event.Event](cb ErrorCallback) Option[E] {
	return func(o *options[E]) {
		o.onError = cb
	}
}

// WithSharedState passes an arbitrary value through to every
// Kind.New call, for serializers that need collaborator state beyond
// the buffer and encoding (a compressor, a schema registry handle).
func WithSharedState[E event.Event](state any) Option[E] {
	return func(o *options[E]) {
		o.sharedState = state
	}
}
