// Package event defines the contract an application event must satisfy
// to flow through the batcher: a stable identity for subsampling
// decisions, a mutable index slot the batcher assigns when counter mode
// is enabled, and a drop vote the event casts for itself.
package event

// DropPass identifies why an event is being asked whether it should be
// dropped: at subsample time (every admission) or at queue-overflow time
// (only under DROP mode, when the queue is full). Event implementations
// that want pass-specific policy (e.g. never drop errors on overflow,
// but allow subsampling) switch on this value inside TryDrop.
type DropPass int

const (
	// SubsampleRateDropPass is passed to TryDrop during Append, before
	// the event is admitted into the queue.
	SubsampleRateDropPass DropPass = iota + 1

	// QueueEarlyDropPass is passed to TryDrop during Queue.Prune, when
	// DROP mode is pruning a full queue to make room for a new event.
	QueueEarlyDropPass
)

// String returns a human-readable name for the pass, used in log lines.
func (p DropPass) String() string {
	switch p {
	case SubsampleRateDropPass:
		return "subsample_rate"
	case QueueEarlyDropPass:
		return "queue_early"
	default:
		return "unknown"
	}
}

// Event is the minimal contract the batcher needs from an application
// event. Concrete event types typically carry a payload too (see
// serializer.EncodablePayload), but the batcher core only ever touches
// the members below.
type Event interface {
	// SeedID returns a stable identifier used both for subsampling
	// decisions (when TryDrop consults it) and diagnostic identity.
	SeedID() string

	// EventIndex returns the index assigned by the batcher, or zero if
	// counter mode is disabled or the event has not been admitted yet.
	EventIndex() uint64

	// SetEventIndex is called by the batcher exactly once per admitted
	// event, after the subsample decision, for surviving events only,
	// when counter mode is enabled.
	SetEventIndex(idx uint64)

	// TryDrop returns true iff the event elects to be dropped during
	// the given pass. passProbability is the probability the pass is
	// applying (the configured subsample rate, or 0.5 for the queue's
	// overflow prune); pass tells the event which consultation this is.
	TryDrop(passProbability float64, pass DropPass) bool
}
