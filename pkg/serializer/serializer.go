// Package serializer fixes the contract between the batcher and a
// pluggable wire-format collector, per spec.md §4.4. A conforming
// serializer accumulates encoded events into one output buffer, reports
// its encoded size so the batcher can decide when to cut a batch, and
// writes any trailing framing when the batch is finalized.
package serializer

import (
	"bytes"

	"github.com/banditml/evbatch/pkg/event"
)

// Serializer collects one batch's worth of encoded events into a
// single buffer. A new Serializer is constructed per buffer via Kind.New
// and discarded once Finalize (or FinalizeCounted) returns.
type Serializer[E event.Event] interface {
	// Add appends one event's encoded, individually delimited form to
	// the bound buffer.
	Add(evt E) error

	// Size returns the current encoded byte size, consulted after
	// every Add to decide whether the high-water mark has been
	// reached.
	Size() int

	// Finalize writes any closing framing/trailer and makes the
	// buffer ready to send. Used when counter mode is DISABLE.
	Finalize() error

	// FinalizeCounted is Finalize's counted-mode counterpart: it
	// writes originalCount into any trailer the wire format supports,
	// per spec.md §4.3's fill_buffer algorithm. Used when counter mode
	// is ENABLE.
	FinalizeCounted(originalCount uint32) error
}

// Kind is a serializer factory plus the two "static" members spec.md
// §4.4 requires of a conforming implementation: a cheap per-event size
// estimate used for queue accounting, and the wire message id the
// transport should tag outgoing batches with. Go has no static
// dispatch on a type parameter, so Kind is the idiomatic stand-in: one
// small value the batcher holds for the lifetime of the pipeline.
type Kind[E event.Event] interface {
	// New constructs a collector bound to one output buffer.
	// sharedState is opaque context a concrete kind may need (e.g. a
	// compressor, a schema registry); the line and framed kinds in
	// this package ignore it.
	New(buf *bytes.Buffer, contentEncoding string, sharedState any) Serializer[E]

	// SizeEstimate returns a cheap upper/lower-bound byte estimate for
	// evt, used by the queue to account for space before the event is
	// ever encoded.
	SizeEstimate(evt E) int

	// MessageID identifies the wire message kind to the transport.
	MessageID() uint16
}
