package serializer

import (
	"bytes"

	"github.com/banditml/evbatch/pkg/event"
)

// lineMessageID identifies the line-delimited text wire format.
const lineMessageID uint16 = 1

// EncodablePayload is satisfied by event types that expose a wire
// payload in addition to the core event.Event contract. The line and
// framed serializers both require it; the batcher core never does,
// since appending and subsampling only need event.Event.
type EncodablePayload interface {
	Payload() []byte
}

// lineEvent is the constraint every event passed to LineKind must
// satisfy: the batcher's identity/index/drop contract, plus a payload
// to write.
type lineEvent interface {
	event.Event
	EncodablePayload
}

// LineKind produces line-delimited text serializers: each event is
// written as its payload followed by a newline, used in tests and for
// any transport that can split on "\n" (spec.md §4.4's "canonical
// line-delimited text form used in tests").
type LineKind[E lineEvent] struct{}

// NewLineKind creates a Kind producing newline-delimited serializers.
func NewLineKind[E lineEvent]() *LineKind[E] {
	return &LineKind[E]{}
}

// New constructs a LineSerializer bound to buf.
func (LineKind[E]) New(buf *bytes.Buffer, _ string, _ any) Serializer[E] {
	return &LineSerializer[E]{buf: buf}
}

// SizeEstimate returns the payload length plus the trailing newline.
func (LineKind[E]) SizeEstimate(evt E) int {
	return len(evt.Payload()) + 1
}

// MessageID returns the line format's wire message id.
func (LineKind[E]) MessageID() uint16 { return lineMessageID }

// LineSerializer writes each added event as "<payload>\n".
type LineSerializer[E lineEvent] struct {
	buf *bytes.Buffer
}

// Add writes evt's payload followed by a newline delimiter.
func (s *LineSerializer[E]) Add(evt E) error {
	s.buf.Write(evt.Payload())
	s.buf.WriteByte('\n')
	return nil
}

// Size returns the buffer's current length.
func (s *LineSerializer[E]) Size() int { return s.buf.Len() }

// Finalize is a no-op: the line format carries no trailer.
func (s *LineSerializer[E]) Finalize() error { return nil }

// FinalizeCounted is a no-op: the line format has no header/trailer to
// carry originalCount in-band. Counted delivery still happens at the
// transport layer, which receives originalCount directly.
func (s *LineSerializer[E]) FinalizeCounted(originalCount uint32) error { return nil }
