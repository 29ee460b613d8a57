package serializer

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/banditml/evbatch/pkg/event"
)

// framedMessageID identifies the length-prefixed binary wire format.
const framedMessageID uint16 = 2

// framedTrailerMagic marks the start of the trailer so a reader can
// detect a truncated batch.
const framedTrailerMagic uint32 = 0xE3A7C11E

// Add writes each record as a uint32 length prefix followed by the
// payload bytes; Finalize appends a 12-byte trailer (magic, record
// count, original count) and a trailing CRC32 of everything written so far, so a
// truncated upload is detectable before it is acted on downstream.
// This mirrors the length-prefixed framing the teacher's own WAL
// segment format uses (pkg/wal's frame/CRC32 pairing), generalized to
// arbitrary event payloads instead of compressed log segments.
type FramedSerializer[E framedEvent] struct {
	buf     *bytes.Buffer
	lenHdr  [4]byte
	count   uint32
	crcSeed uint32
}

type framedEvent interface {
	event.Event
	EncodablePayload
}

// FramedKind produces FramedSerializer instances.
type FramedKind[E framedEvent] struct{}

// NewFramedKind creates a Kind producing length-prefixed binary serializers.
func NewFramedKind[E framedEvent]() *FramedKind[E] {
	return &FramedKind[E]{}
}

// New constructs a FramedSerializer bound to buf.
func (FramedKind[E]) New(buf *bytes.Buffer, _ string, _ any) Serializer[E] {
	return &FramedSerializer[E]{buf: buf, crcSeed: crc32.IEEE}
}

// SizeEstimate returns the payload length plus its 4-byte length
// prefix.
func (FramedKind[E]) SizeEstimate(evt E) int {
	return len(evt.Payload()) + 4
}

// MessageID returns the framed format's wire message id.
func (FramedKind[E]) MessageID() uint16 { return framedMessageID }

// Add writes evt's length-prefixed payload.
func (s *FramedSerializer[E]) Add(evt E) error {
	payload := evt.Payload()
	binary.BigEndian.PutUint32(s.lenHdr[:], uint32(len(payload)))
	s.buf.Write(s.lenHdr[:])
	s.buf.Write(payload)
	s.count++
	return nil
}

// Size returns the buffer's current length.
func (s *FramedSerializer[E]) Size() int { return s.buf.Len() }

// Finalize appends the trailer with originalCount equal to the number
// of records physically written (no subsampling information available
// in DISABLE mode).
func (s *FramedSerializer[E]) Finalize() error {
	return s.writeTrailer(s.count)
}

// FinalizeCounted appends the trailer with the batcher-supplied
// originalCount, which may exceed the physical record count when
// subsampling dropped events during this batch's window.
func (s *FramedSerializer[E]) FinalizeCounted(originalCount uint32) error {
	return s.writeTrailer(originalCount)
}

func (s *FramedSerializer[E]) writeTrailer(originalCount uint32) error {
	var trailer [12]byte
	binary.BigEndian.PutUint32(trailer[0:4], framedTrailerMagic)
	binary.BigEndian.PutUint32(trailer[4:8], s.count)
	binary.BigEndian.PutUint32(trailer[8:12], originalCount)
	s.buf.Write(trailer[:])

	checksum := crc32.ChecksumIEEE(s.buf.Bytes())
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], checksum)
	s.buf.Write(crcBuf[:])

	return nil
}
