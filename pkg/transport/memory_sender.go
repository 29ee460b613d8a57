package transport

import (
	"bytes"
	"context"
	"sync"
)

// SentBatch records one call to MemorySender, used by tests to assert
// on exactly what the batcher handed the transport.
type SentBatch struct {
	MessageID     uint16
	Data          []byte
	Counted       bool
	OriginalCount uint32
}

// MemorySender is an in-process Sender that appends every batch to an
// in-memory slice instead of putting it on the wire. It stands in for
// the teacher's httptest-backed sender in unit tests (see
// internal/agent/agent_test.go) without needing an HTTP server.
type MemorySender struct {
	mu       sync.Mutex
	batches  []SentBatch
	failNext error
}

// NewMemorySender creates an empty MemorySender.
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// Send records buf's contents, tagged with messageID.
func (m *MemorySender) Send(_ context.Context, messageID uint16, buf *bytes.Buffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	m.batches = append(m.batches, SentBatch{
		MessageID: messageID,
		Data:      append([]byte(nil), buf.Bytes()...),
	})
	return nil
}

// SendCounted records buf's contents along with originalCount.
func (m *MemorySender) SendCounted(_ context.Context, messageID uint16, buf *bytes.Buffer, originalCount uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	m.batches = append(m.batches, SentBatch{
		MessageID:     messageID,
		Data:          append([]byte(nil), buf.Bytes()...),
		Counted:       true,
		OriginalCount: originalCount,
	})
	return nil
}

func (m *MemorySender) takeFailure() error {
	if m.failNext == nil {
		return nil
	}
	err := m.failNext
	m.failNext = nil
	return err
}

// FailNext makes the next Send/SendCounted call return err instead of
// recording a batch, for exercising the batcher's error callback path.
func (m *MemorySender) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Batches returns a snapshot of every batch recorded so far.
func (m *MemorySender) Batches() []SentBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentBatch(nil), m.batches...)
}
