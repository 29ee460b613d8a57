package transport

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestMemorySenderRecordsBatches(t *testing.T) {
	m := NewMemorySender()

	if err := m.Send(context.Background(), 1, bytes.NewBufferString("abc")); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if err := m.SendCounted(context.Background(), 2, bytes.NewBufferString("def"), 9); err != nil {
		t.Fatalf("SendCounted() error: %v", err)
	}

	batches := m.Batches()
	if len(batches) != 2 {
		t.Fatalf("len(Batches()) = %d, want 2", len(batches))
	}
	if batches[0].MessageID != 1 || string(batches[0].Data) != "abc" || batches[0].Counted {
		t.Errorf("batches[0] = %+v, want uncounted message 1 with data abc", batches[0])
	}
	if batches[1].MessageID != 2 || string(batches[1].Data) != "def" || !batches[1].Counted || batches[1].OriginalCount != 9 {
		t.Errorf("batches[1] = %+v, want counted message 2 with data def, original_count 9", batches[1])
	}
}

func TestMemorySenderFailNextIsOneShot(t *testing.T) {
	m := NewMemorySender()
	boom := errors.New("boom")
	m.FailNext(boom)

	err := m.Send(context.Background(), 1, bytes.NewBufferString("x"))
	if !errors.Is(err, boom) {
		t.Fatalf("Send() error = %v, want %v", err, boom)
	}

	if err := m.Send(context.Background(), 1, bytes.NewBufferString("x")); err != nil {
		t.Fatalf("Send() after one-shot failure error: %v", err)
	}
	if len(m.Batches()) != 1 {
		t.Errorf("len(Batches()) = %d, want 1 (failed call should not record)", len(m.Batches()))
	}
}

func TestMemorySenderBatchesReturnsCopy(t *testing.T) {
	m := NewMemorySender()
	m.Send(context.Background(), 1, bytes.NewBufferString("x"))

	batches := m.Batches()
	batches[0].MessageID = 999

	if m.Batches()[0].MessageID == 999 {
		t.Error("mutating the returned slice affected the sender's internal state")
	}
}
