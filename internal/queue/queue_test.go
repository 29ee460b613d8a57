package queue

import (
	"testing"
	"time"

	"github.com/banditml/evbatch/pkg/event"
)

func TestPushPopOrder(t *testing.T) {
	q := New[*event.TextEvent](0)

	q.Push(event.NewTextEvent("a"), 1)
	q.Push(event.NewTextEvent("b"), 1)
	q.Push(event.NewTextEvent("c"), 1)

	for _, want := range []string{"a", "b", "c"} {
		evt, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() = !ok, want event %q", want)
		}
		if evt.SeedID() != want {
			t.Errorf("Pop() = %q, want %q", evt.SeedID(), want)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("Pop() on empty queue = ok, want !ok")
	}
}

func TestSizeAndBytes(t *testing.T) {
	q := New[*event.TextEvent](0)
	q.Push(event.NewTextEvent("a"), 3)
	q.Push(event.NewTextEvent("b"), 5)

	if got := q.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
	if got := q.Bytes(); got != 8 {
		t.Errorf("Bytes() = %d, want 8", got)
	}

	q.Pop()
	if got := q.Bytes(); got != 5 {
		t.Errorf("Bytes() after Pop = %d, want 5", got)
	}
}

func TestIsFull(t *testing.T) {
	q := New[*event.TextEvent](2)

	if q.IsFull() {
		t.Fatal("IsFull() = true on empty queue")
	}

	q.Push(event.NewTextEvent("a"), 1)
	if q.IsFull() {
		t.Fatal("IsFull() = true with 1/2 capacity used")
	}

	q.Push(event.NewTextEvent("b"), 1)
	if !q.IsFull() {
		t.Fatal("IsFull() = false at capacity")
	}
}

func TestZeroCapacityNeverFull(t *testing.T) {
	q := New[*event.TextEvent](0)
	for i := 0; i < 1000; i++ {
		q.Push(event.NewTextEvent("x"), 1)
	}
	if q.IsFull() {
		t.Error("IsFull() = true for a zero-capacity (unbounded) queue")
	}
}

func TestWaitForSpaceUnblocksOnSignal(t *testing.T) {
	q := New[*event.TextEvent](1)
	q.Push(event.NewTextEvent("a"), 1)

	done := make(chan struct{})
	go func() {
		q.WaitForSpace()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitForSpace() returned before space opened")
	case <-time.After(50 * time.Millisecond):
	}

	q.Pop()
	q.SignalSpace()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForSpace() did not return after SignalSpace")
	}
}

func TestPrunePreservesOrderAmongSurvivors(t *testing.T) {
	q := New[*event.TextEvent](0)
	// seeds above 0.5 drop, at/below survive.
	for _, seed := range []string{"0.1", "0.9", "0.2", "0.8", "0.3"} {
		q.Push(event.NewSeededTextEvent(seed), 1)
	}

	removed := q.Prune(0.5)
	if removed != 2 {
		t.Fatalf("Prune() removed %d events, want 2", removed)
	}
	if got := q.Size(); got != 3 {
		t.Fatalf("Size() after Prune = %d, want 3", got)
	}

	for _, want := range []string{"0.1", "0.2", "0.3"} {
		evt, ok := q.Pop()
		if !ok || evt.SeedID() != want {
			t.Errorf("Pop() after Prune = %q, want %q", evt.SeedID(), want)
		}
	}
}

func TestPruneSignalsSpace(t *testing.T) {
	q := New[*event.TextEvent](1)
	q.Push(event.NewSeededTextEvent("0.9"), 1)

	done := make(chan struct{})
	go func() {
		q.WaitForSpace()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if removed := q.Prune(0.5); removed != 1 {
		t.Fatalf("Prune() removed %d, want 1", removed)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForSpace() did not return after Prune freed space")
	}
}
