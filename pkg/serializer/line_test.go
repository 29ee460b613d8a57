package serializer

import (
	"bytes"
	"testing"

	"github.com/banditml/evbatch/pkg/event"
)

func TestLineSerializerDelimitsEvents(t *testing.T) {
	kind := NewLineKind[*event.TextEvent]()
	buf := &bytes.Buffer{}
	s := kind.New(buf, "identity", nil)

	if err := s.Add(event.NewTextEvent("alpha")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Add(event.NewTextEvent("beta")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	want := "alpha\nbeta\n"
	if got := buf.String(); got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
}

func TestLineKindSizeEstimate(t *testing.T) {
	kind := NewLineKind[*event.TextEvent]()
	evt := event.NewTextEvent("abcd")
	if got := kind.SizeEstimate(evt); got != 5 {
		t.Errorf("SizeEstimate() = %d, want 5", got)
	}
}

func TestLineSerializerSizeGrowsWithEachAdd(t *testing.T) {
	kind := NewLineKind[*event.TextEvent]()
	buf := &bytes.Buffer{}
	s := kind.New(buf, "identity", nil)

	if s.Size() != 0 {
		t.Fatalf("Size() before any Add = %d, want 0", s.Size())
	}
	s.Add(event.NewTextEvent("ab"))
	if s.Size() != 3 {
		t.Errorf("Size() after one Add = %d, want 3", s.Size())
	}
}
