package serializer

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/banditml/evbatch/pkg/event"
)

func TestFramedSerializerRoundTripsLengthPrefixes(t *testing.T) {
	kind := NewFramedKind[*event.TextEvent]()
	buf := &bytes.Buffer{}
	s := kind.New(buf, "identity", nil)

	if err := s.Add(event.NewTextEvent("ab")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Add(event.NewTextEvent("cde")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	data := buf.Bytes()

	l1 := binary.BigEndian.Uint32(data[0:4])
	if l1 != 2 {
		t.Fatalf("first record length = %d, want 2", l1)
	}
	rec1 := data[4 : 4+l1]
	if string(rec1) != "ab" {
		t.Errorf("first record = %q, want %q", rec1, "ab")
	}

	off := 4 + l1
	l2 := binary.BigEndian.Uint32(data[off : off+4])
	if l2 != 3 {
		t.Fatalf("second record length = %d, want 3", l2)
	}
	rec2 := data[off+4 : off+4+l2]
	if string(rec2) != "cde" {
		t.Errorf("second record = %q, want %q", rec2, "cde")
	}

	trailerStart := off + 4 + l2
	magic := binary.BigEndian.Uint32(data[trailerStart : trailerStart+4])
	if magic != framedTrailerMagic {
		t.Errorf("trailer magic = %x, want %x", magic, framedTrailerMagic)
	}
	count := binary.BigEndian.Uint32(data[trailerStart+4 : trailerStart+8])
	if count != 2 {
		t.Errorf("trailer record count = %d, want 2", count)
	}
	origCount := binary.BigEndian.Uint32(data[trailerStart+8 : trailerStart+12])
	if origCount != 2 {
		t.Errorf("trailer original_count = %d, want 2 (Finalize uses physical count)", origCount)
	}

	crcFieldStart := trailerStart + 12
	gotCRC := binary.BigEndian.Uint32(data[crcFieldStart : crcFieldStart+4])
	wantCRC := crc32.ChecksumIEEE(data[:crcFieldStart])
	if gotCRC != wantCRC {
		t.Errorf("trailing CRC32 = %x, want %x", gotCRC, wantCRC)
	}
}

func TestFramedSerializerFinalizeCountedUsesSuppliedCount(t *testing.T) {
	kind := NewFramedKind[*event.TextEvent]()
	buf := &bytes.Buffer{}
	s := kind.New(buf, "identity", nil)

	s.Add(event.NewTextEvent("x"))
	if err := s.FinalizeCounted(7); err != nil {
		t.Fatalf("FinalizeCounted() error: %v", err)
	}

	data := buf.Bytes()
	trailerStart := 4 + 1 // one 1-byte record with its length prefix
	origCount := binary.BigEndian.Uint32(data[trailerStart+8 : trailerStart+12])
	if origCount != 7 {
		t.Errorf("trailer original_count = %d, want 7", origCount)
	}
}

func TestFramedKindSizeEstimate(t *testing.T) {
	kind := NewFramedKind[*event.TextEvent]()
	evt := event.NewTextEvent("abc")
	if got := kind.SizeEstimate(evt); got != 7 {
		t.Errorf("SizeEstimate() = %d, want 7", got)
	}
}
