package bufferpool

import "testing"

func TestAcquireReturnsEmptyBuffer(t *testing.T) {
	p := New(16)
	buf := p.Acquire()
	if buf.Len() != 0 {
		t.Errorf("Acquire() buffer has Len %d, want 0", buf.Len())
	}
}

func TestReleaseResetsContents(t *testing.T) {
	p := New(16)
	buf := p.Acquire()
	buf.WriteString("leftover")
	p.Release(buf)

	same := p.Acquire()
	if same.Len() != 0 {
		t.Errorf("reacquired buffer has Len %d, want 0 (contents not reset)", same.Len())
	}
}

func TestReleaseReusesUnderlyingBuffer(t *testing.T) {
	p := New(16)
	first := p.Acquire()
	p.Release(first)

	second := p.Acquire()
	// sync.Pool reuse isn't guaranteed under GC pressure, but with a
	// single goroutine and no intervening GC it reliably returns the
	// same buffer; this documents the intended behavior.
	if second != first {
		t.Skip("pool did not reuse the released buffer (acceptable under sync.Pool's no-guarantee semantics)")
	}
}
