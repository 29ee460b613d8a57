// Package bufferpool provides a thread-safe pool of reusable byte
// buffers for the batcher's serializers, per spec.md §4.5: buffers
// survive across batches, only their contents are reset, and the pool
// bounds allocation churn without bounding total memory.
package bufferpool

import (
	"bytes"
	"sync"
)

// Pool hands out *bytes.Buffer values and takes them back once the
// transport has finished with them. It wraps sync.Pool the same way
// the teacher's remote-write batch pools do (see grafana-alloy's
// metricPool), reset-on-return instead of reset-on-acquire so a buffer
// never leaks whatever the previous batch wrote into it.
type Pool struct {
	pool sync.Pool
}

// New creates a buffer pool. initialCap sizes buffers the pool has to
// allocate from scratch; it's a hint, not a hard limit.
func New(initialCap int) *Pool {
	p := &Pool{}
	p.pool.New = func() any {
		return bytes.NewBuffer(make([]byte, 0, initialCap))
	}
	return p
}

// Acquire returns a buffer ready to be written into, creating one if
// the pool is currently empty.
func (p *Pool) Acquire() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Release resets buf and returns it to the pool. Call this once the
// transport has finished reading buf's contents.
func (p *Pool) Release(buf *bytes.Buffer) {
	buf.Reset()
	p.pool.Put(buf)
}
