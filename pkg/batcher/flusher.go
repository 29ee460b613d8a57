package batcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/banditml/evbatch/pkg/config"
	"github.com/banditml/evbatch/pkg/log"
)

// runFlushLoop is the background flusher from spec.md §4.3: every
// send_batch_interval_ms it runs one iteration and pings the
// configured watchdog, regardless of whether that iteration found
// anything to flush.
func (b *Batcher[E]) runFlushLoop(ctx context.Context) {
	defer b.lifecycleMgr.WorkerDone()

	ticker := time.NewTicker(b.cfg.BatchInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.runIteration(ctx, false); err != nil {
				b.reportError(err)
			}
			if err := b.watchdog.Ping(ctx); err != nil {
				b.logger.Warn("watchdog ping failed", log.Err(err))
			}
		}
	}
}

// RunIteration performs one full drain pass: it snapshots the queue's
// current size and repeatedly fills and sends buffers until that
// snapshot is exhausted. Events that arrive concurrently during the
// drain are deliberately left for the next iteration, per spec.md
// §4.3, bounding worst-case flush latency.
//
// A serializer or transport failure abandons the current buffer and
// the pass moves on to the next one; every failure of the pass is
// returned to the caller (joined), and callers on the background path
// route it through the error callback instead of stopping the flusher.
func (b *Batcher[E]) RunIteration(ctx context.Context) error {
	return b.runIteration(ctx, false)
}

// runIteration is RunIteration's implementation, with isFinal marking
// the drain Close runs after the flusher goroutine has already exited.
// isFinal only changes how the last buffer's original_count is
// computed; see fillBuffer.
func (b *Batcher[E]) runIteration(ctx context.Context, isFinal bool) error {
	remaining := b.queue.Size()
	if remaining == 0 {
		return nil
	}

	var errs []error
	for remaining > 0 {
		buf := b.pool.Acquire()

		popped, originalCount, err := b.fillBuffer(buf, remaining, isFinal)
		remaining -= popped

		if err != nil {
			b.pool.Release(buf)
			errs = append(errs, fmt.Errorf("%w: %v", ErrSerializerError, err))
			if popped == 0 {
				break
			}
			continue
		}

		if popped == 0 {
			// Nothing was actually available to pop (a concurrent
			// DROP-mode prune raced ahead of this snapshot); stop
			// rather than spin on an empty queue.
			b.pool.Release(buf)
			break
		}

		var sendErr error
		if b.cfg.EventsCounterStatus == config.CounterEnable {
			sendErr = b.sender.SendCounted(ctx, b.kind.MessageID(), buf, originalCount)
		} else {
			sendErr = b.sender.Send(ctx, b.kind.MessageID(), buf)
		}
		b.pool.Release(buf)

		if sendErr != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrSendError, sendErr))
		}
	}

	return errors.Join(errs...)
}

// fillBuffer implements the fill_buffer algorithm from spec.md §4.3.
// It returns how many events it popped (so the caller can shrink its
// remaining count) and, in counter mode, the original_count to hand to
// the transport alongside the buffer.
//
// original_count counts every admission in the buffer's window,
// including events the subsample check dropped before they ever
// reached the queue (spec.md §9), not just the ones physically
// popped. Mid-run, a buffer that empties the queue can leave that
// window's trailing drops uncounted; the next buffer's window simply
// starts later and picks them up once a real event is popped, since
// b.eventIndex advances on every admission regardless of survival.
// isFinal buffers have no "next buffer" to catch up on, so when a
// final buffer also drains the queue completely, it closes its window
// against the live admission counter instead of the last popped
// event's index, folding in any trailing subsample-dropped admissions.
func (b *Batcher[E]) fillBuffer(buf *bytes.Buffer, remaining int, isFinal bool) (popped int, originalCount uint32, err error) {
	s := b.kind.New(buf, b.cfg.BatchContentEncoding, b.sharedState)

	var lastIndex uint64
	blockMode := b.cfg.QueueMode == config.QueueModeBlock

	for remaining-popped > 0 && s.Size() < b.cfg.SendHighWaterMark {
		evt, ok := b.queue.Pop()
		if !ok {
			// A concurrent DROP-mode prune removed events this
			// iteration's snapshot counted on; nothing more is
			// available right now, so stop rather than spin.
			break
		}
		if blockMode {
			b.queue.SignalSpace()
		}

		if addErr := s.Add(evt); addErr != nil {
			return popped, 0, addErr
		}
		lastIndex = evt.EventIndex()
		popped++
	}

	if b.cfg.EventsCounterStatus == config.CounterEnable {
		start := b.bufferEndEventNumber
		drained := remaining-popped == 0
		switch {
		case isFinal && drained:
			b.bufferEndEventNumber = atomic.LoadUint64(&b.eventIndex)
		case popped > 0:
			b.bufferEndEventNumber = lastIndex
		}
		originalCount = uint32(b.bufferEndEventNumber - start)
		err = s.FinalizeCounted(originalCount)
	} else {
		err = s.Finalize()
	}

	return popped, originalCount, err
}
