// Package batcher implements the asynchronous event batcher: many
// producer goroutines call Append, a single background flusher drains
// the queue on a timer and hands finalized buffers to a transport.
// See internal/queue for the admission-side FIFO, pkg/serializer for
// the encoding contract, and pkg/transport for the wire contract.
package batcher

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/banditml/evbatch/internal/queue"
	"github.com/banditml/evbatch/pkg/bufferpool"
	"github.com/banditml/evbatch/pkg/config"
	"github.com/banditml/evbatch/pkg/event"
	"github.com/banditml/evbatch/pkg/lifecycle"
	"github.com/banditml/evbatch/pkg/log"
	"github.com/banditml/evbatch/pkg/serializer"
	"github.com/banditml/evbatch/pkg/transport"
	"github.com/banditml/evbatch/pkg/watchdog"
)

// overflowPruneProbability is the pass probability queue.Prune uses
// when DROP mode finds the queue full, per spec.md §4.1 step 5.
const overflowPruneProbability = 0.5

// Batcher admits events of type E, batches their serialized form, and
// hands finished buffers to a transport.Sender on a timer. Callers
// construct one with New, call Init to start the background flusher,
// call Append from any number of goroutines, and call Close to drain
// and stop.
type Batcher[E event.Event] struct {
	cfg          config.Config
	kind         serializer.Kind[E]
	sender       transport.Sender
	queue        *queue.Queue[E]
	pool         *bufferpool.Pool
	lifecycleMgr *lifecycle.DefaultManager
	logger       log.Logger
	watchdog     watchdog.Pinger

	onError     ErrorCallback
	sharedState any

	eventIndex           uint64 // atomic; monotonic, incremented on every admitted event
	subsampleRateBits    uint64 // atomic; math.Float64bits(current subsample rate)
	bufferEndEventNumber uint64 // flusher-goroutine only, per spec.md §5
}

// New constructs a Batcher in the Created lifecycle state. cfg is
// validated immediately; kind and sender are the required serializer
// and transport collaborators. Call Init to begin admitting events.
func New[E event.Event](cfg config.Config, kind serializer.Kind[E], sender transport.Sender, opts ...Option[E]) (*Batcher[E], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	o := defaultOptions[E]()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Batcher[E]{
		cfg:         cfg,
		kind:        kind,
		sender:      sender,
		queue:       queue.New[E](cfg.SendQueueMaxCapacity),
		pool:        bufferpool.New(cfg.SendHighWaterMark),
		logger:      o.logger.With(log.String("component", "batcher")),
		watchdog:    o.watchdog,
		onError:     o.onError,
		sharedState: o.sharedState,
	}
	b.lifecycleMgr = lifecycle.NewManager(b.logger, nil)
	atomic.StoreUint64(&b.subsampleRateBits, math.Float64bits(cfg.SubsampleRate))

	return b, nil
}

// Init validates the subsample rate, per spec.md §4.1, and starts the
// background flusher goroutine. It is an error to call Init more than
// once.
func (b *Batcher[E]) Init(ctx context.Context) error {
	if !b.lifecycleMgr.CanActivate() {
		return ErrAlreadyActive
	}
	if b.cfg.SubsampleRate <= 0 || b.cfg.SubsampleRate > 1 {
		return fmt.Errorf("%w: subsample_rate must be in (0, 1], got %v", ErrInvalidArgument, b.cfg.SubsampleRate)
	}

	flushCtx, cancel := context.WithCancel(ctx)
	b.lifecycleMgr.SetCancel(cancel)

	if err := b.lifecycleMgr.TransitionTo(lifecycle.StateActive, "Init() called"); err != nil {
		cancel()
		return err
	}

	b.lifecycleMgr.AddWorker()
	go b.runFlushLoop(flushCtx)

	return nil
}

// Append admits one event into the pipeline, per the algorithm in
// spec.md §4.1. It never blocks unless the queue is full and the
// configured overflow policy is BLOCK.
func (b *Batcher[E]) Append(evt E) error {
	if b.lifecycleMgr.State() != lifecycle.StateActive {
		return ErrNotActive
	}

	if b.cfg.EventsCounterStatus == config.CounterEnable {
		atomic.AddUint64(&b.eventIndex, 1)
	}

	rate := b.subsampleRate()
	if rate < 1 {
		if evt.TryDrop(rate, event.SubsampleRateDropPass) {
			// The event_index increment above is retained even though
			// this event never reaches the queue, so original_count
			// still reflects every admission.
			return nil
		}
	}

	if b.cfg.EventsCounterStatus == config.CounterEnable {
		evt.SetEventIndex(atomic.LoadUint64(&b.eventIndex))
	}

	b.queue.Push(evt, b.kind.SizeEstimate(evt))

	if b.queue.IsFull() {
		switch b.cfg.QueueMode {
		case config.QueueModeBlock:
			b.queue.WaitForSpace()
		case config.QueueModeDrop:
			b.queue.Prune(overflowPruneProbability)
		}
	}

	return nil
}

// SetSubsampleRate atomically updates the per-event admit probability.
// It can be called concurrently with Append from any goroutine (a
// config hot-reload plugin, for instance) and takes effect on the
// very next Append call.
func (b *Batcher[E]) SetSubsampleRate(rate float64) error {
	if rate <= 0 || rate > 1 {
		return fmt.Errorf("%w: subsample_rate must be in (0, 1], got %v", ErrInvalidArgument, rate)
	}
	atomic.StoreUint64(&b.subsampleRateBits, math.Float64bits(rate))
	return nil
}

func (b *Batcher[E]) subsampleRate() float64 {
	return math.Float64frombits(atomic.LoadUint64(&b.subsampleRateBits))
}

// Close stops the background flusher and runs one final synchronous
// flush of every event remaining in the queue, per spec.md §5's
// cancellation model. Close never returns a serializer or transport
// error directly; those route through the error callback, the same
// as any other background-path failure. Close does return an error if
// the batcher is not Active (never Init'd, or already closed), or if
// the background flusher does not stop within
// lifecycle.ShutdownTimeout; the final drain still runs in that case.
func (b *Batcher[E]) Close(ctx context.Context) error {
	if !b.lifecycleMgr.CanDrain() {
		return ErrNotActive
	}
	if err := b.lifecycleMgr.TransitionTo(lifecycle.StateDraining, "Close() called"); err != nil {
		return err
	}

	b.lifecycleMgr.Cancel()
	waitErr := b.lifecycleMgr.WaitWithTimeout(lifecycle.ShutdownTimeout)

	if err := b.runIteration(ctx, true); err != nil {
		b.reportError(err)
	}

	reason := "drained"
	if waitErr != nil {
		reason = "drain timeout"
	}
	_ = b.lifecycleMgr.TransitionTo(lifecycle.StateDestroyed, reason)

	return waitErr
}

// State returns the current lifecycle state.
func (b *Batcher[E]) State() lifecycle.State {
	return b.lifecycleMgr.State()
}

func (b *Batcher[E]) reportError(err error) {
	b.logger.Error("background flush error", log.Err(err))
	if b.onError != nil {
		b.onError(err)
	}
}
