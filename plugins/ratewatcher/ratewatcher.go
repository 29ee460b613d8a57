// Package ratewatcher hot-reloads the batcher's subsample rate from a
// TOML file, so an operator can turn sampling up or down without
// restarting the producer process. It mirrors the teacher's
// configwatcher plugin shape (fsnotify + debounce) applied to
// a single scalar instead of a multipart config upload.
package ratewatcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/banditml/evbatch/pkg/log"
)

// RateSetter is the subset of Batcher's API ratewatcher depends on.
// Depending on this instead of the concrete, type-parameterized
// Batcher[E] keeps the watcher free of a generic parameter of its own.
type RateSetter interface {
	SetSubsampleRate(rate float64) error
}

// fileFormat is the TOML shape ratewatcher expects the watched file to
// have: a single top-level key.
type fileFormat struct {
	SubsampleRate float64 `toml:"subsample_rate"`
}

// Watcher polls a TOML file for changes via fsnotify and applies
// subsample_rate updates to a RateSetter. The file is read once at
// Start to establish a baseline, then again on every debounced write
// event.
type Watcher struct {
	path          string
	setter        RateSetter
	logger        log.Logger
	debounceDelay time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a Watcher for path, applying updates to setter.
// debounceDelay absorbs editors that perform multiple writes per save
// (truncate + write, typically); a zero value uses 100ms.
func New(path string, setter RateSetter, logger log.Logger, debounceDelay time.Duration) *Watcher {
	if debounceDelay <= 0 {
		debounceDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		path:          path,
		setter:        setter,
		logger:        logger.With(log.String("component", "ratewatcher")),
		debounceDelay: debounceDelay,
	}
}

// Start applies the file's current contents once, then begins watching
// for further writes in the background. Start returns after the
// initial read; watching continues until ctx is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.applyFromFile(); err != nil {
		w.logger.Warn("initial rate file read failed", log.Err(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.watchLoop(watchCtx, watcher)

	return nil
}

// Stop cancels the watch loop and blocks until it exits.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleApply(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) scheduleApply(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.applyFromFile(); err != nil {
			w.logger.Warn("rate file reload failed", log.Err(err))
		}
	})
}

func (w *Watcher) applyFromFile() error {
	var fc fileFormat
	if err := readTOMLFile(w.path, &fc); err != nil {
		return err
	}
	if err := w.setter.SetSubsampleRate(fc.SubsampleRate); err != nil {
		return fmt.Errorf("apply subsample_rate %v: %w", fc.SubsampleRate, err)
	}
	w.logger.Info("subsample rate reloaded", log.Float64("subsample_rate", fc.SubsampleRate))
	return nil
}

func readTOMLFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, v)
}
