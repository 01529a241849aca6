// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/adapter.go
// Summary: Debounced bridge between a layout engine and a storage sink.
// Usage: Built once at wiring time, attached to the engine, disposed on shutdown.

package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/framegrace/texeldock/dock"
)

// DefaultKey is the sink key used when none is configured.
const DefaultKey = "layout"

// DefaultDebounce is the trailing delay between the last change and a save.
const DefaultDebounce = 500 * time.Millisecond

// State reports whether a save is waiting on the debounce timer.
type State int

const (
	Idle State = iota
	PendingSave
)

func (s State) String() string {
	if s == PendingSave {
		return "pending-save"
	}
	return "idle"
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithKey sets the sink key layouts are stored under.
func WithKey(key string) AdapterOption {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithDebounce sets the trailing debounce delay. Non-positive values keep the default.
func WithDebounce(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		if d > 0 {
			a.debounce = d
		}
	}
}

// WithLogger routes adapter logs to l.
func WithLogger(l *log.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// Adapter saves layouts to a Sink, coalescing bursts of changes into one
// write. Failures are logged, never returned to listeners.
type Adapter struct {
	sink     Sink
	key      string
	debounce time.Duration
	logger   *log.Logger

	mu         sync.Mutex
	timer      *time.Timer
	pending    *dock.Layout
	generation uint64
	disposed   bool

	// writeMu serializes sink writes between the timer, Flush and Dispose.
	writeMu sync.Mutex
}

// NewAdapter builds an adapter over sink.
func NewAdapter(sink Sink, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		sink:     sink,
		key:      DefaultKey,
		debounce: DefaultDebounce,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the sink key in use.
func (a *Adapter) Key() string { return a.key }

// State reports Idle or PendingSave.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		return PendingSave
	}
	return Idle
}

func (a *Adapter) isDisposed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposed
}

// Save encodes l and writes it immediately.
func (a *Adapter) Save(ctx context.Context, l *dock.Layout) error {
	if a.isDisposed() {
		a.logger.Debug("Persist: save after dispose ignored", "key", a.key)
		return nil
	}
	data, err := Encode(l)
	if err != nil {
		a.logger.Error("Persist: refusing to save invalid layout", "key", a.key, "err", err)
		return err
	}
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if a.isDisposed() {
		a.logger.Debug("Persist: save after dispose ignored", "key", a.key)
		return nil
	}
	if err := a.sink.Save(ctx, a.key, data); err != nil {
		a.logger.Error("Persist: save failed", "key", a.key, "err", err)
		return err
	}
	a.logger.Debug("Persist: layout saved", "key", a.key, "bytes", len(data))
	return nil
}

// Load reads and decodes the stored layout. It returns nil when nothing is
// stored or the stored document is invalid; callers fall back to a default.
func (a *Adapter) Load(ctx context.Context) *dock.Layout {
	if a.isDisposed() {
		return nil
	}
	data, err := a.sink.Load(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		a.logger.Debug("Persist: no saved layout", "key", a.key)
		return nil
	}
	if err != nil {
		a.logger.Warn("Persist: load failed", "key", a.key, "err", err)
		return nil
	}
	l, err := Decode(data)
	if err != nil {
		a.logger.Warn("Persist: discarding invalid layout", "key", a.key, "err", err)
		return nil
	}
	return l
}

// Schedule queues l for saving after the debounce delay. A later call
// before the timer fires replaces the queued layout and restarts the delay.
func (a *Adapter) Schedule(l *dock.Layout) {
	if l == nil {
		return
	}
	snapshot := l.Clone()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.generation++
	gen := a.generation
	a.pending = snapshot
	a.timer = time.AfterFunc(a.debounce, func() { a.fire(gen) })
}

func (a *Adapter) fire(gen uint64) {
	a.mu.Lock()
	// A stale timer lost the race with Schedule, Cancel or Flush.
	if gen != a.generation || a.disposed || a.pending == nil {
		a.mu.Unlock()
		return
	}
	l := a.pending
	a.pending = nil
	a.timer = nil
	a.mu.Unlock()

	_ = a.Save(context.Background(), l)
}

// Flush writes the pending layout now, if any.
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	l := a.takePendingLocked()
	a.mu.Unlock()
	if l == nil {
		return nil
	}
	return a.Save(ctx, l)
}

// CancelPendingSave drops the pending layout without writing it.
func (a *Adapter) CancelPendingSave() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.takePendingLocked()
}

func (a *Adapter) takePendingLocked() *dock.Layout {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.generation++
	l := a.pending
	a.pending = nil
	return l
}

// Dispose cancels any pending save and waits for a write already in the
// sink to finish; every later call becomes a no-op. Call Flush first to keep
// the last change.
func (a *Adapter) Dispose() {
	a.mu.Lock()
	a.takePendingLocked()
	a.disposed = true
	a.mu.Unlock()

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
}

// Attach schedules a save after every engine mutation. The returned func
// detaches the adapter.
func (a *Adapter) Attach(e *dock.Engine) func() {
	return e.OnLayoutChange(a.Schedule)
}
