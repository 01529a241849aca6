// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/engine.go
// Summary: Engine owns the layout tree, generates ids and notifies listeners.
// Usage: Created once at wiring time; every structural change goes through it.

package dock

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Errors returned for operations that leave the tree unchanged.
var (
	ErrNotFound        = errors.New("dock: node not found")
	ErrNotStack        = errors.New("dock: node is not a stack")
	ErrNotBox          = errors.New("dock: node is not a box")
	ErrPaneNotInStack  = errors.New("dock: pane not in source stack")
	ErrInvalidZone     = errors.New("dock: invalid zone")
	ErrSameStack       = errors.New("dock: source and target are the same stack")
	ErrCenterStackDrop = errors.New("dock: a stack cannot be merged into another stack")
	ErrDuplicateID     = errors.New("dock: id already in use")
	ErrNotClosable     = errors.New("dock: pane is not closable")
	ErrOutOfRange      = errors.New("dock: index out of range")
)

// LayoutListener is called after every completed mutation.
type LayoutListener func(*Layout)

type listenerEntry struct {
	id int
	fn LayoutListener
}

// Engine applies mutations to a single layout and keeps its invariants.
// It is driven from one event loop and is not safe for concurrent use.
type Engine struct {
	layout    *Layout
	listeners []listenerEntry
	nextID    int
	logger    *log.Logger
	genID     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator replaces the random id source. Generated ids are still
// checked against the tree and regenerated on collision.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.genID = fn
		}
	}
}

// NewEngine takes ownership of layout. A nil layout starts from DefaultLayout.
// The layout is normalized without notifying anyone.
func NewEngine(layout *Layout, opts ...Option) *Engine {
	e := &Engine{
		logger: log.Default(),
		genID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.SetLayoutSilent(layout)
	return e
}

// Layout returns the live tree. Callers must not mutate it directly.
func (e *Engine) Layout() *Layout {
	return e.layout
}

// Logger returns the engine logger.
func (e *Engine) Logger() *log.Logger {
	return e.logger
}

// OnLayoutChange registers fn and returns a function removing it.
func (e *Engine) OnLayoutChange(fn LayoutListener) func() {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// SetLayoutSilent replaces the whole tree without firing listeners, so a
// restored layout does not immediately schedule a save of itself.
func (e *Engine) SetLayoutSilent(layout *Layout) {
	if layout == nil || layout.Root == nil {
		layout = DefaultLayout()
	}
	e.layout = layout
	if SimplifyLayout(layout) {
		e.logger.Debug("Engine: normalized layout on set", "root", layout.Root.ID)
	}
}

func (e *Engine) notify() {
	for _, l := range append([]listenerEntry(nil), e.listeners...) {
		l.fn(e.layout)
	}
}

// newID returns an id unused by any node or pane of the tree and not in
// reserved, which holds ids of nodes detached while an operation runs.
func (e *Engine) newID(reserved ...string) string {
	used := e.layout.ids()
	for _, id := range reserved {
		used[id] = struct{}{}
	}
	for attempt := 0; attempt < 32; attempt++ {
		id := e.genID()
		if _, taken := used[id]; id != "" && !taken {
			return id
		}
	}
	for {
		id := uuid.NewString()
		if _, taken := used[id]; !taken {
			return id
		}
	}
}

func (e *Engine) stack(id string) (*Node, error) {
	n := e.layout.Find(id)
	if n == nil {
		return nil, ErrNotFound
	}
	if !n.IsStack() {
		return nil, ErrNotStack
	}
	return n, nil
}

// Simplify runs the cleanup passes and notifies listeners when anything changed.
func (e *Engine) Simplify() bool {
	if !e.simplify() {
		return false
	}
	e.notify()
	return true
}

func (e *Engine) simplify() bool {
	changed := SimplifyLayout(e.layout)
	if changed {
		e.logger.Debug("Engine: simplified layout", "root", e.layout.Root.ID)
	}
	return changed
}

// cleanupIfNeeded prunes only when an empty stack sits next to other stacks.
func (e *Engine) cleanupIfNeeded() {
	total, empty := e.layout.countStacks()
	if total > 1 && empty > 0 {
		e.simplify()
	}
}
