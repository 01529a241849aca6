// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/content.go
// Summary: Content resolver mapping pane content ids to drawable content.
// Usage: Hosts register builders at startup; the renderer resolves panes lazily.

package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texeldock/dock"
)

// Content draws the body of a pane.
type Content interface {
	Draw(c Canvas, r dock.Rect, style tcell.Style)
}

// Builder creates the content instance for one pane.
type Builder func(paneID string) Content

// Registry resolves content ids to content instances. Instances are cached
// per pane so content keeps its state across redraws and moves.
type Registry struct {
	mu        sync.RWMutex
	builders  map[string]Builder
	instances map[string]Content
	warned    map[string]bool
	logger    *log.Logger
}

// NewRegistry returns an empty registry logging to logger (log.Default when nil).
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		builders:  make(map[string]Builder),
		instances: make(map[string]Content),
		warned:    make(map[string]bool),
		logger:    logger,
	}
}

// Register binds contentID to builder, replacing any earlier binding.
func (r *Registry) Register(contentID string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[contentID] = builder
	delete(r.warned, contentID)
	r.logger.Debug("Registry: registered content", "content", contentID)
}

// Names lists registered content ids in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the content for paneID. Unknown content ids resolve to an inert
// placeholder; the first miss per id is logged.
func (r *Registry) Get(contentID, paneID string) Content {
	r.mu.RLock()
	c, ok := r.instances[paneID]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.instances[paneID]; ok {
		return c
	}
	builder, ok := r.builders[contentID]
	if !ok {
		if !r.warned[contentID] {
			r.warned[contentID] = true
			r.logger.Warn("Registry: unknown content id, using placeholder", "content", contentID, "pane", paneID)
		}
		return missingContent{contentID: contentID}
	}
	c = builder(paneID)
	if c == nil {
		return missingContent{contentID: contentID}
	}
	r.instances[paneID] = c
	return c
}

// Forget drops the cached instance of a closed pane.
func (r *Registry) Forget(paneID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, paneID)
}

type missingContent struct {
	contentID string
}

func (m missingContent) Draw(c Canvas, r dock.Rect, style tcell.Style) {
	fill(c, r, style)
	drawCentered(c, r, fmt.Sprintf("no content for %q", m.contentID), style.Dim(true))
}

// TextContent shows fixed lines of text, clipped to the pane.
type TextContent struct {
	Lines []string
}

func (t *TextContent) Draw(c Canvas, r dock.Rect, style tcell.Style) {
	fill(c, r, style)
	for i, line := range t.Lines {
		if i >= r.H {
			break
		}
		drawString(c, r.X, r.Y+i, r.W, line, style)
	}
}

func fill(c Canvas, r dock.Rect, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			c.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawString writes s from (x, y), never past x+maxW cells. It returns the
// number of cells used.
func drawString(c Canvas, x, y, maxW int, s string, style tcell.Style) int {
	used := 0
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if used+w > maxW {
			break
		}
		c.SetContent(x+used, y, ch, nil, style)
		used += w
	}
	return used
}

func drawCentered(c Canvas, r dock.Rect, s string, style tcell.Style) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	s = runewidth.Truncate(s, r.W, "…")
	x := r.X + (r.W-runewidth.StringWidth(s))/2
	drawString(c, x, r.Y+r.H/2, r.W, s, style)
}
