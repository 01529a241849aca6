// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/drag.go
// Summary: Drag session state machine: drop zones, overlay and dispatch on drop.
// Usage: Driven by the host's drag events (tab or stack header drags).

package dock

import (
	"errors"
	"slices"
)

// DragMIMEType marks drags started by the dock. Drags without it, such as
// files dragged in from elsewhere, are ignored.
const DragMIMEType = "application/x-texeldock-item"

// ErrNoDrag is returned by Drop when no drag is in progress.
var ErrNoDrag = errors.New("dock: no drag in progress")

// DragSubject is what is being dragged.
type DragSubject int

const (
	DragPane DragSubject = iota
	DragStack
)

func (s DragSubject) String() string {
	if s == DragStack {
		return "stack"
	}
	return "pane"
}

// DragState is the coordinator state.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
)

// DragPayload describes a drag at its start. For a stack drag PaneID is empty.
type DragPayload struct {
	Types         []string
	Subject       DragSubject
	PaneID        string
	SourceStackID string
}

// PanePayload builds the payload for dragging a tab.
func PanePayload(paneID, sourceStackID string) DragPayload {
	return DragPayload{Types: []string{DragMIMEType}, Subject: DragPane, PaneID: paneID, SourceStackID: sourceStackID}
}

// StackPayload builds the payload for dragging a stack header.
func StackPayload(stackID string) DragPayload {
	return DragPayload{Types: []string{DragMIMEType}, Subject: DragStack, SourceStackID: stackID}
}

// Overlay is the highlighted placement preview.
type Overlay struct {
	TargetID string
	Zone     Zone
	Rect     Rect
}

// DragEvent is a drag-over or drop on a target stack. Rect is the target's
// rectangle and X, Y the absolute pointer position.
type DragEvent struct {
	Types    []string
	TargetID string
	Rect     Rect
	X, Y     int
}

// DragSession tracks one in-progress drag and dispatches it to the engine.
type DragSession struct {
	engine  *Engine
	state   DragState
	payload DragPayload
	overlay *Overlay
}

// NewDragSession returns an idle session for e.
func NewDragSession(e *Engine) *DragSession {
	return &DragSession{engine: e}
}

func accepts(types []string) bool {
	return slices.Contains(types, DragMIMEType)
}

// State returns the current state.
func (d *DragSession) State() DragState {
	return d.state
}

// Payload returns the drag subject while dragging.
func (d *DragSession) Payload() (DragPayload, bool) {
	return d.payload, d.state == DragDragging
}

// Overlay returns the current placement preview, if any.
func (d *DragSession) Overlay() (Overlay, bool) {
	if d.overlay == nil {
		return Overlay{}, false
	}
	return *d.overlay, true
}

// Start begins a drag. Foreign payloads and subjects missing from the tree
// are refused and leave the session idle.
func (d *DragSession) Start(p DragPayload) bool {
	if !accepts(p.Types) {
		return false
	}
	source, err := d.engine.stack(p.SourceStackID)
	if err != nil {
		return false
	}
	if p.Subject == DragPane && source.paneIndex(p.PaneID) < 0 {
		return false
	}
	d.state = DragDragging
	d.payload = p
	d.overlay = nil
	d.engine.logger.Debug("Drag: start", "subject", p.Subject, "pane", p.PaneID, "source", p.SourceStackID)
	return true
}

// Over updates the overlay for a pointer over a target stack and returns it.
// No overlay is shown where a drop would be a no-op.
func (d *DragSession) Over(ev DragEvent) (Overlay, bool) {
	if d.state != DragDragging || !accepts(ev.Types) {
		return Overlay{}, false
	}
	zone, ok := d.zoneFor(ev)
	if !ok {
		d.overlay = nil
		return Overlay{}, false
	}
	d.overlay = &Overlay{TargetID: ev.TargetID, Zone: zone, Rect: zone.Placement(ev.Rect)}
	return *d.overlay, true
}

func (d *DragSession) zoneFor(ev DragEvent) (Zone, bool) {
	if _, err := d.engine.stack(ev.TargetID); err != nil {
		return ZoneCenter, false
	}
	zone := ev.Rect.DetectZone(ev.X, ev.Y)
	if d.payload.Subject == DragStack && (zone == ZoneCenter || ev.TargetID == d.payload.SourceStackID) {
		return zone, false
	}
	return zone, true
}

// Leave clears the overlay and ends the drag without touching the tree.
func (d *DragSession) Leave() {
	d.reset()
}

// End aborts the drag without touching the tree.
func (d *DragSession) End() {
	d.reset()
}

func (d *DragSession) reset() {
	d.state = DragIdle
	d.payload = DragPayload{}
	d.overlay = nil
}

// Drop applies the drag to the target and returns to idle. A drop carrying
// foreign types is ignored and the session keeps dragging.
func (d *DragSession) Drop(ev DragEvent) error {
	if d.state != DragDragging {
		return ErrNoDrag
	}
	if !accepts(ev.Types) {
		return nil
	}
	p := d.payload
	d.reset()

	zone := ev.Rect.DetectZone(ev.X, ev.Y)
	var err error
	switch p.Subject {
	case DragPane:
		err = d.engine.MovePane(p.PaneID, p.SourceStackID, ev.TargetID, zone)
	case DragStack:
		err = d.engine.MoveStack(p.SourceStackID, ev.TargetID, zone)
	}
	if err != nil {
		d.engine.logger.Debug("Drag: drop ignored", "subject", p.Subject, "target", ev.TargetID, "zone", zone, "err", err)
		return err
	}
	d.engine.logger.Debug("Drag: dropped", "subject", p.Subject, "target", ev.TargetID, "zone", zone)
	return nil
}
