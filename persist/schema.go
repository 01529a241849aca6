// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/schema.go
// Summary: Versioned JSON document for layouts and its structural validation.
// Usage: Encode before handing a layout to a sink, Decode whatever a sink returns.

package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/framegrace/texeldock/dock"
)

// ErrSchema wraps every reason a document is rejected.
var ErrSchema = errors.New("persist: invalid layout document")

// DocumentVersion is the only version this package reads and writes.
const DocumentVersion = 0

const minBoxChildren = 2

type documentOut struct {
	Version int `json:"version"`
	Root    any `json:"root"`
}

type boxOut struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Direction string  `json:"direction"`
	Weight    float64 `json:"weight"`
	Children  []any   `json:"children"`
}

type stackOut struct {
	ID       string    `json:"id"`
	Weight   float64   `json:"weight"`
	ActiveID *string   `json:"activeId"`
	Children []paneOut `json:"children"`
}

type paneOut struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ContentID string `json:"contentId"`
	Closable  bool   `json:"closable"`
}

// Encode serializes l and checks the result against the document schema.
func Encode(l *dock.Layout) ([]byte, error) {
	if l == nil || l.Root == nil {
		return nil, fmt.Errorf("%w: layout has no root", ErrSchema)
	}
	data, err := json.MarshalIndent(documentOut{Version: DocumentVersion, Root: encodeNode(l.Root)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persist: marshal layout: %w", err)
	}
	if _, err := Decode(data); err != nil {
		return nil, err
	}
	return data, nil
}

func encodeNode(n *dock.Node) any {
	if n.IsBox() {
		children := make([]any, len(n.Children))
		for i, child := range n.Children {
			children[i] = encodeNode(child)
		}
		return boxOut{ID: n.ID, Type: "box", Direction: n.Direction.String(), Weight: n.Weight, Children: children}
	}
	out := stackOut{ID: n.ID, Weight: n.Weight, Children: make([]paneOut, len(n.Panes))}
	if n.ActiveID != "" {
		active := n.ActiveID
		out.ActiveID = &active
	}
	for i, p := range n.Panes {
		out.Children[i] = paneOut{ID: p.ID, Title: p.Title, ContentID: p.ContentID, Closable: p.Closable}
	}
	return out
}

type nodeIn struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Direction string            `json:"direction"`
	Weight    *float64          `json:"weight"`
	ActiveID  *string           `json:"activeId"`
	Children  []json.RawMessage `json:"children"`
}

type paneIn struct {
	ID        *string `json:"id"`
	Title     *string `json:"title"`
	ContentID *string `json:"contentId"`
	Closable  *bool   `json:"closable"`
}

// Keys that only nodes carry; a stack child holding any of them is not a pane.
var nodeOnlyKeys = []string{"children", "direction", "type", "weight", "activeId"}

type decoder struct {
	seen map[string]struct{}
}

// Decode parses and validates a document. Nothing is returned unless the
// whole document is valid.
func Decode(data []byte) (*dock.Layout, error) {
	var doc struct {
		Version *int            `json:"version"`
		Root    json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if doc.Version == nil {
		return nil, fmt.Errorf("%w: missing version", ErrSchema)
	}
	if *doc.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSchema, *doc.Version)
	}
	if len(doc.Root) == 0 || bytes.Equal(bytes.TrimSpace(doc.Root), []byte("null")) {
		return nil, fmt.Errorf("%w: missing root", ErrSchema)
	}
	d := decoder{seen: make(map[string]struct{})}
	root, err := d.node(doc.Root, "root")
	if err != nil {
		return nil, err
	}
	return &dock.Layout{Version: *doc.Version, Root: root}, nil
}

func (d *decoder) claim(id, path string) error {
	if id == "" {
		return fmt.Errorf("%w: %s: missing id", ErrSchema, path)
	}
	if _, dup := d.seen[id]; dup {
		return fmt.Errorf("%w: %s: duplicate id %q", ErrSchema, path, id)
	}
	d.seen[id] = struct{}{}
	return nil
}

func (d *decoder) node(raw json.RawMessage, path string) (*dock.Node, error) {
	var in nodeIn
	if err := strictObject(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchema, path, err)
	}
	if err := d.claim(in.ID, path); err != nil {
		return nil, err
	}
	weight := 1.0
	if in.Weight != nil {
		weight = *in.Weight
	}
	if weight <= 0 || math.IsInf(weight, 0) {
		return nil, fmt.Errorf("%w: %s: weight must be positive, got %v", ErrSchema, path, weight)
	}

	var isBox bool
	switch in.Type {
	case "box":
		isBox = true
	case "stack":
		isBox = false
	case "":
		isBox = in.Direction != ""
	default:
		return nil, fmt.Errorf("%w: %s: unknown type %q", ErrSchema, path, in.Type)
	}

	if isBox {
		dir, ok := dock.ParseDirection(in.Direction)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown direction %q", ErrSchema, path, in.Direction)
		}
		if len(in.Children) < minBoxChildren {
			return nil, fmt.Errorf("%w: %s: box has %d children, need at least %d", ErrSchema, path, len(in.Children), minBoxChildren)
		}
		if in.ActiveID != nil {
			return nil, fmt.Errorf("%w: %s: box cannot have activeId", ErrSchema, path)
		}
		box := dock.NewBox(in.ID, dir)
		box.Weight = weight
		box.Children = make([]*dock.Node, len(in.Children))
		for i, child := range in.Children {
			n, err := d.node(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			box.Children[i] = n
		}
		return box, nil
	}

	if in.Direction != "" {
		return nil, fmt.Errorf("%w: %s: stack cannot have a direction", ErrSchema, path)
	}
	stack := dock.NewStack(in.ID)
	stack.Weight = weight
	stack.Panes = make([]*dock.Pane, 0, len(in.Children))
	for i, child := range in.Children {
		p, err := d.pane(child, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		stack.Panes = append(stack.Panes, p)
	}
	if in.ActiveID != nil {
		stack.ActiveID = *in.ActiveID
		if stack.ActivePane() == nil {
			return nil, fmt.Errorf("%w: %s: activeId %q is not a child", ErrSchema, path, *in.ActiveID)
		}
	}
	return stack, nil
}

func (d *decoder) pane(raw json.RawMessage, path string) (*dock.Pane, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		return nil, fmt.Errorf("%w: %s: pane must be an object", ErrSchema, path)
	}
	for _, k := range nodeOnlyKeys {
		if _, ok := keys[k]; ok {
			return nil, fmt.Errorf("%w: %s: stack child is not a pane (has %q)", ErrSchema, path, k)
		}
	}
	var in paneIn
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchema, path, err)
	}
	if in.ID == nil || in.Title == nil || in.ContentID == nil {
		return nil, fmt.Errorf("%w: %s: pane needs id, title and contentId", ErrSchema, path)
	}
	if err := d.claim(*in.ID, path); err != nil {
		return nil, err
	}
	p := dock.NewPane(*in.ID, *in.Title, *in.ContentID)
	if in.Closable != nil {
		p.Closable = *in.Closable
	}
	return p, nil
}

// strictObject decodes a JSON object, refusing arrays, scalars and null.
func strictObject(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("node must be an object")
	}
	return json.Unmarshal(trimmed, v)
}
