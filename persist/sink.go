// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/sink.go
// Summary: Storage sink contract shared by every backend.

package persist

import (
	"context"
	"errors"
	"sync"
)

// Sentinel errors returned by sinks.
var (
	// ErrNotFound is returned by Load when nothing is stored under the key.
	ErrNotFound = errors.New("persist: key not found")

	// ErrCorrupt is returned when stored bytes fail an integrity check.
	ErrCorrupt = errors.New("persist: stored value is corrupt")

	// ErrInvalidKey is returned for keys a backend cannot store.
	ErrInvalidKey = errors.New("persist: invalid key")
)

// Sink stores opaque values by key. Implementations decide where: a file,
// a database row or a remote key/value store.
type Sink interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// MemorySink keeps values in process memory. Useful for tests and for
// hosts that do not want persistence across runs.
type MemorySink struct {
	mu     sync.RWMutex
	values map[string][]byte
	saves  int
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{values: make(map[string][]byte)}
}

func (m *MemorySink) Save(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	m.saves++
	return nil
}

func (m *MemorySink) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Saves reports how many writes the sink has received.
func (m *MemorySink) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
