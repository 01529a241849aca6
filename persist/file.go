// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/file.go
// Summary: File-backed sink writing one JSON file per key, with change watching.
// Usage: Default sink for the CLI; lives under the user config directory.

package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// FileSink stores each key as <dir>/<key>.json. Writes go through a temp file
// and a rename so readers never see a half-written layout.
type FileSink struct {
	dir    string
	logger *log.Logger

	mu          sync.Mutex
	lastWritten map[string][]byte
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string, logger *log.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create layout dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FileSink{dir: dir, logger: logger, lastWritten: make(map[string][]byte)}, nil
}

// Path returns the file backing key.
func (s *FileSink) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func checkFileKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func (s *FileSink) Save(_ context.Context, key string, value []byte) error {
	if err := checkFileKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("persist: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: replace %s: %w", s.Path(key), err)
	}
	s.lastWritten[key] = append([]byte(nil), value...)
	return nil
}

func (s *FileSink) Load(_ context.Context, key string) ([]byte, error) {
	if err := checkFileKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("persist: read %s: %w", s.Path(key), err)
	}
	return data, nil
}

// Watch calls fn with the new contents whenever the file for key is changed
// by someone other than this sink. It blocks until ctx is done.
func (s *FileSink) Watch(ctx context.Context, key string, fn func([]byte)) error {
	if err := checkFileKey(key); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("persist: start watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: editors and our own rename replace the file inode.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("persist: watch %s: %w", s.dir, err)
	}

	target := filepath.Clean(s.Path(key))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			data, err := os.ReadFile(target)
			if err != nil {
				s.logger.Debug("Persist: watched file unreadable", "path", target, "err", err)
				continue
			}
			s.mu.Lock()
			own := bytes.Equal(data, s.lastWritten[key])
			s.mu.Unlock()
			if own {
				continue
			}
			s.logger.Info("Persist: layout file changed externally", "path", target)
			fn(data)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Persist: watcher error", "err", err)
		}
	}
}
