// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/open.go
// Summary: Builds a sink from backend settings.

package persist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Options selects a backend and its location.
type Options struct {
	Backend    string
	Dir        string
	SQLitePath string
	RedisAddr  string
	RedisDB    int
	// RedisPrefix namespaces keys in a shared Redis database.
	RedisPrefix string
}

// Opened is a sink plus the cleanup its backend needs.
type Opened struct {
	Sink  Sink
	close func() error
}

// Close releases backend resources.
func (o *Opened) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// Watchable returns the sink as a FileSink when the backend supports watching.
func (o *Opened) Watchable() (*FileSink, bool) {
	fs, ok := o.Sink.(*FileSink)
	return fs, ok
}

// Open connects to the backend named by opts.Backend.
func Open(ctx context.Context, opts Options, logger *log.Logger) (*Opened, error) {
	switch opts.Backend {
	case "memory":
		return &Opened{Sink: NewMemorySink()}, nil
	case "file", "":
		s, err := NewFileSink(opts.Dir, logger)
		if err != nil {
			return nil, err
		}
		return &Opened{Sink: s}, nil
	case "sqlite":
		s, err := OpenSQLiteSink(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Opened{Sink: s, close: s.Close}, nil
	case "redis":
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = "texeldock:"
		}
		s, err := DialRedisSink(ctx, opts.RedisAddr, opts.RedisDB, prefix)
		if err != nil {
			return nil, err
		}
		return &Opened{Sink: s, close: s.Close}, nil
	default:
		return nil, fmt.Errorf("persist: unknown backend %q", opts.Backend)
	}
}
