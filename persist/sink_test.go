// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/sink_test.go
// Summary: Runs every sink through the same save/load contract, plus backend specifics.
// Usage: Executed during `go test`; the Redis case needs TEXELDOCK_TEST_REDIS=host:port.

package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *log.Logger {
	l := log.New(os.Stderr)
	l.SetLevel(log.FatalLevel)
	return l
}

func newFileSink(t *testing.T) *FileSink {
	t.Helper()
	s, err := NewFileSink(t.TempDir(), quietLogger())
	require.NoError(t, err)
	return s
}

func newSQLiteSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := OpenSQLiteSink(filepath.Join(t.TempDir(), "layouts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sinks(t *testing.T) map[string]Sink {
	out := map[string]Sink{
		"memory": NewMemorySink(),
		"file":   newFileSink(t),
		"sqlite": newSQLiteSink(t),
	}
	if addr := os.Getenv("TEXELDOCK_TEST_REDIS"); addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s, err := DialRedisSink(ctx, addr, 0, "texeldock-test:"+t.Name()+":")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		out["redis"] = s
	}
	return out
}

func TestSinkContract(t *testing.T) {
	ctx := context.Background()
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			_, err := sink.Load(ctx, "absent")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, sink.Save(ctx, "layout", []byte(`first`)))
			require.NoError(t, sink.Save(ctx, "layout", []byte(`second`)))
			got, err := sink.Load(ctx, "layout")
			require.NoError(t, err)
			assert.Equal(t, []byte(`second`), got)

			assert.ErrorIs(t, sink.Save(ctx, "", []byte(`x`)), ErrInvalidKey)
		})
	}
}

func TestLayoutRoundTripOnEverySink(t *testing.T) {
	ctx := context.Background()
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(sink, WithLogger(quietLogger()))
			want := sampleLayout()
			require.NoError(t, a.Save(ctx, want))
			got := a.Load(ctx)
			require.NotNil(t, got)
			assert.Empty(t, cmp.Diff(want, got, equateTrees))
		})
	}
}

func TestFileSinkRejectsPathKeys(t *testing.T) {
	s := newFileSink(t)
	for _, key := range []string{"../escape", "a/b", `a\b`, ".."} {
		assert.ErrorIs(t, s.Save(context.Background(), key, []byte(`x`)), ErrInvalidKey, key)
	}
}

func TestFileSinkLeavesNoTempFiles(t *testing.T) {
	s := newFileSink(t)
	require.NoError(t, s.Save(context.Background(), "layout", []byte(`{}`)))

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "layout.json", entries[0].Name())
}

func TestFileSinkWatchReportsExternalEdits(t *testing.T) {
	s := newFileSink(t)
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan []byte, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, "layout", func(b []byte) {
			select {
			case got <- b:
			default:
			}
		})
	}()

	external := []byte(`{"edited": true}`)
	// The watcher registers asynchronously; keep editing until it notices.
	require.Eventually(t, func() bool {
		if err := os.WriteFile(s.Path("layout"), external, 0o644); err != nil {
			return false
		}
		select {
		case b := <-got:
			return string(b) == string(external)
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	own := []byte(`{"own": true}`)
	require.NoError(t, s.Save(context.Background(), "layout", own))
	deadline := time.After(200 * time.Millisecond)
drain:
	for {
		select {
		case b := <-got:
			assert.NotEqual(t, own, b, "own writes are not reported")
		case <-deadline:
			break drain
		}
	}

	cancel()
	require.NoError(t, <-done)
}

func TestSQLiteSinkDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSink(t)
	require.NoError(t, s.Save(ctx, "layout", []byte(`{"version":0}`)))

	_, err := s.db.ExecContext(ctx, `UPDATE layouts SET value = ? WHERE key = ?`, []byte(`tampered`), "layout")
	require.NoError(t, err)

	_, err = s.Load(ctx, "layout")
	assert.ErrorIs(t, err, ErrCorrupt)

	a := NewAdapter(s, WithLogger(quietLogger()))
	assert.Nil(t, a.Load(ctx), "corrupt rows load as no layout")
}
