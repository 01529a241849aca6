// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{"memory", "file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			o, err := Open(ctx, Options{
				Backend:    backend,
				Dir:        filepath.Join(dir, "layouts"),
				SQLitePath: filepath.Join(dir, "layouts.db"),
			}, quietLogger())
			require.NoError(t, err)
			defer func() { require.NoError(t, o.Close()) }()

			require.NoError(t, o.Sink.Save(ctx, "k", []byte(`v`)))
			_, watchable := o.Watchable()
			assert.Equal(t, backend == "file", watchable)
		})
	}

	_, err := Open(ctx, Options{Backend: "tape"}, quietLogger())
	assert.Error(t, err)
}
