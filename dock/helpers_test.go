package dock

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func quietLogger() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}

func newTestEngine(root *Node) *Engine {
	return NewEngine(NewLayout(root), WithIDGenerator(seqIDs()), WithLogger(quietLogger()))
}

func stack(id string, paneIDs ...string) *Node {
	panes := make([]*Pane, len(paneIDs))
	for i, p := range paneIDs {
		panes[i] = NewPane(p, "Title "+p, "text")
	}
	return NewStack(id, panes...)
}

func paneIDs(n *Node) []string {
	ids := make([]string, len(n.Panes))
	for i, p := range n.Panes {
		ids[i] = p.ID
	}
	return ids
}

func requireNoSingleChildBox(t *testing.T, l *Layout) {
	t.Helper()
	l.Walk(func(n, _ *Node) {
		if n.IsBox() {
			require.GreaterOrEqual(t, len(n.Children), 2, "box %s", n.ID)
		}
	})
}

func countListener(e *Engine) *int {
	calls := 0
	e.OnLayoutChange(func(*Layout) { calls++ })
	return &calls
}
