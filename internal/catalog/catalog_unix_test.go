//go:build unix

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A FIFO blocks the parser in open until a writer shows up, which holds the
// first load in flight for as long as the test needs.
func TestCatalog_InvalidateDuringLoad(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "Button.tsx", "interface ButtonProps { label: string }")
	blocker := filepath.Join(root, "Blocker.tsx")
	require.NoError(t, syscall.Mkfifo(blocker, 0o644))

	c := newTestCatalog(root)

	type result struct {
		names []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		records, err := c.All(context.Background())
		var names []string
		for _, r := range records {
			names = append(names, r.Name)
		}
		done <- result{names: names, err: err}
	}()

	require.Eventually(t, func() bool {
		return c.Stats().State == "loading"
	}, 2*time.Second, 5*time.Millisecond)

	c.Invalidate()

	// The reader is already waiting in open, so this does not block.
	w, err := os.OpenFile(blocker, os.O_WRONLY, 0)
	require.NoError(t, err)
	require.NoError(t, os.Remove(blocker))
	_, err = w.WriteString("interface BlockerProps { id: string }")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, []string{"Button"}, res.names)
	case <-time.After(5 * time.Second):
		t.Fatal("All did not return after the load was released")
	}

	stats := c.Stats()
	assert.Equal(t, "populated", stats.State)
	assert.False(t, stats.UsedDefaults)
	assert.Equal(t, 1, stats.Count)
}
