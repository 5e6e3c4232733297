package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uikb/internal/component"
)

func writeComponent(t *testing.T, root, rel, src string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(src), 0o644))
}

func newTestCatalog(root string) *Catalog {
	return New(Options{ComponentsDir: root, ProjectRoot: root, Workers: 2})
}

func TestCatalog_DefaultsForEmptyDir(t *testing.T) {
	c := newTestCatalog(t.TempDir())

	records, err := c.All(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Preview", records[0].Name)
	assert.Equal(t, "FileExplorer", records[1].Name)

	stats := c.Stats()
	assert.Equal(t, "populated", stats.State)
	assert.True(t, stats.UsedDefaults)
}

func TestCatalog_DefaultsForMissingDir(t *testing.T) {
	c := newTestCatalog(filepath.Join(t.TempDir(), "nope"))

	records, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, component.DefaultRecords(), records)
}

func TestCatalog_PreservesDiscoveryOrder(t *testing.T) {
	root := t.TempDir()
	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot"}
	for _, n := range names {
		writeComponent(t, root, n+".tsx", "interface "+n+"Props { id: string }")
	}

	c := newTestCatalog(root)
	records, err := c.All(context.Background())
	require.NoError(t, err)

	require.Len(t, records, len(names))
	for i, n := range names {
		assert.Equal(t, n, records[i].Name)
		assert.Equal(t, n+".tsx", records[i].Path)
	}
	assert.False(t, c.Stats().UsedDefaults)
}

func TestCatalog_EmptyUntilRead(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "Button.tsx", "")

	c := newTestCatalog(root)
	assert.Equal(t, "empty", c.Stats().State)
	assert.Equal(t, 0, c.Stats().Count)

	first, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, first.Hit)
	assert.Equal(t, 1, first.Stats.Count)

	second, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Hit)
	assert.Equal(t, first.Records, second.Records)
}

func TestCatalog_ConcurrentReadersShareOneLoad(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "Button.tsx", "interface ButtonProps { label: string }")

	c := newTestCatalog(root)
	var loads atomic.Int32
	c.OnLoad(func(Stats) { loads.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := c.All(context.Background())
			assert.NoError(t, err)
			assert.Len(t, records, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestCatalog_StoredListNotRescanned(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "Button.tsx", "")

	c := newTestCatalog(root)
	_, err := c.All(context.Background())
	require.NoError(t, err)

	writeComponent(t, root, "Card.tsx", "")
	records, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCatalog_Invalidate(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "Button.tsx", "")

	c := newTestCatalog(root)
	_, err := c.All(context.Background())
	require.NoError(t, err)

	writeComponent(t, root, "Card.tsx", "")
	c.Invalidate()
	assert.Equal(t, "empty", c.Stats().State)

	records, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCatalog_ReturnedSliceIsACopy(t *testing.T) {
	c := newTestCatalog(t.TempDir())

	records, err := c.All(context.Background())
	require.NoError(t, err)
	records[0].Name = "Mutated"

	again, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Preview", again[0].Name)
}

func TestCatalog_LoadHonoursCancelledContext(t *testing.T) {
	c := newTestCatalog(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled caller may or may not observe the load finishing first.
	_, err := c.Load(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}

	require.Eventually(t, func() bool {
		return c.Stats().State == "populated"
	}, time.Second, 5*time.Millisecond)
}

func TestCatalog_ByNameAndFilter(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "src/ui/Button.tsx", "")
	writeComponent(t, root, "src/layout/Grid.tsx", "")
	writeComponent(t, root, "src/misc/FormsWizard.tsx", "")

	c := newTestCatalog(root)
	ctx := context.Background()

	rec, ok, err := c.ByName(ctx, "bUtToN")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "src/ui/Button.tsx", rec.Path)

	_, ok, err = c.ByName(ctx, "Missing")
	require.NoError(t, err)
	assert.False(t, ok)

	forms, err := c.Filter(ctx, "forms")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "FormsWizard", forms[0].Name)
}
