package sourcemodel

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/codenav/internal/config"
)

func TestWatcherAppliesChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := loadProject(t, map[string]string{"src/a.py": "a = 1\n"}, func(cfg *config.Config) {
		cfg.Index.WatchDebounceMs = 20
	})
	w, err := NewWatcher(p)
	require.NoError(t, err)

	var mu sync.Mutex
	var batches [][]string
	w.OnBatch = func(changed []string) {
		mu.Lock()
		batches = append(batches, changed)
		mu.Unlock()
	}
	require.NoError(t, w.Start(context.Background()))

	newFile := filepath.Join(p.Root(), "src", "b.py")
	require.NoError(t, os.WriteFile(newFile, []byte("def b():\n    return 2\n"), 0o644))
	require.Eventually(t, func() bool { return p.FileCount() == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(p.Root(), "src", "a.py")))
	require.Eventually(t, func() bool { return p.FileCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	release := p.ReadLock()
	assert.NotNil(t, p.FileByRelPath("src/b.py"))
	assert.Nil(t, p.FileByRelPath("src/a.py"))
	release()

	require.NoError(t, w.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, batches)
	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.FilesChanged, int64(2))
}

func TestWatcherIgnoresNonSourceFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := loadProject(t, map[string]string{"a.py": "a = 1\n"}, func(cfg *config.Config) {
		cfg.Index.WatchDebounceMs = 10
	})
	w, err := NewWatcher(p)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(p.Root(), "notes.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, p.FileCount())
	assert.Zero(t, w.Stats().FilesChanged)

	cancel()
	require.NoError(t, w.Close())
}
