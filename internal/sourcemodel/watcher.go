package sourcemodel

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codenav/internal/config"
	"github.com/standardbeagle/codenav/internal/debug"
)

// WatchStats summarizes the watcher's activity.
type WatchStats struct {
	Batches       int64
	FilesChanged  int64
	Errors        int64
	LastBatchTime time.Time
}

// Watcher keeps a Project in sync with the file system. Changed files are
// re-parsed outside the project lock and swapped in under the write lock,
// so requests in flight see either the old or the new file.
type Watcher struct {
	project  *Project
	watcher  *fsnotify.Watcher
	debounce time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// OnBatch, when set, is called after each applied batch with the
	// relative paths that changed.
	OnBatch func(changed []string)

	statsMu sync.Mutex
	stats   WatchStats
}

// NewWatcher creates a watcher for p. Start must be called to begin
// watching.
func NewWatcher(p *Project) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	debounce := time.Duration(p.cfg.Index.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = config.DefaultWatchDebounceMs * time.Millisecond
	}
	return &Watcher{project: p, watcher: w, debounce: debounce}, nil
}

// Start registers every eligible directory and starts the event loop. The
// loop stops when ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.project.root); err != nil {
		return err
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)
	debug.LogModel("watching %s (debounce %s)", w.project.root, w.debounce)
	return nil
}

// Close stops the event loop and releases the OS watches. Pending events
// are dropped.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() WatchStats {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.stats
}

func (w *Watcher) addTree(root string) error {
	visited := make(map[string]bool)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil || visited[resolved] {
			return fs.SkipDir
		}
		visited[resolved] = true
		if path != w.project.root && w.skipDir(path) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			debug.LogModel("watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) skipDir(path string) bool {
	p := w.project
	p.mu.RLock()
	ignore := p.ignore
	p.mu.RUnlock()
	return p.skipDir(p.RelPath(path), ignore)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handle(event) {
				pending[event.Name] = struct{}{}
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.LogError("MODEL", err, "watcher error")
			w.count(0, 1)
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			pending = make(map[string]struct{})
			w.apply(paths)
		}
	}
}

// handle reacts to one event and reports whether it concerns a file that
// should be refreshed.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if event.Op&fsnotify.Create != 0 {
		if isDir, err := statDir(event.Name); err == nil && isDir {
			if !w.skipDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					debug.LogModel("watch new dir %s: %v", event.Name, err)
				}
			}
			return false
		}
	}
	return w.project.langs.ForPath(event.Name) != nil
}

func statDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (w *Watcher) apply(paths []string) {
	sort.Strings(paths)
	var changed []string
	var errs int64
	for _, path := range paths {
		ok, err := w.project.Refresh(path)
		if err != nil {
			debug.LogError("MODEL", err, "refresh "+w.project.RelPath(path))
			errs++
		}
		if ok {
			changed = append(changed, w.project.RelPath(path))
		}
	}
	w.count(int64(len(changed)), errs)
	if len(changed) > 0 && w.OnBatch != nil {
		w.OnBatch(changed)
	}
}

func (w *Watcher) count(changed, errs int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	if changed > 0 {
		w.stats.Batches++
		w.stats.LastBatchTime = time.Now()
	}
	w.stats.FilesChanged += changed
	w.stats.Errors += errs
}
