package connectivity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/rackaudit/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// FileSignal follows a status file whose content is "online" or "offline"
// (a network manager hook, for instance). A missing file means offline.
type FileSignal struct {
	Broadcaster

	path string
	log  logging.Logger

	mu   sync.Mutex
	mode Mode
}

func NewFileSignal(path string, log logging.Logger) *FileSignal {
	return &FileSignal{path: filepath.Clean(path), log: log, mode: ModeUnknown}
}

func (f *FileSignal) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Run watches the file's directory, so the file may be created, replaced
// or removed at any time. It returns when ctx is done or the watcher fails.
func (f *FileSignal) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}

	f.refresh(ctx)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				f.refresh(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warn(ctx, "status file watcher error", "path", f.path, "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *FileSignal) refresh(ctx context.Context) {
	mode := ModeOffline
	if b, err := os.ReadFile(f.path); err == nil && strings.EqualFold(strings.TrimSpace(string(b)), string(ModeOnline)) {
		mode = ModeOnline
	}

	f.mu.Lock()
	changed := f.mode != mode
	f.mode = mode
	f.mu.Unlock()

	if changed {
		f.log.Info(ctx, "connectivity changed", "mode", mode, "source", f.path)
		if mode == ModeOnline {
			f.Notify()
		}
	}
}
