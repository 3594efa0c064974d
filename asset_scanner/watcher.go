package asset_scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/ryanwalloh/assetkit/utils"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reruns a callback after changes under a directory tree settle.
// The callback runs on the goroutine that called Watch, never concurrently
// with itself.
type Watcher struct {
	root       string
	exclusions utils.ExcludeSet
	debounce   time.Duration
	onChange   func()
	fsWatcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for root. Directories named in excludeDirs are not watched.
func NewWatcher(root string, excludeDirs []string, onChange func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		root:       root,
		exclusions: utils.NewExcludeSet(excludeDirs),
		debounce:   defaultDebounce,
		onChange:   onChange,
		fsWatcher:  fsWatcher,
	}, nil
}

// Watch blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.addWatchersRecursively(w.root); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if w.shouldExcludePath(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}

			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					if err := w.addWatchersRecursively(event.Name); err != nil {
						logger.Warn("Could not watch new directory %s: %v", event.Name, err)
					}
				}
			}

			timer.Reset(w.debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			w.onChange()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(w.root, path)
	if err != nil || relPath == "." {
		return false
	}
	return w.exclusions.IsExcluded(relPath)
}

func (w *Watcher) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}
