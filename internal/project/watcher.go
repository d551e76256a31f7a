package project

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces editor write bursts into one reload.
const debounceDelay = 100 * time.Millisecond

// Watch watches a project file and calls onChange with each successfully
// reloaded project. Files that fail to parse or validate are logged and
// skipped so a half-saved edit never tears down playback. Watch blocks until
// ctx is cancelled.
func Watch(ctx context.Context, logger *slog.Logger, path string, onChange func(*Project)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a watch registered on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				// The watch may have been cancelled while the timer was
				// pending; never reload during shutdown.
				if ctx.Err() != nil {
					return
				}
				logger.Debug("project file changed, reloading", "file", path)

				p, err := Load(path)
				if err != nil {
					logger.Error("project reload failed, keeping previous state", "error", err)
					return
				}
				onChange(p)
			})

		case err := <-watcher.Errors:
			logger.Error("watcher error", "error", err)
		}
	}
}
