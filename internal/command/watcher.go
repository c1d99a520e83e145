package command

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"cmdforge/internal/logging"
)

// FileWatcher watches a fixed set of manifest/config paths and calls
// Registry.Refresh whenever one of them changes, implementing the
// "re-scanned on explicit refresh" lifecycle note from spec.md §3
// without this core knowing how to parse any particular manifest
// format itself.
type FileWatcher struct {
	registry *Registry
	logger   logging.Logger
	watcher  *fsnotify.Watcher
	paths    []string
}

// NewFileWatcher builds a watcher over the given paths, wired to call
// registry.Refresh on change.
func NewFileWatcher(registry *Registry, logger logging.Logger, paths ...string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("command watcher: %w", err)
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("command watcher: watch %s: %w", p, err)
		}
	}
	return &FileWatcher{
		registry: registry,
		logger:   logging.OrNop(logger),
		watcher:  w,
		paths:    paths,
	}, nil
}

// Run blocks, triggering Registry.Refresh on every write/create/remove
// event until ctx is cancelled or Close is called.
func (fw *FileWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			fw.logger.Debug("command watcher: %s changed, refreshing registry", event.Name)
			if err := fw.registry.Refresh(ctx); err != nil {
				fw.logger.Warn("command watcher: refresh failed: %v", err)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("command watcher: %v", err)
		}
	}
}

// Close stops watching.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
