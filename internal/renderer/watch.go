package renderer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

// Watch invalidates the engine's parse cache whenever a template file under
// the root changes on disk. It blocks until ctx is cancelled or the watcher
// fails. Long-lived callers (the interactive CLI) run it in a goroutine;
// one-shot scaffolds never need it.
func (e *Engine) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return stencilerrors.NewIOError("ERR_WATCH_INIT", "cannot create filesystem watcher", err)
	}
	defer watcher.Close()

	// fsnotify does not recurse, so register every directory under the root.
	err = filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return stencilerrors.NewIOError("ERR_WATCH_ADD", "cannot watch template root", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories need registering; any template change drops
			// the cache wholesale since inheritance makes fine-grained
			// invalidation unsound.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
					continue
				}
			}
			if !IsTemplatePath(event.Name) {
				continue
			}
			e.InvalidateCache()
			e.logger.Debug(ctx, "template cache invalidated", "path", event.Name, "op", event.Op.String())
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn(ctx, watchErr, "filesystem watcher error")
		}
	}
}
