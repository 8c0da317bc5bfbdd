// Package watcher publishes external vault changes so long-lived
// clients can refresh their tree. Writes performed through the engine
// also land here, which is fine: the SSE broker throttles the
// resulting tree refreshes.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each observed vault change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

func isDocument(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".canvas")
}

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. New directories created at
// runtime are automatically added to the watch list.
func Watch(ctx context.Context, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					announceDir(vaultRoot, absPath, cb)
					continue
				}
			}

			// Only document files from here on; atomic-write temp files
			// surface as Create+Rename noise and are skipped.
			if !isDocument(absPath) {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				logger.Debug("watcher: created", slog.String("path", rel))
				if cb != nil {
					cb("created", rel)
				}

			case ev.Op&fsnotify.Write != 0:
				logger.Debug("watcher: updated", slog.String("path", rel))
				if cb != nil {
					cb("updated", rel)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// fsnotify fires Rename on the OLD path only; the new
				// path arrives as a separate Create event.
				logger.Debug("watcher: deleted", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// announceDir emits created events for documents already present in a
// newly created (or moved-in) directory.
func announceDir(vaultRoot, dirPath string, cb EventCallback) {
	if cb == nil {
		return
	}
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isDocument(path) {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		cb("created", filepath.ToSlash(rel))
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
