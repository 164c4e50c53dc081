// Package watcher rebuilds the post collection when the content tree changes.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quill/internal/collection"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// Refresher rebuilds the collection. *collection.Store satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*collection.Snapshot, error)
}

// Callback is called with the new snapshot after each successful rebuild.
type Callback func(snap *collection.Snapshot)

// Options configures Watch.
type Options struct {
	Root      string
	Extension string
	Debounce  time.Duration
	Logger    *slog.Logger
	// OnError is called when a rebuild fails. The previous snapshot stays current.
	OnError   func(err error)
}

// Watch starts an fsnotify watcher on the content root and rebuilds through r
// until ctx is cancelled. Bursts of events are coalesced into one rebuild
// once no event has arrived for the debounce period.
//
// New directories created at runtime are automatically added to the watch
// list. Removed directories drop out of the watch list on their own.
func Watch(ctx context.Context, r Refresher, opts Options, cb Callback) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ext := opts.Extension
	if ext == "" {
		ext = ".md"
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, opts.Root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", opts.Root))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			snap, err := r.Refresh(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("watcher: rebuild failed", slog.String("error", err.Error()))
				if opts.OnError != nil {
					opts.OnError(err)
				}
				continue
			}
			logger.Debug("watcher: rebuilt", slog.String("snapshot", snap.ID), slog.Int("posts", snap.Len()))
			if cb != nil {
				cb(snap)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					// The directory may already hold posts (e.g. moved in).
					schedule()
					continue
				}
			}

			if relevant(ev, ext) {
				logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether ev can change the collection: any event on a file
// with the content extension, or a removal/rename of something that may have
// been a directory of posts.
func relevant(ev fsnotify.Event, ext string) bool {
	if filepath.Ext(ev.Name) == ext {
		return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
	}
	return filepath.Ext(ev.Name) == "" && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0
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
