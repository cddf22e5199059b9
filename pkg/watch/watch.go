// Package watch reruns a build whenever the source tree changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change triggers a rebuild
const DefaultDebounce = 200 * time.Millisecond

// Watch calls fn once changes under dir have been quiet for debounce.
// Directories created later are watched too. fn runs on the watching
// goroutine, so calls never overlap; its errors are logged and watching
// continues. Changes under any of the ignore directories are skipped.
// Watch returns nil when ctx is cancelled.
func Watch(ctx context.Context, dir string, debounce time.Duration, fn func(ctx context.Context) error, ignore ...string) error {
	logger := logging.GetLogger("watch")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "creating watcher")
	}
	defer watcher.Close()

	skip := newIgnoreSet(ignore)
	if err := addWatchTree(watcher, dir, skip); err != nil {
		return errors.Wrapf(err, errors.ErrNotFound, "watching %s", dir)
	}
	logger.Debug().Str("dir", dir).Dur("debounce", debounce).Msg("Watching")

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var last fsnotify.Event
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if skip.contains(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchTree(watcher, event.Name, skip)
				}
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			last = event
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Debug().Err(err).Msg("Watcher error")

		case <-timer.C:
			logger.Debug().Str("path", last.Name).Str("op", last.Op.String()).Msg("Change detected")
			if err := fn(ctx); err != nil {
				logger.Debug().Err(err).Msg("Rebuild failed")
			}
		}
	}
}

type ignoreSet []string

func newIgnoreSet(dirs []string) ignoreSet {
	var s ignoreSet
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil {
			s = append(s, abs)
		}
	}
	return s
}

// contains reports whether path is one of the ignored directories or lies below one
func (s ignoreSet) contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, d := range s {
		rel, err := filepath.Rel(d, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func addWatchTree(watcher *fsnotify.Watcher, root string, skip ignoreSet) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "%s is not a directory", root)
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skip.contains(path) {
				return filepath.SkipDir
			}
			_ = watcher.Add(path)
		}
		return nil
	})
}
