// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

//go:build !appengine && (darwin || dragonfly || freebsd || openbsd || linux || netbsd || solaris || windows)

package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls onChange whenever the file is created, written, removed or
// replaced. It blocks until ctx is done.
//
//nolint:cyclop,funlen
func (f File) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher for %s: %w", f.path, err)
	}
	defer func() {
		if e := watcher.Close(); e != nil {
			f.logger.LogAttrs(
				ctx, slog.LevelWarn,
				"Error when closing file watcher.",
				slog.String("file", f.path),
				slog.Any("error", e),
			)
		}
	}()

	// Save replaces the file with a rename, which only shows up as events
	// on the parent directory.
	dir, _ := filepath.Split(f.path)
	if dir == "" {
		dir = "."
	}
	if e := watcher.Add(dir); e != nil {
		return fmt.Errorf("watch dir %s: %w", dir, e)
	}

	path := filepath.Clean(f.path)
	realPath, err := filepath.EvalSymlinks(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		realPath = path
	case err != nil:
		return fmt.Errorf("eval symlink: %w", err)
	default:
		realPath = filepath.Clean(realPath)
	}

	// Writers often produce several events for a single change, e.g. truncate
	// and write, so onChange is only called once the file has been quiet.
	timer := time.NewTimer(quietPeriod)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			name := filepath.Clean(event.Name)
			if name != realPath && name != path {
				continue
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				f.logger.LogAttrs(
					ctx, slog.LevelWarn,
					"Config file has been removed.",
					slog.String("file", f.path),
				)
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				f.logger.LogAttrs(
					ctx, slog.LevelDebug,
					"Config file has been changed.",
					slog.String("file", f.path),
					slog.String("event", event.Op.String()),
				)
			default:
				continue
			}
			timer.Reset(quietPeriod)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.LogAttrs(
				ctx, slog.LevelWarn,
				"Error when watching file.",
				slog.String("file", f.path),
				slog.Any("error", err),
			)

		case <-ctx.Done():
			return nil
		}
	}
}

const quietPeriod = 20 * time.Millisecond
