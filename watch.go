// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package sysconf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Watch reloads the configuration whenever the backing file is changed by
// someone else, and calls the OnChange callbacks for the paths whose value
// changed. It blocks until ctx is done, or the watcher returns an error.
//
// It returns immediately if the Storage does not implement [Watcher].
// It only can be called once. Call after first has no effects.
// It panics if ctx is nil.
func (s *Store) Watch(ctx context.Context) error { //nolint:cyclop,funlen
	if ctx == nil {
		panic("cannot watch change with nil context")
	}

	if s.storage == nil {
		return ErrNotConfigured
	}
	watcher, ok := s.storage.(Watcher)
	if !ok {
		return nil
	}

	watched := true
	s.watchOnce.Do(func() {
		watched = false
	})
	if watched {
		s.logger.Warn("Store has been watched, call Watch again has no effects.")

		return nil
	}

	onChangesChannel := make(chan []func(*Store))
	group, ctx := errgroup.WithContext(ctx)
	// The dispatcher stops once the watcher returns, even without error.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group.Go(func() error {
		for {
			select {
			case onChanges := <-onChangesChannel:
				s.notify(ctx, onChanges)
			case <-ctx.Done():
				return nil
			}
		}
	})
	group.Go(func() error {
		defer cancel()

		s.logger.DebugContext(ctx, "Watching configuration change.", "storage", watcher)

		err := watcher.Watch(ctx, func() {
			onChanges, err := s.refresh()
			if err != nil {
				s.logger.WarnContext(
					ctx, "Could not reload changed configuration, keep the current one.",
					"storage", watcher,
					"error", err,
				)

				return
			}
			s.logger.InfoContext(ctx, "Configuration has been reloaded.", "storage", watcher)

			select {
			case onChangesChannel <- onChanges:
			case <-ctx.Done():
			}
		})
		if err != nil {
			return fmt.Errorf("watch configuration change: %w", err)
		}

		return nil
	})

	return group.Wait()
}

// refresh reloads the configuration and keeps the current one if it fails.
func (s *Store) refresh() ([]func(*Store), error) {
	s.valuesMutex.Lock()
	defer s.valuesMutex.Unlock()

	oldValues := s.values
	s.values = nil
	if err := s.load(); err != nil {
		s.values = oldValues

		return nil, err
	}

	return s.changed(oldValues, s.values), nil
}

// OnChange registers a callback function that is executed
// when the value of any given path in the Store changes,
// either by Set, SetInMemory, Unset, Reload or Watch.
// Without paths, it is executed on any change.
//
// The onChange function must be non-blocking and usually completes instantly.
// If it requires a long time to complete, it should be executed in a separate goroutine.
//
// It panics if onChange is nil.
func (s *Store) OnChange(onChange func(*Store), paths ...string) {
	if onChange == nil {
		panic("cannot register nil onChange")
	}

	s.onChangesMutex.Lock()
	defer s.onChangesMutex.Unlock()

	if len(paths) == 0 {
		paths = []string{""}
	}
	for _, path := range paths {
		s.onChanges[path] = append(s.onChanges[path], onChange)
	}
}

func (s *Store) notify(ctx context.Context, onChanges []func(*Store)) {
	if len(onChanges) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)

		for _, onChange := range onChanges {
			onChange(s)
		}
	}()

	select {
	case <-done:
		s.logger.DebugContext(ctx, "Configuration has been applied to onChanges.")
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "Configuration has not been fully applied to onChanges due to timeout."+
				" Please check if the onChanges is blocking or takes too long to complete.")
		}
	}
}
