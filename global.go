// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package sysconf

import (
	"reflect"
	"sync/atomic"
)

// Get returns the value under the given path in the default Store
// converted to T. It returns def if there is no default Store, the path
// does not exist, or the value cannot be converted to T.
func Get[T any](path string, def T) T { //nolint:ireturn
	store, _ := Default()

	return Value(store, path, def)
}

// Value returns the value under the given path in s converted to T.
// It returns def if s is nil, the path does not exist, or the value
// cannot be converted to T.
func Value[T any](s *Store, path string, def T) T { //nolint:ireturn
	raw, ok := s.Lookup(path)
	if !ok {
		return def
	}

	var value T
	if err := decode(raw, &value); err != nil {
		s.logger.Error(
			"Could not convert config, return default value instead.",
			"error", err,
			"path", path,
			"type", reflect.TypeOf(value),
		)

		return def
	}

	return value
}

// SetDefault makes s the default [Store].
// After this call, the sysconf package's top functions (e.g. sysconf.Get)
// will read from s. Passing nil removes the default Store.
func SetDefault(s *Store) {
	defaultStore.Store(s)
}

// Default returns the default Store and whether it has been set.
func Default() (*Store, bool) {
	s := defaultStore.Load()

	return s, s != nil
}

var defaultStore atomic.Pointer[Store] //nolint:gochecknoglobals
