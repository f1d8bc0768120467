// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package sysconf

import "context"

// Storage is the interface that wraps the Load and Save methods
// of the durable document behind a Store.
//
// Load returns the whole document as a nested map[string]any like
// `{parent: {child: {key: 1}}}`. A document that does not exist yet
// must be returned as an empty map. A document that exists but cannot be
// parsed must be reported with an error wrapping [file.ErrMalformed].
//
// Save replaces the whole document with the given values.
//
// [file.ErrMalformed]: https://pkg.go.dev/github.com/cri2net/sysconf/provider/file#ErrMalformed
type Storage interface {
	Load() (map[string]any, error)
	Save(values map[string]any) error
}

// Watcher is the interface that wraps the Watch method.
//
// Watch calls onChange whenever the underlying document may have been
// changed by someone else. It blocks until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}
