// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package file

import (
	"io/fs"
	"log/slog"
)

// WithLogger provides the slog.Logger for File.
//
// By default, it uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(options *options) {
		options.logger = logger
	}
}

// WithFileMode provides the permission bits used when Save creates the file.
// An existing file keeps its own mode.
//
// The default mode is 0644.
func WithFileMode(mode fs.FileMode) Option {
	return func(options *options) {
		options.mode = mode.Perm()
	}
}

type (
	// Option configures a File with specific options.
	Option  func(options *options)
	options File
)
