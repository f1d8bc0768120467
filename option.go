// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package sysconf

import (
	"io/fs"
	"log/slog"
)

// WithDelimiter provides the delimiter when specifying config path.
//
// The default delimiter is `.`, which makes config path like `auth.google.clientId`.
func WithDelimiter(delimiter string) Option {
	return func(options *options) {
		options.delimiter = delimiter
	}
}

// WithLogHandler provides the slog.Handler for logs from Store.
//
// By default, it uses handler from slog.Default().
func WithLogHandler(handler slog.Handler) Option {
	return func(options *options) {
		if handler != nil {
			options.logger = slog.New(handler)
		}
	}
}

// WithStorage provides the Storage the configuration is loaded from and saved to.
// It takes precedence over the path given to [New].
func WithStorage(storage Storage) Option {
	return func(options *options) {
		options.storage = storage
	}
}

// WithStrictParse makes a malformed backing file an error wrapping [ErrParse].
//
// By default, a malformed backing file is logged and treated as an empty configuration.
func WithStrictParse() Option {
	return func(options *options) {
		options.strict = true
	}
}

// WithFileMode provides the permission bits for the backing file when it is created.
//
// The default mode is 0644.
func WithFileMode(mode fs.FileMode) Option {
	return func(options *options) {
		options.mode = mode
	}
}

type (
	// Option configures a Store with specific options.
	Option  func(*options)
	options Store
)
