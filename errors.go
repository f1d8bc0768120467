// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package sysconf

import "errors"

var (
	// ErrNotConfigured is returned when the Store has neither a file path nor a Storage.
	ErrNotConfigured = errors.New("no backing file configured")
	// ErrInvalidPath is returned when the path is empty or has an empty segment.
	ErrInvalidPath = errors.New("invalid configuration path")
	// ErrInvalidValue is returned when the value cannot be represented as JSON.
	ErrInvalidValue = errors.New("invalid configuration value")
	// ErrParse is returned for a malformed backing file if the Store is created with WithStrictParse.
	ErrParse = errors.New("parse configuration")
)

// PersistError is returned by Set and Unset when the configuration
// could not be written to its Storage. The in-memory configuration is
// left as it was before the call.
type PersistError struct {
	Path    string
	Storage string
	Err     error
}

func (e *PersistError) Error() string {
	return "persist " + e.Path + " to " + e.Storage + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
