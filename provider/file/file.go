// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package file stores configuration in a JSON document on the OS file system.
//
// File loads the document as a nested map[string]any and saves it back as a
// whole. A file that does not exist is loaded as an empty map. Saving replaces
// the file atomically, so concurrent readers see either the old or the new
// document and never a partial one.
package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cri2net/sysconf/internal/maps"
)

// ErrMalformed is returned by Load when the file content is not a JSON object.
var ErrMalformed = errors.New("malformed configuration file")

// File is a storage that reads and writes configuration as a JSON file.
//
// To create a new File, call [New].
type File struct {
	logger *slog.Logger
	path   string
	mode   fs.FileMode
}

// New creates a File with the given path and Option(s).
//
// It panics if the path is empty.
func New(path string, opts ...Option) File {
	if path == "" {
		panic("cannot create File with empty path")
	}

	option := &options{
		path: path,
		mode: 0o644, //nolint:mnd
	}
	for _, opt := range opts {
		opt(option)
	}
	if option.logger == nil {
		option.logger = slog.Default()
	}
	option.logger = option.logger.WithGroup("sysconf.file")

	return File(*option)
}

// Load reads the file and decodes it as a JSON object.
// Numbers are decoded as json.Number so they are saved back unchanged.
func (f File) Load() (map[string]any, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("Config file does not exist.", "file", f.path)

			return make(map[string]any), nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	out, err := maps.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrMalformed, f.path, err)
	}
	if out == nil {
		// The document is a JSON null.
		out = make(map[string]any)
	}

	return out, nil
}

// Save replaces the file with the given values, pretty-printed with four
// spaces of indentation and without escaping HTML characters or Unicode.
//
// The document is written to a temporary file in the same directory which is
// then renamed over the original. An existing file keeps its mode.
func (f File) Save(values map[string]any) error {
	if values == nil {
		values = make(map[string]any)
	}

	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(values); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	// Write through a symlink to its target rather than replacing the link.
	path, err := filepath.EvalSymlinks(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		path = f.path
	case err != nil:
		return fmt.Errorf("eval symlink: %w", err)
	}

	mode := f.mode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename has succeeded.
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	f.logger.Debug("Config file has been written.", "file", f.path, "size", buf.Len())

	return nil
}

func (f File) String() string {
	return "file:" + f.path
}
