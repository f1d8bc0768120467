// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package sysconf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/cri2net/sysconf/internal/credential"
	kmaps "github.com/cri2net/sysconf/internal/maps"
	"github.com/cri2net/sysconf/provider/file"
)

// Store holds a JSON configuration tree and gives dotted-path access to it.
//
// The tree is loaded from the backing file on first use. Writes rebuild the
// branch under the written path and replace the top-level key, so sibling
// keys at every depth are kept. Persisted writes replace the whole file and
// reload the tree from it.
//
// All methods are concurrency-safe within a process. Concurrent writers in
// different processes are last-write-wins at the file level.
//
// To create a new Store, call [New].
type Store struct {
	// Options.
	logger    *slog.Logger
	storage   Storage
	delimiter string
	strict    bool
	mode      fs.FileMode

	// Loaded configuration, nil until first use.
	values      map[string]any
	valuesMutex sync.RWMutex

	// For watching changes.
	onChanges      map[string][]func(*Store)
	onChangesMutex sync.RWMutex
	watchOnce      sync.Once
}

// New creates a Store backed by the JSON file at the given path.
//
// An empty path is accepted, but every operation that needs the
// configuration fails with [ErrNotConfigured] until a Storage is provided
// with [WithStorage].
func New(path string, opts ...Option) *Store {
	option := &options{}
	for _, opt := range opts {
		opt(option)
	}
	if option.delimiter == "" {
		option.delimiter = "."
	}
	if option.logger == nil {
		option.logger = slog.Default()
	}
	if option.storage == nil && path != "" {
		fileOpts := []file.Option{file.WithLogger(option.logger)}
		if option.mode != 0 {
			fileOpts = append(fileOpts, file.WithFileMode(option.mode))
		}
		option.storage = file.New(path, fileOpts...)
	}
	option.onChanges = make(map[string][]func(*Store))

	return (*Store)(option)
}

// Load loads the configuration if it has not been loaded yet.
//
// Other methods load lazily, so calling Load is only needed to find out
// early whether the Store is usable, e.g. at application start.
func (s *Store) Load() error {
	s.valuesMutex.Lock()
	defer s.valuesMutex.Unlock()

	return s.load()
}

// Reload discards the loaded configuration and loads it again from the backing file.
// Changes made with SetInMemory are lost.
func (s *Store) Reload() error {
	onChanges, err := func() ([]func(*Store), error) {
		s.valuesMutex.Lock()
		defer s.valuesMutex.Unlock()

		oldValues := s.values
		s.values = nil
		if err := s.load(); err != nil {
			return nil, err
		}

		return s.changed(oldValues, s.values), nil
	}()
	if err != nil {
		return err
	}
	s.notify(context.Background(), onChanges)

	return nil
}

// Get returns the value under the given path, or def if it does not exist.
// A JSON null is treated as not existing. Maps and lists are returned as copies.
// Numbers are returned as json.Number; use [Value] to get them as Go numbers.
//
// Get never fails. If the configuration cannot be loaded, the error is
// logged and def is returned.
func (s *Store) Get(path string, def any) any {
	if value, ok := s.Lookup(path); ok {
		return value
	}

	return def
}

// Lookup returns the value under the given path and whether it exists.
// A JSON null is treated as not existing. Maps and lists are returned as copies.
func (s *Store) Lookup(path string) (any, bool) {
	if s == nil {
		return nil, false
	}

	keys, err := s.split(path)
	if err != nil {
		return nil, false
	}

	values, err := s.snapshot()
	if err != nil {
		s.logger.Error(
			"Could not load configuration, return default value instead.",
			"error", err,
			"path", path,
		)

		return nil, false
	}

	value := kmaps.Sub(values, keys)
	if value == nil {
		return nil, false
	}

	return kmaps.Copy(value), true
}

// Set writes value under the given path and saves the whole configuration
// to the backing file. After it returns, Get for the path returns value as
// it reads back from JSON.
//
// Missing ancestors are created. An ancestor that is not an object is
// replaced by one. It returns an error wrapping [ErrInvalidPath] for an
// empty path, or a [*PersistError] if the file cannot be written, in which
// case the loaded configuration is not changed.
func (s *Store) Set(path string, value any) error {
	return s.set(path, value, true)
}

// SetInMemory is like Set but does not touch the backing file.
// The change is visible to this Store until the next Reload.
func (s *Store) SetInMemory(path string, value any) error {
	return s.set(path, value, false)
}

func (s *Store) set(path string, value any, persist bool) error {
	keys, err := s.split(path)
	if err != nil {
		return err
	}

	var written any
	if err := s.update(path, persist, func(values map[string]any) (map[string]any, error) {
		values, err := kmaps.Normalize(kmaps.Overlay(values, kmaps.Branch(values, keys, value)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		written = kmaps.Sub(values, keys)

		return values, nil
	}); err != nil {
		return err
	}

	s.logger.Info(
		"Configuration has been changed.",
		"path", path,
		"value", credential.Blur(path, written),
		"persist", persist,
	)

	return nil
}

// Unset removes the value under the given path, keeping its siblings,
// and saves the whole configuration to the backing file.
// It does nothing if the path does not exist.
func (s *Store) Unset(path string) error {
	keys, err := s.split(path)
	if err != nil {
		return err
	}

	var removed bool
	if err := s.update(path, true, func(values map[string]any) (map[string]any, error) {
		values, removed = kmaps.Prune(values, keys)
		if !removed {
			return nil, nil
		}

		return values, nil
	}); err != nil {
		return err
	}

	if removed {
		s.logger.Info("Configuration has been removed.", "path", path)
	}

	return nil
}

// update runs the read-load-merge-write cycle as a single critical section.
// A nil map from fn means there is nothing to write.
func (s *Store) update(path string, persist bool, fn func(map[string]any) (map[string]any, error)) error {
	onChanges, err := func() ([]func(*Store), error) {
		s.valuesMutex.Lock()
		defer s.valuesMutex.Unlock()

		if err := s.load(); err != nil {
			return nil, err
		}

		oldValues := s.values
		newValues, err := fn(oldValues)
		if err != nil || newValues == nil {
			return nil, err
		}

		if !persist {
			s.values = newValues

			return s.changed(oldValues, s.values), nil
		}

		if err := s.storage.Save(newValues); err != nil {
			return nil, &PersistError{Path: path, Storage: fmt.Sprint(s.storage), Err: err}
		}
		// Rebuild from what has been written rather than from newValues.
		s.values = nil
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("reload after persist: %w", err)
		}

		return s.changed(oldValues, s.values), nil
	}()
	if err != nil {
		return err
	}
	s.notify(context.Background(), onChanges)

	return nil
}

// Unmarshal reads configuration under the given path and decodes it into
// the object pointed to by target. An empty path decodes the whole
// configuration. Struct fields are matched by their `json` tag or name.
// Fields of target are left untouched if the path does not exist.
func (s *Store) Unmarshal(path string, target any) error {
	if s == nil {
		return nil
	}

	values, err := s.snapshot()
	if err != nil {
		return err
	}

	var value any = values
	if path != "" {
		keys, err := s.split(path)
		if err != nil {
			return err
		}
		value = kmaps.Sub(values, keys)
	}

	return decode(kmaps.Copy(value), target)
}

func decode(from, target any) error {
	decoder, err := mapstructure.NewDecoder(
		&mapstructure.DecoderConfig{
			Result:           target,
			WeaklyTypedInput: true,
			DecodeHook:       defaultDecodeHook,
			TagName:          "json",
		},
	)
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}

	if err := decoder.Decode(from); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}

// Explain describes the values under the given path, one leaf per line.
// Values of sensitive keys and well-known secret formats are blurred.
func (s *Store) Explain(path string) string {
	if s == nil {
		return displayPath(path) + " has no configuration.\n"
	}

	values, err := s.snapshot()
	if err != nil {
		return displayPath(path) + " has no configuration: " + err.Error() + ".\n"
	}

	var value any = values
	if path != "" {
		keys, err := s.split(path)
		if err != nil {
			return path + " is not a valid path.\n"
		}
		value = kmaps.Sub(values, keys)
	}

	explanation := &strings.Builder{}
	s.explain(explanation, path, value)

	return explanation.String()
}

func (s *Store) explain(explanation *strings.Builder, path string, value any) {
	if values, ok := value.(map[string]any); ok && len(values) == 0 {
		// An empty object holds no configuration.
		value = nil
	}
	if values, ok := value.(map[string]any); ok {
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		for _, key := range keys {
			child := key
			if path != "" {
				child = path + s.delimiter + key
			}
			s.explain(explanation, child, values[key])
		}

		return
	}

	if value == nil {
		explanation.WriteString(displayPath(path))
		explanation.WriteString(" has no configuration.\n")

		return
	}

	explanation.WriteString(path)
	explanation.WriteString(" has value[")
	explanation.WriteString(credential.Blur(path, value))
	explanation.WriteString("] in ")
	explanation.WriteString(fmt.Sprint(s.storage))
	explanation.WriteString(".\n")
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}

	return path
}

func (s *Store) String() string {
	if s == nil || s.storage == nil {
		return "sysconf:unconfigured"
	}

	return "sysconf:" + fmt.Sprint(s.storage)
}

// snapshot returns the loaded configuration, loading it if necessary.
// The returned map must not be modified.
func (s *Store) snapshot() (map[string]any, error) {
	s.valuesMutex.RLock()
	values := s.values
	s.valuesMutex.RUnlock()
	if values != nil {
		return values, nil
	}

	s.valuesMutex.Lock()
	defer s.valuesMutex.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	return s.values, nil
}

// load must be called with valuesMutex held.
func (s *Store) load() error {
	if s.values != nil {
		return nil
	}
	if s.storage == nil {
		return ErrNotConfigured
	}

	values, err := s.storage.Load()
	switch {
	case errors.Is(err, file.ErrMalformed) && s.strict:
		return fmt.Errorf("%w: %w", ErrParse, err)
	case errors.Is(err, file.ErrMalformed):
		s.logger.Warn(
			"Configuration is malformed, use empty configuration instead.",
			"storage", s.storage,
			"error", err,
		)
		values = make(map[string]any)
	case err != nil:
		return fmt.Errorf("load configuration: %w", err)
	case values == nil:
		values = make(map[string]any)
	}
	s.values = values

	return nil
}

func (s *Store) split(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	keys := strings.Split(path, s.delimiter)
	if slices.Contains(keys, "") {
		return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
	}

	return keys, nil
}

// changed returns the onChange callbacks whose path has a different value
// in newValues than in oldValues.
func (s *Store) changed(oldValues, newValues map[string]any) []func(*Store) {
	s.onChangesMutex.RLock()
	defer s.onChangesMutex.RUnlock()

	var callbacks []func(*Store)
	for path, onChanges := range s.onChanges {
		var keys []string
		if path != "" {
			keys = strings.Split(path, s.delimiter)
		}
		if !reflect.DeepEqual(kmaps.Sub(oldValues, keys), kmaps.Sub(newValues, keys)) {
			callbacks = append(callbacks, onChanges...)
		}
	}

	return callbacks
}

//nolint:gochecknoglobals
var defaultDecodeHook = mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
	mapstructure.TextUnmarshallerHookFunc(),
)
