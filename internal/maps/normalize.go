// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package maps

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Normalize round-trips values through encoding/json so that it only holds
// the shapes Decode produces: nil, bool, json.Number, string, []any and
// map[string]any.
func Normalize(values map[string]any) (map[string]any, error) {
	content, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	out, err := Decode(content)
	if err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if out == nil {
		out = make(map[string]any)
	}

	return out, nil
}

// Decode decodes a JSON object. Numbers are kept as json.Number so that
// integers beyond 2^53 are written back unchanged.
// A JSON null decodes to a nil map.
func Decode(content []byte) (map[string]any, error) {
	var out map[string]any
	if err := unmarshal(content, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// DecodeValue is like Decode but accepts any JSON value.
func DecodeValue(content []byte) (any, error) {
	var out any
	if err := unmarshal(content, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func unmarshal(content []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return err //nolint:wrapcheck
	}
	// Trailing data after the value is malformed, as with json.Unmarshal.
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid data after top-level value at offset %d", decoder.InputOffset())
	}

	return nil
}
