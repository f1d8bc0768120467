// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package maps

// Copy returns a deep copy of the given value. Maps and lists are copied,
// everything else is returned as is.
func Copy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = Copy(val)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = Copy(val)
		}

		return out
	default:
		return value
	}
}
