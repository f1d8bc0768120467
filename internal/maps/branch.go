// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package maps

// Branch returns a single-key-rooted tree that holds value under the given path.
//
// The tree is built from the innermost key outwards. Each level is a copy of
// the map currently found at that prefix in values, so siblings are kept at
// every depth. A prefix that is absent or not a map[string]any becomes an
// empty map. The values map is never modified.
//
// It panics if path is empty.
func Branch(values map[string]any, path []string, value any) map[string]any {
	if len(path) == 0 {
		panic("cannot build branch with empty path")
	}

	acc := value
	for i := len(path) - 1; i > 0; i-- {
		level := clone(Sub(values, path[:i]))
		level[path[i]] = acc
		acc = level
	}

	return map[string]any{path[0]: acc}
}

// Overlay returns a copy of dst where the top-level keys of src replace the
// ones in dst. Top-level keys only in dst are kept. Nested maps are shared.
func Overlay(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}

	return out
}

// Prune returns a copy of values without the leaf under the given path.
// It reports false, returning values as is, if there is nothing to remove.
func Prune(values map[string]any, path []string) (map[string]any, bool) {
	if len(path) == 0 {
		return values, false
	}

	last := len(path) - 1
	parent, ok := Sub(values, path[:last]).(map[string]any)
	if !ok {
		return values, false
	}
	if _, exists := parent[path[last]]; !exists {
		return values, false
	}

	level := clone(parent)
	delete(level, path[last])
	if last == 0 {
		return level, true
	}

	return Overlay(values, Branch(values, path[:last], level)), true
}

func clone(value any) map[string]any {
	mp, _ := value.(map[string]any)
	out := make(map[string]any, len(mp))
	for k, v := range mp {
		out[k] = v
	}

	return out
}
