// Package merge deep-merges JSON object trees.
//
// Merge is used to lay a configuration overlay entry (source) over the JSON
// document read from an artifact file (destination):
//   - Keys present in both as objects: merged recursively
//   - Keys present in the source with any other value: source replaces destination
//   - Keys present only in the destination: preserved
//   - Keys present only in the source: added
//   - Key matching is case-insensitive; the destination's spelling is kept
//   - A nil value never replaces anything (merge(x, nil) == x)
//
// Inputs are never modified. Untouched subtrees of the destination are shared
// with the result.
package merge

import (
	"strings"
)

// Merge merges src over dst and returns the result.
// Merge(nil, x) returns x, Merge(x, nil) returns x and Merge(nil, nil) returns nil.
func Merge(dst, src map[string]any) map[string]any {
	switch {
	case dst == nil && src == nil:
		return nil
	case dst == nil:
		return src
	case src == nil:
		return dst
	}

	result := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		result[k] = v
	}

	for srcKey, srcVal := range src {
		key := matchKey(result, srcKey)
		dstVal, exists := result[key]
		if !exists {
			result[key] = srcVal
			continue
		}
		result[key] = Value(dstVal, srcVal)
	}

	return result
}

// Value merges two arbitrary JSON values. Objects merge recursively, a nil
// source keeps the destination, and anything else in the source replaces the
// destination.
func Value(dst, src any) any {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}

	dstMap, dstIsMap := dst.(map[string]any)
	srcMap, srcIsMap := src.(map[string]any)
	if dstIsMap && srcIsMap {
		return Merge(dstMap, srcMap)
	}

	// Scalars, arrays and type mismatches: source replaces destination
	return src
}

// matchKey returns the key in m that equals key case-insensitively, or key
// itself when m has no such entry. An exact match is preferred.
func matchKey(m map[string]any, key string) string {
	if _, ok := m[key]; ok {
		return key
	}
	for k := range m {
		if strings.EqualFold(k, key) {
			return k
		}
	}
	return key
}
