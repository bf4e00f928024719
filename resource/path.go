package resource

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dot-notation paths over unstructured objects
//
// A path is a dot-separated list of segments. A segment addresses a key of a
// map or, when it is a non-negative integer, an element of a list:
//
//	spec.template.spec.containers.0.image
//
// A backslash escapes a literal dot in a key:
//
//	metadata.annotations.deployment\.kubernetes\.io/revision
// ─────────────────────────────────────────────────────────────────────────────

// splitPath splits path on unescaped dots.
func splitPath(path string) []string {
	if !strings.Contains(path, `\`) {
		return strings.Split(path, ".")
	}
	var segments []string
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch c := path[i]; {
		case c == '\\' && i+1 < len(path) && path[i+1] == '.':
			b.WriteByte('.')
			i++
		case c == '.':
			segments = append(segments, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(segments, b.String())
}

// lookup walks segments from v.
func lookup(v any, segments []string) (any, bool) {
	for _, seg := range segments {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}

// Get returns the value at path in obj, or def[0] (or nil) when it does not
// exist.
//
//	Get(pod, "spec.nodeName")
//	Get(pod, "status.phase", "Unknown")
func Get(obj *unstructured.Unstructured, path string, def ...any) any {
	if v, ok := lookup(obj.Object, splitPath(path)); ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// Has reports whether path exists in obj.
func Has(obj *unstructured.Unstructured, path string) bool {
	_, ok := lookup(obj.Object, splitPath(path))
	return ok
}

// String returns the value at path formatted as a string, or "" when it does
// not exist.
func String(obj *unstructured.Unstructured, path string) string {
	switch v := Get(obj, path).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Slice returns the list at path, or nil when path does not exist or is not a
// list.
func Slice(obj *unstructured.Unstructured, path string) []any {
	s, _ := Get(obj, path).([]any)
	return s
}

// Maps returns the elements of the list at path that are objects, e.g. the
// containers of a pod spec.
func Maps(obj *unstructured.Unstructured, path string) []map[string]any {
	var out []map[string]any
	for _, v := range Slice(obj, path) {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Set writes value at path, creating intermediate maps as needed. Existing
// lists are indexed but never grown; a non-container value in the way is
// replaced by a map.
//
// value must be a type unstructured objects can hold (string, bool, int64,
// float64, nil, []any or map[string]any).
func Set(obj *unstructured.Unstructured, path string, value any) error {
	if obj.Object == nil {
		obj.Object = make(map[string]any)
	}
	return setIn(obj.Object, splitPath(path), value, path)
}

func setIn(m map[string]any, segments []string, value any, path string) error {
	seg, rest := segments[0], segments[1:]
	if len(rest) == 0 {
		m[seg] = value
		return nil
	}
	switch next := m[seg].(type) {
	case map[string]any:
		return setIn(next, rest, value, path)
	case []any:
		return setInList(next, rest, value, path)
	default:
		nested := make(map[string]any)
		m[seg] = nested
		return setIn(nested, rest, value, path)
	}
}

func setInList(list []any, segments []string, value any, path string) error {
	i, err := strconv.Atoi(segments[0])
	if err != nil || i < 0 || i >= len(list) {
		return fmt.Errorf("%w: %q: no list element %q", ErrInvalidPath, path, segments[0])
	}
	if len(segments) == 1 {
		list[i] = value
		return nil
	}
	switch next := list[i].(type) {
	case map[string]any:
		return setIn(next, segments[1:], value, path)
	case []any:
		return setInList(next, segments[1:], value, path)
	default:
		return fmt.Errorf("%w: %q: element %d is %T", ErrInvalidPath, path, i, list[i])
	}
}

// Forget removes the map key at path. Missing paths and list elements are
// left alone; intermediate maps are not cleaned up.
func Forget(obj *unstructured.Unstructured, path string) {
	segments := splitPath(path)
	parent, ok := lookup(obj.Object, segments[:len(segments)-1])
	if !ok {
		return
	}
	if m, ok := parent.(map[string]any); ok {
		delete(m, segments[len(segments)-1])
	}
}

// Dot flattens obj into a single-level map keyed by path. Lists contribute
// one key per element. Empty maps and lists are kept as leaves.
//
//	Dot(pod)["spec.containers.0.image"] // "nginx:1.27"
func Dot(obj *unstructured.Unstructured) map[string]any {
	out := make(map[string]any)
	dotFlatten("", obj.Object, out)
	return out
}

func dotFlatten(prefix string, v any, out map[string]any) {
	join := func(k string) string {
		k = strings.ReplaceAll(k, ".", `\.`)
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch node := v.(type) {
	case map[string]any:
		if len(node) == 0 && prefix != "" {
			out[prefix] = node
			return
		}
		for k, e := range node {
			dotFlatten(join(k), e, out)
		}
	case []any:
		if len(node) == 0 {
			out[prefix] = node
			return
		}
		for i, e := range node {
			dotFlatten(join(strconv.Itoa(i)), e, out)
		}
	default:
		out[prefix] = v
	}
}

// Merge merges src into dst, returning dst. Values in src overwrite values in
// dst for matching keys; nested maps are merged recursively. Lists are
// replaced, not merged.
func Merge(dst, src map[string]any) map[string]any {
	for k, srcVal := range src {
		if dstMap, ok := dst[k].(map[string]any); ok {
			if srcMap, ok := srcVal.(map[string]any); ok {
				Merge(dstMap, srcMap)
				continue
			}
		}
		dst[k] = srcVal
	}
	return dst
}
