// Package modelpath reads and writes values inside nested form models using
// dotted or bracketed paths (`a.b[2].c` is the same address as `a.b.2.c`).
//
// Models are plain `map[string]any` trees with `[]any` arrays. Typed maps with
// string keys and typed slices are read (and written at the last segment)
// through reflection. Writers create missing intermediate keys as
// `map[string]any`; arrays are never created implicitly.
//
// The package performs no locking. Models are single-writer by convention:
// callers serialise mutation the same way they serialise edits to the field
// tree.
package modelpath

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrNotContainer reports a write that had to traverse a value which is
	// neither a map nor a slice.
	ErrNotContainer = errors.New("modelpath: value is not a container")
	// ErrIndexOutOfRange reports a write addressing a slice element that does
	// not exist.
	ErrIndexOutOfRange = errors.New("modelpath: index out of range")
	// ErrEmptyPath reports a write with no addressable segment.
	ErrEmptyPath = errors.New("modelpath: empty path")
)

var bracketReplacer = strings.NewReplacer("[", ".", "]", "")

// Segments splits a path into its segments. Bracketed indices become plain
// segments and a leading dot is ignored.
func Segments(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	clean = bracketReplacer.Replace(clean)
	clean = strings.TrimPrefix(clean, ".")
	if clean == "" {
		return nil
	}

	parts := strings.Split(clean, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Normalize returns the canonical dotted form of path.
func Normalize(path string) string {
	return strings.Join(Segments(path), ".")
}

// Join appends child to parent using dot notation, skipping empty parts.
func Join(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// Get returns the value stored at path. The boolean is false when any segment
// is absent; a present nil value is reported as (nil, true).
func Get(model any, path string) (any, bool) {
	segments := Segments(path)
	if len(segments) == 0 || model == nil {
		return nil, false
	}

	current := model
	for _, segment := range segments {
		next, ok := child(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Lookup is Get without the presence flag.
func Lookup(model any, path string) any {
	value, _ := Get(model, path)
	return value
}

// Has reports whether path resolves to a present value.
func Has(model any, path string) bool {
	_, ok := Get(model, path)
	return ok
}

// Set assigns value at path, creating empty maps for missing intermediate
// keys. It reports whether any new key was introduced so callers can raise
// their own change notifications. Writing through a scalar returns
// ErrNotContainer.
func Set(model map[string]any, path string, value any) (bool, error) {
	segments := Segments(path)
	if len(segments) == 0 {
		return false, ErrEmptyPath
	}
	if model == nil {
		return false, fmt.Errorf("%w: nil model", ErrNotContainer)
	}

	created := false
	var current any = model
	for idx, segment := range segments {
		last := idx == len(segments)-1
		if last {
			added, err := assign(current, segment, value)
			if err != nil {
				return created, fmt.Errorf("%w (path %q)", err, path)
			}
			return created || added, nil
		}

		next, ok := child(current, segment)
		if ok {
			current = next
			continue
		}

		fresh := make(map[string]any)
		if _, err := assign(current, segment, fresh); err != nil {
			return created, fmt.Errorf("%w (path %q)", err, path)
		}
		created = true
		current = fresh
	}
	return created, nil
}

func child(container any, segment string) (any, bool) {
	switch typed := container.(type) {
	case map[string]any:
		value, ok := typed[segment]
		return value, ok
	case []any:
		index, ok := parseIndex(segment, len(typed))
		if !ok {
			return nil, false
		}
		return typed[index], true
	case map[string]string:
		value, ok := typed[segment]
		return value, ok
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		value := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false
		}
		return value.Interface(), true
	case reflect.Slice, reflect.Array:
		index, ok := parseIndex(segment, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(index).Interface(), true
	default:
		return nil, false
	}
}

func assign(container any, segment string, value any) (bool, error) {
	switch typed := container.(type) {
	case map[string]any:
		_, existed := typed[segment]
		typed[segment] = value
		return !existed, nil
	case []any:
		index, ok := parseIndex(segment, len(typed))
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrIndexOutOfRange, segment)
		}
		typed[index] = value
		return false, nil
	case nil:
		return false, fmt.Errorf("%w: nil at %q", ErrNotContainer, segment)
	}

	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false, fmt.Errorf("%w: nil at %q", ErrNotContainer, segment)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		keyType := rv.Type().Key()
		if keyType.Kind() != reflect.String {
			return false, fmt.Errorf("%w: map keyed by %s", ErrNotContainer, keyType)
		}
		elem, err := assignable(value, rv.Type().Elem())
		if err != nil {
			return false, err
		}
		key := reflect.ValueOf(segment).Convert(keyType)
		existed := rv.MapIndex(key).IsValid()
		rv.SetMapIndex(key, elem)
		return !existed, nil
	case reflect.Slice:
		index, ok := parseIndex(segment, rv.Len())
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrIndexOutOfRange, segment)
		}
		elem, err := assignable(value, rv.Type().Elem())
		if err != nil {
			return false, err
		}
		rv.Index(index).Set(elem)
		return false, nil
	default:
		return false, fmt.Errorf("%w: %T at %q", ErrNotContainer, container, segment)
	}
}

func assignable(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(target) && rv.Kind() == target.Kind() {
		return rv.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("modelpath: cannot store %T in %s", value, target)
}

func parseIndex(segment string, length int) (int, bool) {
	index, err := strconv.Atoi(segment)
	if err != nil || index < 0 || index >= length {
		return 0, false
	}
	return index, true
}
