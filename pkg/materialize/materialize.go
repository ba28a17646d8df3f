package materialize

import (
	"encoding/json"
	"fmt"
)

// Materialize builds one JSON document from entries, processed in order.
//
// The result is a map[string]any unless an anchored root entry ("$")
// replaced the document with another value. On error no document is
// returned.
func Materialize(entries []Entry, grammar Grammar) (any, error) {
	var root any = map[string]any{}

	for _, entry := range entries {
		segments, value, err := grammar.resolve(entry.Path, entry.Value)
		if err != nil {
			return nil, err
		}
		if err := insert(&root, entry.Path, segments, value); err != nil {
			return nil, err
		}
	}

	return root, nil
}

// insert writes value at segments below root, creating objects on the way.
func insert(root *any, path string, segments []string, value any) error {
	if len(segments) == 0 {
		*root = value
		return nil
	}

	var current map[string]any
	switch node := (*root).(type) {
	case map[string]any:
		current = node
	case nil:
		current = map[string]any{}
		*root = current
	default:
		return conflict(path, Anchor, node)
	}

	last := len(segments) - 1
	for _, segment := range segments[:last] {
		switch child := current[segment].(type) {
		case map[string]any:
			current = child
		case nil:
			next := map[string]any{}
			current[segment] = next
			current = next
		default:
			return conflict(path, segment, child)
		}
	}

	current[segments[last]] = value
	return nil
}

func conflict(path, segment string, found any) *PathError {
	return &PathError{
		Path:    path,
		Segment: segment,
		Kind:    ErrConflict,
		Cause:   fmt.Errorf("location holds %s, not an object", typeName(found)),
	}
}

func typeName(v any) string {
	switch v.(type) {
	case bool:
		return "a boolean"
	case int64, float64, json.Number:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
