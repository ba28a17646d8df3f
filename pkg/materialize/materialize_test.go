package materialize

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestMaterialize_Marker(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    any
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    map[string]any{},
		},
		{
			name: "literal and string siblings",
			entries: []Entry{
				{Path: "a.b.", Value: "1"},
				{Path: "a.c", Value: "x"},
			},
			want: map[string]any{
				"a": map[string]any{"b": int64(1), "c": "x"},
			},
		},
		{
			name: "all literal kinds",
			entries: []Entry{
				{Path: "null.", Value: "null"},
				{Path: "boolean.", Value: "true"},
				{Path: "integer.", Value: "2"},
				{Path: "decimal.", Value: "3.0"},
				{Path: "string", Value: "4"},
				{Path: "nested.string", Value: "5"},
				{Path: "nested.array.", Value: "[6]"},
				{Path: "nested.object.", Value: `{"key":7}`},
			},
			want: map[string]any{
				"null":    nil,
				"boolean": true,
				"integer": int64(2),
				"decimal": float64(3),
				"string":  "4",
				"nested": map[string]any{
					"string": "5",
					"array":  []any{int64(6)},
					"object": map[string]any{"key": int64(7)},
				},
			},
		},
		{
			name: "keywords are case-insensitive",
			entries: []Entry{
				{Path: "t.", Value: "TRUE"},
				{Path: "f.", Value: "False"},
				{Path: "n.", Value: "NULL"},
			},
			want: map[string]any{"t": true, "f": false, "n": nil},
		},
		{
			name: "quoted literal is a string",
			entries: []Entry{
				{Path: "s.", Value: `"hello"`},
			},
			want: map[string]any{"s": "hello"},
		},
		{
			name: "unmarked value stays a string",
			entries: []Entry{
				{Path: "n", Value: "42"},
				{Path: "b", Value: "true"},
			},
			want: map[string]any{"n": "42", "b": "true"},
		},
		{
			name: "last write wins",
			entries: []Entry{
				{Path: "a.b", Value: "first"},
				{Path: "a.b", Value: "second"},
			},
			want: map[string]any{"a": map[string]any{"b": "second"}},
		},
		{
			name: "null is coerced into an object",
			entries: []Entry{
				{Path: "a.", Value: "null"},
				{Path: "a.b", Value: "x"},
			},
			want: map[string]any{"a": map[string]any{"b": "x"}},
		},
		{
			name: "descends into a literal object",
			entries: []Entry{
				{Path: "o.", Value: `{"k":1}`},
				{Path: "o.j", Value: "2"},
			},
			want: map[string]any{"o": map[string]any{"k": int64(1), "j": "2"}},
		},
		{
			name: "deep path",
			entries: []Entry{
				{Path: "a.b.c.d.", Value: "-1.5"},
			},
			want: map[string]any{
				"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": -1.5}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Materialize(tt.entries, GrammarMarker)
			if err != nil {
				t.Fatalf("Materialize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Materialize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestMaterialize_Anchored(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    any
	}{
		{
			name: "sniffed siblings",
			entries: []Entry{
				{Path: "$.a.b", Value: "7"},
				{Path: "$.a.c", Value: "true"},
			},
			want: map[string]any{
				"a": map[string]any{"b": int64(7), "c": true},
			},
		},
		{
			name: "unrecognised values stay strings",
			entries: []Entry{
				{Path: "$.s", Value: "hello"},
				{Path: "$.j", Value: "[1"},
				{Path: "$.f", Value: "1.25"},
				{Path: "$.n", Value: "Null"},
			},
			want: map[string]any{"s": "hello", "j": "[1", "f": 1.25, "n": nil},
		},
		{
			name: "root replaces the document",
			entries: []Entry{
				{Path: "$.a", Value: "1"},
				{Path: "$", Value: "5"},
			},
			want: int64(5),
		},
		{
			name: "keys outside JSONPath shorthand",
			entries: []Entry{
				{Path: "$.content-type", Value: "1"},
				{Path: "$.0", Value: "x"},
				{Path: "$.a.1st", Value: "false"},
				{Path: "$.Axis-Param.x", Value: "2.5"},
				{Path: "$.a b", Value: "y"},
			},
			want: map[string]any{
				"content-type": int64(1),
				"0":            "x",
				"a":            map[string]any{"1st": false},
				"Axis-Param":   map[string]any{"x": 2.5},
				"a b":          "y",
			},
		},
		{
			name: "null root becomes an object",
			entries: []Entry{
				{Path: "$", Value: "null"},
				{Path: "$.a", Value: "1"},
			},
			want: map[string]any{"a": int64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Materialize(tt.entries, GrammarAnchored)
			if err != nil {
				t.Fatalf("Materialize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Materialize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestMaterialize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		grammar Grammar
		entries []Entry
		wantErr error
	}{
		{
			name:    "scalar prefix",
			grammar: GrammarMarker,
			entries: []Entry{{Path: "a", Value: "1"}, {Path: "a.b", Value: "2"}},
			wantErr: ErrConflict,
		},
		{
			name:    "array prefix",
			grammar: GrammarMarker,
			entries: []Entry{{Path: "arr.", Value: "[1]"}, {Path: "arr.x", Value: "1"}},
			wantErr: ErrConflict,
		},
		{
			name:    "conflict after valid entries",
			grammar: GrammarMarker,
			entries: []Entry{{Path: "ok", Value: "1"}, {Path: "a.", Value: "3"}, {Path: "a.b.c", Value: "2"}},
			wantErr: ErrConflict,
		},
		{
			name:    "malformed literal",
			grammar: GrammarMarker,
			entries: []Entry{{Path: "a.", Value: "hello"}},
			wantErr: ErrMalformedLiteral,
		},
		{
			name:    "empty literal",
			grammar: GrammarMarker,
			entries: []Entry{{Path: "a.", Value: ""}},
			wantErr: ErrMalformedLiteral,
		},
		{
			name:    "double dot",
			grammar: GrammarMarker,
			entries: []Entry{{Path: "a..b", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "empty key",
			grammar: GrammarMarker,
			entries: []Entry{{Path: "", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "lone marker",
			grammar: GrammarMarker,
			entries: []Entry{{Path: ".", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "missing anchor",
			grammar: GrammarAnchored,
			entries: []Entry{{Path: "a.b", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "index selector",
			grammar: GrammarAnchored,
			entries: []Entry{{Path: "$.a[0]", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "bracket member",
			grammar: GrammarAnchored,
			entries: []Entry{{Path: "$['a']", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "wildcard",
			grammar: GrammarAnchored,
			entries: []Entry{{Path: "$.a.*", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "unbalanced bracket",
			grammar: GrammarAnchored,
			entries: []Entry{{Path: "$.a[", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "descendant segment",
			grammar: GrammarAnchored,
			entries: []Entry{{Path: "$..a", Value: "1"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "scalar root",
			grammar: GrammarAnchored,
			entries: []Entry{{Path: "$", Value: "1"}, {Path: "$.a", Value: "2"}},
			wantErr: ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Materialize(tt.entries, tt.grammar)
			if err == nil {
				t.Fatalf("Materialize() = %#v, want error", got)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Materialize() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("Materialize() returned partial document %#v", got)
			}

			var pathErr *PathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("error %T is not a *PathError", err)
			}
			if pathErr.Path == "" && tt.entries[len(tt.entries)-1].Path != "" {
				t.Error("PathError.Path should name the offending key")
			}
		})
	}
}

func TestMaterialize_OrderIndependent(t *testing.T) {
	entries := []Entry{
		{Path: "a.b.", Value: "1"},
		{Path: "a.c", Value: "x"},
		{Path: "d.e.f.", Value: "false"},
		{Path: "d.g.", Value: `{"h":[1,2]}`},
		{Path: "top", Value: "v"},
	}

	want, err := Materialize(entries, GrammarMarker)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	for shift := 1; shift < len(entries); shift++ {
		rotated := append(append([]Entry{}, entries[shift:]...), entries[:shift]...)
		got, err := Materialize(rotated, GrammarMarker)
		if err != nil {
			t.Fatalf("rotation %d: Materialize() error = %v", shift, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("rotation %d: got %#v, want %#v", shift, got, want)
		}
	}

	reversed := make([]Entry, len(entries))
	for i, entry := range entries {
		reversed[len(entries)-1-i] = entry
	}
	got, err := Materialize(reversed, GrammarMarker)
	if err != nil {
		t.Fatalf("reversed: Materialize() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reversed: got %#v, want %#v", got, want)
	}
}

func TestMaterialize_RoundTrip(t *testing.T) {
	inputs := []struct {
		grammar Grammar
		entries []Entry
	}{
		{GrammarMarker, []Entry{
			{Path: "a.b.", Value: "1"},
			{Path: "a.c", Value: "x"},
			{Path: "pi.", Value: "3.14159"},
			{Path: "whole.", Value: "3.0"},
			{Path: "list.", Value: `[1, "two", null, {"three": 3.5}]`},
			{Path: "unicode", Value: "grüße ☃"},
		}},
		{GrammarAnchored, []Entry{
			{Path: "$.a.b", Value: "7"},
			{Path: "$.a.c", Value: "true"},
			{Path: "$.big", Value: "9223372036854775807"},
			{Path: "$.neg", Value: "-0.001"},
		}},
	}

	for _, in := range inputs {
		t.Run(in.grammar.String(), func(t *testing.T) {
			doc, err := Materialize(in.entries, in.grammar)
			if err != nil {
				t.Fatalf("Materialize() error = %v", err)
			}

			encoded, err := json.Marshal(doc)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}

			decoded, err := decodeJSON(string(encoded))
			if err != nil {
				t.Fatalf("decodeJSON(%s) error = %v", encoded, err)
			}

			if !jsonEqual(doc, decoded) {
				t.Errorf("round trip mismatch:\n got %#v\nwant %#v", decoded, doc)
			}
		})
	}
}

// jsonEqual compares documents the way JSON does: integers exactly,
// floats approximately, and any number against any other number.
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, child := range av {
			other, ok := bv[key]
			if !ok || !jsonEqual(child, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case int64:
		if bi, ok := b.(int64); ok {
			return av == bi
		}
		return floatEqual(float64(av), b)
	case float64:
		return floatEqual(av, b)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func floatEqual(a float64, b any) bool {
	var bf float64
	switch bv := b.(type) {
	case int64:
		bf = float64(bv)
	case float64:
		bf = bv
	default:
		return false
	}
	diff := a - bf
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1e-9
}
