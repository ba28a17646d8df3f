// Package materialize turns a flat, ordered set of path/value pairs into a
// single nested JSON document.
//
// # Overview
//
// Each Entry names a location inside the target object and carries a raw
// string value. Materialize walks the entries in order, creating
// intermediate objects as needed, and writes the terminal value at the end
// of each path:
//
//	entries := []materialize.Entry{
//	    {Path: "a.b.", Value: "1"},
//	    {Path: "a.c", Value: "x"},
//	}
//	doc, err := materialize.Materialize(entries, materialize.GrammarMarker)
//	// doc == map[string]any{"a": map[string]any{"b": int64(1), "c": "x"}}
//
// # Grammars
//
// Two path grammars are supported. A deployment picks one; they are never
// mixed within one call.
//
//   - GrammarMarker: segments separated by ".". A trailing "." on the key
//     marks the value as a JSON literal; otherwise the value is kept as a
//     string. A value that is not a valid literal is an error.
//   - GrammarAnchored: keys start with the "$" anchor followed by
//     dot-separated object keys ("$.a.b", "$.content-type"). Bracket and
//     wildcard selectors are rejected. Values are always type-sniffed and fall back
//     to strings, so value decoding never fails. The key "$" alone replaces
//     the whole document.
//
// # Literals
//
// Literal decoding tries, in order: integer, floating point, true/false
// (case-insensitive), null (case-insensitive). The marker grammar then
// accepts any other JSON literal (strings, arrays, objects).
//
// # Conflicts
//
// Every non-terminal segment must resolve to an object. A JSON null found
// on the way is replaced by an empty object; any other scalar or an array
// is a path conflict. Materialize aborts on the first error and returns no
// partial document. When two entries name the same terminal path the last
// one wins.
//
// # Query strings
//
// ParseQuery splits a raw URL query into entries while preserving parameter
// order, which url.Values does not.
package materialize
