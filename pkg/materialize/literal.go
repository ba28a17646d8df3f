package materialize

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// DecodeLiteral converts a raw string into a JSON value.
//
// Integers become int64, other finite decimal numbers float64, and
// true/false/null (any case) their JSON counterparts. When strict is set
// any other JSON literal is accepted too and a value that is not valid JSON
// is an error; otherwise such values are returned as strings.
func DecodeLiteral(raw string, strict bool) (any, error) {
	if isJSONNumber(raw) {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		if f, ok := parseFloat(raw); ok {
			return f, nil
		}
	}
	switch {
	case strings.EqualFold(raw, "true"):
		return true, nil
	case strings.EqualFold(raw, "false"):
		return false, nil
	case strings.EqualFold(raw, "null"):
		return nil, nil
	}
	if !strict {
		return raw, nil
	}
	return decodeJSON(raw)
}

// isJSONNumber reports whether raw follows the JSON number grammar:
// -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?. strconv alone would also
// take "+5", "007", "1.", hex, underscores, Inf and NaN.
func isJSONNumber(raw string) bool {
	i := 0
	if i < len(raw) && raw[i] == '-' {
		i++
	}
	switch {
	case i < len(raw) && raw[i] == '0':
		i++
	case i < len(raw) && raw[i] >= '1' && raw[i] <= '9':
		i = skipDigits(raw, i)
	default:
		return false
	}
	if i < len(raw) && raw[i] == '.' {
		j := skipDigits(raw, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}
	if i < len(raw) && (raw[i] == 'e' || raw[i] == 'E') {
		i++
		if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
			i++
		}
		j := skipDigits(raw, i)
		if j == i {
			return false
		}
		i = j
	}
	return i == len(raw)
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

// parseFloat parses a string already accepted by isJSONNumber; values
// outside the float64 range are rejected.
func parseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON literal")
	}
	return normalize(v), nil
}

// normalize replaces json.Number with int64 or float64 throughout v.
// Numbers outside the float64 range stay json.Number so they encode as
// written.
func normalize(v any) any {
	switch current := v.(type) {
	case json.Number:
		if i, err := current.Int64(); err == nil {
			return i
		}
		if f, err := current.Float64(); err == nil {
			return f
		}
		return current
	case map[string]any:
		for key, child := range current {
			current[key] = normalize(child)
		}
		return current
	case []any:
		for i, child := range current {
			current[i] = normalize(child)
		}
		return current
	default:
		return v
	}
}
