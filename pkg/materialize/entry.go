package materialize

import (
	"errors"
	"net/url"
	"strings"
)

// Entry is one path/value pair, typically one query parameter.
type Entry struct {
	Path  string
	Value string
}

// ParseQuery splits a raw query string into entries in the order they
// appear. Keys and values are percent-decoded with "+" meaning space.
// Empty parameters ("a=1&&b=2") are skipped. Repeated keys produce
// repeated entries.
func ParseQuery(rawQuery string) ([]Entry, error) {
	var entries []Entry
	for rawQuery != "" {
		var param string
		param, rawQuery, _ = strings.Cut(rawQuery, "&")
		if param == "" {
			continue
		}
		if strings.Contains(param, ";") {
			return nil, &QueryError{Param: param, Cause: errors.New("invalid semicolon separator in query")}
		}

		rawKey, rawValue, _ := strings.Cut(param, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, &QueryError{Param: param, Cause: err}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, &QueryError{Param: param, Cause: err}
		}

		entries = append(entries, Entry{Path: key, Value: value})
	}
	return entries, nil
}
