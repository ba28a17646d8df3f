package materialize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theory/jsonpath"
)

// Grammar selects how entry keys are split into segments and how values
// are decoded.
type Grammar int

const (
	// GrammarMarker splits keys on "." and treats a trailing "." as a
	// request to decode the value as a JSON literal.
	GrammarMarker Grammar = iota

	// GrammarAnchored expects "$" followed by dot-separated object keys and
	// type-sniffs every value.
	GrammarAnchored
)

// Anchor is the root token of the anchored grammar.
const Anchor = "$"

// ParseGrammar parses a grammar name as used in configuration.
// The empty string selects GrammarMarker.
func ParseGrammar(name string) (Grammar, error) {
	switch strings.ToLower(name) {
	case "marker", "":
		return GrammarMarker, nil
	case "anchored", "jsonpath":
		return GrammarAnchored, nil
	default:
		return GrammarMarker, fmt.Errorf("unknown path grammar: %s", name)
	}
}

// String returns the configuration name of the grammar.
func (g Grammar) String() string {
	switch g {
	case GrammarMarker:
		return "marker"
	case GrammarAnchored:
		return "anchored"
	default:
		return fmt.Sprintf("Grammar(%d)", int(g))
	}
}

// resolve splits key into object segments and decodes raw into the
// terminal value. No segments means the root itself.
func (g Grammar) resolve(key, raw string) ([]string, any, error) {
	switch g {
	case GrammarMarker:
		return resolveMarker(key, raw)
	case GrammarAnchored:
		return resolveAnchored(key, raw)
	default:
		return nil, nil, fmt.Errorf("unknown path grammar: %v", g)
	}
}

func resolveMarker(key, raw string) ([]string, any, error) {
	path, literal := strings.CutSuffix(key, ".")
	segments, err := splitSegments(key, path)
	if err != nil {
		return nil, nil, err
	}
	if !literal {
		return segments, raw, nil
	}

	value, err := DecodeLiteral(raw, true)
	if err != nil {
		return nil, nil, &PathError{Path: key, Kind: ErrMalformedLiteral, Cause: err}
	}
	return segments, value, nil
}

func resolveAnchored(key, raw string) ([]string, any, error) {
	if strings.ContainsAny(key, "[]*") {
		return nil, nil, selectorError(key)
	}

	anchor, rest, nested := strings.Cut(key, ".")
	if anchor != Anchor {
		return nil, nil, invalidPath(key, anchor, errors.New("path must start with the $ anchor followed by dotted member names"))
	}

	// Segments are plain object keys: "content-type", "0" and "a b" are
	// all valid even though JSONPath shorthand would reject them.
	var segments []string
	if nested {
		var err error
		segments, err = splitSegments(key, rest)
		if err != nil {
			return nil, nil, err
		}
	}

	// Sniffing never fails; unrecognised values stay strings.
	value, _ := DecodeLiteral(raw, false)
	return segments, value, nil
}

// selectorError explains a key that uses bracket or wildcard syntax. A key
// that is a well-formed JSONPath query is rejected as unsupported, anything
// else carries the parser's diagnosis.
func selectorError(key string) error {
	if _, err := jsonpath.Parse(key); err != nil {
		return invalidPath(key, "", fmt.Errorf("malformed JSONPath selector: %w", err))
	}
	return invalidPath(key, "", errors.New("JSONPath selectors are not supported, use dotted member names"))
}

func splitSegments(key, path string) ([]string, error) {
	if path == "" {
		return nil, invalidPath(key, "", errors.New("empty path"))
	}
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, invalidPath(key, "", errors.New("empty segment"))
		}
	}
	return segments, nil
}
