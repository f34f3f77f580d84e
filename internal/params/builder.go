// internal/params/builder.go
//
// Per-page parameter builders.
//
// Each page type owns a small struct of the fields it actually reads
// and implements Builder on it.  No reflection, no tags; a Build method
// is a handful of explicit Get calls plus whatever coercion the page
// needs.  Handlers call params.Build(p, &form) and work with typed
// fields from there.

package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder maps the merged string map into one page's typed parameters.
// Implementations validate as they copy and return the first problem
// found.
type Builder interface {
	Build(p *Params) error
}

// Build runs b against p.  Exists so call sites read uniformly.
func Build(p *Params, b Builder) error { return b.Build(p) }

// Helpers shared by page builders.

// Int parses the named field as a base-10 integer.
func Int(p *Params, key string) (int, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("field %q is not a number", key)
	}
	return n, nil
}

// List splits a comma-joined array field back into its elements.  An
// absent or empty field yields nil.
func List(p *Params, key string) []string {
	v, ok := p.Lookup(key)
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// Require returns the named field or an error when absent or blank.
func Require(p *Params, key string) (string, error) {
	v, ok := p.Lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing field %q", key)
	}
	return v, nil
}
