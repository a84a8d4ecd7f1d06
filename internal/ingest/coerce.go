// Package ingest implements the bulk CSV ingestion pipeline: a schema-less
// importer that creates graph nodes and relationships whose label, property
// set, and property types are inferred per file and per row.
package ingest

import (
	"strconv"
	"strings"
)

// Kind identifies the concrete type carried by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// Value is a typed scalar coerced from raw CSV text. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

// Coerce converts a raw text value into a typed scalar using fixed
// precedence: integer, then float, then boolean, then string. The value is
// trimmed before the numeric and boolean checks, but the original untrimmed
// string is kept when the string branch wins. Empty input is the empty
// string, never a numeric zero or false. Coerce is total and deterministic.
func Coerce(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{Kind: KindString, Str: raw}
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: i}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Value{Kind: KindFloat, Float: f}
	}
	if strings.EqualFold(trimmed, "true") {
		return Value{Kind: KindBool, Bool: true}
	}
	if strings.EqualFold(trimmed, "false") {
		return Value{Kind: KindBool, Bool: false}
	}

	return Value{Kind: KindString, Str: raw}
}

// Native returns the scalar as the Go type the graph driver expects in a
// parameter map.
func (v Value) Native() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	default:
		return v.Str
	}
}

// String returns the raw string payload when Kind is KindString, otherwise
// a formatted rendering. Intended for log output.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// nativeProps converts a coerced property bag into a driver parameter map.
func nativeProps(props map[string]Value) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v.Native()
	}
	return out
}
