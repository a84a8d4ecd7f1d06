package graph

import (
	"errors"
	"fmt"
	"regexp"
)

// identRegex matches the identifier grammar for labels and relationship
// types: letters, digits, underscore, not starting with a digit.
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidIdentifier reports a label or relationship-type value that
// fails the identifier grammar.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Identifier is a validated label or relationship-type name. It is the
// only kind of string ever interpolated into Cypher text; everything else
// travels as a query parameter.
type Identifier struct {
	name string
}

// NewIdentifier validates raw against the identifier grammar.
func NewIdentifier(raw string) (Identifier, error) {
	if !identRegex.MatchString(raw) {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return Identifier{name: raw}, nil
}

// MustIdentifier is like NewIdentifier but panics on invalid input.
// Use only for compile-time-known names such as registered entity labels.
func MustIdentifier(raw string) Identifier {
	id, err := NewIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identifier) String() string {
	return id.name
}
