package graph

import (
	"errors"
	"testing"
)

func TestNewIdentifier(t *testing.T) {
	valid := []string{
		"Product",
		"BranchOffice",
		"BUY_ORDER",
		"_internal",
		"Route2",
		"a",
	}
	for _, raw := range valid {
		id, err := NewIdentifier(raw)
		if err != nil {
			t.Errorf("NewIdentifier(%q) error = %v, want nil", raw, err)
			continue
		}
		if id.String() != raw {
			t.Errorf("NewIdentifier(%q).String() = %q", raw, id.String())
		}
	}

	invalid := []string{
		"",
		"Pro-duct",
		"2Fast",
		"Has Space",
		"Drop;Table",
		"naïve",
		"Product`) DETACH DELETE (m",
	}
	for _, raw := range invalid {
		if _, err := NewIdentifier(raw); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("NewIdentifier(%q) error = %v, want ErrInvalidIdentifier", raw, err)
		}
	}
}

func TestMustIdentifier_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustIdentifier did not panic on invalid input")
		}
	}()
	MustIdentifier("not valid")
}
