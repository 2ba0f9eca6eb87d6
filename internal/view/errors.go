package view

import "fmt"

// Error reports an illegal narrowing of the configuration.
type Error struct {
	// Kind is the dimension that failed: "release state", "client",
	// "system", "subscription", "tenant" or "unit".
	Kind string
	Name string
	// Duplicate is set when Name is produced more than once instead of
	// being unknown.
	Duplicate bool
}

func (e *Error) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("configuration view: duplicate %s %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("configuration view: unknown %s %q", e.Kind, e.Name)
}
