package menu

import (
	"errors"
	"fmt"
)

// Structural violations that can be checked with errors.Is.
var (
	// ErrEmptyRow is returned when a row contains no buttons.
	ErrEmptyRow = errors.New("menu: empty button row")

	// ErrDuplicateLabel is returned when two buttons share a label.
	ErrDuplicateLabel = errors.New("menu: duplicate button label")

	// ErrDuplicateKey is returned when two buttons share a routing key.
	ErrDuplicateKey = errors.New("menu: duplicate routing key")
)

// StructureError wraps a structural violation with the menu it occurred
// in. Structure errors are fatal at construction and never recovered.
type StructureError struct {
	// Menu is the title of the offending menu.
	Menu string

	// Detail is the duplicated label or key, if applicable.
	Detail string

	// Err is the underlying violation.
	Err error
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("menu %q: %v: %q", e.Menu, e.Err, e.Detail)
	}
	return fmt.Sprintf("menu %q: %v", e.Menu, e.Err)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *StructureError) Unwrap() error {
	return e.Err
}
