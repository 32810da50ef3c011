package imposition

import (
	"errors"
	"fmt"
)

// Error kinds reported by the imposition engine. Both are caller
// precondition violations and are never retried.
var (
	// ErrPageCountMismatch is returned when the source document does not have
	// exactly as many pages as the layout has slots.
	ErrPageCountMismatch = errors.New("page count mismatch")

	// ErrInvalidGeometry is returned for non-positive sizes, unsupported
	// rotations, missing source pages and malformed layouts.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// Error carries the context of an imposition failure. Kind is one of the
// sentinel errors above, so callers can use errors.Is.
type Error struct {
	Kind   error
	Op     string
	Slot   int // -1 when the failure is not tied to a slot
	Source int // -1 when the failure is not tied to a source page
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("imposition %s: %v", e.Op, e.Kind)
	if e.Slot >= 0 {
		msg += fmt.Sprintf(" (slot %d", e.Slot)
		if e.Source >= 0 {
			msg += fmt.Sprintf(", source page %d", e.Source+1)
		}
		msg += ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the error kind
func (e *Error) Unwrap() error {
	return e.Kind
}

func geometryError(op, format string, args ...interface{}) *Error {
	return &Error{
		Kind:   ErrInvalidGeometry,
		Op:     op,
		Slot:   -1,
		Source: -1,
		Detail: fmt.Sprintf(format, args...),
	}
}

// inSlot attaches slot and source information to an engine error.
func inSlot(err error, slot, source int) error {
	var ie *Error
	if errors.As(err, &ie) {
		cp := *ie
		cp.Slot = slot
		cp.Source = source
		return &cp
	}
	return err
}

// IsPageCountMismatch reports whether err was caused by a wrong page count
func IsPageCountMismatch(err error) bool {
	return errors.Is(err, ErrPageCountMismatch)
}

// IsInvalidGeometry reports whether err was caused by invalid geometry
func IsInvalidGeometry(err error) bool {
	return errors.Is(err, ErrInvalidGeometry)
}
