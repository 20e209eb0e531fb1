package adapter

import (
	"errors"
	"fmt"
)

// ErrInvalidDataKind is returned when a raw record cannot be coerced into
// the report model: an unknown enum token, a missing identifier or a value
// of the wrong kind.
var ErrInvalidDataKind = errors.New("invalid data kind")

// RecordError locates the record that made assembly fail.
// It matches ErrInvalidDataKind with errors.Is.
type RecordError struct {
	// Kind is the record family, for example "issue" or "facet".
	Kind string
	// Index is the position of the record in its input list, or -1 for
	// singleton records such as the project.
	Index int
	// Field is the offending field, if known.
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	where := e.Kind
	if e.Index >= 0 {
		where = fmt.Sprintf("%s #%d", e.Kind, e.Index)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: field %q: %v", ErrInvalidDataKind, where, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrInvalidDataKind, where, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *RecordError) Unwrap() []error {
	return []error{ErrInvalidDataKind, e.Err}
}

var (
	errMissing   = errors.New("missing required value")
	errDuplicate = errors.New("duplicate value")
)

func recordErr(kind string, index int, field string, err error) error {
	return &RecordError{Kind: kind, Index: index, Field: field, Err: err}
}
