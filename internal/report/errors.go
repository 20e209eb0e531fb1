package report

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPayloadKind is returned when an exporter receives data of
	// a kind it cannot render.
	ErrUnsupportedPayloadKind = errors.New("unsupported payload kind")

	// ErrTemplateStructure is returned when a template lacks a required part
	// or row marker.
	ErrTemplateStructure = errors.New("invalid template structure")

	// ErrTemplateNotFound is returned when a template file does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrUnknownFormat is returned when a format name is not supported.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrInvalidFilenamePattern is returned when a filename pattern uses an
	// unknown token or produces an empty name.
	ErrInvalidFilenamePattern = errors.New("invalid filename pattern")
)

// ExportError records which format failed.
type ExportError struct {
	Format Format
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
