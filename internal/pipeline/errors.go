package pipeline

import "errors"

var (
	// ErrNoReport is returned when Run is called without a report.
	ErrNoReport = errors.New("no report to export")

	// ErrNoFormats is returned when a request names no output format.
	ErrNoFormats = errors.New("no output format requested")

	// ErrNothingExported is returned when an archive is requested but every
	// exporter failed.
	ErrNothingExported = errors.New("no output produced")
)
