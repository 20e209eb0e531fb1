package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so that callers can use
// errors.Is() on them while users still get a readable message.
var (
	// ErrNoProject is returned when no project key is given.
	ErrNoProject = errors.New("no project specified: use --project")

	// ErrNoInput is returned when no directory of API dumps is given.
	ErrNoInput = errors.New("no input specified: use --input with a directory of SonarQube API dumps")

	// ErrInvalidServerURL is returned when the server URL is not an absolute
	// http or https URL.
	ErrInvalidServerURL = errors.New("invalid server URL: must be an absolute http or https URL")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrNoFormats is returned when the format list is empty.
	ErrNoFormats = errors.New("no output format specified")

	// ErrUnknownFormat is returned when a format name is not supported.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrInvalidDate is returned when the report date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

	// ErrInvalidFilenamePattern is returned when the filename pattern uses an
	// unknown token or expands to an empty name.
	ErrInvalidFilenamePattern = errors.New("invalid filename pattern")

	// ErrInvalidConcurrency is returned when the number of concurrent
	// projects is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
)
