package source

import "errors"

var (
	// ErrMissingDump is returned when a required document is absent.
	ErrMissingDump = errors.New("missing api dump")

	// ErrUpstreamAuthentication is returned when the server refused the
	// credentials used to produce a document.
	ErrUpstreamAuthentication = errors.New("upstream authentication failed")

	// ErrUpstreamRequest is returned when a document holds any other server error.
	ErrUpstreamRequest = errors.New("upstream request failed")

	// ErrMalformedDump is returned when a document is not the expected JSON shape.
	ErrMalformedDump = errors.New("malformed api dump")
)
