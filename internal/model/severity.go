package model

import (
	"errors"
	"fmt"
)

// ErrUnknownSeverity is returned when a severity token is outside the known set.
var ErrUnknownSeverity = errors.New("unknown severity")

// Severity is the closed set of SonarQube issue severities.
//
// The numeric value is the rank used for ordering: a higher value is more
// severe. SeverityNone is the zero value and is only legal for security
// hotspots, which the upstream server reports without a severity.
type Severity int

const (
	// SeverityNone marks a finding that carries no severity.
	SeverityNone Severity = iota
	// SeverityInfo is informational only.
	SeverityInfo
	// SeverityMinor has a minor impact on quality.
	SeverityMinor
	// SeverityMajor has a substantial impact on quality.
	SeverityMajor
	// SeverityCritical is a likely bug or a security flaw.
	SeverityCritical
	// SeverityBlocker must be fixed before release.
	SeverityBlocker
)

var severityNames = map[Severity]string{
	SeverityNone:     "",
	SeverityInfo:     "INFO",
	SeverityMinor:    "MINOR",
	SeverityMajor:    "MAJOR",
	SeverityCritical: "CRITICAL",
	SeverityBlocker:  "BLOCKER",
}

// String returns the upstream token of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Rank returns the ordering weight of the severity, higher is more severe.
func (s Severity) Rank() int {
	return int(s)
}

// Valid reports whether s is a real severity (not SeverityNone).
func (s Severity) Valid() bool {
	return s >= SeverityInfo && s <= SeverityBlocker
}

// ParseSeverity converts an upstream token such as "MAJOR" into a Severity.
func ParseSeverity(token string) (Severity, error) {
	for s, name := range severityNames {
		if s != SeverityNone && name == token {
			return s, nil
		}
	}
	return SeverityNone, fmt.Errorf("%w: %q", ErrUnknownSeverity, token)
}

// Severities returns every real severity from the most to the least severe.
func Severities() []Severity {
	return []Severity{SeverityBlocker, SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if s != SeverityNone && !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, int(s))
	}
	return []byte(severityNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = SeverityNone
		return nil
	}
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
