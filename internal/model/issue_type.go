package model

import (
	"errors"
	"fmt"
)

// ErrUnknownIssueType is returned when an issue type token is outside the known set.
var ErrUnknownIssueType = errors.New("unknown issue type")

// IssueType is the closed set of SonarQube issue types.
type IssueType int

const (
	// TypeBug is a coding error that will break behavior.
	TypeBug IssueType = iota + 1
	// TypeVulnerability is a security weakness.
	TypeVulnerability
	// TypeCodeSmell is a maintainability problem.
	TypeCodeSmell
	// TypeSecurityHotspot is security-sensitive code that needs a review.
	TypeSecurityHotspot
)

var issueTypeNames = map[IssueType]string{
	TypeBug:             "BUG",
	TypeVulnerability:   "VULNERABILITY",
	TypeCodeSmell:       "CODE_SMELL",
	TypeSecurityHotspot: "SECURITY_HOTSPOT",
}

// String returns the upstream token of the issue type.
func (t IssueType) String() string {
	if name, ok := issueTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether t belongs to the known set.
func (t IssueType) Valid() bool {
	_, ok := issueTypeNames[t]
	return ok
}

// ParseIssueType converts an upstream token such as "CODE_SMELL" into an IssueType.
func ParseIssueType(token string) (IssueType, error) {
	for t, name := range issueTypeNames {
		if name == token {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIssueType, token)
}

// IssueTypes returns every issue type in display order.
func IssueTypes() []IssueType {
	return []IssueType{TypeBug, TypeVulnerability, TypeCodeSmell, TypeSecurityHotspot}
}

// MarshalText implements encoding.TextMarshaler.
func (t IssueType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIssueType, int(t))
	}
	return []byte(issueTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *IssueType) UnmarshalText(text []byte) error {
	parsed, err := ParseIssueType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
