package model

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityNone, ""},
		{SeverityInfo, "INFO"},
		{SeverityMinor, "MINOR"},
		{SeverityMajor, "MAJOR"},
		{SeverityCritical, "CRITICAL"},
		{SeverityBlocker, "BLOCKER"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests parsing of upstream severity tokens.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	for _, s := range Severities() {
		got, err := ParseSeverity(s.String())
		if err != nil {
			t.Fatalf("ParseSeverity(%q) unexpected error: %v", s.String(), err)
		}
		if got != s {
			t.Errorf("ParseSeverity(%q) = %v, expected %v", s.String(), got, s)
		}
	}

	for _, token := range []string{"", "major", "HIGH", "UNKNOWN"} {
		if _, err := ParseSeverity(token); !errors.Is(err, ErrUnknownSeverity) {
			t.Errorf("ParseSeverity(%q) error = %v, expected ErrUnknownSeverity", token, err)
		}
	}
}

// TestSeverityOrdering tests that the numeric rank follows the upstream scale.
// INFO < MINOR < MAJOR < CRITICAL < BLOCKER
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	ordered := []Severity{SeverityNone, SeverityInfo, SeverityMinor, SeverityMajor, SeverityCritical, SeverityBlocker}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("%v should rank below %v", ordered[i-1], ordered[i])
		}
	}
}

// TestSeverityJSON tests that severities encode as their upstream token.
func TestSeverityJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		S Severity `json:"s"`
	}{SeverityCritical})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"s":"CRITICAL"}` {
		t.Errorf("got %s, expected %s", data, `{"s":"CRITICAL"}`)
	}

	var decoded struct {
		S Severity `json:"s"`
	}
	if err := json.Unmarshal([]byte(`{"s":"BOGUS"}`), &decoded); err == nil {
		t.Error("expected an error for an unknown severity")
	}
}

// TestParseIssueType tests parsing of upstream issue type tokens.
func TestParseIssueType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		token    string
		expected IssueType
		wantErr  bool
	}{
		{"BUG", TypeBug, false},
		{"VULNERABILITY", TypeVulnerability, false},
		{"CODE_SMELL", TypeCodeSmell, false},
		{"SECURITY_HOTSPOT", TypeSecurityHotspot, false},
		{"", 0, true},
		{"SMELL", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()
			got, err := ParseIssueType(tc.token)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownIssueType) {
					t.Errorf("got error %v, expected ErrUnknownIssueType", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}
