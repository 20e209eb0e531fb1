package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultFilenamePattern names the outputs of a run after its date and project.
const DefaultFilenamePattern = "{date}-{project}-analysis-report"

// Tokens are the values a filename pattern can reference.
type Tokens struct {
	Date    time.Time
	Project string
	Branch  string
	Author  string
}

var (
	tokenPattern  = regexp.MustCompile(`\{([a-z]*)\}`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatedDash  = regexp.MustCompile(`-{2,}`)
	allowedTokens = map[string]bool{"date": true, "project": true, "branch": true, "author": true}
)

// FormatFilename expands a pattern such as "{date}-{project}-analysis-report".
// Characters outside [A-Za-z0-9._-] are replaced by "_" in substituted
// values; an empty token leaves no double dash behind.
func FormatFilename(pattern string, t Tokens) (string, error) {
	if pattern == "" {
		pattern = DefaultFilenamePattern
	}
	var unknown []string
	name := tokenPattern.ReplaceAllStringFunc(pattern, func(m string) string {
		token := m[1 : len(m)-1]
		if !allowedTokens[token] {
			unknown = append(unknown, m)
			return m
		}
		switch token {
		case "date":
			if t.Date.IsZero() {
				return ""
			}
			return t.Date.Format(DateLayout)
		case "project":
			return sanitize(t.Project)
		case "branch":
			return sanitize(t.Branch)
		default:
			return sanitize(t.Author)
		}
	})
	if len(unknown) > 0 {
		return "", fmt.Errorf("%w: unknown token %s", ErrInvalidFilenamePattern, strings.Join(unknown, ", "))
	}
	if strings.ContainsAny(name, `/\{}`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilenamePattern, pattern)
	}
	name = strings.Trim(repeatedDash.ReplaceAllString(name, "-"), "-")
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q expands to an empty name", ErrInvalidFilenamePattern, pattern)
	}
	return name, nil
}

func sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}
