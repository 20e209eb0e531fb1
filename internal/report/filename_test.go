package report

import (
	"errors"
	"testing"
	"time"
)

func TestFormatFilename(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC)

	testCases := []struct {
		name     string
		pattern  string
		tokens   Tokens
		expected string
		wantErr  bool
	}{
		{
			name:     "default pattern",
			pattern:  "",
			tokens:   Tokens{Date: date, Project: "projet"},
			expected: "2026-01-02-projet-analysis-report",
		},
		{
			name:     "unsafe characters are replaced",
			pattern:  DefaultFilenamePattern,
			tokens:   Tokens{Date: date, Project: "my proj/x"},
			expected: "2026-01-02-my_proj_x-analysis-report",
		},
		{
			name:     "empty tokens leave no double dash",
			pattern:  "{project}-{branch}-{author}",
			tokens:   Tokens{Project: "projet", Author: "Lequal"},
			expected: "projet-Lequal",
		},
		{
			name:     "missing date is trimmed",
			pattern:  "{date}-{project}",
			tokens:   Tokens{Project: "projet"},
			expected: "projet",
		},
		{
			name:     "static pattern",
			pattern:  "report",
			tokens:   Tokens{},
			expected: "report",
		},
		{
			name:    "unknown token",
			pattern: "{version}-{project}",
			tokens:  Tokens{Project: "projet"},
			wantErr: true,
		},
		{
			name:    "uppercase token",
			pattern: "{Project}",
			tokens:  Tokens{Project: "projet"},
			wantErr: true,
		},
		{
			name:    "path separator",
			pattern: "out/{project}",
			tokens:  Tokens{Project: "projet"},
			wantErr: true,
		},
		{
			name:    "empty expansion",
			pattern: "{branch}",
			tokens:  Tokens{Project: "projet"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFilename(tc.pattern, tc.tokens)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidFilenamePattern) {
					t.Errorf("got error %v, expected ErrInvalidFilenamePattern", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}
