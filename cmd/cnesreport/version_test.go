package main

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	v := getVersion()
	// Should return something (either ldflags value, build info, or "(devel)")
	if v == "" {
		t.Error("getVersion() returned empty string")
	}
}

func TestGetCommit(t *testing.T) {
	t.Parallel()

	c := getCommit()
	// Should return something (either ldflags value, vcs.revision, or "unknown")
	if c == "" {
		t.Error("getCommit() returned empty string")
	}
}

func TestGetDate(t *testing.T) {
	t.Parallel()

	d := getDate()
	// Should return something (either ldflags value, vcs.time, or "unknown")
	if d == "" {
		t.Error("getDate() returned empty string")
	}
}

func TestResolveBuildInfo(t *testing.T) {
	t.Parallel()

	recorded := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/cnescatlab/cnesreport", Version: "v1.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs", Value: "git"},
			{Key: "vcs.revision", Value: "0123456789abcdef0123456789abcdef01234567"},
			{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
		},
	}

	testCases := []struct {
		name     string
		ldflags  [3]string
		info     *debug.BuildInfo
		expected buildInfo
	}{
		{
			name:     "no information",
			expected: buildInfo{version: "(devel)", commit: "unknown", date: "unknown"},
		},
		{
			name:     "build info only",
			info:     recorded,
			expected: buildInfo{version: "v1.3.0", commit: "0123456", date: "2026-03-01T10:00:00Z"},
		},
		{
			name:     "ldflags override build info",
			ldflags:  [3]string{"4.1.0", "abc1234", "2026-04-01"},
			info:     recorded,
			expected: buildInfo{version: "4.1.0", commit: "abc1234", date: "2026-04-01"},
		},
		{
			name:     "partial ldflags",
			ldflags:  [3]string{"4.1.0", "", ""},
			info:     recorded,
			expected: buildInfo{version: "4.1.0", commit: "0123456", date: "2026-03-01T10:00:00Z"},
		},
		{
			name:     "short revision kept",
			info:     &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}},
			expected: buildInfo{version: "(devel)", commit: "abc", date: "unknown"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := resolveBuildInfo(tc.ldflags[0], tc.ldflags[1], tc.ldflags[2], tc.info)
			if got != tc.expected {
				t.Errorf("got %+v, expected %+v", got, tc.expected)
			}
		})
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %q", cmd.Use)
		}
	})

	t.Run("command has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected Short to be non-empty")
		}
	})

	t.Run("command outputs version info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "cnesreport version") {
			t.Errorf("expected output to contain 'cnesreport version', got %q", output)
		}
		if !strings.Contains(output, "commit:") {
			t.Errorf("expected output to contain 'commit:', got %q", output)
		}
		if !strings.Contains(output, "built:") {
			t.Errorf("expected output to contain 'built:', got %q", output)
		}
	})
}
