package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cnescatlab/cnesreport/internal/database"
)

// runHistoryArgs executes the history command and returns its standard output.
func runHistoryArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// seedHistory records runs into a new database in dir.
func seedHistory(t *testing.T, dir string, runs ...*database.Run) {
	t.Helper()

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	for _, run := range runs {
		if err := db.SaveRun(context.Background(), run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
}

// TestRunHistoryCmd tests the history listing.
func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	seedHistory(t, dir,
		&database.Run{ProjectKey: "alpha", Timestamp: base, FormatsOK: []string{"docx", "json"}, IssueCount: 4},
		&database.Run{
			ProjectKey:    "beta",
			Branch:        "develop",
			Timestamp:     base.Add(time.Hour),
			FormatsOK:     []string{"json"},
			FormatsFailed: map[string]string{"xlsx": "template structure"},
			Digest:        "0123456789abcdef0123",
		},
		&database.Run{ProjectKey: "alpha", Timestamp: base.Add(2 * time.Hour), FormatsOK: []string{"md"}},
	)

	// Subtests share one database file and run in sequence.
	t.Run("lists every run", func(t *testing.T) {
		out, err := runHistoryArgs(t, "--history-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"alpha", "beta", "develop", "xlsx", "0123456789ab"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output: %s", want, out)
			}
		}
		if strings.Index(out, "md") > strings.Index(out, "docx,json") {
			t.Errorf("expected the most recent run first: %s", out)
		}
	})

	t.Run("filters by project", func(t *testing.T) {
		out, err := runHistoryArgs(t, "--history-dir", dir, "-p", "beta")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out, "alpha") || !strings.Contains(out, "beta") {
			t.Errorf("expected only beta: %s", out)
		}
	})

	t.Run("limits the listing", func(t *testing.T) {
		out, err := runHistoryArgs(t, "--history-dir", dir, "-n", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "1 of 3 runs shown") {
			t.Errorf("expected a truncation notice: %s", out)
		}
	})

	t.Run("lists projects", func(t *testing.T) {
		out, err := runHistoryArgs(t, "--history-dir", dir, "--projects")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Projects (2)") {
			t.Errorf("expected two projects: %s", out)
		}
	})

	t.Run("empty history", func(t *testing.T) {
		out, err := runHistoryArgs(t, "--history-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No recorded runs.") {
			t.Errorf("unexpected output: %s", out)
		}
	})
}
