package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cnescatlab/cnesreport/internal/archive"
	"github.com/cnescatlab/cnesreport/internal/model"
	"github.com/cnescatlab/cnesreport/internal/report"
)

// stubExporter is a test helper that implements report.Exporter.
type stubExporter struct {
	format report.Format
	err    error
}

func (s *stubExporter) Format() report.Format {
	return s.format
}

func (s *stubExporter) Export(_ any, dir, filename string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	path := filepath.Join(dir, filename+s.format.Extension())
	return path, os.WriteFile(path, []byte("stub"), 0o600)
}

func newTestReport() *model.Report {
	return &model.Report{
		Project: model.Project{Key: "projet", Name: "Projet"},
		Date:    time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
		Issues: []model.Issue{
			{Key: "i1", Rule: "squid:1234", Severity: model.SeverityBlocker, Type: model.TypeBug, Component: "src/A.java", Line: 3},
			{Key: "i2", Rule: "squid:1234", Severity: model.SeverityMajor, Type: model.TypeCodeSmell, Component: "src/B.java"},
		},
	}
}

// brokenXLSXTemplate writes a workbook whose issue sheet has no row template.
func brokenXLSXTemplate(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", report.DefaultIssuesSheet); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStr(report.DefaultIssuesSheet, "A1", "Rule"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

var threeFormats = []report.Format{report.FormatJSON, report.FormatDOCX, report.FormatXLSX}

// TestOrchestratorRun tests a run writing into the output directory.
func TestOrchestratorRun(t *testing.T) {
	t.Parallel()

	t.Run("writes every requested format", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out")
		r := newTestReport()
		result, err := New().Run(context.Background(), r, Request{
			Formats:   threeFormats,
			OutputDir: out,
			Filename:  "report",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := result.Err(); err != nil {
			t.Fatalf("unexpected failures: %v", err)
		}
		for _, f := range threeFormats {
			expected := filepath.Join(out, "report"+f.Extension())
			if got := result.Outputs[f]; got != expected {
				t.Errorf("%s: got %q, expected %q", f, got, expected)
			}
			if _, err := os.Stat(expected); err != nil {
				t.Errorf("%s: %v", f, err)
			}
		}

		payload, err := report.Serialize(r)
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(out, "report.json"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != payload {
			t.Error("json output differs from the serialized report")
		}
	})

	t.Run("isolates a failing exporter", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		o := New(WithExporters(report.NewXLSXExporter(report.WithTemplate(brokenXLSXTemplate(t)))))
		result, err := o.Run(context.Background(), newTestReport(), Request{
			Formats:   threeFormats,
			OutputDir: out,
			Filename:  "report",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !result.Succeeded(report.FormatJSON) || !result.Succeeded(report.FormatDOCX) {
			t.Errorf("expected json and docx to succeed, got %v", result.Outputs)
		}
		if result.Succeeded(report.FormatXLSX) {
			t.Error("expected xlsx to fail")
		}

		err = result.Failures[report.FormatXLSX]
		if !errors.Is(err, report.ErrTemplateStructure) {
			t.Errorf("got %v, expected ErrTemplateStructure", err)
		}
		var exportErr *report.ExportError
		if !errors.As(result.Err(), &exportErr) || exportErr.Format != report.FormatXLSX {
			t.Errorf("got %v, expected an xlsx ExportError", result.Err())
		}
		if _, err := os.Stat(filepath.Join(out, "report.xlsx")); !errors.Is(err, os.ErrNotExist) {
			t.Error("failed export left a file behind")
		}
	})

	t.Run("applies request export options to its format only", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		missing := filepath.Join(out, "missing.xlsx")
		result, err := New().Run(context.Background(), newTestReport(), Request{
			Formats:   threeFormats,
			OutputDir: out,
			Filename:  "report",
			ExportOptions: map[report.Format][]report.Option{
				report.FormatXLSX: {report.WithTemplate(missing)},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(result.Failures[report.FormatXLSX], report.ErrTemplateNotFound) {
			t.Errorf("got %v, expected ErrTemplateNotFound", result.Failures[report.FormatXLSX])
		}
		if !result.Succeeded(report.FormatDOCX) {
			t.Errorf("expected docx to keep the built-in template, got %v", result.Failures[report.FormatDOCX])
		}
	})

	t.Run("exports a repeated format once", func(t *testing.T) {
		t.Parallel()

		o := New(WithExporters(report.NewXLSXExporter(report.WithTemplate(brokenXLSXTemplate(t)))))
		result, err := o.Run(context.Background(), newTestReport(), Request{
			Formats:   []report.Format{report.FormatXLSX, report.FormatJSON, report.FormatXLSX, report.FormatJSON},
			OutputDir: t.TempDir(),
			Filename:  "report",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := []report.Format{report.FormatXLSX, report.FormatJSON}
		if !slices.Equal(result.order, expected) {
			t.Errorf("got order %v, expected %v", result.order, expected)
		}
		joined, ok := result.Err().(interface{ Unwrap() []error })
		if !ok {
			t.Fatalf("expected joined errors, got %v", result.Err())
		}
		if n := len(joined.Unwrap()); n != 1 {
			t.Errorf("got %d failures, expected 1", n)
		}
		if !result.Succeeded(report.FormatJSON) {
			t.Error("expected json to succeed")
		}
	})

	t.Run("reports an unknown format as a failure", func(t *testing.T) {
		t.Parallel()

		result, err := New().Run(context.Background(), newTestReport(), Request{
			Formats:   []report.Format{"pdf", report.FormatCSV},
			OutputDir: t.TempDir(),
			Filename:  "report",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(result.Failures["pdf"], report.ErrUnknownFormat) {
			t.Errorf("got %v, expected ErrUnknownFormat", result.Failures["pdf"])
		}
		if !result.Succeeded(report.FormatCSV) {
			t.Error("expected csv to succeed")
		}
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name     string
			report   *model.Report
			request  Request
			expected error
		}{
			{
				name:     "no report",
				request:  Request{Formats: threeFormats, OutputDir: t.TempDir(), Filename: "report"},
				expected: ErrNoReport,
			},
			{
				name:     "no format",
				report:   newTestReport(),
				request:  Request{OutputDir: t.TempDir(), Filename: "report"},
				expected: ErrNoFormats,
			},
			{
				name:     "no filename",
				report:   newTestReport(),
				request:  Request{Formats: threeFormats, OutputDir: t.TempDir()},
				expected: report.ErrInvalidFilenamePattern,
			},
		}
		for _, tc := range testCases {
			_, err := New().Run(context.Background(), tc.report, tc.request)
			if !errors.Is(err, tc.expected) {
				t.Errorf("%s: got %v, expected %v", tc.name, err, tc.expected)
			}
		}
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := t.TempDir()
		result, err := New().Run(ctx, newTestReport(), Request{
			Formats:   threeFormats,
			OutputDir: out,
			Filename:  "report",
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, expected context.Canceled", err)
		}
		if len(result.Outputs) != 0 {
			t.Errorf("expected no output, got %v", result.Outputs)
		}
	})
}

// TestOrchestratorArchive tests runs bundling their outputs.
func TestOrchestratorArchive(t *testing.T) {
	t.Parallel()

	t.Run("orders entries lexicographically", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		out := filepath.Join(base, "out")
		result, err := New().Run(context.Background(), newTestReport(), Request{
			Formats:   threeFormats,
			OutputDir: out,
			Filename:  "report",
			Archive:   true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Archive != out+".zip" {
			t.Errorf("got %q, expected %q", result.Archive, out+".zip")
		}
		if result.Digest == "" {
			t.Error("expected a digest")
		}
		if got := result.Outputs[report.FormatJSON]; got != "report.json" {
			t.Errorf("got %q, expected the entry name", got)
		}

		names, err := archive.Entries(result.Archive)
		if err != nil {
			t.Fatal(err)
		}
		expected := []string{"report.docx", "report.json", "report.xlsx"}
		if !slices.Equal(names, expected) {
			t.Errorf("got %v, expected %v", names, expected)
		}
		if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
			t.Error("archive mode must not create the output directory")
		}
	})

	t.Run("honours the archive path", func(t *testing.T) {
		t.Parallel()

		dst := filepath.Join(t.TempDir(), "nested", "bundle.zip")
		result, err := New().Run(context.Background(), newTestReport(), Request{
			Formats:     []report.Format{report.FormatCSV},
			OutputDir:   t.TempDir(),
			Filename:    "report",
			Archive:     true,
			ArchivePath: dst,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Archive != dst {
			t.Errorf("got %q, expected %q", result.Archive, dst)
		}
	})

	t.Run("is reproducible", func(t *testing.T) {
		t.Parallel()

		run := func() archive.Digest {
			result, err := New().Run(context.Background(), newTestReport(), Request{
				Formats:   []report.Format{report.FormatJSON, report.FormatCSV, report.FormatMarkdown},
				OutputDir: filepath.Join(t.TempDir(), "out"),
				Filename:  "report",
				Archive:   true,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return result.Digest
		}
		if first, second := run(), run(); first != second {
			t.Errorf("digests differ: %s and %s", first, second)
		}
	})
}

// TestOrchestratorRemovesWorkingDirectory checks the working directory is
// gone after success and after every kind of failure.
func TestOrchestratorRemovesWorkingDirectory(t *testing.T) {
	base := t.TempDir()
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		opts     []Option
		request  Request
		expected error
	}{
		{
			name: "success",
			request: Request{
				Formats:   threeFormats,
				OutputDir: filepath.Join(base, "first"),
				Filename:  "report",
				Archive:   true,
			},
		},
		{
			name: "every exporter fails",
			opts: []Option{WithExporters(&stubExporter{format: report.FormatJSON, err: errors.New("boom")})},
			request: Request{
				Formats:   []report.Format{report.FormatJSON},
				OutputDir: filepath.Join(base, "second"),
				Filename:  "report",
				Archive:   true,
			},
			expected: ErrNothingExported,
		},
		{
			name: "archive step fails",
			opts: []Option{WithExporters(&stubExporter{format: report.FormatJSON})},
			request: Request{
				Formats:     []report.Format{report.FormatJSON},
				OutputDir:   filepath.Join(base, "third"),
				Filename:    "report",
				Archive:     true,
				ArchivePath: filepath.Join(blocker, "bundle.zip"),
			},
			expected: errors.New("any"),
		},
	}

	for _, tc := range testCases {
		_, err := New(tc.opts...).Run(context.Background(), newTestReport(), tc.request)
		switch {
		case tc.expected == nil && err != nil:
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		case tc.expected != nil && err == nil:
			t.Errorf("%s: expected an error", tc.name)
		case errors.Is(tc.expected, ErrNothingExported) && !errors.Is(err, ErrNothingExported):
			t.Errorf("%s: got %v, expected ErrNothingExported", tc.name, err)
		}

		entries, err := os.ReadDir(tmp)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("%s: working directory left behind: %v", tc.name, entries)
		}
	}
}
