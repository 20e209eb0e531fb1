package report

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnescatlab/cnesreport/internal/model"
)

func TestMarkdownExporter(t *testing.T) {
	t.Parallel()

	path, err := NewMarkdownExporter().Export(testReport(), t.TempDir(), "report")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "report.md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(data)

	for _, want := range []string{
		"# Projet analysis report",
		"## Quality Gate",
		"Quality gate Sonar way failed.",
		"```mermaid",
		"squid:1234",
		"SECURITY_HOTSPOT",
		"Do not do this",
		"Ncloc",
		DefaultNotAvailable,
	} {
		assert.Contains(t, md, want)
	}
}

func TestMarkdownExporterEmptyReport(t *testing.T) {
	t.Parallel()

	path, err := NewMarkdownExporter().Export(emptyReport(), t.TempDir(), "report")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "No issues detected.")
	assert.Contains(t, md, "No quality gate status available.")
	assert.NotContains(t, md, "mermaid")
}

func TestMarkdownExporterCapsIssues(t *testing.T) {
	t.Parallel()

	r := emptyReport()
	for i := range maxMarkdownIssues + 1 {
		r.Issues = append(r.Issues, model.Issue{Key: "k", Rule: "r", Type: model.TypeBug, Severity: model.SeverityMinor, Line: i + 1})
	}
	path, err := NewMarkdownExporter().Export(r, t.TempDir(), "report")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Only the first 500 of 501 issues are listed.")
}

func TestHTMLExporter(t *testing.T) {
	t.Parallel()

	path, err := NewHTMLExporter().Export(testReport(), t.TempDir(), "report")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "report.html"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(data)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Projet analysis report</title>")
	assert.Contains(t, page, "<h1")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "squid:1234")
	assert.NotContains(t, page, "| Rule |")
}
