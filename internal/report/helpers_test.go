package report

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cnescatlab/cnesreport/internal/model"
)

func testReport() *model.Report {
	return &model.Report{
		Project: model.Project{Key: "projet", Name: "Projet", Version: "1.0", QualityGateStatus: "ERROR"},
		Author:  "Lequal",
		Date:    time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
		Issues: []model.Issue{
			{Key: "i2", Rule: "squid:1234", Severity: model.SeverityBlocker, Type: model.TypeBug, Component: "src/A.java", Line: 3, Message: "Fix <this> & that", Status: "OPEN"},
			{Key: "i1", Rule: "squid:1234", Severity: model.SeverityMajor, Type: model.TypeCodeSmell, Component: "src/B.java", Line: 10, Message: "Rename", Status: "OPEN"},
			{Key: "i3", Rule: "squid:S4790", Type: model.TypeSecurityHotspot, Component: "src/C.java", Message: "Review hashing", Status: "TO_REVIEW"},
		},
		RawIssues: []model.RawIssue{
			{"key": model.StringValue("i1"), "line": model.NumberValue(10)},
			{"key": model.StringValue("i2"), "tags": model.ListValue(model.StringValue("cwe"))},
		},
		Facets: []model.Facet{
			{Property: "rules", Values: []model.FacetValue{{Value: "squid:1234", Count: 2}}},
		},
		QualityProfiles: []model.QualityProfile{
			{
				ProfileMetaData: model.ProfileMetaData{Key: "BG", Name: "BG", Language: "java", ActiveRuleCount: 1},
				Rules: []model.Rule{
					{Key: "squid:1234", Name: "Rule name", HTMLDesc: "<p>Do <b>not</b> do this</p>", Severity: model.SeverityMajor, Type: model.TypeBug},
				},
			},
		},
		QualityGate: model.QualityGate{
			Name:   "Sonar way",
			Status: "ERROR",
			Conditions: []model.Condition{
				{Metric: "coverage", Comparator: "LT", ErrorThreshold: "85", ActualValue: "82.5", Status: "ERROR"},
			},
		},
		Measures: []model.Measure{{Metric: "ncloc", Value: "1234"}, {Metric: "coverage", Value: "82.5"}},
		MetricStats: map[string]model.MetricStatistic{
			"ncloc":    {Metric: "ncloc", Min: model.Some(10), Max: model.Some(120)},
			"coverage": {Metric: "coverage"},
		},
	}
}

func emptyReport() *model.Report {
	return &model.Report{Project: model.Project{Key: "empty", Name: "Empty"}}
}

// readZipEntries returns the uncompressed content of every entry of an archive.
func readZipEntries(t *testing.T, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = data
	}
	return entries
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
