package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"key", "rule", "severity", "type", "component", "line", "message", "status", "project"}

// CSVExporter writes the issue list, one issue per row, in report order.
type CSVExporter struct{}

// NewCSVExporter creates a CSVExporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format implements Exporter.
func (e *CSVExporter) Format() Format {
	return FormatCSV
}

// Export implements Exporter.
func (e *CSVExporter) Export(data any, dir, filename string) (string, error) {
	r, err := reportPayload(FormatCSV, data)
	if err != nil {
		return "", err
	}
	return writeFile(dir, filename, FormatCSV, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write(csvHeader); err != nil {
			return err
		}
		for _, i := range r.Issues {
			line := ""
			if i.HasLine() {
				line = strconv.Itoa(i.Line)
			}
			record := []string{
				i.Key, i.Rule, i.Severity.String(), i.Type.String(),
				i.Component, line, i.Message, i.Status, i.Project,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}
