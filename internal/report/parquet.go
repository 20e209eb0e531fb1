package report

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// IssueRow is the Parquet schema of one issue.
type IssueRow struct {
	ProjectKey string    `parquet:"project_key,snappy"`
	ReportDate time.Time `parquet:"report_date,snappy"`
	Key        string    `parquet:"key,snappy"`
	Rule       string    `parquet:"rule,snappy"`
	// Severity is absent for security hotspots.
	Severity  *string `parquet:"severity,optional,snappy"`
	Type      string  `parquet:"type,snappy"`
	Component string  `parquet:"component,snappy"`
	// Line is absent for findings not attached to a line.
	Line    *int32 `parquet:"line,optional,snappy"`
	Message string `parquet:"message,snappy"`
	Status  string `parquet:"status,snappy"`
}

// IssueRows converts the issues of a report into Parquet rows.
func IssueRows(r *model.Report) []IssueRow {
	rows := make([]IssueRow, 0, len(r.Issues))
	for _, i := range r.Issues {
		row := IssueRow{
			ProjectKey: r.Project.Key,
			ReportDate: r.Date,
			Key:        i.Key,
			Rule:       i.Rule,
			Type:       i.Type.String(),
			Component:  i.Component,
			Message:    i.Message,
			Status:     i.Status,
		}
		if i.Severity.Valid() {
			s := i.Severity.String()
			row.Severity = &s
		}
		if i.HasLine() {
			line := int32(i.Line) //nolint:gosec // source lines fit in int32
			row.Line = &line
		}
		rows = append(rows, row)
	}
	return rows
}

// ParquetExporter writes the issue list as a Parquet file.
type ParquetExporter struct{}

// NewParquetExporter creates a ParquetExporter.
func NewParquetExporter() *ParquetExporter {
	return &ParquetExporter{}
}

// Format implements Exporter.
func (e *ParquetExporter) Format() Format {
	return FormatParquet
}

// Export implements Exporter.
func (e *ParquetExporter) Export(data any, dir, filename string) (string, error) {
	r, err := reportPayload(FormatParquet, data)
	if err != nil {
		return "", err
	}
	rows := IssueRows(r)
	return writeFile(dir, filename, FormatParquet, func(w io.Writer) error {
		writer := parquet.NewGenericWriter[IssueRow](w)
		if _, err := writer.Write(rows); err != nil {
			_ = writer.Close()
			return fmt.Errorf("write parquet rows: %w", err)
		}
		return writer.Close()
	})
}
