package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// JSONExporter writes an already serialized report. The payload must be a
// string; it is written verbatim, replacing any existing file.
type JSONExporter struct{}

// NewJSONExporter creates a JSONExporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format implements Exporter.
func (e *JSONExporter) Format() Format {
	return FormatJSON
}

// Export implements Exporter.
func (e *JSONExporter) Export(data any, dir, filename string) (string, error) {
	payload, ok := data.(string)
	if !ok {
		return "", fmt.Errorf("%w: json exporter needs a string, got %T", ErrUnsupportedPayloadKind, data)
	}
	return writeFile(dir, filename, FormatJSON, func(w io.Writer) error {
		_, err := io.WriteString(w, payload)
		return err
	})
}

// Serialize encodes a report as indented JSON, the payload JSONExporter expects.
func Serialize(r *model.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize report: %w", err)
	}
	return string(data) + "\n", nil
}
