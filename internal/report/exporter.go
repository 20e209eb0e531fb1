package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// DefaultNotAvailable is rendered in place of an absent statistic.
const DefaultNotAvailable = "N/A"

// Exporter renders report data into one file.
//
// Export writes <dir>/<filename><extension> and returns its path. The kind of
// data accepted depends on the exporter: JSONExporter takes the serialized
// report as a string, the others take a *model.Report. Any other kind fails
// with ErrUnsupportedPayloadKind.
type Exporter interface {
	Format() Format
	Export(data any, dir, filename string) (string, error)
}

// settings holds the options shared by every exporter.
type settings struct {
	logger       *slog.Logger
	notAvailable string
	template     string
	required     []string
	issuesSheet  string
	rawSheet     string
}

func newSettings(opts []Option) settings {
	s := settings{
		notAvailable: DefaultNotAvailable,
		required:     []string{CollectionIssues},
		issuesSheet:  DefaultIssuesSheet,
		rawSheet:     DefaultRawSheet,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Option configures an exporter. Options that do not apply to an exporter
// are ignored by it.
type Option func(*settings)

// WithLogger sets the logger of the exporter.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithNotAvailable sets the text rendered for absent statistics.
func WithNotAvailable(text string) Option {
	return func(s *settings) {
		s.notAvailable = text
	}
}

// WithTemplate sets the template file of a templated exporter. An empty path
// selects the built-in template.
func WithTemplate(path string) Option {
	return func(s *settings) {
		s.template = path
	}
}

// WithRequiredMarkers sets the collections a template must contain a row
// template for. The default requires CollectionIssues.
func WithRequiredMarkers(collections ...string) Option {
	return func(s *settings) {
		s.required = collections
	}
}

// WithSheets sets the spreadsheet sheet names holding the issue rows and the
// raw issue dump. An empty raw sheet name disables the raw dump.
func WithSheets(issues, raw string) Option {
	return func(s *settings) {
		s.issuesSheet = issues
		s.rawSheet = raw
	}
}

// New creates the exporter of format f.
func New(f Format, opts ...Option) (Exporter, error) {
	switch f {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatDOCX:
		return NewDOCXExporter(opts...), nil
	case FormatXLSX:
		return NewXLSXExporter(opts...), nil
	case FormatMarkdown:
		return NewMarkdownExporter(opts...), nil
	case FormatHTML:
		return NewHTMLExporter(opts...), nil
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatParquet:
		return NewParquetExporter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// NewSet creates one exporter per format.
func NewSet(formats []Format, opts ...Option) ([]Exporter, error) {
	exporters := make([]Exporter, 0, len(formats))
	for _, f := range formats {
		e, err := New(f, opts...)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, e)
	}
	return exporters, nil
}

func reportPayload(f Format, data any) (*model.Report, error) {
	r, ok := data.(*model.Report)
	if !ok || r == nil {
		return nil, fmt.Errorf("%w: %s exporter needs a report, got %T", ErrUnsupportedPayloadKind, f, data)
	}
	return r, nil
}

// writeFile writes <dir>/<filename><ext> through a temporary file renamed
// into place, so a failed export never leaves a truncated output behind.
func writeFile(dir, filename string, f Format, write func(w io.Writer) error) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: empty filename", ErrInvalidFilenamePattern)
	}
	path := filepath.Join(dir, filename+f.Extension())

	tmp, err := os.CreateTemp(dir, "."+filename+"-*"+f.Extension())
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // report files are meant to be shared
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}
