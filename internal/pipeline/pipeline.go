package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/cnescatlab/cnesreport/internal/archive"
	"github.com/cnescatlab/cnesreport/internal/model"
	"github.com/cnescatlab/cnesreport/internal/report"
)

// Request describes one export run.
type Request struct {
	// Formats are produced in this order.
	Formats []report.Format

	// OutputDir receives the outputs, or is the base of the archive name
	// when Archive is set.
	OutputDir string

	// Filename is the base name of every output, without extension.
	Filename string

	// Archive bundles the outputs into <OutputDir>.zip instead of writing
	// them into OutputDir.
	Archive bool

	// ArchivePath overrides the location of the archive.
	ArchivePath string

	// ExportOptions configure the exporters created for this request, on
	// top of the orchestrator's own options. Registered exporters ignore them.
	ExportOptions map[report.Format][]report.Option
}

// Result lists what an export run produced.
type Result struct {
	// Outputs maps each produced format to its file. In archive mode the
	// value is the entry name inside the archive.
	Outputs map[report.Format]string

	// Failures maps each failed format to its *report.ExportError.
	Failures map[report.Format]error

	// Archive is the path of the archive, when one was written.
	Archive string

	// Digest identifies the archive content.
	Digest archive.Digest

	order []report.Format
}

func newResult() *Result {
	return &Result{
		Outputs:  make(map[report.Format]string),
		Failures: make(map[report.Format]error),
	}
}

// Succeeded reports whether format f was produced.
func (r *Result) Succeeded(f report.Format) bool {
	_, ok := r.Outputs[f]
	return ok
}

// Err joins the failures in request order, or returns nil when every
// exporter succeeded.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.order {
		if err, ok := r.Failures[f]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Result) fail(f report.Format, err error) {
	var exportErr *report.ExportError
	if !errors.As(err, &exportErr) {
		err = &report.ExportError{Format: f, Err: err}
	}
	r.Failures[f] = err
}

// Orchestrator runs exporters over a report.
type Orchestrator struct {
	// logger is used for structured logging during execution.
	logger *slog.Logger

	// exporters replace the default exporter of their format.
	exporters map[report.Format]report.Exporter

	// exportOptions configure the default exporters.
	exportOptions []report.Option
}

// Option is a function that configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger for the orchestrator.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithExporters registers exporters, replacing the default exporter of
// each one's format.
func WithExporters(exporters ...report.Exporter) Option {
	return func(o *Orchestrator) {
		for _, e := range exporters {
			o.exporters[e.Format()] = e
		}
	}
}

// WithExportOptions configures the exporters the orchestrator creates
// itself, for instance their templates.
func WithExportOptions(opts ...report.Option) Option {
	return func(o *Orchestrator) {
		o.exportOptions = append(o.exportOptions, opts...)
	}
}

// New creates a new Orchestrator with the given options.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		exporters: make(map[report.Format]report.Exporter),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Run exports r in every requested format.
//
// Exporter failures are collected in the Result and do not make Run fail.
// The returned error reports an invalid request, a cancelled context or a
// failure of the archive step. The working directory of an archive run is
// removed whatever the outcome.
func (o *Orchestrator) Run(ctx context.Context, r *model.Report, req Request) (*Result, error) {
	if r == nil {
		return nil, ErrNoReport
	}
	formats := uniqueFormats(req.Formats)
	if len(formats) == 0 {
		return nil, ErrNoFormats
	}
	if req.Filename == "" {
		return nil, fmt.Errorf("%w: empty filename", report.ErrInvalidFilenamePattern)
	}

	dir := req.OutputDir
	if req.Archive {
		work, err := os.MkdirTemp("", "cnesreport-*")
		if err != nil {
			return nil, fmt.Errorf("create working directory: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(work); err != nil {
				o.logger.Warn("failed to remove working directory", "dir", work, "error", err)
			}
		}()
		dir = work
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	result := newResult()
	var payload string
	serialized := false

	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("export cancelled", "format", f, "reason", err)
			return result, err
		}
		result.order = append(result.order, f)

		e, err := o.exporter(f, req.ExportOptions[f])
		if err != nil {
			result.fail(f, err)
			continue
		}

		var data any = r
		if f == report.FormatJSON {
			if !serialized {
				payload, err = report.Serialize(r)
				if err != nil {
					result.fail(f, err)
					continue
				}
				serialized = true
			}
			data = payload
		}

		o.logger.Debug("exporting", "format", f, "project", r.Project.Key)
		path, err := e.Export(data, dir, req.Filename)
		if err != nil {
			o.logger.Error("export failed", "format", f, "project", r.Project.Key, "error", err)
			result.fail(f, err)
			continue
		}
		o.logger.Info("export completed", "format", f, "file", path)
		result.Outputs[f] = path
	}

	if !req.Archive {
		return result, nil
	}
	if len(result.Outputs) == 0 {
		return result, fmt.Errorf("%w: %w", ErrNothingExported, result.Err())
	}

	dst := req.ArchivePath
	if dst == "" {
		dst = filepath.Clean(req.OutputDir) + ".zip"
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return result, fmt.Errorf("create archive directory: %w", err)
	}
	digest, err := archive.Pack(dir, dst)
	if err != nil {
		return result, fmt.Errorf("archive outputs: %w", err)
	}
	for f, path := range result.Outputs {
		result.Outputs[f] = filepath.Base(path)
	}
	result.Archive = dst
	result.Digest = digest
	o.logger.Info("archive written", "file", dst, "digest", digest.String())

	return result, nil
}

func (o *Orchestrator) exporter(f report.Format, extra []report.Option) (report.Exporter, error) {
	if e, ok := o.exporters[f]; ok {
		return e, nil
	}
	return report.New(f, append(slices.Clip(o.exportOptions), extra...)...)
}

// uniqueFormats drops repeated formats, keeping the first occurrence.
func uniqueFormats(formats []report.Format) []report.Format {
	seen := make(map[report.Format]bool, len(formats))
	out := make([]report.Format, 0, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
