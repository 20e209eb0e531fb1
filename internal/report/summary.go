package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// SummaryWriter prints a plain text digest of a report, for terminals.
type SummaryWriter struct {
	output io.Writer

	// verbose lists every issue below the counts.
	verbose bool

	notAvailable string
}

// SummaryOption configures a SummaryWriter.
type SummaryOption func(*SummaryWriter)

// WithVerbose lists every issue in the summary.
func WithVerbose(verbose bool) SummaryOption {
	return func(w *SummaryWriter) {
		w.verbose = verbose
	}
}

// WithSummaryNotAvailable sets the text printed for absent statistics.
func WithSummaryNotAvailable(text string) SummaryOption {
	return func(w *SummaryWriter) {
		w.notAvailable = text
	}
}

// NewSummaryWriter creates a SummaryWriter printing to output.
func NewSummaryWriter(output io.Writer, opts ...SummaryOption) *SummaryWriter {
	w := &SummaryWriter{output: output, notAvailable: DefaultNotAvailable}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints the digest of r.
func (w *SummaryWriter) Write(r *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, r)
	w.writeCounts(&sb, r)
	w.writeStatistics(&sb, r)
	if w.verbose {
		w.writeIssues(&sb, r)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SummaryWriter) writeHeader(sb *strings.Builder, r *model.Report) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Project:      %s (%s)\n", r.ProjectName(), r.Project.Key)
	if r.Branch != "" {
		fmt.Fprintf(sb, "Branch:       %s\n", r.Branch)
	}
	if !r.Date.IsZero() {
		fmt.Fprintf(sb, "Date:         %s\n", r.Date.Format(DateLayout))
	}
	if r.QualityGate.Status != "" {
		fmt.Fprintf(sb, "Quality gate: %s\n", r.QualityGate.Status)
	}
	sb.WriteString("\n")
}

func (w *SummaryWriter) writeCounts(sb *strings.Builder, r *model.Report) {
	counts := r.IssueCountBySeverity()
	for _, s := range model.Severities() {
		fmt.Fprintf(sb, "  %-9s %d\n", s.String()+":", counts[s])
	}
	fmt.Fprintf(sb, "  %-9s %d issues\n\n", "TOTAL:", len(r.Issues))
}

func (w *SummaryWriter) writeStatistics(sb *strings.Builder, r *model.Report) {
	metrics := r.StatisticMetrics()
	if len(metrics) == 0 {
		return
	}
	for _, metric := range metrics {
		s := r.MetricStats[metric]
		fmt.Fprintf(sb, "  %-26s min %-8s max %s\n", label(metric), s.Min.String(w.notAvailable), s.Max.String(w.notAvailable))
	}
	sb.WriteString("\n")
}

func (w *SummaryWriter) writeIssues(sb *strings.Builder, r *model.Report) {
	for _, i := range r.Issues {
		location := i.Component
		if i.HasLine() {
			location = fmt.Sprintf("%s:%d", i.Component, i.Line)
		}
		fmt.Fprintf(sb, "  [%s] %s %s\n    %s\n", orDash(i.Severity.String()), i.Rule, location, i.Message)
	}
	sb.WriteString("\n")
}
