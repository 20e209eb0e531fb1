package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/cnescatlab/cnesreport/internal/model"
)

// maxMarkdownIssues caps the issue table; the full list is in the other formats.
const maxMarkdownIssues = 500

// MarkdownExporter writes a report summary in GitHub flavored Markdown.
type MarkdownExporter struct {
	settings
}

// NewMarkdownExporter creates a MarkdownExporter.
func NewMarkdownExporter(opts ...Option) *MarkdownExporter {
	return &MarkdownExporter{settings: newSettings(opts)}
}

// Format implements Exporter.
func (e *MarkdownExporter) Format() Format {
	return FormatMarkdown
}

// Export implements Exporter.
func (e *MarkdownExporter) Export(data any, dir, filename string) (string, error) {
	r, err := reportPayload(FormatMarkdown, data)
	if err != nil {
		return "", err
	}
	return writeFile(dir, filename, FormatMarkdown, func(w io.Writer) error {
		return e.render(w, r)
	})
}

func (e *MarkdownExporter) render(w io.Writer, r *model.Report) error {
	md := markdown.NewMarkdown(w)

	e.writeHeader(md, r)
	e.writeQualityGate(md, r)
	e.writeSummary(md, r)
	e.writeMetrics(md, r)
	e.writeProfiles(md, r)
	e.writeIssues(md, r)
	e.writeFooter(md)

	return md.Build()
}

func (e *MarkdownExporter) writeHeader(md *markdown.Markdown, r *model.Report) {
	md.H1(r.ProjectName() + " analysis report")
	md.PlainText("")

	rows := [][]string{
		{"Project key", "`" + r.Project.Key + "`"},
		{"Version", orDash(r.Project.Version)},
		{"Branch", orDash(r.Branch)},
		{"Author", orDash(r.Author)},
	}
	if !r.Date.IsZero() {
		rows = append(rows, []string{"Date", r.Date.Format(DateLayout)})
	}
	if r.Project.Description != "" {
		rows = append(rows, []string{"Description", r.Project.Description})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")
}

func (e *MarkdownExporter) writeQualityGate(md *markdown.Markdown, r *model.Report) {
	md.H2("Quality Gate")
	md.PlainText("")

	gate := r.QualityGate
	switch gate.Status {
	case "OK":
		md.Tip("Quality gate " + orDash(gate.Name) + " passed.")
	case "ERROR":
		md.Cautionf("Quality gate %s failed.", orDash(gate.Name))
	case "WARN":
		md.Warningf("Quality gate %s raised warnings.", orDash(gate.Name))
	default:
		md.Note("No quality gate status available.")
	}
	md.PlainText("")

	if len(gate.Conditions) == 0 {
		return
	}
	rows := make([][]string, len(gate.Conditions))
	for i, c := range gate.Conditions {
		rows[i] = []string{label(c.Metric), c.Comparator, c.ErrorThreshold, c.ActualValue, statusIcon(c.Status)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Comparator", "Threshold", "Value", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (e *MarkdownExporter) writeSummary(md *markdown.Markdown, r *model.Report) {
	md.H2("Issues Summary")
	md.PlainText("")

	counts := r.IssueCountBySeverity()
	rows := make([][]string, 0, len(model.Severities())+1)
	for _, s := range model.Severities() {
		rows = append(rows, []string{s.String(), strconv.Itoa(counts[s])})
	}
	if counts[model.SeverityNone] > 0 {
		rows = append(rows, []string{"(none)", strconv.Itoa(counts[model.SeverityNone])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(r.Issues)) + "**"})
	md.Table(markdown.TableSet{Header: []string{"Severity", "Count"}, Rows: rows})
	md.PlainText("")

	byType := r.IssueCountByType()
	typeRows := make([][]string, 0, len(model.IssueTypes()))
	for _, t := range model.IssueTypes() {
		typeRows = append(typeRows, []string{t.String(), strconv.Itoa(byType[t])})
	}
	md.Table(markdown.TableSet{Header: []string{"Type", "Count"}, Rows: typeRows})
	md.PlainText("")

	if len(r.Issues) > 0 {
		e.writePieChart(md, counts)
	}
}

func (e *MarkdownExporter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)
	for _, s := range model.Severities() {
		if counts[s] > 0 {
			chart.LabelAndIntValue(s.String(), uint64(counts[s]))
		}
	}
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (e *MarkdownExporter) writeMetrics(md *markdown.Markdown, r *model.Report) {
	md.H2("Metrics")
	md.PlainText("")

	if len(r.Measures) > 0 {
		rows := make([][]string, len(r.Measures))
		for i, m := range r.Measures {
			rows[i] = []string{label(m.Metric), m.Value}
		}
		md.Table(markdown.TableSet{Header: []string{"Metric", "Value"}, Rows: rows})
		md.PlainText("")
	}

	metrics := r.StatisticMetrics()
	if len(metrics) == 0 {
		return
	}
	rows := make([][]string, 0, len(metrics))
	for _, metric := range metrics {
		s := r.MetricStats[metric]
		if !s.Min.Valid {
			e.logger.Warn("metric statistic not available", "metric", metric)
		}
		rows = append(rows, []string{label(metric), s.Min.String(e.notAvailable), s.Max.String(e.notAvailable)})
	}
	md.Table(markdown.TableSet{Header: []string{"Metric", "Min", "Max"}, Rows: rows})
	md.PlainText("")
}

func (e *MarkdownExporter) writeProfiles(md *markdown.Markdown, r *model.Report) {
	if len(r.QualityProfiles) == 0 {
		return
	}
	md.H2("Quality Profiles")
	md.PlainText("")

	names := make([]string, len(r.QualityProfiles))
	for i, p := range r.QualityProfiles {
		names[i] = p.Name + " (" + p.Language + ", " + strconv.Itoa(len(p.Rules)) + " rules)"
	}
	md.BulletList(names...)
	md.PlainText("")

	for _, rule := range r.Rules() {
		if desc := plainText(rule.HTMLDesc); desc != "" {
			md.Details(rule.Key+" "+rule.Name, desc)
		}
	}
	md.PlainText("")
}

func (e *MarkdownExporter) writeIssues(md *markdown.Markdown, r *model.Report) {
	md.H2("Issues")
	md.PlainText("")

	if len(r.Issues) == 0 {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	issues := r.Issues
	if len(issues) > maxMarkdownIssues {
		md.Importantf("Only the first %d of %d issues are listed.", maxMarkdownIssues, len(issues))
		md.PlainText("")
		issues = issues[:maxMarkdownIssues]
	}
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		line := "-"
		if issue.HasLine() {
			line = strconv.Itoa(issue.Line)
		}
		rows[i] = []string{
			issue.Rule,
			orDash(issue.Severity.String()),
			issue.Type.String(),
			truncateString(issue.Component, 50),
			line,
			truncateString(issue.Message, 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rule", "Severity", "Type", "Component", "Line", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (e *MarkdownExporter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [cnesreport](https://github.com/cnescatlab/cnesreport)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func statusIcon(status string) string {
	switch status {
	case "OK":
		return "✅ OK"
	case "ERROR":
		return "❌ ERROR"
	case "WARN":
		return "⚠️ WARN"
	default:
		return orDash(status)
	}
}
