package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the built-in spreadsheet template.
const (
	DefaultSummarySheet = "Summary"
	DefaultIssuesSheet  = "Issues"
	DefaultRawSheet     = "All Details"
)

// templateEpoch is the modification time of every built-in template entry.
var templateEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	xmlHeader      = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	wordNamespaces = `xmlns:w="` + wordNamespace + `" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
)

var docxStaticParts = map[string]string{
	"[Content_Types].xml": xmlHeader +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
		`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>` +
		`</Types>`,
	"_rels/.rels": xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`,
	"word/_rels/document.xml.rels": xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>` +
		`</Relationships>`,
	"word/styles.xml": xmlHeader +
		`<w:styles ` + wordNamespaces + `>` +
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>` +
		`<w:rPr><w:sz w:val="20"/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/>` +
		`<w:rPr><w:b/><w:sz w:val="48"/></w:rPr></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
		`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4"/><w:left w:val="single" w:sz="4"/><w:bottom w:val="single" w:sz="4"/>` +
		`<w:right w:val="single" w:sz="4"/><w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/>` +
		`</w:tblBorders></w:tblPr></w:style>` +
		`</w:styles>`,
	"word/footer1.xml": xmlHeader +
		`<w:ftr ` + wordNamespaces + `>` +
		`<w:p><w:r><w:t xml:space="preserve">{{project.name}} - {{report.date}}</w:t></w:r></w:p>` +
		`</w:ftr>`,
}

// docxBuilder writes the body of the built-in Word template.
type docxBuilder struct {
	sb strings.Builder
}

func (d *docxBuilder) paragraph(style, text string) {
	d.sb.WriteString("<w:p>")
	if style != "" {
		d.sb.WriteString(`<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`)
	}
	d.run(text, false)
	d.sb.WriteString("</w:p>")
}

func (d *docxBuilder) run(text string, bold bool) {
	d.sb.WriteString("<w:r>")
	if bold {
		d.sb.WriteString("<w:rPr><w:b/></w:rPr>")
	}
	d.sb.WriteString(`<w:t xml:space="preserve">`)
	var buf bytes.Buffer
	escapeXML(&buf, text)
	d.sb.Write(buf.Bytes())
	d.sb.WriteString("</w:t></w:r>")
}

func (d *docxBuilder) row(cells []string, bold bool) {
	d.sb.WriteString("<w:tr>")
	for _, c := range cells {
		d.sb.WriteString("<w:tc><w:p>")
		d.run(c, bold)
		d.sb.WriteString("</w:p></w:tc>")
	}
	d.sb.WriteString("</w:tr>")
}

// table writes a header row followed by body rows.
func (d *docxBuilder) table(header []string, rows ...[]string) {
	d.sb.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="5000" w:type="pct"/></w:tblPr>`)
	d.row(header, true)
	for _, r := range rows {
		d.row(r, false)
	}
	d.sb.WriteString("</w:tbl>")
}

func defaultDocumentXML() string {
	var d docxBuilder
	d.sb.WriteString(xmlHeader + `<w:document ` + wordNamespaces + `><w:body>`)

	d.paragraph("Title", "{{project.name}} analysis report")
	d.table([]string{"Property", "Value"},
		[]string{"Project key", "{{project.key}}"},
		[]string{"Version", "{{project.version}}"},
		[]string{"Branch", "{{project.branch}}"},
		[]string{"Description", "{{project.description}}"},
		[]string{"Author", "{{report.author}}"},
		[]string{"Date", "{{report.date}}"},
	)

	d.paragraph("Heading1", "Quality gate")
	d.paragraph("", "{{qualitygate.name}}: {{qualitygate.status}}")
	d.table([]string{"Metric", "Comparator", "Threshold", "Value", "Status"},
		[]string{"{{condition.label}}", "{{condition.comparator}}", "{{condition.threshold}}", "{{condition.value}}", "{{condition.status}}"})

	d.paragraph("Heading1", "Issues summary")
	d.table([]string{"Severity", "Count"},
		[]string{"Blocker", "{{count.severity.BLOCKER}}"},
		[]string{"Critical", "{{count.severity.CRITICAL}}"},
		[]string{"Major", "{{count.severity.MAJOR}}"},
		[]string{"Minor", "{{count.severity.MINOR}}"},
		[]string{"Info", "{{count.severity.INFO}}"},
		[]string{"Total", "{{count.issues}}"},
	)
	d.table([]string{"Type", "Count"},
		[]string{"Bug", "{{count.type.BUG}}"},
		[]string{"Vulnerability", "{{count.type.VULNERABILITY}}"},
		[]string{"Code smell", "{{count.type.CODE_SMELL}}"},
		[]string{"Security hotspot", "{{count.type.SECURITY_HOTSPOT}}"},
	)

	d.paragraph("Heading1", "Metrics")
	d.table([]string{"Metric", "Value"}, []string{"{{measure.label}}", "{{measure.value}}"})
	d.table([]string{"Metric", "Min", "Max"},
		[]string{"Complexity", "{{stat.min.complexity}}", "{{stat.max.complexity}}"},
		[]string{"Cognitive complexity", "{{stat.min.cognitive_complexity}}", "{{stat.max.cognitive_complexity}}"},
		[]string{"Lines of code", "{{stat.min.ncloc}}", "{{stat.max.ncloc}}"},
		[]string{"Comment density (%)", "{{stat.min.comment_lines_density}}", "{{stat.max.comment_lines_density}}"},
		[]string{"Duplication (%)", "{{stat.min.duplicated_lines_density}}", "{{stat.max.duplicated_lines_density}}"},
		[]string{"Coverage (%)", "{{stat.min.coverage}}", "{{stat.max.coverage}}"},
	)

	d.paragraph("Heading1", "Quality profiles")
	d.table([]string{"Name", "Language", "Active rules"},
		[]string{"{{profile.name}}", "{{profile.language}}", "{{profile.rules}}"})

	d.paragraph("Heading1", "Rules")
	d.table([]string{"Rule", "Name", "Description", "Type", "Severity", "Issues"},
		[]string{"{{rule.key}}", "{{rule.name}}", "{{rule.description}}", "{{rule.type}}", "{{rule.severity}}", "{{rule.count}}"})

	d.paragraph("Heading1", "Issues")
	d.table([]string{"Rule", "Severity", "Type", "Component", "Line", "Message"},
		[]string{"{{issue.rule}}", "{{issue.severity}}", "{{issue.type}}", "{{issue.component}}", "{{issue.line}}", "{{issue.message}}"})

	d.sb.WriteString(`<w:sectPr><w:footerReference w:type="default" r:id="rId2"/>` +
		`<w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)
	return d.sb.String()
}

// DefaultDOCXTemplate builds the built-in Word template.
func DefaultDOCXTemplate() ([]byte, error) {
	parts := map[string]string{documentPart: defaultDocumentXML()}
	for name, content := range docxStaticParts {
		parts[name] = content
	}
	order := []string{
		"[Content_Types].xml",
		"_rels/.rels",
		documentPart,
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/footer1.xml",
	}
	return buildZip(order, parts)
}

// buildZip writes the named parts in order into an in-memory archive.
func buildZip(order []string, parts map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: templateEpoch})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DefaultXLSXTemplate builds the built-in spreadsheet template: a summary
// sheet, an issue sheet with one row template and an empty raw sheet.
func DefaultXLSXTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", DefaultSummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DefaultIssuesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DefaultRawSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
	})
	if err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Project", "{{project.name}}"},
		{"Key", "{{project.key}}"},
		{"Version", "{{project.version}}"},
		{"Branch", "{{project.branch}}"},
		{"Author", "{{report.author}}"},
		{"Date", "{{report.date}}"},
		{"Quality gate", "{{qualitygate.status}}"},
		{"Issues", "{{count.issues}}"},
		{"Blocker", "{{count.severity.BLOCKER}}"},
		{"Critical", "{{count.severity.CRITICAL}}"},
		{"Major", "{{count.severity.MAJOR}}"},
		{"Minor", "{{count.severity.MINOR}}"},
		{"Info", "{{count.severity.INFO}}"},
		{"Lines of code", "{{metric.ncloc}}"},
		{"Coverage", "{{metric.coverage}}"},
		{"Max complexity", "{{stat.max.complexity}}"},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(DefaultSummarySheet, cell, &row); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(DefaultSummarySheet, cell, cell, bold); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(DefaultSummarySheet, "A", "B", 24); err != nil {
		return nil, err
	}

	issueHeader := []any{"Rule", "Severity", "Type", "Component", "Line", "Message", "Status", "Key"}
	issueRow := []any{
		"{{issue.rule}}", "{{issue.severity}}", "{{issue.type}}", "{{issue.component}}",
		"{{issue.line}}", "{{issue.message}}", "{{issue.status}}", "{{issue.key}}",
	}
	if err := f.SetSheetRow(DefaultIssuesSheet, "A1", &issueHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(DefaultIssuesSheet, "A1", "H1", header); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(DefaultIssuesSheet, "A2", &issueRow); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(DefaultIssuesSheet, "A", "H", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
