// Package report renders a model.Report into output files.
//
// Every output format is an Exporter. Exporters are independent: each one
// writes a single file named <filename><extension> into the directory it is
// given, and a failure in one never affects the others.
//
//   - JSONExporter: writes an already serialized report verbatim
//   - DOCXExporter: merges the report into a Word template
//   - XLSXExporter: merges the report into a spreadsheet template
//   - MarkdownExporter and HTMLExporter: human-readable summaries
//   - CSVExporter and ParquetExporter: the issue list as tabular data
//
// Templates reference report data with {{name}} placeholders. Scalar
// placeholders are replaced in place. A table row holding a collection
// placeholder (issue.*, rule.*, measure.*, condition.*, profile.*) is a row
// template: it is cloned once per record and the original row is dropped.
// Bytes of the template outside substituted regions are preserved.
package report
