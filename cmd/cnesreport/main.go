// Package main provides the entry point for the cnesreport CLI.
//
// cnesreport turns the analysis of a SonarQube project into review
// documents: a Word report, an Excel workbook, a JSON export and, on
// request, Markdown, HTML, CSV and Parquet files.
//
// Usage:
//
//	cnesreport report -p <project-key> -i <dump-dir>
//	cnesreport history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
