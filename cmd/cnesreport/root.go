package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cnesreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cnesreport",
		Short: "Export SonarQube analysis results as review documents",
		Long: `cnesreport exports the analysis of a SonarQube project as review documents.

It reads the web API responses of a project (issues, facets, quality
profiles, quality gate, measures) from a dump directory and produces a
DOCX report, an XLSX workbook and a JSON export. Markdown, HTML, CSV and
Parquet outputs are available on request.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
