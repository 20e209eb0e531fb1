package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cnescatlab/cnesreport/internal/config"
	"github.com/cnescatlab/cnesreport/internal/report"
)

//go:embed templates/cnesreport.yaml
var configTemplate embed.FS

// Names of the template files written by init --templates.
const (
	docxTemplateName = "report-template.docx"
	xlsxTemplateName = "issues-template.xlsx"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new cnesreport configuration file",
		Long: `Initialize creates a new .cnesreport configuration file in the current directory.

The generated file documents every setting with its default value and
holds a commented example of per-project overrides. With --templates,
the built-in DOCX and XLSX templates are written as well, ready to be
customized.

Examples:
  # Create .cnesreport in current directory
  cnesreport init

  # Create config file at a specific path
  cnesreport init -o myconfig.yaml

  # Also export the built-in templates into ./templates
  cnesreport init --templates templates

  # Force overwrite existing files
  cnesreport init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")
	cmd.Flags().String("templates", "",
		"Directory receiving the built-in DOCX and XLSX templates")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	templatesDir, err := cmd.Flags().GetString("templates")
	if err != nil {
		return err
	}

	content, err := configTemplate.ReadFile("templates/cnesreport.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}
	if err := writeNewFile(outputPath, content, force); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)

	if templatesDir != "" {
		docx, err := report.DefaultDOCXTemplate()
		if err != nil {
			return fmt.Errorf("failed to build docx template: %w", err)
		}
		xlsx, err := report.DefaultXLSXTemplate()
		if err != nil {
			return fmt.Errorf("failed to build xlsx template: %w", err)
		}
		for name, data := range map[string][]byte{docxTemplateName: docx, xlsxTemplateName: xlsx} {
			path := filepath.Join(templatesDir, name)
			if err := writeNewFile(path, data, force); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created template: %s\n", path)
		}
	}

	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - The dump directory and output directory")
	fmt.Fprintln(out, "  - Output formats and file names")
	fmt.Fprintln(out, "  - Per-project branch, author and templates")
	return nil
}

// writeNewFile writes data to path, creating parent directories. An
// existing file is only replaced when force is set.
func writeNewFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s (use -f to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
