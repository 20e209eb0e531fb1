package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/cnescatlab/cnesreport/internal/model"
	"github.com/cnescatlab/cnesreport/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "cnesreport"

	// DefaultServerURL is the address of a local SonarQube server.
	DefaultServerURL = "http://localhost:9000"

	// DefaultAuthor signs reports when no author is given.
	DefaultAuthor = "cnesreport"

	// DefaultOutputDir is the current directory.
	DefaultOutputDir = "."

	// DefaultConcurrency is the number of projects processed at once.
	DefaultConcurrency = 4

	// DateLayout is the layout of the --date flag.
	DateLayout = "2006-01-02"
)

// Config holds all configuration options of a report run.
// It is populated from the config file and CLI flags and passed through the
// application rather than kept in global state.
type Config struct {
	// ServerURL is the SonarQube server the dumps were taken from. It is
	// recorded in the logs only; the raw data is read from InputDir.
	ServerURL string

	// ProjectKeys are the projects to report on. More than one key runs
	// the projects concurrently, each into its own sub-directory.
	ProjectKeys []string

	// Branch is the analyzed branch, model.NoBranch for the main branch.
	Branch string

	// Author signs the report.
	Author string

	// Token is the access token used against the server. It is never
	// written to the logs.
	Token string

	// Date is the report date as YYYY-MM-DD. Empty means today.
	Date string

	// OutputDir receives the outputs, or names the archive.
	OutputDir string

	// InputDir holds the SonarQube API dumps.
	InputDir string

	// DocxTemplate and XlsxTemplate replace the built-in templates.
	DocxTemplate string
	XlsxTemplate string

	// Formats are the output formats, in production order.
	Formats []string

	// Archive bundles the outputs into <OutputDir>.zip.
	Archive bool

	// FilenamePattern names the outputs, see report.FormatFilename.
	FilenamePattern string

	// NotAvailable is printed in place of absent statistics.
	NotAvailable string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// Concurrency is the number of projects processed at once.
	Concurrency int

	// ConfigFilePath is the path to the configuration file. If empty, the
	// file is searched in the current directory and then the home directory.
	ConfigFilePath string

	// HistoryDir holds the run history database.
	HistoryDir string

	// SaveHistory records every run in the history database.
	SaveHistory bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	formats := report.DefaultFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return &Config{
		ServerURL:       DefaultServerURL,
		Branch:          model.NoBranch,
		Author:          DefaultAuthor,
		OutputDir:       DefaultOutputDir,
		Formats:         names,
		FilenamePattern: report.DefaultFilenamePattern,
		NotAvailable:    report.DefaultNotAvailable,
		Concurrency:     DefaultConcurrency,
		HistoryDir:      XDGDataDir(),
		SaveHistory:     true,
	}
}

// XDGDataDir returns the XDG data directory for cnesreport, home of the
// run history.
// On Linux: ~/.local/share/cnesreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for cnesreport.
// On Linux: ~/.config/cnesreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.ProjectKeys) == 0 {
		return ErrNoProject
	}
	for _, key := range c.ProjectKeys {
		if key == "" {
			return ErrNoProject
		}
	}
	if c.InputDir == "" {
		return ErrNoInput
	}
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidServerURL, c.ServerURL)
		}
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if _, err := c.OutputFormats(); err != nil {
		return err
	}
	if _, err := c.ReportDate(); err != nil {
		return err
	}
	if _, err := report.FormatFilename(c.FilenamePattern, report.Tokens{
		Date:    time.Now(),
		Project: c.ProjectKeys[0],
	}); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFilenamePattern, c.FilenamePattern)
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	return nil
}

// OutputFormats parses Formats.
func (c *Config) OutputFormats() ([]report.Format, error) {
	if len(c.Formats) == 0 {
		return nil, ErrNoFormats
	}
	formats, err := report.ParseFormats(c.Formats)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	return formats, nil
}

// ReportDate parses Date. An empty date is the zero time, meaning the
// moment the report is generated.
func (c *Config) ReportDate() (time.Time, error) {
	if c.Date == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, c.Date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, c.Date)
	}
	return t, nil
}

// ExportOptions returns the exporter options matching the configuration.
// Each template only goes to the exporter of its own format.
func (c *Config) ExportOptions(f report.Format) []report.Option {
	opts := []report.Option{report.WithNotAvailable(c.NotAvailable)}
	switch {
	case f == report.FormatDOCX && c.DocxTemplate != "":
		opts = append(opts, report.WithTemplate(c.DocxTemplate))
	case f == report.FormatXLSX && c.XlsxTemplate != "":
		opts = append(opts, report.WithTemplate(c.XlsxTemplate))
	}
	return opts
}

// ApplySettings copies every value set in s over the configuration.
func (c *Config) ApplySettings(s Settings) {
	setString(&c.ServerURL, s.Server)
	setString(&c.Branch, s.Branch)
	setString(&c.Author, s.Author)
	setString(&c.OutputDir, s.Output)
	setString(&c.InputDir, s.Input)
	setString(&c.DocxTemplate, s.DocxTemplate)
	setString(&c.XlsxTemplate, s.XlsxTemplate)
	setString(&c.FilenamePattern, s.Filename)
	setString(&c.NotAvailable, s.NotAvailable)
	if len(s.Formats) > 0 {
		c.Formats = append([]string(nil), s.Formats...)
	}
	if s.Archive != nil {
		c.Archive = *s.Archive
	}
	if s.Concurrency > 0 {
		c.Concurrency = s.Concurrency
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
