package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/cnescatlab/cnesreport/internal/adapter"
	"github.com/cnescatlab/cnesreport/internal/config"
	"github.com/cnescatlab/cnesreport/internal/database"
	"github.com/cnescatlab/cnesreport/internal/log"
	"github.com/cnescatlab/cnesreport/internal/pipeline"
	"github.com/cnescatlab/cnesreport/internal/report"
	"github.com/cnescatlab/cnesreport/internal/source"
)

// tokenEnv is read when no token is given on the command line.
const tokenEnv = "SONAR_TOKEN"

var (
	errReportFailed   = errors.New("report generation failed")
	errAuthentication = errors.New("server refused the credentials")
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the analysis report of SonarQube projects",
		Long: `Report builds the analysis report of one or more SonarQube projects.

The web API responses of each project are read from the input directory
(issues.json and project.json are required; facets, profiles, measures,
components, quality gate and languages are optional). When the input
directory holds a sub-directory named after the project key, and inside
it one named after the branch, that directory is used.

A format that fails does not stop the others. With --zip the outputs are
bundled into <output>.zip and nothing else is left on disk.

Settings are read from the configuration file first (see 'cnesreport
init'); flags override them. Without -p, every project listed in the
configuration file is reported.

Examples:
  # DOCX, JSON and XLSX report of a project
  cnesreport report -p fr.cnes:projet -i dumps -o reports

  # Markdown and HTML only, for a branch
  cnesreport report -p fr.cnes:projet -b develop -f md -f html -i dumps

  # Several projects at once, archived
  cnesreport report -p projet-a -p projet-b -i dumps -o reports -z

  # Custom templates
  cnesreport report -p projet -i dumps -r my-report.docx -x my-issues.xlsx`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("server", "s", config.DefaultServerURL,
		"SonarQube server URL the dumps were taken from")
	cmd.Flags().StringSliceP("project", "p", nil,
		"Project key (repeatable)")
	cmd.Flags().StringP("branch", "b", "",
		"Analyzed branch (default: main branch)")
	cmd.Flags().StringP("author", "a", config.DefaultAuthor,
		"Author written in the report")
	cmd.Flags().StringP("token", "t", "",
		"SonarQube access token (default: $"+tokenEnv+")")
	cmd.Flags().StringP("date", "d", "",
		"Report date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output directory, or archive base name with --zip")
	cmd.Flags().StringP("input", "i", "",
		"Directory holding the SonarQube API dumps")
	cmd.Flags().StringP("docx-template", "r", "",
		"Custom DOCX report template")
	cmd.Flags().StringP("xlsx-template", "x", "",
		"Custom XLSX issues template")
	cmd.Flags().StringSliceP("format", "f", nil,
		"Output format: docx, xlsx, json, md, html, csv, parquet (repeatable, default: docx,json,xlsx)")
	cmd.Flags().BoolP("zip", "z", false,
		"Bundle the outputs into a zip archive")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cnesreport in current or home directory)")
	cmd.Flags().String("filename", report.DefaultFilenamePattern,
		"Output file name pattern: {date}, {project}, {branch}, {author}")
	cmd.Flags().String("not-available", report.DefaultNotAvailable,
		"Text written in place of absent statistics")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of projects processed at once")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("history-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfgs, err := buildConfigs(cmd)
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfgs[0].Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runReport(ctx, cfgs, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfigFile returns the configuration file to apply. A file named
// with --config must exist; otherwise an absent file is an empty one.
func loadConfigFile(explicit string) (*config.File, string, error) {
	path := config.FindConfigFile(explicit)
	if path == "" {
		if explicit != "" {
			return nil, "", fmt.Errorf("configuration file not found: %s", explicit)
		}
		return &config.File{Projects: make(map[string]config.Settings)}, "", nil
	}
	file, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return file, path, nil
}

// buildConfigs creates one validated Config per requested project. The
// precedence is defaults, then the configuration file, then the flags set
// on the command line.
func buildConfigs(cmd *cobra.Command) ([]*config.Config, error) {
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	file, path, err := loadConfigFile(explicit)
	if err != nil {
		return nil, err
	}

	keys, err := cmd.Flags().GetStringSlice("project")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		keys = slices.Sorted(maps.Keys(file.Projects))
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("configuration error: %w", config.ErrNoProject)
	}

	seen := make(map[string]bool, len(keys))
	cfgs := make([]*config.Config, 0, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		cfg := config.NewConfig()
		cfg.ConfigFilePath = path
		cfg.ApplySettings(file.ProjectSettings(key))
		if err := applyFlags(cmd, cfg); err != nil {
			return nil, err
		}
		if cfg.Token == "" {
			cfg.Token = os.Getenv(tokenEnv)
		}
		cfg.ProjectKeys = []string{key}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// applyFlags copies the flags set on the command line into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	cfg.Verbose = getVerboseFlag(cmd)

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"server", &cfg.ServerURL},
		{"branch", &cfg.Branch},
		{"author", &cfg.Author},
		{"token", &cfg.Token},
		{"date", &cfg.Date},
		{"output", &cfg.OutputDir},
		{"input", &cfg.InputDir},
		{"docx-template", &cfg.DocxTemplate},
		{"xlsx-template", &cfg.XlsxTemplate},
		{"filename", &cfg.FilenamePattern},
		{"not-available", &cfg.NotAvailable},
		{"history-dir", &cfg.HistoryDir},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if flags.Changed("format") {
		formats, err := flags.GetStringSlice("format")
		if err != nil {
			return err
		}
		cfg.Formats = formats
	}
	if flags.Changed("zip") {
		archive, err := flags.GetBool("zip")
		if err != nil {
			return err
		}
		cfg.Archive = archive
	}
	if flags.Changed("concurrency") {
		n, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = n
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveHistory = !noHistory
	return nil
}

// projectSources routes each project to the dump directory of its own
// configuration.
type projectSources map[string]source.Source

func (p projectSources) Fetch(ctx context.Context, projectKey, branch string) (*adapter.Input, error) {
	src, ok := p[projectKey]
	if !ok {
		return nil, fmt.Errorf("%w: no input directory for project %q", source.ErrMissingDump, projectKey)
	}
	return src.Fetch(ctx, projectKey, branch)
}

// newJob turns a validated configuration into a pipeline job. In a batch,
// each project writes into a sub-directory named after its key.
func newJob(cfg *config.Config, batch bool) (pipeline.Job, error) {
	key := cfg.ProjectKeys[0]
	formats, err := cfg.OutputFormats()
	if err != nil {
		return pipeline.Job{}, err
	}
	date, err := cfg.ReportDate()
	if err != nil {
		return pipeline.Job{}, err
	}

	outputDir := cfg.OutputDir
	if batch {
		name, err := report.FormatFilename("{project}", report.Tokens{Project: key})
		if err != nil {
			return pipeline.Job{}, err
		}
		outputDir = filepath.Join(outputDir, name)
	}

	options := make(map[report.Format][]report.Option, len(formats))
	for _, f := range formats {
		options[f] = cfg.ExportOptions(f)
	}

	return pipeline.Job{
		ProjectKey:      key,
		Branch:          cfg.Branch,
		Author:          cfg.Author,
		Date:            date,
		FilenamePattern: cfg.FilenamePattern,
		Request: pipeline.Request{
			Formats:       formats,
			OutputDir:     outputDir,
			Archive:       cfg.Archive,
			ExportOptions: options,
		},
	}, nil
}

// runReport generates the report of every configured project, records the
// runs and prints the results.
func runReport(ctx context.Context, cfgs []*config.Config, out io.Writer, logger *slog.Logger) error {
	lead := cfgs[0]
	logger.Info("starting report",
		"projects", len(cfgs),
		"server", lead.ServerURL,
		"token", lead.Token,
		"concurrency", lead.Concurrency,
		"saveHistory", lead.SaveHistory,
	)

	var db *database.RunDB
	if lead.SaveHistory {
		var err error
		db, err = database.Open(lead.HistoryDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Debug("history database opened", "path", db.Path())
	}

	sources := make(projectSources, len(cfgs))
	jobs := make([]pipeline.Job, 0, len(cfgs))
	for _, cfg := range cfgs {
		job, err := newJob(cfg, len(cfgs) > 1)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
		sources[job.ProjectKey] = source.NewDirSource(cfg.InputDir, source.WithLogger(logger))
	}

	task := pipeline.NewTask(sources,
		pipeline.WithTaskLogger(logger),
		pipeline.WithOrchestrator(pipeline.New(
			pipeline.WithLogger(logger),
			pipeline.WithExportOptions(report.WithLogger(logger)),
		)),
	)

	startTime := time.Now()
	var results []pipeline.BatchResult
	if len(jobs) == 1 {
		outcome, err := task.Run(ctx, jobs[0])
		results = []pipeline.BatchResult{{Job: jobs[0], Outcome: outcome, Err: err}}
	} else {
		fmt.Fprintf(out, "Generating %d reports (concurrency: %d)...\n\n", len(jobs), lead.Concurrency)
		bp := pipeline.NewBatchProcessor(task,
			pipeline.WithConcurrency(lead.Concurrency),
			pipeline.WithBatchLogger(logger),
		)
		var err error
		results, err = bp.ProcessBatch(ctx, jobs)
		if err != nil {
			return err
		}
	}

	failed := 0
	for i, res := range results {
		if res.Err == nil && res.Outcome != nil && res.Outcome.ErrorPayload != nil {
			fmt.Fprintf(out, "%s\n", res.Outcome.ErrorPayload)
			failed++
			continue
		}
		if res.Err != nil && (res.Outcome == nil || res.Outcome.Result == nil) {
			fmt.Fprintf(out, "%s: %v\n", res.Job.ProjectKey, res.Err)
			failed++
			continue
		}
		if res.Err != nil || res.Outcome.Result.Err() != nil {
			failed++
		}
		if r := res.Outcome.Report; r != nil {
			summary := report.NewSummaryWriter(out,
				report.WithVerbose(cfgs[i].Verbose),
				report.WithSummaryNotAvailable(cfgs[i].NotAvailable),
			)
			if _, err := summary.Write(r); err != nil {
				return err
			}
		}
		if err := saveRun(ctx, db, res, logger); err != nil {
			logger.Error("failed to record run", "project", res.Job.ProjectKey, "error", err)
		}
	}

	if err := printResults(out, results); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nCompleted in %s\n", time.Since(startTime).Round(time.Millisecond))

	if failed == 0 {
		return nil
	}
	if len(results) == 1 && results[0].Outcome != nil && results[0].Outcome.ErrorPayload != nil {
		return errAuthentication
	}
	return fmt.Errorf("%w: %d of %d projects", errReportFailed, failed, len(results))
}

// saveRun records the result of a job. A nil db records nothing.
func saveRun(ctx context.Context, db *database.RunDB, res pipeline.BatchResult, logger *slog.Logger) error {
	if db == nil || res.Outcome == nil || res.Outcome.Result == nil {
		return nil
	}
	result := res.Outcome.Result

	run := &database.Run{
		ProjectKey:    res.Job.ProjectKey,
		Branch:        res.Job.Branch,
		FormatsFailed: make(map[string]string, len(result.Failures)),
		Archive:       result.Archive,
		Digest:        result.Digest.String(),
	}
	if r := res.Outcome.Report; r != nil {
		run.Branch = r.Branch
		run.IssueCount = len(r.Issues)
	}
	for _, f := range res.Job.Request.Formats {
		if result.Succeeded(f) {
			run.FormatsOK = append(run.FormatsOK, f.String())
		}
		if err, ok := result.Failures[f]; ok {
			run.FormatsFailed[f.String()] = err.Error()
		}
	}

	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}
	logger.Info("run recorded", "project", run.ProjectKey, "id", run.ID)
	return nil
}

// printResults prints one table row per produced or failed output.
func printResults(out io.Writer, results []pipeline.BatchResult) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	var data [][]string
	var archives []string
	for _, res := range results {
		if res.Outcome == nil || res.Outcome.Result == nil {
			continue
		}
		result := res.Outcome.Result
		for _, f := range res.Job.Request.Formats {
			if path, ok := result.Outputs[f]; ok {
				data = append(data, []string{res.Job.ProjectKey, f.String(), green("ok"), path})
				continue
			}
			if err, ok := result.Failures[f]; ok {
				data = append(data, []string{res.Job.ProjectKey, f.String(), red("failed"), err.Error()})
			}
		}
		if result.Archive != "" {
			archives = append(archives, fmt.Sprintf("%s  sha3-256:%s", result.Archive, result.Digest))
		}
	}
	if len(data) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	table := tablewriter.NewWriter(out)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Project", "Format", "Status", "Output"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, a := range archives {
		fmt.Fprintf(out, "Archive: %s\n", a)
	}
	return nil
}
