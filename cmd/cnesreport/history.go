package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/cnescatlab/cnesreport/internal/config"
	"github.com/cnescatlab/cnesreport/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded report runs",
		Long: `History lists the report runs recorded by 'cnesreport report', most
recent first, with the formats produced, the formats that failed and the
digest of the archive.

Examples:
  # Every recorded run
  cnesreport history

  # Runs of one project
  cnesreport history -p fr.cnes:projet

  # Projects with at least one recorded run
  cnesreport history --projects`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("project", "p", "",
		"Only list the runs of this project")
	cmd.Flags().BoolP("projects", "P", false,
		"List the projects with recorded runs")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs listed (0 for all)")
	cmd.Flags().String("history-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	project, err := cmd.Flags().GetString("project")
	if err != nil {
		return err
	}
	listProjects, err := cmd.Flags().GetBool("projects")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if listProjects {
		projects, err := db.ListProjects(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Fprintln(out, "No recorded runs.")
			return nil
		}
		fmt.Fprintf(out, "Projects (%d):\n\n", len(projects))
		for _, p := range projects {
			fmt.Fprintf(out, "  • %s\n", p)
		}
		return nil
	}

	runs, err := db.ListRuns(cmd.Context(), project)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		fmt.Fprintln(out, "\nUse 'cnesreport report' to generate a report.")
		return nil
	}
	total := len(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	if err := printRuns(out, runs); err != nil {
		return err
	}
	if len(runs) < total {
		fmt.Fprintf(out, "\n%d of %d runs shown (use -n 0 to list all).\n", len(runs), total)
	}
	return nil
}

// printRuns prints one table row per run.
func printRuns(out io.Writer, runs []database.Run) error {
	red := color.New(color.FgRed).SprintFunc()

	data := make([][]string, 0, len(runs))
	for _, run := range runs {
		failed := slices.Sorted(maps.Keys(run.FormatsFailed))
		failedText := "-"
		if len(failed) > 0 {
			failedText = red(strings.Join(failed, ","))
		}
		branch := run.Branch
		if branch == "" {
			branch = "-"
		}
		data = append(data, []string{
			shorten(run.ID, 8),
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.ProjectKey,
			branch,
			strings.Join(run.FormatsOK, ","),
			failedText,
			strconv.Itoa(run.IssueCount),
			shorten(run.Digest, 12),
		})
	}

	table := tablewriter.NewWriter(out)
	defer func() { _ = table.Close() }()
	table.Header([]string{"ID", "Date", "Project", "Branch", "Formats", "Failed", "Issues", "Digest"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func shorten(s string, n int) string {
	if s == "" {
		return "-"
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
