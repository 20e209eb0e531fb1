package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo is the version information printed by the version command.
type buildInfo struct {
	version string
	commit  string
	date    string
}

// resolveBuildInfo merges the ldflags values with the build information
// recorded by the go tool. Priority: ldflags > build info > placeholder.
func resolveBuildInfo(ldVersion, ldCommit, ldDate string, info *debug.BuildInfo) buildInfo {
	b := buildInfo{version: "(devel)", commit: "unknown", date: "unknown"}
	if info != nil {
		if info.Main.Version != "" {
			b.version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				b.commit = shortRevision(s.Value)
			case "vcs.time":
				b.date = s.Value
			}
		}
	}
	if ldVersion != "" {
		b.version = ldVersion
	}
	if ldCommit != "" {
		b.commit = ldCommit
	}
	if ldDate != "" {
		b.date = ldDate
	}
	return b
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func currentBuildInfo() buildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	return resolveBuildInfo(version, commit, date, info)
}

// getVersion returns version string.
func getVersion() string { return currentBuildInfo().version }

// getCommit returns the short commit hash, or "unknown".
func getCommit() string { return currentBuildInfo().commit }

// getDate returns the build date, or "unknown".
func getDate() string { return currentBuildInfo().date }

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of cnesreport.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cnesreport version %s\n", getVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
		},
	}
}
