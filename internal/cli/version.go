package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			version := Version
			if info, ok := debug.ReadBuildInfo(); ok && version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}

			w := cmd.OutOrStdout()
			title := color.New(color.FgCyan, color.Bold)

			title.Fprint(w, "transmogrify version: ")
			fmt.Fprintln(w, version)
			title.Fprint(w, "Git commit: ")
			fmt.Fprintln(w, GitCommit)
			title.Fprint(w, "Build date: ")
			fmt.Fprintln(w, BuildDate)
			title.Fprint(w, "Go version: ")
			fmt.Fprintln(w, runtime.Version())
		},
	}
}
