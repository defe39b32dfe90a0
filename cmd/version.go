package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // overridden at build time via -ldflags
	commit  = ""
	date    = ""
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Example: `  # Show version information
  ytnotes version

  # Include the active model and transcript source
  ytnotes version -v`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ytnotes v%s (commit: %s, built %s, %s)\n", version, commit, date, runtime.Version())
		if config.Verbose {
			fmt.Printf("model: %s\ntranscript source: %s\n", config.Model, config.TranscriptSource)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
