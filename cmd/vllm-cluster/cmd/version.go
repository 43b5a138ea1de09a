package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	cluster "github.com/livitki/spark-vllm-docker"
)

// Build metadata, overridden at link time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "vllm-cluster %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		fmt.Fprintf(out, "  go:            %s\n", runtime.Version())
		fmt.Fprintf(out, "  default image: %s\n", cluster.DefaultImage)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
