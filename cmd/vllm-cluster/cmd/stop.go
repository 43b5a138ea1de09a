package cmd

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the cluster on every node",
	Long: `Stop the cluster container on every discovered or configured node.

Stop is best effort: unreachable hosts are logged and skipped so a
degraded cluster is torn down as far as possible.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	if checkConfig {
		return runCheckConfig(ctx)
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	return m.Stop(ctx)
}
