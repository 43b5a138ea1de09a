package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the cluster",
	Long: `Start the vLLM cluster: the local host becomes the head node and
every other discovered or configured node joins as a worker over SSH.

In the foreground (default) the head container's logs are streamed and
Ctrl+C stops the whole cluster. With --daemon the command returns once
the cluster is ready and leaves it running.

Example:
  vllm-cluster start
  vllm-cluster start -d -n 10.0.0.1,10.0.0.2,10.0.0.3
  vllm-cluster start --check-config`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	if checkConfig {
		return runCheckConfig(ctx)
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	if err := m.Start(ctx); err != nil {
		// An interrupt already tore the cluster down; that is the
		// normal way to leave a foreground start.
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}
