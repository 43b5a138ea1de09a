package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec [--] command [args...]",
	Short: "Run a command inside the head container",
	Long: `Run a command inside the head node's container with stdio attached.

A cluster is started first unless one is already running; either way it
is torn down on every node when the command finishes. The command's
exit code becomes vllm-cluster's exit code.

Example:
  vllm-cluster exec -- vllm serve meta-llama/Llama-3.1-70B -tp 16
  vllm-cluster exec nvidia-smi -L`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
	// Flags after the command belong to the command.
	execCmd.Flags().SetInterspersed(false)
}

func runExec(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	if checkConfig {
		return runCheckConfig(ctx)
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	code, err := m.Exec(ctx, args)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
