package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cluster status",
	Long: `Query container state on every node and, when the head is up, the
workload manager's own report. Status never mutates the cluster.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	if checkConfig {
		return runCheckConfig(ctx)
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	st, err := m.Status(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Container: %s (image %s)\n", st.ContainerName, st.Image)
	fmt.Printf("Network:   %s", st.Management)
	if len(st.DataPlanes) > 0 {
		fmt.Printf("  ib: %s", strings.Join(st.DataPlanes, ","))
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nNODE\tROLE\tSTATUS\tDETAIL")
	for _, n := range st.Nodes {
		state := "✓ running"
		if !n.Running {
			state = "✗ down"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Addr, n.Role, state, n.Detail)
	}
	w.Flush()

	if st.Workload != "" {
		fmt.Println("\nWorkload:")
		fmt.Println(st.Workload)
	}
	return nil
}
