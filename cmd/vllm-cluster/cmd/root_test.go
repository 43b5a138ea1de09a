package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cluster "github.com/livitki/spark-vllm-docker"
	"github.com/livitki/spark-vllm-docker/executor"
)

const cliAddrOut = `2: enp1s0f0    inet 10.0.0.2/24 brd 10.0.0.255 scope global enp1s0f0\       valid_lft forever preferred_lft forever`

// runCLI executes the root command against a fake executor with a fixed
// two-node cluster: 10.0.0.2 is the local head, 10.0.0.1 the worker.
func runCLI(t *testing.T, fake *executor.Fake, args ...string) error {
	t.Helper()

	fake.SetResponse("ip -o -4 addr show", cliAddrOut, nil)
	managerOptions = []cluster.ManagerOption{cluster.WithExecutor(fake)}
	viper.Set("nodes", []string{"10.0.0.1", "10.0.0.2"})
	viper.Set("eth_if", "enp1s0f0")
	viper.Set("ib_if", []string{"mlx5_0"})
	t.Cleanup(func() {
		managerOptions = nil
		viper.Set("nodes", nil)
		viper.Set("eth_if", nil)
		viper.Set("ib_if", nil)
		checkConfig = false
	})

	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCheckConfigGatesEveryAction(t *testing.T) {
	preflight := "ssh -o BatchMode=yes -o StrictHostKeyChecking=no -o ConnectTimeout=5 10.0.0.1 true"

	tests := []struct {
		name string
		args []string
	}{
		{"start", []string{"--check-config"}},
		{"stop", []string{"stop", "--check-config"}},
		{"status", []string{"status", "--check-config"}},
		{"exec", []string{"exec", "--check-config", "hostname"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := executor.NewFake()
			require.NoError(t, runCLI(t, fake, tt.args...))

			// The check resolves addresses and verifies the worker,
			// nothing else: no container is started, stopped or queried.
			lines := fake.CallLines()
			require.Len(t, lines, 2)
			assert.Equal(t, "ip -o -4 addr show", lines[0])
			assert.Equal(t, preflight, lines[1])
		})
	}
}

func TestVersionShowsBuildAndDefaults(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "vllm-cluster dev")
	assert.Contains(t, out, cluster.DefaultImage)
}
