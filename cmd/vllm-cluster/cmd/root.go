// Package cmd provides the CLI commands for vllm-cluster.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cluster "github.com/livitki/spark-vllm-docker"
)

var (
	cfgFile     string
	checkConfig bool
	daemon      bool
	jsonOut     bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
// Bare invocation starts the cluster in the foreground.
var rootCmd = &cobra.Command{
	Use:   "vllm-cluster",
	Short: "Launch and manage a multi-host vLLM docker cluster",
	Long: `vllm-cluster drives a vLLM cluster across docker hosts:
  - Detects the management and InfiniBand interfaces
  - Discovers peer nodes via mDNS or subnet probing
  - Starts the head container locally and workers over SSH
  - Polls the Ray control plane until the cluster is ready

Run without a subcommand to start the cluster in the foreground;
Ctrl+C tears it down everywhere.`,
	RunE:          runStart,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.vllm-cluster.yaml)")
	rootCmd.PersistentFlags().StringSliceP("nodes", "n", nil, "explicit node IPv4 addresses (skips discovery)")
	rootCmd.PersistentFlags().StringP("image", "t", cluster.DefaultImage, "container image to run on every node")
	rootCmd.PersistentFlags().String("name", cluster.DefaultContainerName, "shared container name")
	rootCmd.PersistentFlags().String("eth-if", "", "management interface (default: autodetect)")
	rootCmd.PersistentFlags().StringSlice("ib-if", nil, "InfiniBand devices (default: autodetect)")
	rootCmd.PersistentFlags().String("discover", "auto", "peer discovery strategy: auto|mdns|probe")
	rootCmd.PersistentFlags().String("ssh-user", "", "SSH login user for worker nodes")
	rootCmd.PersistentFlags().Int("ssh-port", cluster.DefaultSSHPort, "SSH and probe port")
	rootCmd.PersistentFlags().BoolVar(&checkConfig, "check-config", false, "resolve topology and verify connectivity, then exit")
	rootCmd.PersistentFlags().BoolVarP(&daemon, "daemon", "d", false, "leave the cluster running when start returns")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable status output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Bind flags to viper
	viper.BindPFlag("nodes", rootCmd.PersistentFlags().Lookup("nodes"))
	viper.BindPFlag("image", rootCmd.PersistentFlags().Lookup("image"))
	viper.BindPFlag("container_name", rootCmd.PersistentFlags().Lookup("name"))
	viper.BindPFlag("eth_if", rootCmd.PersistentFlags().Lookup("eth-if"))
	viper.BindPFlag("ib_if", rootCmd.PersistentFlags().Lookup("ib-if"))
	viper.BindPFlag("discover", rootCmd.PersistentFlags().Lookup("discover"))
	viper.BindPFlag("ssh_user", rootCmd.PersistentFlags().Lookup("ssh-user"))
	viper.BindPFlag("ssh_port", rootCmd.PersistentFlags().Lookup("ssh-port"))

	// Environment variable bindings
	viper.BindEnv("image", "VLLM_CLUSTER_IMAGE")
	viper.BindEnv("container_name", "VLLM_CLUSTER_NAME")
	viper.BindEnv("eth_if", "VLLM_CLUSTER_ETH_IF")
	viper.BindEnv("ib_if", "VLLM_CLUSTER_IB_IF")
	viper.BindEnv("ssh_user", "VLLM_CLUSTER_SSH_USER")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vllm-cluster")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// newLogger builds the CLI logger; --verbose lowers the level to debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildConfig assembles the cluster configuration from flags, env and
// config file, in that precedence.
func buildConfig() cluster.Config {
	return cluster.Config{
		Image:         viper.GetString("image"),
		ContainerName: viper.GetString("container_name"),
		Nodes:         viper.GetStringSlice("nodes"),
		ManagementIf:  viper.GetString("eth_if"),
		DataPlaneIfs:  viper.GetStringSlice("ib_if"),
		Discovery:     viper.GetString("discover"),
		SSHUser:       viper.GetString("ssh_user"),
		SSHPort:       viper.GetInt("ssh_port"),
		Daemon:        daemon,
		Logger:        newLogger(),
	}
}

// managerOptions is appended by tests to swap the executor under the CLI.
var managerOptions []cluster.ManagerOption

func newManager() (*cluster.Manager, error) {
	return cluster.NewManager(buildConfig(), managerOptions...)
}

// runCheckConfig resolves interfaces, nodes and topology, verifies every
// worker is reachable and prints the result without touching containers.
// Every action honors --check-config through this gate.
func runCheckConfig(ctx context.Context) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	c, err := m.CheckConfig(ctx)
	if err != nil {
		return err
	}
	printTopology(os.Stdout, c)
	fmt.Println("Configuration OK: all workers reachable.")
	return nil
}

// signalContext returns a context cancelled by the signals that must
// trigger cluster teardown.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
}

// printTopology renders the resolved cluster view.
func printTopology(w io.Writer, c *cluster.Cluster) {
	fmt.Fprintf(w, "Management interface: %s\n", c.Interfaces.Management)
	fmt.Fprintf(w, "Data plane devices:   %v\n", c.Interfaces.DataPlanes)
	fmt.Fprintf(w, "Head:                 %s\n", c.Topology.Head)
	fmt.Fprintf(w, "Workers:              %v\n", c.Topology.Workers)
}
