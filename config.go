package cluster

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

const (
	DefaultImage         = "vllm-node"
	DefaultContainerName = "vllm_node"
	DefaultSSHPort       = 22
	DefaultSSHTimeout    = 5 * time.Second
	DefaultProbeTimeout  = 1 * time.Second
	DefaultReadyInterval = 2 * time.Second
	DefaultReadyAttempts = 30
	DefaultJoinGrace     = 5 * time.Second
)

// ExtraArgsEnv names the environment variable whose whitespace-separated
// value is appended to every container launch command.
const ExtraArgsEnv = "VLLM_DOCKER_EXTRA_ARGS"

// Config configures the cluster manager.
type Config struct {
	// Image is the container image every cluster member runs.
	Image string
	// ContainerName is the shared container name; at most one container
	// of this name exists per host.
	ContainerName string

	// Nodes is the explicit member list in caller order. When empty the
	// node set is discovered on the management network.
	Nodes []string

	// ManagementIf and DataPlaneIfs override interface detection for the
	// values supplied; either may be set independently.
	ManagementIf string
	DataPlaneIfs []string

	// Discovery selects the peer discovery strategy: auto, mdns or probe.
	Discovery string

	// SSH settings for the remote command boundary.
	SSHUser    string
	SSHPort    int
	SSHTimeout time.Duration

	// ProbeTimeout bounds each subnet probe connection attempt.
	ProbeTimeout time.Duration

	// Readiness polling budget.
	ReadyInterval time.Duration
	ReadyAttempts int
	JoinGrace     time.Duration

	// Daemon leaves the cluster running after start returns: no log
	// streaming and no teardown on exit.
	Daemon bool

	Logger *slog.Logger
}

func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("Image is required")
	}
	if c.ContainerName == "" {
		return fmt.Errorf("ContainerName is required")
	}
	if strings.ContainsAny(c.ContainerName, " \t") {
		return fmt.Errorf("ContainerName must not contain whitespace")
	}
	for _, n := range c.Nodes {
		ip := net.ParseIP(n)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("invalid node address: %s", n)
		}
	}
	switch c.Discovery {
	case "", "auto", "mdns", "probe":
	default:
		return fmt.Errorf("invalid discovery strategy: %s", c.Discovery)
	}
	if c.SSHPort < 1 || c.SSHPort > 65535 {
		return fmt.Errorf("SSHPort must be between 1 and 65535")
	}
	if c.ReadyAttempts < 1 {
		return fmt.Errorf("ReadyAttempts must be at least 1")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.ContainerName == "" {
		c.ContainerName = DefaultContainerName
	}
	if c.Discovery == "" {
		c.Discovery = "auto"
	}
	if c.SSHPort == 0 {
		c.SSHPort = DefaultSSHPort
	}
	if c.SSHTimeout == 0 {
		c.SSHTimeout = DefaultSSHTimeout
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.ReadyInterval == 0 {
		c.ReadyInterval = DefaultReadyInterval
	}
	if c.ReadyAttempts == 0 {
		c.ReadyAttempts = DefaultReadyAttempts
	}
	if c.JoinGrace == 0 {
		c.JoinGrace = DefaultJoinGrace
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
