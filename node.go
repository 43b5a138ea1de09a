package cluster

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/livitki/spark-vllm-docker/executor"
)

// Node executes commands on one cluster host: directly for the local
// head, over SSH for remote workers. SSH runs non-interactively with
// host-key checking disabled and a short connect timeout.
type Node struct {
	Addr  string
	Local bool

	exec       executor.Executor
	sshUser    string
	sshPort    int
	sshTimeout time.Duration
}

func newNode(addr string, local bool, exec executor.Executor, cfg Config) *Node {
	return &Node{
		Addr:       addr,
		Local:      local,
		exec:       exec,
		sshUser:    cfg.SSHUser,
		sshPort:    cfg.SSHPort,
		sshTimeout: cfg.SSHTimeout,
	}
}

// Run executes name with args on the node and captures combined output.
func (n *Node) Run(ctx context.Context, name string, args ...string) (string, error) {
	if n.Local {
		return n.exec.Execute(ctx, name, args...)
	}
	return n.exec.Execute(ctx, "ssh", n.remoteArgs(name, args)...)
}

// Stream executes name with args on the node wired to the given stdio.
func (n *Node) Stream(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, name string, args ...string) error {
	if n.Local {
		return n.exec.Stream(ctx, stdin, stdout, stderr, name, args...)
	}
	return n.exec.Stream(ctx, stdin, stdout, stderr, "ssh", n.remoteArgs(name, args)...)
}

// Ping verifies non-interactive remote execution works against the node.
func (n *Node) Ping(ctx context.Context) error {
	if n.Local {
		return nil
	}
	if _, err := n.Run(ctx, "true"); err != nil {
		return fmt.Errorf("ssh probe failed: %w", err)
	}
	return nil
}

func (n *Node) remoteArgs(name string, args []string) []string {
	out := []string{
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=no",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(n.sshTimeout/time.Second)),
	}
	if n.sshPort != 0 && n.sshPort != DefaultSSHPort {
		out = append(out, "-p", strconv.Itoa(n.sshPort))
	}
	out = append(out, n.target(), name)
	return append(out, args...)
}

func (n *Node) target() string {
	if n.sshUser != "" {
		return n.sshUser + "@" + n.Addr
	}
	return n.Addr
}
