package cluster

import (
	"context"
	"os"
	"strings"

	"github.com/livitki/spark-vllm-docker/netinfo"
)

// Role is a cluster member's position in the topology.
type Role string

const (
	RoleHead   Role = "head"
	RoleWorker Role = "worker"
)

// runArgs builds the docker argv that launches one cluster member. The
// container shares the host network and IPC namespaces and gets the
// InfiniBand devices passed through; the entrypoint reads its role and
// peer addresses from the environment.
func runArgs(cfg Config, role Role, nodeAddr, headAddr string, ifs netinfo.Interfaces, extra []string) []string {
	args := []string{
		"run", "--rm", "-d",
		"--name", cfg.ContainerName,
		"--network", "host",
		"--ipc", "host",
		"--gpus", "all",
		"--device", "/dev/infiniband",
		"-e", "NODE_ROLE=" + string(role),
		"-e", "NODE_ADDR=" + nodeAddr,
		"-e", "HEAD_ADDR=" + headAddr,
		"-e", "NCCL_SOCKET_IFNAME=" + ifs.Management,
		"-e", "NCCL_IB_HCA=" + strings.Join(ifs.DataPlanes, ","),
	}
	args = append(args, extra...)
	return append(args, cfg.Image)
}

func psArgs(name string) []string {
	return []string{"ps", "--filter", "name=" + name, "--format", "{{.Names}}"}
}

func stopArgs(name string) []string {
	return []string{"stop", name}
}

func logsArgs(name string) []string {
	return []string{"logs", "-f", name}
}

func execArgs(name string, command []string) []string {
	return append([]string{"exec", "-i", name}, command...)
}

func workloadStatusArgs(name string) []string {
	return []string{"exec", name, "ray", "status"}
}

// containerRunning queries the node's docker daemon for a running
// container of the given name. The name filter matches substrings, so
// the output is compared line by line for an exact match.
func containerRunning(ctx context.Context, n *Node, name string) (bool, error) {
	out, err := n.Run(ctx, "docker", psArgs(name)...)
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// extraLaunchArgs reads operator-supplied docker arguments from the
// environment; they are appended to every launch on every host.
func extraLaunchArgs() []string {
	return strings.Fields(os.Getenv(ExtraArgsEnv))
}
