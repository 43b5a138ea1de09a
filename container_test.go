package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livitki/spark-vllm-docker/executor"
	"github.com/livitki/spark-vllm-docker/netinfo"
)

func TestRunArgs(t *testing.T) {
	cfg := Config{Image: "vllm-node", ContainerName: "vllm_node"}
	ifs := netinfo.Interfaces{
		Management: "enp1s0f0",
		DataPlanes: []string{"mlx5_0", "mlx5_1"},
	}

	t.Run("head", func(t *testing.T) {
		args := runArgs(cfg, RoleHead, "10.0.0.2", "10.0.0.2", ifs, nil)
		assert.Equal(t, []string{
			"run", "--rm", "-d",
			"--name", "vllm_node",
			"--network", "host",
			"--ipc", "host",
			"--gpus", "all",
			"--device", "/dev/infiniband",
			"-e", "NODE_ROLE=head",
			"-e", "NODE_ADDR=10.0.0.2",
			"-e", "HEAD_ADDR=10.0.0.2",
			"-e", "NCCL_SOCKET_IFNAME=enp1s0f0",
			"-e", "NCCL_IB_HCA=mlx5_0,mlx5_1",
			"vllm-node",
		}, args)
	})

	t.Run("worker points at head", func(t *testing.T) {
		args := runArgs(cfg, RoleWorker, "10.0.0.3", "10.0.0.2", ifs, nil)
		assert.Contains(t, args, "NODE_ROLE=worker")
		assert.Contains(t, args, "NODE_ADDR=10.0.0.3")
		assert.Contains(t, args, "HEAD_ADDR=10.0.0.2")
	})

	t.Run("extra args go before the image", func(t *testing.T) {
		args := runArgs(cfg, RoleHead, "10.0.0.2", "10.0.0.2", ifs,
			[]string{"-v", "/models:/models", "--shm-size", "16g"})
		require.GreaterOrEqual(t, len(args), 5)
		assert.Equal(t, "vllm-node", args[len(args)-1])
		assert.Equal(t, []string{"-v", "/models:/models", "--shm-size", "16g"},
			args[len(args)-5:len(args)-1])
	})
}

func TestContainerRunning(t *testing.T) {
	mkNode := func(fake *executor.Fake) *Node {
		return newNode("10.0.0.2", true, fake, Config{SSHPort: DefaultSSHPort, SSHTimeout: DefaultSSHTimeout})
	}

	t.Run("exact name match", func(t *testing.T) {
		fake := executor.NewFake()
		fake.SetResponse("docker ps", "vllm_node", nil)
		running, err := containerRunning(context.Background(), mkNode(fake), "vllm_node")
		require.NoError(t, err)
		assert.True(t, running)
	})

	t.Run("filter substring hits are ignored", func(t *testing.T) {
		fake := executor.NewFake()
		fake.SetResponse("docker ps", "vllm_node_old\nvllm_node2", nil)
		running, err := containerRunning(context.Background(), mkNode(fake), "vllm_node")
		require.NoError(t, err)
		assert.False(t, running)
	})

	t.Run("empty output", func(t *testing.T) {
		fake := executor.NewFake()
		running, err := containerRunning(context.Background(), mkNode(fake), "vllm_node")
		require.NoError(t, err)
		assert.False(t, running)
	})

	t.Run("query error propagates", func(t *testing.T) {
		fake := executor.NewFake()
		fake.SetResponse("docker ps", "", assert.AnError)
		_, err := containerRunning(context.Background(), mkNode(fake), "vllm_node")
		assert.Error(t, err)
	})
}

func TestExtraLaunchArgs(t *testing.T) {
	t.Setenv(ExtraArgsEnv, "  -v /models:/models   --shm-size 16g ")
	assert.Equal(t, []string{"-v", "/models:/models", "--shm-size", "16g"}, extraLaunchArgs())

	t.Setenv(ExtraArgsEnv, "")
	assert.Empty(t, extraLaunchArgs())
}
