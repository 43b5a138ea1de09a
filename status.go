package cluster

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// NodeStatus is one host's observed container state.
type NodeStatus struct {
	// Addr is the node's management address.
	Addr string `json:"addr"`

	// Role is head or worker.
	Role Role `json:"role"`

	// Running reports whether the cluster container is up on this host.
	Running bool `json:"running"`

	// Detail carries the query error when the host could not be asked.
	Detail string `json:"detail,omitempty"`
}

// ClusterStatus is the observational report for the whole cluster.
type ClusterStatus struct {
	ContainerName string       `json:"containerName"`
	Image         string       `json:"image"`
	Management    string       `json:"management"`
	DataPlanes    []string     `json:"dataPlanes"`
	Nodes         []NodeStatus `json:"nodes"`

	// Workload is the in-container workload manager's own report, taken
	// from the head when its container is running.
	Workload string `json:"workload,omitempty"`
}

// Running reports whether every node runs the cluster container.
func (s *ClusterStatus) Running() bool {
	for _, n := range s.Nodes {
		if !n.Running {
			return false
		}
	}
	return len(s.Nodes) > 0
}

// Status queries container presence on every host and, when the head
// container is up, the workload manager's own status. It is side-effect
// free; per-host query failures are reported in the result, and a
// failure to obtain the workload report does not fail the action.
func (m *Manager) Status(ctx context.Context) (*ClusterStatus, error) {
	c, err := m.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	st := &ClusterStatus{
		ContainerName: m.cfg.ContainerName,
		Image:         m.cfg.Image,
		Management:    c.Interfaces.Management,
		DataPlanes:    c.Interfaces.DataPlanes,
	}

	head := NodeStatus{Addr: c.head.Addr, Role: RoleHead}
	running, err := containerRunning(ctx, c.head, m.cfg.ContainerName)
	if err != nil {
		head.Detail = err.Error()
	} else {
		head.Running = running
	}
	if head.Running {
		out, err := c.head.Run(ctx, "docker", workloadStatusArgs(m.cfg.ContainerName)...)
		if err != nil {
			st.Workload = fmt.Sprintf("unavailable: %v", err)
		} else {
			st.Workload = out
		}
	}
	st.Nodes = append(st.Nodes, head)

	workers := make([]NodeStatus, len(c.workers))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range c.workers {
		i, w := i, w
		g.Go(func() error {
			ws := NodeStatus{Addr: w.Addr, Role: RoleWorker}
			running, err := containerRunning(gctx, w, m.cfg.ContainerName)
			if err != nil {
				ws.Detail = err.Error()
			} else {
				ws.Running = running
			}
			workers[i] = ws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	st.Nodes = append(st.Nodes, workers...)
	return st, nil
}
