package cluster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/livitki/spark-vllm-docker/discovery"
	"github.com/livitki/spark-vllm-docker/executor"
	"github.com/livitki/spark-vllm-docker/netinfo"
)

// Manager drives the cluster lifecycle. Its methods map to the CLI
// actions: Start, Stop, Status, Exec and CheckConfig. Nothing is
// persisted between invocations; every action re-derives the topology
// from discovery or the configured node list.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	exec   executor.Executor

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// ManagerOption is a functional option for configuring a Manager.
type ManagerOption func(*Manager)

// WithExecutor sets a custom command executor for testing.
func WithExecutor(exec executor.Executor) ManagerOption {
	return func(m *Manager) {
		m.exec = exec
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger.With("component", "manager")
	}
}

// WithStdio redirects the streams used for log tailing and exec.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) ManagerOption {
	return func(m *Manager) {
		m.stdin = stdin
		m.stdout = stdout
		m.stderr = stderr
	}
}

// NewManager creates a cluster manager with the given configuration.
func NewManager(cfg Config, opts ...ManagerOption) (*Manager, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Nodes = dedupeNodes(cfg.Nodes)

	m := &Manager{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "manager"),
		exec:   executor.DefaultExecutor{},
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Cluster is the resolved view every action operates on: the network
// binding, the node set and its head/worker partition.
type Cluster struct {
	Interfaces netinfo.Interfaces
	Nodes      []string
	Topology   Topology

	head    *Node
	workers []*Node
}

func (c *Cluster) nodes() []*Node {
	return append([]*Node{c.head}, c.workers...)
}

// Resolve runs interface detection, peer discovery (unless the node set
// was supplied) and topology resolution.
func (m *Manager) Resolve(ctx context.Context) (*Cluster, error) {
	ifs, err := netinfo.Discover(ctx, m.exec, m.cfg.ManagementIf, m.cfg.DataPlaneIfs)
	if err != nil {
		return nil, err
	}

	nodes := m.cfg.Nodes
	if len(nodes) == 0 {
		prefix, err := netinfo.Prefix(ctx, m.exec, ifs.Management)
		if err != nil {
			return nil, err
		}
		nodes, err = discovery.Nodes(ctx, m.exec, discovery.Strategy(m.cfg.Discovery), discovery.Config{
			Interface: ifs.Management,
			Prefix:    prefix,
			Port:      m.cfg.SSHPort,
			Timeout:   m.cfg.ProbeTimeout,
			Logger:    m.logger,
		})
		if err != nil {
			return nil, err
		}
	}
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}

	localAddrs, err := netinfo.LocalIPv4s(ctx, m.exec)
	if err != nil {
		return nil, err
	}
	topo, err := ResolveTopology(nodes, localAddrs)
	if err != nil {
		return nil, err
	}

	c := &Cluster{Interfaces: ifs, Nodes: nodes, Topology: topo}
	c.head = newNode(topo.Head, true, m.exec, m.cfg)
	for _, w := range topo.Workers {
		c.workers = append(c.workers, newNode(w, false, m.exec, m.cfg))
	}
	m.logger.Info("topology resolved",
		"head", topo.Head, "workers", len(topo.Workers), "interface", ifs.Management)
	return c, nil
}

// Start launches the cluster: preflight, idempotency guard, head first,
// then workers in parallel, then readiness polling. In foreground mode
// it streams head logs until interrupted and tears the cluster down on
// the way out; in daemon mode the cluster outlives the invocation.
func (m *Manager) Start(ctx context.Context) error {
	c, err := m.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := m.preflight(ctx, c); err != nil {
		return err
	}
	if err := m.guardNotRunning(ctx, c); err != nil {
		return err
	}

	if !m.cfg.Daemon {
		guard := newCleanup(func() {
			m.logger.Info("tearing down cluster")
			m.stopAll(context.Background(), c)
		})
		defer guard.Run()
	}

	if err := m.launch(ctx, c); err != nil {
		return err
	}
	if err := m.waitReady(ctx, c.head); err != nil {
		return err
	}
	m.logger.Info("cluster ready", "head", c.Topology.Head, "workers", len(c.workers))

	if m.cfg.Daemon {
		return nil
	}
	return m.followLogs(ctx, c.head)
}

// Stop tears the cluster down on every resolved host. Per-host failures
// are logged, not returned: stop succeeds once every host was attempted.
func (m *Manager) Stop(ctx context.Context) error {
	c, err := m.Resolve(ctx)
	if err != nil {
		return err
	}
	m.stopAll(ctx, c)
	return nil
}

// Exec runs command inside the head container, starting the cluster
// first unless one is already running, and always tears it down
// afterwards. The returned code is the command's exit status and is
// valid only when err is nil.
func (m *Manager) Exec(ctx context.Context, command []string) (int, error) {
	if len(command) == 0 {
		return 0, fmt.Errorf("exec requires a command")
	}
	c, err := m.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	if err := m.preflight(ctx, c); err != nil {
		return 0, err
	}

	guard := newCleanup(func() {
		m.logger.Info("tearing down cluster")
		m.stopAll(context.Background(), c)
	})
	defer guard.Run()

	launch := true
	if err := m.guardNotRunning(ctx, c); err != nil {
		var already *AlreadyRunningError
		if !errors.As(err, &already) {
			return 0, err
		}
		launch = false
		m.logger.Info("reusing running cluster", "host", already.Host)
	}
	if launch {
		if err := m.launch(ctx, c); err != nil {
			return 0, err
		}
	}
	if err := m.waitReady(ctx, c.head); err != nil {
		return 0, err
	}

	err = c.head.Stream(ctx, m.stdin, m.stdout, m.stderr, "docker", execArgs(m.cfg.ContainerName, command)...)
	if code, ok := executor.ExitCode(err); ok {
		return code, nil
	}
	return 0, fmt.Errorf("exec failed: %w", err)
}

// CheckConfig runs discovery and the connectivity preflight without
// mutating anything and returns the resolved view.
func (m *Manager) CheckConfig(ctx context.Context) (*Cluster, error) {
	c, err := m.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.preflight(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// preflight verifies non-interactive SSH works against every worker
// before anything mutates. Any failure aborts the whole operation.
func (m *Manager) preflight(ctx context.Context, c *Cluster) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range c.workers {
		w := w
		g.Go(func() error {
			if err := w.Ping(gctx); err != nil {
				return &WorkerUnreachableError{Host: w.Addr, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// guardNotRunning is the start idempotency check: no host may already
// run a container of the configured name. The check-then-act window is
// not atomic; two operators starting concurrently can race.
func (m *Manager) guardNotRunning(ctx context.Context, c *Cluster) error {
	for _, n := range c.nodes() {
		running, err := containerRunning(ctx, n, m.cfg.ContainerName)
		if err != nil {
			return fmt.Errorf("failed to query containers on %s: %w", n.Addr, err)
		}
		if running {
			return &AlreadyRunningError{Host: n.Addr}
		}
	}
	return nil
}

// launch starts the head container first, then every worker in
// parallel. Workers receive the head address to join.
func (m *Manager) launch(ctx context.Context, c *Cluster) error {
	extra := extraLaunchArgs()

	out, err := c.head.Run(ctx, "docker", runArgs(m.cfg, RoleHead, c.Topology.Head, c.Topology.Head, c.Interfaces, extra)...)
	if err != nil {
		m.logger.Debug("head launch output", "output", out)
		return fmt.Errorf("failed to launch head on %s: %w", c.Topology.Head, err)
	}
	m.logger.Info("head launched", "host", c.Topology.Head)

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range c.workers {
		w := w
		g.Go(func() error {
			out, err := w.Run(gctx, "docker", runArgs(m.cfg, RoleWorker, w.Addr, c.Topology.Head, c.Interfaces, extra)...)
			if err != nil {
				m.logger.Debug("worker launch output", "host", w.Addr, "output", out)
				return fmt.Errorf("failed to launch worker on %s: %w", w.Addr, err)
			}
			m.logger.Info("worker launched", "host", w.Addr)
			return nil
		})
	}
	return g.Wait()
}

// stopAll issues stop on every host, best effort: failures are logged
// and swallowed so a degraded cluster is torn down as far as possible.
func (m *Manager) stopAll(ctx context.Context, c *Cluster) {
	var wg sync.WaitGroup
	for _, n := range c.nodes() {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := n.Run(ctx, "docker", stopArgs(m.cfg.ContainerName)...); err != nil {
				m.logger.Warn("failed to stop container", "host", n.Addr, "error", err)
				return
			}
			m.logger.Info("container stopped", "host", n.Addr)
		}()
	}
	wg.Wait()
}

// followLogs tails the head container until the stream ends or the
// context is cancelled. Cancellation is how an interactive start
// normally ends, so it is returned unwrapped for the caller to map.
func (m *Manager) followLogs(ctx context.Context, head *Node) error {
	err := head.Stream(ctx, nil, m.stdout, m.stderr, "docker", logsArgs(m.cfg.ContainerName)...)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("log streaming failed: %w", err)
	}
	return nil
}
