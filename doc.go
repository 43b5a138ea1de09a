// Package cluster launches, monitors and tears down a multi-host vLLM
// cluster: one head container and zero or more worker containers, each
// on its own GPU host.
//
// The package discovers everything it needs at invocation time: the
// InfiniBand data-plane devices and their paired ethernet management
// interface on the local host, the peer hosts on the management
// network, and the head/worker split (the single node whose address is
// bound locally becomes the head). Nothing is persisted between
// invocations.
//
// # Quick Start
//
//	mgr, err := cluster.NewManager(cluster.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(),
//	    syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
//	defer stop()
//
//	if err := mgr.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
// Every action re-resolves the cluster first, then:
//
//   - Start refuses to run over an existing cluster, launches the head
//     before the workers, waits for the workload manager to report
//     ready and, in foreground mode, streams head logs and tears the
//     cluster down on exit.
//   - Stop issues best-effort stops to every host.
//   - Status reports container presence per host plus the workload
//     manager's own view from the head.
//   - Exec starts the cluster (or reuses a running one), runs a command
//     inside the head container and always tears the cluster down.
//
// Remote hosts are driven exclusively over non-interactive SSH; the
// local head is driven through the docker CLI directly.
//
// # Sub-packages
//
//   - executor: command execution behind a mockable interface
//   - netinfo: InfiniBand/ethernet interface detection
//   - discovery: peer discovery via mDNS announcements or subnet probes
package cluster
