package cluster

import (
	"errors"
	"fmt"
)

// Cluster orchestration errors. Interface and peer discovery failures
// are defined in the netinfo and discovery packages; everything here
// covers topology resolution and the container lifecycle.
var (
	// ErrNoNodes indicates no nodes were supplied and none could be
	// discovered on the management network.
	ErrNoNodes = errors.New("no cluster nodes supplied or discovered")

	// ErrHeadNotLocal indicates no node address is bound to this host, so
	// the head cannot be resolved.
	ErrHeadNotLocal = errors.New("no cluster node address is bound to this host")

	// ErrMultipleLocalNodes indicates more than one node address is bound
	// to this host, so the head would be ambiguous.
	ErrMultipleLocalNodes = errors.New("multiple cluster node addresses are bound to this host")

	// ErrClusterNotReady indicates the workload manager did not report
	// ready within the polling budget.
	ErrClusterNotReady = errors.New("cluster did not become ready within the retry budget")
)

// WorkerUnreachableError reports a worker that failed the connectivity
// preflight.
type WorkerUnreachableError struct {
	Host string
	Err  error
}

func (e *WorkerUnreachableError) Error() string {
	return fmt.Sprintf("worker %s is unreachable: %v", e.Host, e.Err)
}

func (e *WorkerUnreachableError) Unwrap() error {
	return e.Err
}

// AlreadyRunningError reports a host that already runs a container of
// the configured name, blocking a fresh start.
type AlreadyRunningError struct {
	Host string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("cluster container already running on %s", e.Host)
}
