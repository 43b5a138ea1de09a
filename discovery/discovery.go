// Package discovery enumerates peer hosts on the management network.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sort"
	"time"

	"github.com/livitki/spark-vllm-docker/executor"
)

// Strategy selects how peers are found.
type Strategy string

const (
	// StrategyAuto uses the announcement scan when avahi-browse is
	// installed and falls back to the subnet probe otherwise.
	StrategyAuto Strategy = "auto"
	// StrategyMDNS scans mDNS SSH service announcements.
	StrategyMDNS Strategy = "mdns"
	// StrategyProbe dials the remote-execution port on every host in the
	// management subnet.
	StrategyProbe Strategy = "probe"
)

// ErrToolMissing indicates the scanning tool a strategy depends on is
// not installed on this host.
var ErrToolMissing = errors.New("discovery tool not found")

// Scanner produces the peer addresses visible on the management
// network. Results may contain duplicates and the local address.
type Scanner interface {
	Scan(ctx context.Context) ([]string, error)
}

// Config carries the management network parameters scanners need.
type Config struct {
	Interface string       // management interface name
	Prefix    netip.Prefix // local address and network on that interface
	Port      int          // remote-execution port probed on peers
	Timeout   time.Duration
	Logger    *slog.Logger

	// Dial overrides the probe connection attempt. Tests inject it.
	Dial DialFunc
}

// Nodes discovers the cluster node set: the local address plus every
// peer the selected strategy finds, de-duplicated and sorted.
func Nodes(ctx context.Context, exec executor.Executor, strategy Strategy, cfg Config) ([]string, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !cfg.Prefix.IsValid() {
		return nil, fmt.Errorf("management network prefix is required")
	}

	s, err := newScanner(exec, strategy, cfg)
	if err != nil {
		return nil, err
	}
	peers, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}

	nodes := sortedUnion(peers, cfg.Prefix.Addr().String())
	cfg.Logger.Debug("discovered nodes", "count", len(nodes), "nodes", nodes)
	return nodes, nil
}

func newScanner(exec executor.Executor, strategy Strategy, cfg Config) (Scanner, error) {
	switch strategy {
	case StrategyMDNS:
		if _, err := exec.LookPath(avahiBrowse); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrToolMissing, avahiBrowse)
		}
		return &mdnsScanner{exec: exec, iface: cfg.Interface}, nil
	case StrategyProbe:
		return newProbeScanner(cfg), nil
	case StrategyAuto, "":
		if _, err := exec.LookPath(avahiBrowse); err == nil {
			return &mdnsScanner{exec: exec, iface: cfg.Interface}, nil
		}
		return newProbeScanner(cfg), nil
	default:
		return nil, fmt.Errorf("unknown discovery strategy: %s", strategy)
	}
}

// sortedUnion merges peers with the local address and drops duplicates.
// Ordering is a lexicographic sort of the dotted-decimal strings, so
// "10.0.0.10" comes before "10.0.0.2"; role resolution is independent
// of it, but display and status-check order follow it.
func sortedUnion(peers []string, local string) []string {
	set := map[string]struct{}{local: {}}
	for _, p := range peers {
		set[p] = struct{}{}
	}
	nodes := make([]string, 0, len(set))
	for n := range set {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}
