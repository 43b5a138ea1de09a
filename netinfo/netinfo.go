// Package netinfo inspects the local host's InfiniBand devices and
// their paired ethernet interfaces.
package netinfo

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/livitki/spark-vllm-docker/executor"
)

var (
	// ErrNoActiveDataPlaneDevice indicates no InfiniBand device reports link-up.
	ErrNoActiveDataPlaneDevice = errors.New("no link-up InfiniBand device found")

	// ErrNoAddressedCandidate indicates link-up InfiniBand devices exist but
	// none of their paired ethernet interfaces carries an IPv4 address.
	ErrNoAddressedCandidate = errors.New("no paired ethernet interface has an IPv4 address")

	// ErrInterfaceHasNoAddress indicates the requested interface has no IPv4
	// address assigned.
	ErrInterfaceHasNoAddress = errors.New("interface has no IPv4 address")
)

// InterfacePair is one link-up InfiniBand device together with its paired
// ethernet interface.
type InterfacePair struct {
	Device     string // RDMA device name, e.g. mlx5_0
	Netdev     string // paired ethernet interface, e.g. enp1s0f0
	HasAddress bool
}

// Interfaces is the resolved network binding for a cluster member: the
// management interface carrying control traffic and the InfiniBand devices
// handed to the workload for data traffic.
type Interfaces struct {
	Management string
	DataPlanes []string
}

// Pairs lists the link-up InfiniBand devices with their paired ethernet
// interfaces, marking pairs whose interface holds an IPv4 address.
func Pairs(ctx context.Context, exec executor.Executor) ([]InterfacePair, error) {
	out, err := exec.Execute(ctx, "ibdev2netdev")
	if err != nil {
		return nil, fmt.Errorf("ibdev2netdev failed: %w", err)
	}
	pairs := parsePairs(out)
	if len(pairs) == 0 {
		return nil, ErrNoActiveDataPlaneDevice
	}

	addrs, err := ipv4Addrs(ctx, exec)
	if err != nil {
		return nil, err
	}
	addressed := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		addressed[a.name] = true
	}
	for i := range pairs {
		pairs[i].HasAddress = addressed[pairs[i].Netdev]
	}
	return pairs, nil
}

// parsePairs reads ibdev2netdev lines of the form
// "mlx5_0 port 1 ==> enp1s0f0 (Up)" and keeps link-up pairs, one per
// device.
func parsePairs(out string) []InterfacePair {
	var pairs []InterfacePair
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) < 6 || f[1] != "port" || f[3] != "==>" {
			continue
		}
		if strings.Trim(f[5], "()") != "Up" {
			continue
		}
		if seen[f[0]] {
			continue
		}
		seen[f[0]] = true
		pairs = append(pairs, InterfacePair{Device: f[0], Netdev: f[4]})
	}
	return pairs
}

// Discover resolves the management interface and the data-plane device
// set, skipping detection for any value supplied explicitly.
func Discover(ctx context.Context, exec executor.Executor, management string, dataPlanes []string) (Interfaces, error) {
	ifs := Interfaces{Management: management, DataPlanes: dataPlanes}
	if ifs.Management != "" && len(ifs.DataPlanes) > 0 {
		return ifs, nil
	}

	pairs, err := Pairs(ctx, exec)
	if err != nil {
		return Interfaces{}, err
	}
	if len(ifs.DataPlanes) == 0 {
		for _, p := range pairs {
			ifs.DataPlanes = append(ifs.DataPlanes, p.Device)
		}
	}
	if ifs.Management == "" {
		ifs.Management = selectManagement(pairs)
		if ifs.Management == "" {
			return Interfaces{}, ErrNoAddressedCandidate
		}
	}
	return ifs, nil
}

// selectManagement picks the first addressed interface whose name has no
// uppercase P, falling back to the first addressed interface. On common
// ConnectX naming schemes the P segment marks a virtual function
// (enP1p0s0f1) while the bare name is the physical port; this is a naming
// heuristic, not a guarantee.
func selectManagement(pairs []InterfacePair) string {
	for _, p := range pairs {
		if p.HasAddress && !strings.Contains(p.Netdev, "P") {
			return p.Netdev
		}
	}
	for _, p := range pairs {
		if p.HasAddress {
			return p.Netdev
		}
	}
	return ""
}

type ifaceAddr struct {
	name   string
	prefix netip.Prefix
}

// ipv4Addrs parses "ip -o -4 addr show" output, loopback excluded.
func ipv4Addrs(ctx context.Context, exec executor.Executor) ([]ifaceAddr, error) {
	out, err := exec.Execute(ctx, "ip", "-o", "-4", "addr", "show")
	if err != nil {
		return nil, fmt.Errorf("ip addr show failed: %w", err)
	}
	var addrs []ifaceAddr
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) < 4 || f[2] != "inet" || f[1] == "lo" {
			continue
		}
		prefix, err := netip.ParsePrefix(f[3])
		if err != nil || !prefix.Addr().Is4() {
			continue
		}
		addrs = append(addrs, ifaceAddr{name: f[1], prefix: prefix})
	}
	return addrs, nil
}

// Prefix returns the first IPv4 address and network assigned to iface.
func Prefix(ctx context.Context, exec executor.Executor, iface string) (netip.Prefix, error) {
	addrs, err := ipv4Addrs(ctx, exec)
	if err != nil {
		return netip.Prefix{}, err
	}
	for _, a := range addrs {
		if a.name == iface {
			return a.prefix, nil
		}
	}
	return netip.Prefix{}, fmt.Errorf("%w: %s", ErrInterfaceHasNoAddress, iface)
}

// LocalIPv4s returns every IPv4 address bound to this host, loopback
// excluded.
func LocalIPv4s(ctx context.Context, exec executor.Executor) ([]string, error) {
	addrs, err := ipv4Addrs(ctx, exec)
	if err != nil {
		return nil, err
	}
	ips := make([]string, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.prefix.Addr().String())
	}
	return ips, nil
}
