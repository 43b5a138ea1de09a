package cluster

import "fmt"

// Topology partitions the node set into the single local head and the
// remote workers, preserving node-set order.
type Topology struct {
	Head    string
	Workers []string
}

// ResolveTopology matches nodes against the host's bound addresses.
// Exactly one node must be local: that node becomes the head and every
// other node a worker, in nodes order.
func ResolveTopology(nodes, localAddrs []string) (Topology, error) {
	local := make(map[string]struct{}, len(localAddrs))
	for _, a := range localAddrs {
		local[a] = struct{}{}
	}

	var topo Topology
	for _, n := range nodes {
		if _, ok := local[n]; ok {
			if topo.Head != "" {
				return Topology{}, fmt.Errorf("%w: %s and %s", ErrMultipleLocalNodes, topo.Head, n)
			}
			topo.Head = n
			continue
		}
		topo.Workers = append(topo.Workers, n)
	}
	if topo.Head == "" {
		return Topology{}, ErrHeadNotLocal
	}
	return topo, nil
}

// dedupeNodes drops repeated addresses, keeping first occurrence order.
func dedupeNodes(nodes []string) []string {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
