package discovery

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/livitki/spark-vllm-docker/executor"
)

const (
	avahiBrowse = "avahi-browse"
	sshService  = "_ssh._tcp"
)

// mdnsScanner finds peers from their SSH service announcements on the
// management interface.
type mdnsScanner struct {
	exec  executor.Executor
	iface string
}

func (s *mdnsScanner) Scan(ctx context.Context) ([]string, error) {
	out, err := s.exec.Execute(ctx, avahiBrowse, "-rtp", sshService)
	if err != nil {
		return nil, fmt.Errorf("avahi-browse failed: %w", err)
	}
	return s.parse(out), nil
}

// parse extracts IPv4 addresses from resolved announcement lines,
// keeping only announcements that arrived on the management interface:
//
//	=;enp1s0f0;IPv4;dgx1;SSH Remote Terminal;local;dgx1.local;10.0.0.3;22;
func (s *mdnsScanner) parse(out string) []string {
	var peers []string
	for _, line := range strings.Split(out, "\n") {
		f := strings.Split(line, ";")
		if len(f) < 9 || f[0] != "=" || f[2] != "IPv4" {
			continue
		}
		if s.iface != "" && f[1] != s.iface {
			continue
		}
		addr, err := netip.ParseAddr(f[7])
		if err != nil || !addr.Is4() {
			continue
		}
		peers = append(peers, addr.String())
	}
	return peers
}
