package discovery

import (
	"context"
	"encoding/binary"
	"net"
	"net/netip"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// probeConcurrency caps parallel connection attempts so a wide
	// subnet does not exhaust file descriptors.
	probeConcurrency = 256

	defaultProbeTimeout = time.Second
)

// DialFunc attempts one TCP connection to addr (host:port) and returns
// nil when the peer accepted.
type DialFunc func(ctx context.Context, addr string) error

// probeScanner dials the remote-execution port on every candidate host
// in the management subnet. All probes fan out concurrently and the
// scan joins on completion of every attempt.
type probeScanner struct {
	prefix  netip.Prefix
	local   netip.Addr
	port    int
	timeout time.Duration
	dial    DialFunc
}

func newProbeScanner(cfg Config) *probeScanner {
	s := &probeScanner{
		prefix:  cfg.Prefix,
		local:   cfg.Prefix.Addr(),
		port:    cfg.Port,
		timeout: cfg.Timeout,
		dial:    cfg.Dial,
	}
	if s.timeout <= 0 {
		s.timeout = defaultProbeTimeout
	}
	if s.dial == nil {
		s.dial = dialTimeout(s.timeout)
	}
	return s
}

func dialTimeout(timeout time.Duration) DialFunc {
	return func(ctx context.Context, addr string) error {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

func (s *probeScanner) Scan(ctx context.Context) ([]string, error) {
	candidates := hostAddrs(s.prefix, s.local)
	found := make([]string, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, addr := range candidates {
		i, addr := i, addr
		g.Go(func() error {
			target := net.JoinHostPort(addr.String(), strconv.Itoa(s.port))
			if err := s.dial(gctx, target); err == nil {
				found[i] = addr.String()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	peers := make([]string, 0, len(found))
	for _, f := range found {
		if f != "" {
			peers = append(peers, f)
		}
	}
	return peers, nil
}

// hostAddrs enumerates usable host addresses in prefix, excluding the
// network address, the broadcast address and the local address. Only
// IPv4 prefixes have candidates.
func hostAddrs(prefix netip.Prefix, local netip.Addr) []netip.Addr {
	p := prefix.Masked()
	if !p.Addr().Is4() {
		return nil
	}
	bits := p.Bits()
	if bits >= 31 {
		return nil
	}

	a4 := p.Addr().As4()
	base := binary.BigEndian.Uint32(a4[:])
	size := uint64(1) << uint(32-bits)
	last := uint32(uint64(base) + size - 1)

	var addrs []netip.Addr
	for u := base + 1; u < last; u++ {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], u)
		a := netip.AddrFrom4(b)
		if a == local {
			continue
		}
		addrs = append(addrs, a)
	}
	return addrs
}
