package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/discovery"
)

// DefaultProbeInterval is how often Discover repeats the probe.
const DefaultProbeInterval = time.Second

// Discover multicasts the discovery probe to group until a relay answers or
// ctx is done. A zero group means discovery.DefaultGroup.
func Discover(ctx context.Context, group netip.AddrPort) (netip.AddrPort, error) {
	return discover(ctx, group, DefaultProbeInterval)
}

func discover(ctx context.Context, group netip.AddrPort, interval time.Duration) (netip.AddrPort, error) {
	if !group.IsValid() {
		group = discovery.DefaultGroup
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("discover listen: %w", err)
	}
	defer conn.Close()

	probe := []byte(discovery.ProbeMessage)
	buf := make([]byte, 256)
	for {
		if _, err := conn.WriteToUDPAddrPort(probe, group); err != nil {
			return netip.AddrPort{}, fmt.Errorf("send probe: %w", err)
		}

		deadline := time.Now().Add(interval)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		_ = conn.SetReadDeadline(deadline)

		for {
			n, _, err := conn.ReadFromUDPAddrPort(buf)
			if err != nil {
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					break
				}
				return netip.AddrPort{}, fmt.Errorf("discover receive: %w", err)
			}
			addr, err := discovery.ParseReply(buf[:n])
			if err != nil {
				// Something else on the group port.
				continue
			}
			return addr, nil
		}

		if err := ctx.Err(); err != nil {
			return netip.AddrPort{}, err
		}
	}
}
