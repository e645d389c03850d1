package relay

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// probeTarget is only used to pick a route; nothing is sent to it.
const probeTarget = "192.0.2.1:9"

var loopback = netip.MustParseAddr("127.0.0.1")

// LocalIP returns the IPv4 address of the interface holding the default
// route, or 127.0.0.1 if there is none.
func LocalIP() netip.Addr {
	conn, err := net.Dial("udp4", probeTarget)
	if err != nil {
		return loopback
	}
	defer conn.Close()

	addr, ok := netip.AddrFromSlice(conn.LocalAddr().(*net.UDPAddr).IP)
	if !ok || addr.IsUnspecified() {
		return loopback
	}
	return addr.Unmap()
}

// ResolveListenAddr turns a "host:port" listen string into a concrete
// address. An empty or unspecified host is replaced by local(), so that
// the address can be handed to clients.
func ResolveListenAddr(listen string, local func() netip.Addr) (netip.AddrPort, error) {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("listen address %q: %w", listen, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("listen port %q: %w", portStr, err)
	}

	var addr netip.Addr
	if host != "" {
		addr, err = netip.ParseAddr(host)
		if err != nil {
			return netip.AddrPort{}, fmt.Errorf("listen host %q: %w", host, err)
		}
	}
	if !addr.IsValid() || addr.IsUnspecified() {
		if local == nil {
			local = LocalIP
		}
		addr = local()
	}
	return netip.AddrPortFrom(addr.Unmap(), uint16(port)), nil
}
