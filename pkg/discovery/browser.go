package discovery

import (
	"context"
	"net"
	"net/netip"
	"slices"

	"github.com/enbility/zeroconf/v3"
)

// Service is a relay found through DNS-SD.
type Service struct {
	InstanceName string
	RelayID      string
	Version      string
	Addrs        []netip.AddrPort
}

// BrowserConfig configures Browse.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string
}

// Browse collects advertised relays until ctx is done. Services seen on
// several interfaces are merged by instance name. Entries without an id
// record are skipped.
func Browse(ctx context.Context, config BrowserConfig) ([]Service, error) {
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if config.Interface != "" {
		if iface, err := net.InterfaceByName(config.Interface); err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	errc := make(chan error, 1)
	go func() {
		errc <- zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	var (
		order    []string
		services = make(map[string]*Service)
	)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return collect(order, services), nil
			}
			svc := entryToService(entry)
			if svc == nil {
				continue
			}
			if existing, found := services[svc.InstanceName]; found {
				existing.Addrs = mergeAddrs(existing.Addrs, svc.Addrs)
				continue
			}
			services[svc.InstanceName] = svc
			order = append(order, svc.InstanceName)

		case <-removed:

		case err := <-errc:
			if err != nil && ctx.Err() == nil {
				return nil, err
			}
			errc = nil

		case <-ctx.Done():
			return collect(order, services), nil
		}
	}
}

func collect(order []string, services map[string]*Service) []Service {
	out := make([]Service, 0, len(order))
	for _, name := range order {
		out = append(out, *services[name])
	}
	return out
}

// entryToService converts a zeroconf entry. Returns nil for entries that
// are not relays.
func entryToService(entry *zeroconf.ServiceEntry) *Service {
	txt := StringsToTXTRecords(entry.Text)
	id, ok := txt[TXTKeyID]
	if !ok || id == "" {
		return nil
	}

	svc := &Service{
		InstanceName: entry.Instance,
		RelayID:      id,
		Version:      txt[TXTKeyVersion],
	}
	for _, ip := range entry.AddrIPv4 {
		if addr, ok := netip.AddrFromSlice(ip); ok {
			svc.Addrs = append(svc.Addrs, netip.AddrPortFrom(addr.Unmap(), uint16(entry.Port)))
		}
	}
	for _, ip := range entry.AddrIPv6 {
		if addr, ok := netip.AddrFromSlice(ip); ok {
			svc.Addrs = append(svc.Addrs, netip.AddrPortFrom(addr, uint16(entry.Port)))
		}
	}
	return svc
}

func mergeAddrs(existing, more []netip.AddrPort) []netip.AddrPort {
	for _, a := range more {
		if !slices.Contains(existing, a) {
			existing = append(existing, a)
		}
	}
	return existing
}
