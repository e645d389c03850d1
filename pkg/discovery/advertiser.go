package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Service constants.
const (
	ServiceType = "_subpub._udp"
	Domain      = "local."

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63

	DefaultInstanceName = "subpub"
)

// Errors.
var (
	ErrAlreadyAdvertising = errors.New("already advertising")
	ErrInvalidPort        = errors.New("invalid port")
	ErrMissingRelayID     = errors.New("relay ID is required")
	ErrNotAdvertising     = errors.New("not advertising")
)

// ServiceInfo describes the advertised relay.
type ServiceInfo struct {
	// InstanceName is the DNS-SD instance label. Empty means
	// DefaultInstanceName. Longer names are truncated.
	InstanceName string

	// Port is the relay's UDP port.
	Port uint16

	// RelayID is the relay instance ID.
	RelayID string

	// Version is the protocol version.
	Version string
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface.
	// Empty string means all interfaces.
	Interface string

	// TTL for records. Zero uses the zeroconf default.
	TTL time.Duration

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger
}

// registration is the handle of a registered service.
type registration interface {
	Shutdown()
	SetText(text []string)
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error)

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error) {
	server, err := zeroconf.Register(instance, service, domain, port, text, ifaces, opts...)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// Advertiser publishes the relay over mDNS.
type Advertiser struct {
	config   AdvertiserConfig
	logger   *slog.Logger
	register registerFunc

	mu     sync.Mutex
	server registration
	info   ServiceInfo
}

// NewAdvertiser creates an advertiser. Nothing is published until Advertise.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Advertiser{
		config:   config,
		logger:   logger,
		register: zeroconfRegister,
	}
}

// getInterfaces returns the interfaces to advertise on. Nil means all.
func (a *Advertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		a.logger.Warn("mDNS interface not found, using all", "interface", a.config.Interface, "error", err)
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise registers the relay service.
func (a *Advertiser) Advertise(info ServiceInfo) error {
	if info.Port == 0 {
		return ErrInvalidPort
	}
	if info.RelayID == "" {
		return ErrMissingRelayID
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		return ErrAlreadyAdvertising
	}

	instance := info.InstanceName
	if instance == "" {
		instance = DefaultInstanceName
	}
	if len(instance) > MaxInstanceNameLen {
		instance = instance[:MaxInstanceNameLen]
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := a.register(
		instance,
		ServiceType,
		Domain,
		int(info.Port),
		TXTRecordsToStrings(EncodeTXT(info)),
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register relay service: %w", err)
	}

	a.server = server
	a.info = info
	a.logger.Info("advertising relay", "service", ServiceType, "instance", instance, "port", info.Port)
	return nil
}

// Update replaces the advertised TXT records.
func (a *Advertiser) Update(info ServiceInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(TXTRecordsToStrings(EncodeTXT(info)))
	a.info = info
	return nil
}

// Advertising reports whether the service is registered.
func (a *Advertiser) Advertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}

// Stop withdraws the service. It is safe to call when not advertising.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	server := a.server
	a.server = nil
	a.mu.Unlock()

	if server != nil {
		server.Shutdown()
		a.logger.Info("stopped advertising relay")
	}
}
