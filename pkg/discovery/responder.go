package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/ipv4"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/metrics"
)

// Probe and reply strings.
const (
	ProbeMessage = "DISCOVER_SUBPUB_SERVER"
	ReplyPrefix  = "SUBPUB_SERVER_AT: "
)

// DefaultGroup is the multicast group and port the responder listens on.
var DefaultGroup = netip.MustParseAddrPort("239.255.0.100:50100")

// Errors.
var (
	ErrNotMulticast = errors.New("not a multicast group")
	ErrNotIPv4      = errors.New("multicast group must be IPv4")
	ErrNoRelayAddr  = errors.New("relay address is required")
)

// maxProbeSize is the receive buffer for probes.
const maxProbeSize = 1024

// PacketConn is the socket the responder reads probes from and replies on.
// *net.UDPConn satisfies it.
type PacketConn interface {
	ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error)
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
}

// ResponderConfig configures a Responder.
type ResponderConfig struct {
	// RelayAddr is the address advertised in replies. Required.
	RelayAddr netip.AddrPort

	// Group is the multicast group to join. Zero means DefaultGroup.
	Group netip.AddrPort

	// Interface to join the group on. Nil lets the system choose.
	Interface *net.Interface

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// Capture receives discovery events. Optional.
	Capture log.Logger

	// RelayID tags capture events.
	RelayID string

	// Metrics records probes. Optional.
	Metrics *metrics.Metrics
}

// Responder answers discovery probes.
type Responder struct {
	relayAddr netip.AddrPort
	group     netip.AddrPort
	iface     *net.Interface
	reply     []byte
	logger    *slog.Logger
	capture   log.Logger
	relayID   string
	metrics   *metrics.Metrics
}

// NewResponder creates a responder. It does not open any socket.
func NewResponder(cfg ResponderConfig) (*Responder, error) {
	if !cfg.RelayAddr.IsValid() {
		return nil, ErrNoRelayAddr
	}
	group := cfg.Group
	if !group.IsValid() {
		group = DefaultGroup
	}
	if !group.Addr().Is4() {
		return nil, fmt.Errorf("%w: %s", ErrNotIPv4, group)
	}
	if !group.Addr().IsMulticast() {
		return nil, fmt.Errorf("%w: %s", ErrNotMulticast, group)
	}

	r := &Responder{
		relayAddr: cfg.RelayAddr,
		group:     group,
		iface:     cfg.Interface,
		reply:     []byte(ReplyPrefix + cfg.RelayAddr.String()),
		logger:    cfg.Logger,
		capture:   log.OrNoop(cfg.Capture),
		relayID:   cfg.RelayID,
		metrics:   cfg.Metrics,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Group returns the multicast group the responder listens on.
func (r *Responder) Group() netip.AddrPort {
	return r.group
}

// Reply returns the reply datagram sent for a matching probe.
func (r *Responder) Reply() []byte {
	return r.reply
}

// Listen opens a UDP socket on the group's port and joins the group.
// The caller owns the returned connection.
func (r *Responder) Listen() (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: int(r.group.Port())})
	if err != nil {
		return nil, fmt.Errorf("discovery listen: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)
	group := &net.UDPAddr{IP: r.group.Addr().AsSlice()}
	if err := pc.JoinGroup(r.iface, group); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join multicast group %s: %w", r.group.Addr(), err)
	}
	_ = pc.SetMulticastLoopback(true)

	r.logger.Info("joined multicast group", "group", r.group.String())
	return conn, nil
}

// Respond examines one datagram and returns the reply to send, if any.
func (r *Responder) Respond(data []byte, from netip.AddrPort) ([]byte, bool) {
	if !utf8.Valid(data) {
		r.logger.Warn("received non-UTF8 multicast data", "from", from.String(), "size", len(data))
		r.observe(from, fmt.Sprintf("%x", data), false)
		return nil, false
	}

	msg := strings.TrimSpace(string(data))
	if msg != ProbeMessage {
		r.logger.Warn("received unknown multicast message", "from", from.String(), "message", msg)
		r.observe(from, msg, false)
		return nil, false
	}

	r.logger.Info("received discovery ping", "from", from.String())
	r.observe(from, msg, true)
	return r.reply, true
}

// Serve answers probes on conn until ctx is cancelled or a receive fails.
// A failed reply is logged and does not stop the loop.
func (r *Responder) Serve(ctx context.Context, conn PacketConn) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, maxProbeSize)
	for {
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("discovery receive: %w", err)
		}
		from = netip.AddrPortFrom(from.Addr().Unmap(), from.Port())

		reply, ok := r.Respond(buf[:n], from)
		if !ok {
			continue
		}
		if _, err := conn.WriteToUDPAddrPort(reply, from); err != nil {
			r.logger.Error("failed to send discovery response", "to", from.String(), "error", err)
			r.capture.Log(log.Event{
				Timestamp:  time.Now(),
				RelayID:    r.relayID,
				Direction:  log.DirectionOut,
				Layer:      log.LayerDiscovery,
				Category:   log.CategoryError,
				RemoteAddr: from.String(),
				Error:      &log.ErrorEventData{Layer: log.LayerDiscovery, Message: err.Error(), Context: "reply"},
			})
			continue
		}
		r.logger.Info("sent discovery response", "to", from.String(), "response", string(reply))
	}
}

func (r *Responder) observe(from netip.AddrPort, probe string, matched bool) {
	r.metrics.DiscoveryProbe(matched)

	ev := &log.DiscoveryEvent{Probe: probe, Matched: matched}
	if matched {
		ev.Reply = string(r.reply)
	}
	r.capture.Log(log.Event{
		Timestamp:  time.Now(),
		RelayID:    r.relayID,
		Direction:  log.DirectionIn,
		Layer:      log.LayerDiscovery,
		RemoteAddr: from.String(),
		Discovery:  ev,
	})
}

// ParseReply extracts the relay address from a discovery reply.
func ParseReply(data []byte) (netip.AddrPort, error) {
	s := strings.TrimSpace(string(data))
	rest, ok := strings.CutPrefix(s, strings.TrimSpace(ReplyPrefix))
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("unexpected discovery reply %q", s)
	}
	addr, err := netip.ParseAddrPort(strings.TrimSpace(rest))
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("discovery reply address: %w", err)
	}
	return addr, nil
}
