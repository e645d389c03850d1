package relay

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"
	"unicode/utf8"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/metrics"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/subscription"
)

// PacketConn is the socket the relay reads from and fans out on.
// *net.UDPConn satisfies it.
type PacketConn interface {
	ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error)
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
}

// PublishHandler receives every accepted publish before fan-out and returns
// the number of actions it triggered. *midi.Dispatcher satisfies it.
type PublishHandler interface {
	HandlePublish(topic, payload string) int
}

// Config configures a Server.
type Config struct {
	// Registry holds subscriptions. Nil creates a private registry.
	Registry *subscription.Registry

	// Publisher handles the side effects of a publish. Optional.
	Publisher PublishHandler

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// Capture receives protocol events. Optional.
	Capture log.Logger

	// RelayID tags capture events.
	RelayID string

	// Metrics records traffic. Optional.
	Metrics *metrics.Metrics
}

// Server routes relay datagrams.
type Server struct {
	registry  *subscription.Registry
	publisher PublishHandler
	logger    *slog.Logger
	capture   log.Logger
	relayID   string
	metrics   *metrics.Metrics
}

// NewServer creates a relay server.
func NewServer(cfg Config) *Server {
	s := &Server{
		registry:  cfg.Registry,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		capture:   log.OrNoop(cfg.Capture),
		relayID:   cfg.RelayID,
		metrics:   cfg.Metrics,
	}
	if s.registry == nil {
		s.registry = subscription.NewRegistry()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Registry returns the subscription registry the server mutates.
func (s *Server) Registry() *subscription.Registry {
	return s.registry
}

// Serve handles datagrams from conn until ctx is cancelled or a receive
// fails. It returns ctx.Err() after cancellation and the wrapped receive
// error otherwise. conn is not closed.
func (s *Server) Serve(ctx context.Context, conn PacketConn) error {
	stop := context.AfterFunc(ctx, func() {
		// Unblock the pending read.
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	s.logger.Info("relay listening", "addr", conn.LocalAddr().String())
	s.event(log.Event{
		Category:    log.CategoryState,
		Layer:       log.LayerProtocol,
		StateChange: &log.StateChangeEvent{Entity: log.StateEntityRelay, NewState: "listening", Reason: conn.LocalAddr().String()},
	})

	buf := make([]byte, MaxDatagramSize)
	for {
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil {
				s.event(log.Event{
					Category:    log.CategoryState,
					Layer:       log.LayerProtocol,
					StateChange: &log.StateChangeEvent{Entity: log.StateEntityRelay, OldState: "listening", NewState: "stopped"},
				})
				return ctx.Err()
			}
			return fmt.Errorf("relay receive: %w", err)
		}
		s.HandleDatagram(conn, buf[:n], from)
	}
}

// HandleDatagram processes one datagram received from `from`, using conn
// for any fan-out.
func (s *Server) HandleDatagram(conn PacketConn, data []byte, from netip.AddrPort) {
	from = normalize(from)
	remote := from.String()

	s.metrics.DatagramReceived(len(data))
	s.event(log.Event{
		Direction:  log.DirectionIn,
		Layer:      log.LayerDatagram,
		RemoteAddr: remote,
		Datagram:   log.NewDatagramEvent(data),
	})

	if !utf8.Valid(data) {
		s.logger.Error("received non-UTF8 data", "from", remote, "size", len(data))
		s.drop(remote, "", metrics.DropNonUTF8, "non-UTF8 datagram")
		return
	}

	text := string(data)
	cmd, err := ParseCommand(text)
	if err != nil {
		s.logger.Warn("invalid message format", "from", remote, "message", text)
		s.drop(remote, "", metrics.DropMalformed, err.Error())
		return
	}
	s.logger.Debug("received", "from", remote, "verb", cmd.Verb, "channel", cmd.Channel)

	switch cmd.Verb {
	case VerbSub:
		s.subscribe(cmd.Channel, from)
	case VerbUnsub:
		s.unsubscribe(cmd.Channel, from)
	case VerbPub:
		if !cmd.HasPayload {
			s.logger.Warn("PUB without payload", "from", remote, "channel", cmd.Channel)
			s.drop(remote, cmd.Channel, metrics.DropEmptyPayload, "PUB without payload")
			return
		}
		s.publish(conn, cmd.Channel, cmd.Payload, from)
	default:
		s.logger.Warn("unknown action", "from", remote, "action", cmd.Verb, "message", text)
		s.drop(remote, cmd.Channel, metrics.DropUnknownVerb, "unknown action "+cmd.Verb)
	}
}

func (s *Server) subscribe(channel string, from netip.AddrPort) {
	added := s.registry.Subscribe(channel, from)
	s.metrics.Command(VerbSub)
	s.metrics.SetChannels(s.registry.Len())
	s.logger.Info("client subscribed", "client", from.String(), "channel", channel, "new", added)

	s.event(log.Event{
		Direction:  log.DirectionIn,
		Layer:      log.LayerProtocol,
		Category:   log.CategoryState,
		RemoteAddr: from.String(),
		Channel:    channel,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySubscription,
			OldState: subscriptionState(!added),
			NewState: subscriptionState(true),
		},
	})
}

func (s *Server) unsubscribe(channel string, from netip.AddrPort) {
	removed := s.registry.Unsubscribe(channel, from)
	s.metrics.Command(VerbUnsub)
	s.metrics.SetChannels(s.registry.Len())
	s.logger.Info("client unsubscribed", "client", from.String(), "channel", channel, "was_member", removed)
	if removed && !s.registry.Has(channel) {
		s.logger.Info("channel is now empty and removed", "channel", channel)
	}

	s.event(log.Event{
		Direction:  log.DirectionIn,
		Layer:      log.LayerProtocol,
		Category:   log.CategoryState,
		RemoteAddr: from.String(),
		Channel:    channel,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySubscription,
			OldState: subscriptionState(removed),
			NewState: subscriptionState(false),
		},
	})
}

func (s *Server) publish(conn PacketConn, channel, payload string, from netip.AddrPort) {
	s.metrics.Command(VerbPub)
	s.logger.Info("client published", "client", from.String(), "channel", channel, "payload", payload)

	actions := 0
	if s.publisher != nil {
		actions = s.publisher.HandlePublish(channel, payload)
	}

	body := []byte(payload)
	sent, failed := 0, 0
	for _, sub := range s.registry.Subscribers(channel) {
		if sub == from {
			continue
		}
		if _, err := conn.WriteToUDPAddrPort(body, sub); err != nil {
			failed++
			s.logger.Error("failed to forward message", "subscriber", sub.String(), "channel", channel, "error", err)
			s.event(log.Event{
				Direction:  log.DirectionOut,
				Layer:      log.LayerDatagram,
				Category:   log.CategoryError,
				RemoteAddr: sub.String(),
				Channel:    channel,
				Error:      &log.ErrorEventData{Layer: log.LayerDatagram, Message: err.Error(), Context: "fan-out"},
			})
			continue
		}
		sent++
		s.event(log.Event{
			Direction:  log.DirectionOut,
			Layer:      log.LayerDatagram,
			RemoteAddr: sub.String(),
			Channel:    channel,
			Datagram:   log.NewDatagramEvent(body),
		})
	}
	s.metrics.FanOut(sent, failed)

	s.event(log.Event{
		Direction:  log.DirectionIn,
		Layer:      log.LayerProtocol,
		RemoteAddr: from.String(),
		Channel:    channel,
		Command: &log.CommandEvent{
			Verb:        VerbPub,
			PayloadSize: len(body),
			Recipients:  sent,
			Actions:     actions,
		},
	})
}

func (s *Server) drop(remote, channel, reason, msg string) {
	s.metrics.DatagramDropped(reason)
	s.event(log.Event{
		Direction:  log.DirectionIn,
		Layer:      log.LayerProtocol,
		Category:   log.CategoryError,
		RemoteAddr: remote,
		Channel:    channel,
		Error:      &log.ErrorEventData{Layer: log.LayerProtocol, Message: msg, Context: reason},
	})
}

func (s *Server) event(e log.Event) {
	e.Timestamp = time.Now()
	e.RelayID = s.relayID
	s.capture.Log(e)
}

func subscriptionState(member bool) string {
	if member {
		return "subscribed"
	}
	return "unsubscribed"
}

// normalize unmaps IPv4-mapped IPv6 addresses so the same client always
// yields the same endpoint.
func normalize(ap netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

