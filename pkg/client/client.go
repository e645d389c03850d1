// Package client is a small library for talking to a relay.
//
// A Client owns one UDP socket; the relay identifies subscribers by the
// socket's address, so Subscribe and Receive must use the same Client.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/relay"
)

// Errors.
var (
	ErrClosed         = errors.New("client closed")
	ErrInvalidChannel = errors.New("invalid channel")
)

// DefaultDialTimeout bounds Dial when ctx has no deadline.
const DefaultDialTimeout = 5 * time.Second

// Client sends relay commands and receives forwarded payloads.
type Client struct {
	conn   *net.UDPConn
	server netip.AddrPort

	readMu    sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// Dial resolves address ("host:port") and opens a socket to the relay.
// No datagram is sent; UDP has no handshake.
func Dial(ctx context.Context, address string) (*Client, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultDialTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	udp := conn.(*net.UDPConn)

	return &Client{
		conn:   udp,
		server: udp.RemoteAddr().(*net.UDPAddr).AddrPort(),
		closed: make(chan struct{}),
	}, nil
}

// DialAddr connects to a relay address returned by Discover.
func DialAddr(ctx context.Context, addr netip.AddrPort) (*Client, error) {
	return Dial(ctx, addr.String())
}

// Server returns the relay's address.
func (c *Client) Server() netip.AddrPort {
	return c.server
}

// LocalAddr returns the address the relay sees for this client.
func (c *Client) LocalAddr() netip.AddrPort {
	return c.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Subscribe asks the relay to forward channel's payloads to this client.
func (c *Client) Subscribe(channel string) error {
	if err := validChannel(channel); err != nil {
		return err
	}
	return c.send(relay.Subscribe(channel))
}

// Unsubscribe stops forwarding of channel's payloads.
func (c *Client) Unsubscribe(channel string) error {
	if err := validChannel(channel); err != nil {
		return err
	}
	return c.send(relay.Unsubscribe(channel))
}

// Publish sends payload to channel's subscribers. The relay does not echo
// it back to this client.
func (c *Client) Publish(channel, payload string) error {
	if err := validChannel(channel); err != nil {
		return err
	}
	msg := relay.Publish(channel, payload)
	if len(msg) > relay.MaxDatagramSize {
		return fmt.Errorf("message of %d bytes exceeds %d", len(msg), relay.MaxDatagramSize)
	}
	return c.send(msg)
}

func (c *Client) send(msg []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	if _, err := c.conn.Write(msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Receive blocks until a forwarded payload arrives or ctx is done.
func (c *Client) Receive(ctx context.Context) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer func() {
		stop()
		_ = c.conn.SetReadDeadline(time.Time{})
	}()

	buf := make([]byte, relay.MaxDatagramSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		select {
		case <-c.closed:
			return nil, ErrClosed
		default:
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("receive: %w", err)
	}
	return buf[:n], nil
}

// Close releases the socket. It does not unsubscribe.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func validChannel(channel string) error {
	if strings.Contains(channel, ":") {
		return fmt.Errorf("%w: %q contains ':'", ErrInvalidChannel, channel)
	}
	if strings.TrimSpace(channel) != channel {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidChannel, channel)
	}
	return nil
}
