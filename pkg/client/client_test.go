package client

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/discovery"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/relay"
)

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// startRelay runs a relay on loopback and returns its address.
func startRelay(t *testing.T) (*relay.Server, string) {
	t.Helper()
	conn := listenLoopback(t)
	s := relay.NewServer(relay.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, conn)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, conn.LocalAddr().String()
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func receive(t *testing.T, c *Client) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := c.Receive(ctx)
	require.NoError(t, err)
	return string(data)
}

func TestPublishReachesSubscriber(t *testing.T) {
	srv, addr := startRelay(t)
	sub := dial(t, addr)
	pub := dial(t, addr)

	require.NoError(t, sub.Subscribe("lights"))
	require.Eventually(t, func() bool { return srv.Registry().Has("lights") }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, pub.Publish("lights", `{"vel":90}`))
	assert.Equal(t, `{"vel":90}`, receive(t, sub))
}

func TestPublisherDoesNotReceiveOwnMessage(t *testing.T) {
	srv, addr := startRelay(t)
	a := dial(t, addr)
	b := dial(t, addr)

	require.NoError(t, a.Subscribe("room"))
	require.NoError(t, b.Subscribe("room"))
	require.Eventually(t, func() bool { return len(srv.Registry().Subscribers("room")) == 2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, a.Publish("room", "one"))
	assert.Equal(t, "one", receive(t, b))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := a.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnsubscribe(t *testing.T) {
	srv, addr := startRelay(t)
	c := dial(t, addr)

	require.NoError(t, c.Subscribe("x"))
	require.Eventually(t, func() bool { return srv.Registry().Has("x") }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Unsubscribe("x"))
	require.Eventually(t, func() bool { return !srv.Registry().Has("x") }, 2*time.Second, 5*time.Millisecond)
}

func TestInvalidChannel(t *testing.T) {
	_, addr := startRelay(t)
	c := dial(t, addr)

	assert.ErrorIs(t, c.Subscribe("a:b"), ErrInvalidChannel)
	assert.ErrorIs(t, c.Unsubscribe(" padded "), ErrInvalidChannel)
	assert.ErrorIs(t, c.Publish("a:b", "x"), ErrInvalidChannel)
}

func TestPublishTooLarge(t *testing.T) {
	_, addr := startRelay(t)
	c := dial(t, addr)

	big := make([]byte, relay.MaxDatagramSize)
	for i := range big {
		big[i] = 'a'
	}
	assert.Error(t, c.Publish("x", string(big)))
}

func TestClosedClient(t *testing.T) {
	_, addr := startRelay(t)
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Subscribe("x"), ErrClosed)
	_, err = c.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseUnblocksReceive(t *testing.T) {
	_, addr := startRelay(t)
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Receive(context.Background())
		errc <- err
	}()
	time.Sleep(20 * time.Millisecond)
	c.Close()

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, ErrClosed), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not return after Close")
	}
}

func TestDiscoverAgainstResponder(t *testing.T) {
	want := netip.MustParseAddrPort("10.1.2.3:7878")
	r, err := discovery.NewResponder(discovery.ResponderConfig{RelayAddr: want})
	require.NoError(t, err)

	conn := listenLoopback(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Serve(ctx, conn) }()

	// A unicast target stands in for the multicast group.
	target := conn.LocalAddr().(*net.UDPAddr).AddrPort()
	dctx, dcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dcancel()

	got, err := discover(dctx, target, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiscoverTimesOut(t *testing.T) {
	silent := listenLoopback(t)
	target := silent.LocalAddr().(*net.UDPAddr).AddrPort()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err := discover(ctx, target, 50*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
