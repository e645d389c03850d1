// Command subpub-client is an interactive relay client.
//
// Usage:
//
//	subpub-client [flags]
//
// Without --server the relay is located with a multicast discovery probe.
//
// Examples:
//
//	# Discover the relay and open a prompt
//	subpub-client
//
//	# Connect directly and subscribe on start
//	subpub-client --server 192.168.1.20:7878 --sub drums --sub lights
//
//	# Find relays advertised over mDNS
//	subpub-client --browse
package main

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/client"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/discovery"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		server  string
		group   string
		timeout time.Duration
		subs    []string
		browse  bool
	)

	fs := pflag.NewFlagSet("subpub-client", pflag.ContinueOnError)
	fs.StringVarP(&server, "server", "s", "", "relay address host:port (default: discover)")
	fs.StringVar(&group, "group", discovery.DefaultGroup.String(), "multicast group:port for discovery")
	fs.DurationVar(&timeout, "timeout", 5*time.Second, "discovery timeout")
	fs.StringArrayVar(&subs, "sub", nil, "channel to subscribe to on start (repeatable)")
	fs.BoolVar(&browse, "browse", false, "list relays advertised over mDNS and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if browse {
		return runBrowse(ctx, timeout)
	}

	if server == "" {
		g, err := netip.ParseAddrPort(group)
		if err != nil {
			return fmt.Errorf("--group: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Discovering relay on %s...\n", g)
		dctx, cancel := context.WithTimeout(ctx, timeout)
		addr, err := client.Discover(dctx, g)
		cancel()
		if err != nil {
			return fmt.Errorf("discovery: %w", err)
		}
		server = addr.String()
	}

	c, err := client.Dial(ctx, server)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, ch := range subs {
		if err := c.Subscribe(ch); err != nil {
			return err
		}
	}

	repl, err := newREPL(c)
	if err != nil {
		return err
	}
	return repl.Run(ctx)
}

func runBrowse(ctx context.Context, timeout time.Duration) error {
	bctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	services, err := discovery.Browse(bctx, discovery.BrowserConfig{})
	if err != nil {
		return err
	}
	if len(services) == 0 {
		fmt.Println("No relays found.")
		return nil
	}
	for _, svc := range services {
		compat := ""
		if !version.Supports(svc.Version) {
			compat = " (incompatible protocol)"
		}
		fmt.Printf("%s  id=%s  ver=%s%s\n", svc.InstanceName, svc.RelayID, svc.Version, compat)
		for _, a := range svc.Addrs {
			fmt.Printf("    %s\n", a)
		}
	}
	return nil
}
