// Command subpub-server runs the relay.
//
// It listens for SUB/UNSUB/PUB datagrams, forwards published payloads to
// the channel's other subscribers, and plays mapped topics as MIDI.
//
// Usage:
//
//	subpub-server [flags]
//
// Examples:
//
//	# Relay on the detected local address with a virtual "Zerver" MIDI port
//	subpub-server
//
//	# Use a hardware port, a YAML mapping, and a capture file
//	subpub-server --midi-port "IAC Driver" --mapping studio.yaml --capture relay.splog
//
//	# Config file with flag overrides
//	subpub-server --config /etc/subpub/relay.yaml --log-level debug
//
// Signals: SIGHUP reloads the mapping file; SIGINT and SIGTERM shut down.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/internal/config"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseConfig(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(ctx)
}

// parseConfig layers the config file and explicitly set flags over the
// defaults.
func parseConfig(args []string) (config.Config, error) {
	cfg := config.Default()
	fs := config.Flags("subpub-server", &cfg)
	configPath := fs.StringP("config", "c", "", "YAML configuration file")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if *showVersion {
		fmt.Printf("subpub-server %s (protocol %s)\n", version.Build, version.Protocol)
		return config.Config{}, pflag.ErrHelp
	}
	if fs.NArg() > 0 {
		return config.Config{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		if err := config.ApplyFlags(&fileCfg, fs); err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func initLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Log.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}

// reloadSignals delivers SIGHUP until ctx is done.
func reloadSignals(ctx context.Context) <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	context.AfterFunc(ctx, func() { signal.Stop(ch) })
	return ch
}

func listenUDP(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", udpAddr)
}
