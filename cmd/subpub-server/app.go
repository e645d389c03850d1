package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/internal/config"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/action"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/discovery"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/metrics"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/midi"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/midi/rtmidi"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/relay"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/schedule"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/version"
)

// app owns every long-lived component of the server.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	relayID string

	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	captureFile *log.FileLogger
	capture     log.Logger

	store      *mapping.Store
	scheduler  *schedule.Scheduler
	device     *rtmidi.Device
	dispatcher *midi.Dispatcher

	addr   netip.AddrPort
	conn   *net.UDPConn
	server *relay.Server
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		relayID:  uuid.NewString(),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	if err := a.openCapture(); err != nil {
		return nil, err
	}

	table, err := mapping.LoadFile(cfg.Mapping.File)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = mapping.NewStore(table)
	a.metrics.MappingReloaded(table.Len(), nil)
	logger.Info("mapping loaded", "file", cfg.Mapping.File, "topics", table.Len())

	a.scheduler = schedule.New()
	a.openMIDI()
	a.dispatcher = midi.NewDispatcher(midi.DispatcherConfig{
		Sink:      a.sink(),
		Resolver:  action.NewResolver(a.store),
		Scheduler: a.scheduler,
		Logger:    logger,
		Capture:   a.capture,
		RelayID:   a.relayID,
		Metrics:   a.metrics,
	})

	listen, err := relay.ResolveListenAddr(cfg.Listen, nil)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.conn, err = listenUDP(listen.String())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("bind relay socket: %w", err)
	}
	bound := a.conn.LocalAddr().(*net.UDPAddr).AddrPort()
	a.addr = netip.AddrPortFrom(listen.Addr(), bound.Port())

	a.server = relay.NewServer(relay.Config{
		Publisher: a.dispatcher,
		Logger:    logger,
		Capture:   a.capture,
		RelayID:   a.relayID,
		Metrics:   a.metrics,
	})

	logger.Info("relay ready",
		"addr", a.addr.String(),
		"relay_id", a.relayID,
		"version", version.Build,
		"midi", a.dispatcher.Enabled())
	return a, nil
}

func (a *app) openCapture() error {
	slogCapture := log.NewSlogAdapter(a.logger)
	if a.cfg.Capture.File == "" {
		a.capture = slogCapture
		return nil
	}

	fl, err := log.NewFileLogger(a.cfg.Capture.File)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	a.captureFile = fl
	a.capture = log.NewMultiLogger(fl, slogCapture)
	a.logger.Info("capturing protocol events", "file", a.cfg.Capture.File)
	return nil
}

// openMIDI opens the configured output. Failure leaves MIDI disabled; the
// relay itself still runs.
func (a *app) openMIDI() {
	if !a.cfg.MIDI.Enabled {
		return
	}
	dev, err := rtmidi.Open(rtmidi.Options{
		Port:        a.cfg.MIDI.Port,
		VirtualName: a.cfg.MIDI.VirtualName,
		Logger:      a.logger,
	})
	if err != nil {
		a.logger.Error("failed to open MIDI output", "error", err)
		return
	}
	a.device = dev
}

func (a *app) sink() midi.Sink {
	if a.device == nil {
		return nil
	}
	return a.device
}

// Run serves until ctx is cancelled, then drains pending note-offs.
func (a *app) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(a.server.Serve(gctx, a.conn))
	})

	if a.cfg.Discovery.Enabled {
		a.startDiscovery(gctx, g)
	}
	if a.cfg.MDNS.Enabled {
		a.startMDNS(gctx)
	}
	if a.cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(a.cfg.Metrics.Addr, a.registry, a.logger)
		g.Go(func() error { return srv.Run(gctx) })
	}
	if a.cfg.Mapping.Watch {
		w := mapping.NewWatcher(a.cfg.Mapping.File, a.store, a.logger)
		w.OnReload(a.mappingReloaded)
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				a.logger.Error("mapping watcher stopped", "error", err)
			}
			return nil
		})
	}

	hup := reloadSignals(gctx)
	g.Go(func() error {
		for {
			select {
			case <-hup:
				a.logger.Info("received SIGHUP, reloading mapping")
				table, err := a.store.ReloadFile(a.cfg.Mapping.File)
				a.mappingReloaded(table, err)
			case <-gctx.Done():
				return nil
			}
		}
	})

	err := g.Wait()
	a.logger.Info("shutting down")
	a.drain()
	return err
}

func (a *app) startDiscovery(ctx context.Context, g *errgroup.Group) {
	group, _ := a.cfg.DiscoveryGroup()
	r, err := discovery.NewResponder(discovery.ResponderConfig{
		RelayAddr: a.addr,
		Group:     group,
		Logger:    a.logger,
		Capture:   a.capture,
		RelayID:   a.relayID,
		Metrics:   a.metrics,
	})
	if err != nil {
		a.logger.Error("discovery disabled", "error", err)
		return
	}
	conn, err := r.Listen()
	if err != nil {
		// The relay keeps running without discovery.
		a.logger.Error("multicast discovery listener failed", "error", err)
		return
	}

	g.Go(func() error {
		defer conn.Close()
		if err := ignoreCanceled(r.Serve(ctx, conn)); err != nil {
			a.logger.Error("multicast discovery listener failed", "error", err)
		}
		return nil
	})
}

func (a *app) startMDNS(ctx context.Context) {
	adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{
		Interface: a.cfg.MDNS.Interface,
		Logger:    a.logger,
	})
	err := adv.Advertise(discovery.ServiceInfo{
		InstanceName: a.cfg.MDNS.Instance,
		Port:         a.addr.Port(),
		RelayID:      a.relayID,
		Version:      version.Protocol,
	})
	if err != nil {
		a.logger.Error("mDNS advertisement failed", "error", err)
		return
	}
	context.AfterFunc(ctx, adv.Stop)
}

func (a *app) mappingReloaded(table *mapping.Table, err error) {
	ev := log.Event{
		Timestamp: time.Now(),
		RelayID:   a.relayID,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityMapping,
			NewState: "reloaded",
			Reason:   a.cfg.Mapping.File,
		},
	}
	if err != nil {
		a.metrics.MappingReloaded(0, err)
		a.logger.Error("mapping reload failed, keeping previous mapping", "error", err)
		ev.Category = log.CategoryError
		ev.StateChange = nil
		ev.Error = &log.ErrorEventData{Message: err.Error(), Context: "mapping reload"}
		a.capture.Log(ev)
		return
	}
	a.metrics.MappingReloaded(table.Len(), nil)
	a.logger.Info("mapping reloaded", "topics", table.Len())
	a.capture.Log(ev)
}

// drain gives pending note-offs up to ShutdownDrain to fire.
func (a *app) drain() {
	if a.cfg.ShutdownDrain <= 0 || a.scheduler.Count() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownDrain)
	defer cancel()
	if err := a.scheduler.Wait(ctx); err != nil {
		a.logger.Warn("pending note-offs dropped at shutdown", "count", a.scheduler.Count())
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	if a.conn != nil {
		a.conn.Close()
	}
	if a.scheduler != nil {
		a.scheduler.Close()
	}
	if a.device != nil {
		if err := a.device.Close(); err != nil {
			a.logger.Warn("closing MIDI output", "error", err)
		}
	}
	if a.captureFile != nil {
		a.captureFile.Close()
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
