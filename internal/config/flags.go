package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags registers flags bound to c's fields, using c's current values as
// defaults.
func Flags(name string, c *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.StringVarP(&c.Listen, "listen", "l", c.Listen, "relay UDP address (empty host means detected local IP)")
	fs.BoolVar(&c.Discovery.Enabled, "discovery", c.Discovery.Enabled, "answer multicast discovery probes")
	fs.StringVar(&c.Discovery.Group, "discovery-group", c.Discovery.Group, "multicast group:port for discovery")
	fs.BoolVar(&c.MDNS.Enabled, "mdns", c.MDNS.Enabled, "advertise the relay over mDNS")
	fs.StringVar(&c.MDNS.Instance, "mdns-instance", c.MDNS.Instance, "mDNS instance name")
	fs.StringVar(&c.MDNS.Interface, "mdns-interface", c.MDNS.Interface, "network interface for mDNS (default all)")
	fs.StringVarP(&c.Mapping.File, "mapping", "m", c.Mapping.File, "topic mapping file (.toml, .yaml, .json)")
	fs.BoolVar(&c.Mapping.Watch, "watch", c.Mapping.Watch, "reload the mapping file when it changes")
	fs.BoolVar(&c.MIDI.Enabled, "midi", c.MIDI.Enabled, "send MIDI for mapped topics")
	fs.StringVar(&c.MIDI.Port, "midi-port", c.MIDI.Port, "existing MIDI output port (name substring)")
	fs.StringVar(&c.MIDI.VirtualName, "midi-virtual", c.MIDI.VirtualName, "virtual MIDI port name when --midi-port is empty")
	fs.StringVar(&c.Capture.File, "capture", c.Capture.File, "write a protocol capture to this file")
	fs.StringVar(&c.Metrics.Addr, "metrics-addr", c.Metrics.Addr, "serve /metrics and /health on this address")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "log format: text, json")
	fs.DurationVar(&c.ShutdownDrain, "shutdown-drain", c.ShutdownDrain, "max wait for pending note-offs on shutdown")

	return fs
}

// ApplyFlags copies every flag explicitly set on parsed onto dst.
func ApplyFlags(dst *Config, parsed *pflag.FlagSet) error {
	target := Flags(parsed.Name(), dst)

	var err error
	parsed.Visit(func(f *pflag.Flag) {
		if err != nil || target.Lookup(f.Name) == nil {
			return
		}
		if setErr := target.Set(f.Name, f.Value.String()); setErr != nil {
			err = fmt.Errorf("flag --%s: %w", f.Name, setErr)
		}
	})
	return err
}
