// Package config holds the relay server's configuration.
//
// Values come from three layers, later ones winning: Default, an optional
// YAML file, and command-line flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the relay server configuration.
type Config struct {
	// Listen is the relay's UDP address. An empty or unspecified host
	// means the detected local address.
	Listen string `yaml:"listen"`

	Discovery DiscoveryConfig `yaml:"discovery"`
	MDNS      MDNSConfig      `yaml:"mdns"`
	Mapping   MappingConfig   `yaml:"mapping"`
	MIDI      MIDIConfig      `yaml:"midi"`
	Capture   CaptureConfig   `yaml:"capture"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`

	// ShutdownDrain bounds how long shutdown waits for pending note-offs.
	ShutdownDrain time.Duration `yaml:"shutdown_drain"`
}

// DiscoveryConfig configures the multicast responder.
type DiscoveryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Group   string `yaml:"group"`
}

// MDNSConfig configures DNS-SD advertisement.
type MDNSConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Instance  string `yaml:"instance"`
	Interface string `yaml:"interface"`
}

// MappingConfig configures the topic mapping file.
type MappingConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

// MIDIConfig configures MIDI output.
type MIDIConfig struct {
	Enabled bool `yaml:"enabled"`

	// Port selects an existing output by name substring. Empty means a
	// virtual port named VirtualName.
	Port        string `yaml:"port"`
	VirtualName string `yaml:"virtual_name"`
}

// CaptureConfig configures the protocol capture file.
type CaptureConfig struct {
	File string `yaml:"file"`
}

// MetricsConfig configures the metrics HTTP endpoint. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen: ":7878",
		Discovery: DiscoveryConfig{
			Enabled: true,
			Group:   "239.255.0.100:50100",
		},
		MDNS: MDNSConfig{
			Instance: "subpub",
		},
		Mapping: MappingConfig{
			File:  "midi_mapping.toml",
			Watch: true,
		},
		MIDI: MIDIConfig{
			Enabled:     true,
			VirtualName: "Zerver",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		ShutdownDrain: 2 * time.Second,
	}
}

// Load reads path over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	host, port, err := net.SplitHostPort(c.Listen)
	if err != nil {
		return fmt.Errorf("%w: listen %q: %v", ErrInvalid, c.Listen, err)
	}
	if host != "" {
		if _, err := netip.ParseAddr(host); err != nil {
			return fmt.Errorf("%w: listen host %q is not an IP address", ErrInvalid, host)
		}
	}
	if p, err := strconv.ParseUint(port, 10, 16); err != nil || p == 0 {
		return fmt.Errorf("%w: listen port %q", ErrInvalid, port)
	}

	if c.Discovery.Enabled {
		g, err := c.DiscoveryGroup()
		if err != nil {
			return fmt.Errorf("%w: discovery group: %v", ErrInvalid, err)
		}
		if !g.Addr().Is4() || !g.Addr().IsMulticast() {
			return fmt.Errorf("%w: discovery group %s is not an IPv4 multicast address", ErrInvalid, g)
		}
	}

	if c.MIDI.Enabled && c.Mapping.File == "" {
		return fmt.Errorf("%w: MIDI output needs a mapping file", ErrInvalid)
	}
	if c.MIDI.Enabled && c.MIDI.Port == "" && c.MIDI.VirtualName == "" {
		return fmt.Errorf("%w: MIDI needs a port or a virtual port name", ErrInvalid)
	}

	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q (want text or json)", ErrInvalid, c.Log.Format)
	}

	if c.ShutdownDrain < 0 {
		return fmt.Errorf("%w: negative shutdown drain", ErrInvalid)
	}
	return nil
}

// DiscoveryGroup parses Discovery.Group.
func (c Config) DiscoveryGroup() (netip.AddrPort, error) {
	return netip.ParseAddrPort(c.Discovery.Group)
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log level %q (want debug, info, warn or error)", c.Log.Level)
	}
	return level, nil
}
