// Package rtmidi opens MIDI output ports through the RtMidi driver.
//
// It lives apart from package midi because the driver needs cgo and
// registers itself globally on import.
package rtmidi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/midi"
)

// DefaultVirtualPort is the name of the virtual port created when no
// hardware port is requested.
const DefaultVirtualPort = "Zerver"

// ErrPortNotFound is returned when no output port matches the requested name.
var ErrPortNotFound = errors.New("midi output port not found")

// Options selects the output port.
type Options struct {
	// Port selects an existing output whose name contains this string
	// (case-insensitive). Empty means create a virtual port.
	Port string

	// VirtualName names the virtual port. Default: DefaultVirtualPort.
	VirtualName string

	Logger *slog.Logger
}

// Device is an open MIDI output and the driver that owns it.
type Device struct {
	*midi.Output
	driver *rtmididrv.Driver
}

// Open opens the output described by opts.
func Open(opts Options) (*Device, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("init rtmidi: %w", err)
	}

	port, err := selectPort(drv, opts)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}

	out, err := midi.NewOutput(port)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}
	logger.Info("MIDI output ready", "port", out.Name())
	return &Device{Output: out, driver: drv}, nil
}

func selectPort(drv *rtmididrv.Driver, opts Options) (drivers.Out, error) {
	if opts.Port == "" {
		name := opts.VirtualName
		if name == "" {
			name = DefaultVirtualPort
		}
		port, err := drv.OpenVirtualOut(name)
		if err != nil {
			return nil, fmt.Errorf("create virtual port %q: %w", name, err)
		}
		return port, nil
	}

	outs, err := drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("list midi outputs: %w", err)
	}
	return FindPort(outs, opts.Port)
}

// FindPort returns the first port whose name contains name,
// case-insensitively.
func FindPort(outs []drivers.Out, name string) (drivers.Out, error) {
	want := strings.ToLower(name)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), want) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

// ListPorts returns the names of the available output ports.
func ListPorts() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("init rtmidi: %w", err)
	}
	defer drv.Close()

	outs, err := drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("list midi outputs: %w", err)
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

// Close closes the port and the driver.
func (d *Device) Close() error {
	return errors.Join(d.Output.Close(), d.driver.Close())
}
