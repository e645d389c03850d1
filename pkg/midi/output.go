package midi

import (
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrOutputClosed is returned when sending on a closed Output.
var ErrOutputClosed = errors.New("midi output closed")

// Sink accepts raw MIDI messages.
type Sink interface {
	Send(msg []byte) error
}

// Output serializes writes to a gomidi output port.
type Output struct {
	mu     sync.Mutex
	port   drivers.Out
	closed bool
}

// NewOutput wraps port, opening it if necessary.
func NewOutput(port drivers.Out) (*Output, error) {
	if port == nil {
		return nil, errors.New("midi: nil output port")
	}
	if !port.IsOpen() {
		if err := port.Open(); err != nil {
			return nil, fmt.Errorf("open midi port %q: %w", port.String(), err)
		}
	}
	return &Output{port: port}, nil
}

// Name returns the port name.
func (o *Output) Name() string {
	return o.port.String()
}

// Send writes one message.
func (o *Output) Send(msg []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOutputClosed
	}
	if err := o.port.Send(msg); err != nil {
		return fmt.Errorf("send to %q: %w", o.port.String(), err)
	}
	return nil
}

// Close closes the port. Later sends fail with ErrOutputClosed.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	return o.port.Close()
}

// Compile-time interface satisfaction check.
var _ Sink = (*Output)(nil)
