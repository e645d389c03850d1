package log

import (
	"time"
)

// MaxCapturedData is the number of payload bytes kept in a DatagramEvent.
// The relay receive buffer is 1024 bytes, so datagrams are never truncated
// on the inbound path.
const MaxCapturedData = 1024

// Event represents a relay event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RelayID identifies the relay instance (UUID) that captured the event.
	RelayID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Channel is the pub/sub channel or mapping topic involved, if any.
	Channel string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Datagram    *DatagramEvent    `cbor:"10,keyasint,omitempty"` // Datagram layer
	Command     *CommandEvent     `cbor:"11,keyasint,omitempty"` // Protocol layer
	MIDI        *MIDIEvent        `cbor:"12,keyasint,omitempty"` // MIDI layer
	Discovery   *DiscoveryEvent   `cbor:"13,keyasint,omitempty"` // Discovery layer
	StateChange *StateChangeEvent `cbor:"14,keyasint,omitempty"` // Subscription/mapping state
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which part of the relay captured the event.
type Layer uint8

const (
	// LayerDatagram is the raw UDP layer.
	LayerDatagram Layer = 0
	// LayerProtocol is the SUB/UNSUB/PUB command layer.
	LayerProtocol Layer = 1
	// LayerMIDI is the MIDI output layer.
	LayerMIDI Layer = 2
	// LayerDiscovery is the multicast discovery layer.
	LayerDiscovery Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerDatagram:
		return "DATAGRAM"
	case LayerProtocol:
		return "PROTOCOL"
	case LayerMIDI:
		return "MIDI"
	case LayerDiscovery:
		return "DISCOVERY"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a relayed or emitted message.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DatagramEvent captures raw datagram bytes.
type DatagramEvent struct {
	// Size is the datagram size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the datagram payload (may be truncated).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewDatagramEvent builds a DatagramEvent, copying at most MaxCapturedData
// bytes of data.
func NewDatagramEvent(data []byte) *DatagramEvent {
	ev := &DatagramEvent{Size: len(data)}
	n := len(data)
	if n > MaxCapturedData {
		n = MaxCapturedData
		ev.Truncated = true
	}
	ev.Data = append([]byte(nil), data[:n]...)
	return ev
}

// CommandEvent captures a parsed relay command.
type CommandEvent struct {
	// Verb is the upper-cased command (SUB, UNSUB, PUB or the unknown verb).
	Verb string `cbor:"1,keyasint"`

	// PayloadSize is the PUB payload length in bytes.
	PayloadSize int `cbor:"2,keyasint,omitempty"`

	// Recipients is the number of subscribers a PUB was forwarded to.
	Recipients int `cbor:"3,keyasint,omitempty"`

	// Actions is the number of MIDI actions a PUB resolved to.
	Actions int `cbor:"4,keyasint,omitempty"`
}

// MIDIEvent captures bytes written to the MIDI output.
type MIDIEvent struct {
	// Kind is the action kind that produced the message (e.g. "note_on").
	Kind string `cbor:"1,keyasint"`

	// Bytes is the raw MIDI message.
	Bytes []byte `cbor:"2,keyasint"`

	// Deferred is true for the delayed Note Off of a timed note.
	Deferred bool `cbor:"3,keyasint,omitempty"`

	// Delay is how long a deferred message waited (nanoseconds).
	Delay time.Duration `cbor:"4,keyasint,omitempty"`
}

// DiscoveryEvent captures a discovery probe and its outcome.
type DiscoveryEvent struct {
	// Probe is the received payload, trimmed.
	Probe string `cbor:"1,keyasint"`

	// Matched is true when the probe was recognized.
	Matched bool `cbor:"2,keyasint,omitempty"`

	// Reply is the response sent, if any.
	Reply string `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures subscription and configuration changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntitySubscription indicates a subscriber joined or left a channel.
	StateEntitySubscription StateEntity = 0
	// StateEntityMapping indicates the mapping table was reloaded.
	StateEntityMapping StateEntity = 1
	// StateEntityRelay indicates the relay started or stopped.
	StateEntityRelay StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySubscription:
		return "SUBSCRIPTION"
	case StateEntityMapping:
		return "MAPPING"
	case StateEntityRelay:
		return "RELAY"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
