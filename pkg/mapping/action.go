package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when an action_type string is not recognized.
var ErrUnknownKind = errors.New("unknown action type")

// Kind identifies the MIDI message an action produces.
type Kind uint8

const (
	// KindNoteOn sends a Note On message.
	KindNoteOn Kind = iota + 1

	// KindNoteOff sends a Note Off message.
	KindNoteOff

	// KindNoteOnOff sends a Note On now and a Note Off after the action's duration.
	KindNoteOnOff

	// KindControlChange sends a Control Change message.
	KindControlChange

	// KindProgramChange sends a Program Change message.
	KindProgramChange
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	case KindNoteOnOff:
		return "note_on_off"
	case KindControlChange:
		return "cc"
	case KindProgramChange:
		return "program_change"
	default:
		return "unknown"
	}
}

// ParseKind parses a configuration name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "note_on":
		return KindNoteOn, nil
	case "note_off":
		return KindNoteOff, nil
	case "note_on_off":
		return KindNoteOnOff, nil
	case "cc":
		return KindControlChange, nil
	case "program_change":
		return KindProgramChange, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < KindNoteOn || k > KindProgramChange {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is exact, so
// "NoteOn" or "NOTE_ON" are rejected.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Action is a MIDI action. Loaded from a mapping file it is a template
// (a base action); after payload overrides are merged it is final and ready
// for encoding.
//
// Optional fields are nil when absent. Defaults for absent fields are
// applied at encoding time, not here.
type Action struct {
	Kind       Kind    `json:"action_type" yaml:"action_type" toml:"action_type"`
	Channel    uint8   `json:"channel" yaml:"channel" toml:"channel"`
	Note       *uint8  `json:"note,omitempty" yaml:"note,omitempty" toml:"note,omitempty"`
	Velocity   *uint8  `json:"velocity,omitempty" yaml:"velocity,omitempty" toml:"velocity,omitempty"`
	DurationMS *uint64 `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty" toml:"duration_ms,omitempty"`
	ControlNum *uint8  `json:"control_num,omitempty" yaml:"control_num,omitempty" toml:"control_num,omitempty"`
	Value      *uint8  `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
}

// String returns a compact description for logs.
func (a Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ch=%d", a.Kind, a.Channel)
	writeOpt(&b, "note", a.Note)
	writeOpt(&b, "vel", a.Velocity)
	if a.DurationMS != nil {
		fmt.Fprintf(&b, " dur=%dms", *a.DurationMS)
	}
	writeOpt(&b, "cc", a.ControlNum)
	writeOpt(&b, "value", a.Value)
	return b.String()
}

func writeOpt(b *strings.Builder, name string, v *uint8) {
	if v != nil {
		fmt.Fprintf(b, " %s=%d", name, *v)
	}
}

// Clone returns a deep copy of a.
func (a Action) Clone() Action {
	out := a
	out.Note = cloneU8(a.Note)
	out.Velocity = cloneU8(a.Velocity)
	out.ControlNum = cloneU8(a.ControlNum)
	out.Value = cloneU8(a.Value)
	if a.DurationMS != nil {
		d := *a.DurationMS
		out.DurationMS = &d
	}
	return out
}

func cloneU8(p *uint8) *uint8 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// U8 returns a pointer to v. It is a convenience for building actions in code.
func U8(v uint8) *uint8 { return &v }

// U64 returns a pointer to v.
func U64(v uint64) *uint64 { return &v }

// Entry binds a topic to the ordered actions it triggers.
type Entry struct {
	Topic   string   `json:"topic" yaml:"topic" toml:"topic"`
	Actions []Action `json:"actions" yaml:"actions" toml:"actions"`
}
