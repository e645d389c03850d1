package midi

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
)

// Status nibbles.
const (
	statusNoteOff       = 0x80
	statusNoteOn        = 0x90
	statusControlChange = 0xB0
	statusProgramChange = 0xC0
)

// Field defaults applied when an action leaves them unset.
const (
	DefaultNote           uint8  = 60
	DefaultOnVelocity     uint8  = 127
	DefaultOffVelocity    uint8  = 0
	DefaultControl        uint8  = 0
	DefaultValue          uint8  = 0
	DefaultNoteDurationMS uint64 = 50

	maxDataByte uint8 = 0x7F
)

// Encoded is the wire form of one final action.
type Encoded struct {
	// Now is sent immediately. Nil for an unknown action kind.
	Now gomidi.Message

	// Later is sent after Delay. Only set for note_on_off.
	Later gomidi.Message
	Delay time.Duration
}

// Encode converts a final action into MIDI bytes.
func Encode(a mapping.Action) Encoded {
	ch := a.Channel & 0x0F

	switch a.Kind {
	case mapping.KindNoteOn:
		return Encoded{Now: gomidi.Message{
			statusNoteOn | ch,
			data(a.Note, DefaultNote),
			data(a.Velocity, DefaultOnVelocity),
		}}

	case mapping.KindNoteOff:
		return Encoded{Now: gomidi.Message{
			statusNoteOff | ch,
			data(a.Note, DefaultNote),
			data(a.Velocity, DefaultOffVelocity),
		}}

	case mapping.KindNoteOnOff:
		note := data(a.Note, DefaultNote)
		ms := DefaultNoteDurationMS
		if a.DurationMS != nil {
			ms = *a.DurationMS
		}
		return Encoded{
			Now:   gomidi.Message{statusNoteOn | ch, note, data(a.Velocity, DefaultOnVelocity)},
			Later: gomidi.Message{statusNoteOff | ch, note, 0},
			Delay: durationMS(ms),
		}

	case mapping.KindControlChange:
		return Encoded{Now: gomidi.Message{
			statusControlChange | ch,
			data(a.ControlNum, DefaultControl),
			data(a.Value, DefaultValue),
		}}

	case mapping.KindProgramChange:
		return Encoded{Now: gomidi.Message{
			statusProgramChange | ch,
			data(a.Value, DefaultValue),
		}}
	}
	return Encoded{}
}

func data(v *uint8, def uint8) uint8 {
	b := def
	if v != nil {
		b = *v
	}
	return min(b, maxDataByte)
}

// durationMS converts milliseconds to a Duration, saturating instead of
// overflowing for absurd values.
func durationMS(ms uint64) time.Duration {
	const maxMS = uint64(1<<63-1) / uint64(time.Millisecond)
	if ms > maxMS {
		ms = maxMS
	}
	return time.Duration(ms) * time.Millisecond
}
