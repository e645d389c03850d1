package midi

import (
	"bytes"
	"testing"
	"time"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
)

func TestEncode(t *testing.T) {
	u8 := mapping.U8

	tests := []struct {
		name   string
		action mapping.Action
		now    []byte
		later  []byte
		delay  time.Duration
	}{
		{
			name:   "note on defaults",
			action: mapping.Action{Kind: mapping.KindNoteOn},
			now:    []byte{0x90, 60, 127},
		},
		{
			name:   "note on explicit",
			action: mapping.Action{Kind: mapping.KindNoteOn, Channel: 3, Note: u8(64), Velocity: u8(40)},
			now:    []byte{0x93, 64, 40},
		},
		{
			name:   "note off defaults",
			action: mapping.Action{Kind: mapping.KindNoteOff, Channel: 15},
			now:    []byte{0x8F, 60, 0},
		},
		{
			name:   "control change defaults",
			action: mapping.Action{Kind: mapping.KindControlChange},
			now:    []byte{0xB0, 0, 0},
		},
		{
			name:   "control change explicit",
			action: mapping.Action{Kind: mapping.KindControlChange, Channel: 1, ControlNum: u8(7), Value: u8(100)},
			now:    []byte{0xB1, 7, 100},
		},
		{
			name:   "program change is two bytes",
			action: mapping.Action{Kind: mapping.KindProgramChange, Channel: 2, Value: u8(5)},
			now:    []byte{0xC2, 5},
		},
		{
			name:   "channel is masked",
			action: mapping.Action{Kind: mapping.KindNoteOn, Channel: 17, Note: u8(60), Velocity: u8(1)},
			now:    []byte{0x91, 60, 1},
		},
		{
			name:   "data bytes are clamped",
			action: mapping.Action{Kind: mapping.KindNoteOn, Note: u8(200), Velocity: u8(255)},
			now:    []byte{0x90, 127, 127},
		},
		{
			name:   "cc value clamped",
			action: mapping.Action{Kind: mapping.KindControlChange, ControlNum: u8(128), Value: u8(130)},
			now:    []byte{0xB0, 127, 127},
		},
		{
			name:   "note on off defaults",
			action: mapping.Action{Kind: mapping.KindNoteOnOff, Channel: 9},
			now:    []byte{0x99, 60, 127},
			later:  []byte{0x89, 60, 0},
			delay:  50 * time.Millisecond,
		},
		{
			name:   "note on off explicit velocity does not leak into note off",
			action: mapping.Action{Kind: mapping.KindNoteOnOff, Note: u8(36), Velocity: u8(90), DurationMS: mapping.U64(250)},
			now:    []byte{0x90, 36, 90},
			later:  []byte{0x80, 36, 0},
			delay:  250 * time.Millisecond,
		},
		{
			name:   "zero duration",
			action: mapping.Action{Kind: mapping.KindNoteOnOff, DurationMS: mapping.U64(0)},
			now:    []byte{0x90, 60, 127},
			later:  []byte{0x80, 60, 0},
			delay:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := Encode(tt.action)
			if !bytes.Equal(enc.Now, tt.now) {
				t.Errorf("Now = % X, want % X", []byte(enc.Now), tt.now)
			}
			if !bytes.Equal(enc.Later, tt.later) {
				t.Errorf("Later = % X, want % X", []byte(enc.Later), tt.later)
			}
			if enc.Delay != tt.delay {
				t.Errorf("Delay = %v, want %v", enc.Delay, tt.delay)
			}
		})
	}
}

func TestEncodeUnknownKind(t *testing.T) {
	enc := Encode(mapping.Action{Kind: mapping.Kind(42)})
	if enc.Now != nil || enc.Later != nil {
		t.Errorf("Encode(unknown) = %+v, want empty", enc)
	}
}

func TestEncodeHugeDurationSaturates(t *testing.T) {
	enc := Encode(mapping.Action{Kind: mapping.KindNoteOnOff, DurationMS: mapping.U64(^uint64(0))})
	if enc.Delay <= 0 {
		t.Errorf("Delay = %v, want a large positive duration", enc.Delay)
	}
}
