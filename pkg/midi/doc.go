// Package midi encodes final actions into MIDI messages and writes them to a
// single output.
//
// # Encoding
//
// The status byte is the action's message type ORed with the channel masked
// to four bits. Data bytes are clamped to 0-127. Absent fields take these
// defaults:
//
//	note_on        0x9n note=60 velocity=127
//	note_off       0x8n note=60 velocity=0
//	cc             0xBn control=0 value=0
//	program_change 0xCn value=0
//	note_on_off    note_on now, then 0x8n note velocity=0 after duration_ms (50)
//
// # Output
//
// All writes go through one Sink guarded by a mutex, so the immediate and
// deferred halves of concurrent timed notes may interleave but individual
// messages never do. Without a sink the dispatcher is a silent no-op.
package midi
