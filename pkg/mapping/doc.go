// Package mapping holds the topic-to-MIDI mapping table consumed by the relay.
//
// A mapping file is an ordered list of entries. Each entry names a topic and
// the MIDI actions to perform when a message is published to it:
//
//	[[mappings]]
//	topic = "drums/kick"
//
//	[[mappings.actions]]
//	action_type = "note_on_off"
//	channel = 9
//	note = 36
//	velocity = 110
//	duration_ms = 80
//
// Files may be written in TOML (the default), YAML, or JSON with comments;
// the format is chosen by file extension.
//
// # Snapshots
//
// A Table is immutable once built. A Store holds the active Table behind an
// atomic pointer, so readers always observe either the previous table or the
// new one in full. Reload never mutates a table in place.
//
// # Hot Reload
//
// Watcher observes the mapping file and reloads the Store when it changes.
// A file that fails to parse leaves the previous table active.
package mapping
