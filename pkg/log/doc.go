// Package log provides structured protocol capture for the subpub relay.
//
// This package defines the Logger interface and Event types for capturing
// relay activity at several layers (datagram, protocol, MIDI, discovery).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Components take a Logger in their configuration:
//
//	// For development: log to console via slog
//	cfg.Capture = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Capture, _ = log.NewFileLogger("/var/log/subpub/relay.splog")
//
//	// Both: use MultiLogger
//	cfg.Capture = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Datagram: raw UDP payloads in and out (DatagramEvent)
//   - Protocol: parsed SUB/UNSUB/PUB commands (CommandEvent)
//   - MIDI: bytes written to the MIDI output (MIDIEvent)
//   - Discovery: probes and replies (DiscoveryEvent)
//
// State changes (subscriptions, mapping reloads) and errors have dedicated
// event types.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with integer keys. The
// subpub-log CLI tool provides viewing, filtering and statistics.
package log
