// Package relay implements the SUB/UNSUB/PUB datagram protocol.
//
// # Wire Format
//
// Every datagram is UTF-8 text of the form ACTION:CHANNEL[:PAYLOAD]. The
// text is trimmed of surrounding whitespace and split on the first two
// colons, so payloads may themselves contain colons. ACTION is
// case-insensitive; CHANNEL is case-sensitive and otherwise unchecked.
//
//	SUB:<channel>             subscribe the sender
//	UNSUB:<channel>           unsubscribe the sender
//	PUB:<channel>:<payload>   forward payload to every other subscriber
//
// No acknowledgements are sent. Malformed datagrams are logged and dropped.
//
// # Publish Handling
//
// A PUB first runs the configured PublishHandler (MIDI translation) and then
// forwards the payload bytes to a snapshot of the channel's subscribers,
// skipping the publisher. A failed send to one subscriber does not stop the
// fan-out to the rest.
//
// # Concurrency
//
// Serve reads and handles one datagram at a time. The subscription registry
// is safe for concurrent use, so several Servers may share one.
package relay
