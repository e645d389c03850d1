package relay

import (
	"errors"
	"strings"
)

// Verbs.
const (
	VerbSub   = "SUB"
	VerbUnsub = "UNSUB"
	VerbPub   = "PUB"
)

// DefaultPort is the relay's default UDP port.
const DefaultPort = 7878

// MaxDatagramSize is the receive buffer size. Longer datagrams are truncated
// by the socket.
const MaxDatagramSize = 1024

// ErrMalformed is returned for text without an ACTION:CHANNEL prefix.
var ErrMalformed = errors.New("malformed message")

// Command is a parsed relay datagram.
type Command struct {
	// Verb is the action, upper-cased. It may be an unknown verb.
	Verb string

	Channel string

	// Payload is everything after the second colon.
	Payload string

	// HasPayload distinguishes "PUB:ch:" (empty payload) from "PUB:ch".
	HasPayload bool
}

// ParseCommand parses datagram text. The text is trimmed first.
func ParseCommand(text string) (Command, error) {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 3)
	if len(parts) < 2 {
		return Command{}, ErrMalformed
	}

	cmd := Command{
		Verb:    strings.ToUpper(parts[0]),
		Channel: parts[1],
	}
	if len(parts) == 3 {
		cmd.Payload = parts[2]
		cmd.HasPayload = true
	}
	return cmd, nil
}

// String formats the command in wire form.
func (c Command) String() string {
	s := c.Verb + ":" + c.Channel
	if c.HasPayload {
		s += ":" + c.Payload
	}
	return s
}

// Subscribe returns the wire form of a SUB for channel.
func Subscribe(channel string) []byte {
	return []byte(Command{Verb: VerbSub, Channel: channel}.String())
}

// Unsubscribe returns the wire form of an UNSUB for channel.
func Unsubscribe(channel string) []byte {
	return []byte(Command{Verb: VerbUnsub, Channel: channel}.String())
}

// Publish returns the wire form of a PUB of payload to channel.
func Publish(channel, payload string) []byte {
	return []byte(Command{Verb: VerbPub, Channel: channel, Payload: payload, HasPayload: true}.String())
}
