package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
)

// RunView prints the matching events of path in human-readable form.
func RunView(path string, opts FilterOptions, w io.Writer) error {
	return eachEvent(path, opts, func(event log.Event) error {
		formatEvent(w, event)
		return nil
	}, "")
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Datagram != nil:
		typeLabel = "Datagram"
	case event.Command != nil:
		typeLabel = event.Command.Verb
	case event.MIDI != nil:
		typeLabel = "MIDI"
	case event.Discovery != nil:
		typeLabel = "Probe"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [relay:%s] %-3s %s %s", ts, shortenID(event.RelayID), event.Direction, event.Layer, typeLabel)
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, " %s", event.RemoteAddr)
	}
	if event.Channel != "" {
		fmt.Fprintf(w, " #%s", event.Channel)
	}
	fmt.Fprintln(w)

	switch {
	case event.Datagram != nil:
		formatDatagramDetails(w, event.Datagram)
	case event.Command != nil:
		c := event.Command
		fmt.Fprintf(w, "  Payload: %d bytes  Recipients: %d  Actions: %d\n", c.PayloadSize, c.Recipients, c.Actions)
	case event.MIDI != nil:
		m := event.MIDI
		fmt.Fprintf(w, "  %s: % X", m.Kind, m.Bytes)
		if m.Deferred {
			fmt.Fprintf(w, " (after %s)", m.Delay)
		}
		fmt.Fprintln(w)
	case event.Discovery != nil:
		d := event.Discovery
		fmt.Fprintf(w, "  Probe: %q  Matched: %t\n", d.Probe, d.Matched)
		if d.Reply != "" {
			fmt.Fprintf(w, "  Reply: %s\n", d.Reply)
		}
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatDatagramDetails prints text datagrams as text and anything else
// as hex.
func formatDatagramDetails(w io.Writer, d *log.DatagramEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", d.Size)
	if len(d.Data) == 0 {
		return
	}
	if utf8.Valid(d.Data) {
		fmt.Fprintf(w, "  Text: %q", d.Data)
	} else {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(d.Data))
	}
	if d.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}
