package commands

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
)

// RunExport writes the matching events of path as JSON lines or CSV to
// output, or to w when output is empty.
func RunExport(path, format, output string, opts FilterOptions, w io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "jsonl" {
		encoder := json.NewEncoder(w)
		return eachEvent(path, opts, func(event log.Event) error {
			if err := encoder.Encode(event); err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			return nil
		}, "")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "relay_id", "direction", "layer", "category", "remote", "channel", "detail"}); err != nil {
		return err
	}
	err := eachEvent(path, opts, func(event log.Event) error {
		return cw.Write([]string{
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.RelayID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.RemoteAddr,
			event.Channel,
			detail(event),
		})
	}, "")
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// detail is a one-field summary of the event payload.
func detail(event log.Event) string {
	switch {
	case event.Datagram != nil:
		return strconv.Itoa(event.Datagram.Size) + " bytes"
	case event.Command != nil:
		return fmt.Sprintf("%s recipients=%d actions=%d", event.Command.Verb, event.Command.Recipients, event.Command.Actions)
	case event.MIDI != nil:
		return event.MIDI.Kind + " " + hex.EncodeToString(event.MIDI.Bytes)
	case event.Discovery != nil:
		return fmt.Sprintf("probe=%q matched=%t", event.Discovery.Probe, event.Discovery.Matched)
	case event.StateChange != nil:
		return event.StateChange.Entity.String() + " " + event.StateChange.OldState + "->" + event.StateChange.NewState
	case event.Error != nil:
		return event.Error.Message
	}
	return ""
}
