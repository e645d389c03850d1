// Package commands implements the subpub-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
)

// FilterOptions are the command-line filter criteria shared by every
// command. Empty fields match everything.
type FilterOptions struct {
	RelayID   string
	Remote    string
	Channel   string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// Build converts the options into a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		RelayID:    o.RelayID,
		RemoteAddr: o.Remote,
		Channel:    o.Channel,
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if o.Layer != "" {
		l, err := parseLayer(o.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if o.Direction != "" {
		d, err := parseDirection(o.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := parseCategory(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	return filter, nil
}

// RunFilter writes the events of path matching opts to output.
func RunFilter(path, output string, opts FilterOptions, w io.Writer) error {
	if output == "" {
		return errors.New("output file required")
	}
	count := 0
	err := eachEvent(path, opts, func(event log.Event) error {
		count++
		return nil
	}, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}

// eachEvent calls fn for every matching event in path. When copyTo is set
// the matching events are also written to that capture file.
func eachEvent(path string, opts FilterOptions, fn func(log.Event) error, copyTo string) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	var out *log.FileLogger
	if copyTo != "" {
		out, err = log.NewFileLogger(copyTo)
		if err != nil {
			return fmt.Errorf("failed to create output capture: %w", err)
		}
		defer out.Close()
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if out != nil {
			out.Log(event)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "datagram":
		return log.LayerDatagram, nil
	case "protocol":
		return log.LayerProtocol, nil
	case "midi":
		return log.LayerMIDI, nil
	case "discovery":
		return log.LayerDiscovery, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be datagram, protocol, midi, or discovery)", s)
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}
