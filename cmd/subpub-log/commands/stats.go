package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Verbs             map[string]int
	Channels          map[string]*ChannelStats
	Peers             map[string]int
	MIDIMessages      int
	DeferredMIDI      int
	Probes            int
	ProbesAnswered    int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ChannelStats holds statistics for one channel.
type ChannelStats struct {
	Publishes  int
	Recipients int
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, opts FilterOptions, w io.Writer) error {
	stats := newStats()
	if err := eachEvent(path, opts, func(event log.Event) error {
		stats.add(event)
		return nil
	}, ""); err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Verbs:             make(map[string]int),
		Channels:          make(map[string]*ChannelStats),
		Peers:             make(map[string]int),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.RemoteAddr != "" && event.Direction == log.DirectionIn {
		s.Peers[event.RemoteAddr]++
	}

	if c := event.Command; c != nil {
		s.Verbs[c.Verb]++
		if c.Verb == "PUB" && event.Channel != "" {
			ch, ok := s.Channels[event.Channel]
			if !ok {
				ch = &ChannelStats{}
				s.Channels[event.Channel] = ch
			}
			ch.Publishes++
			ch.Recipients += c.Recipients
		}
	}
	if m := event.MIDI; m != nil {
		s.MIDIMessages++
		if m.Deferred {
			s.DeferredMIDI++
		}
	}
	if d := event.Discovery; d != nil {
		s.Probes++
		if d.Matched {
			s.ProbesAnswered++
		}
	}
	if event.Error != nil {
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Relay Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerDatagram, log.LayerProtocol, log.LayerMIDI, log.LayerDiscovery} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Verbs) > 0 {
		fmt.Fprintln(w, "Commands:")
		for _, verb := range sortedKeys(stats.Verbs) {
			fmt.Fprintf(w, "  %-12s %d\n", verb+":", stats.Verbs[verb])
		}
		fmt.Fprintln(w)
	}

	if len(stats.Channels) > 0 {
		fmt.Fprintf(w, "Channels: %d\n", len(stats.Channels))
		names := make([]string, 0, len(stats.Channels))
		for name := range stats.Channels {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ch := stats.Channels[name]
			fmt.Fprintf(w, "  %s: %d publishes, %d deliveries\n", name, ch.Publishes, ch.Recipients)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Peers: %d\n", len(stats.Peers))
	if stats.MIDIMessages > 0 {
		fmt.Fprintf(w, "MIDI Messages: %d (%d deferred)\n", stats.MIDIMessages, stats.DeferredMIDI)
	}
	if stats.Probes > 0 {
		fmt.Fprintf(w, "Discovery Probes: %d (%d answered)\n", stats.Probes, stats.ProbesAnswered)
	}
	if stats.Errors > 0 {
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
