package log

import (
	"context"
	"encoding/hex"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
// A nil logger uses slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("relay_id", event.RelayID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}
	if event.Channel != "" {
		attrs = append(attrs, slog.String("channel", event.Channel))
	}

	switch {
	case event.Datagram != nil:
		attrs = append(attrs,
			slog.Int("size", event.Datagram.Size),
			slog.Bool("truncated", event.Datagram.Truncated),
		)
	case event.Command != nil:
		attrs = append(attrs, slog.String("verb", event.Command.Verb))
		if event.Command.PayloadSize > 0 {
			attrs = append(attrs, slog.Int("payload_size", event.Command.PayloadSize))
		}
		if event.Command.Verb == "PUB" {
			attrs = append(attrs,
				slog.Int("recipients", event.Command.Recipients),
				slog.Int("actions", event.Command.Actions),
			)
		}
	case event.MIDI != nil:
		attrs = append(attrs,
			slog.String("kind", event.MIDI.Kind),
			slog.String("bytes", hex.EncodeToString(event.MIDI.Bytes)),
		)
		if event.MIDI.Deferred {
			attrs = append(attrs, slog.Duration("delay", event.MIDI.Delay))
		}
	case event.Discovery != nil:
		attrs = append(attrs,
			slog.String("probe", event.Discovery.Probe),
			slog.Bool("matched", event.Discovery.Matched),
		)
		if event.Discovery.Reply != "" {
			attrs = append(attrs, slog.String("reply", event.Discovery.Reply))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "capture", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
