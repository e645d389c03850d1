package midi

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/action"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/metrics"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/schedule"
)

// Deferrer runs a function after a delay. *schedule.Scheduler satisfies it.
type Deferrer interface {
	After(delay time.Duration, fn func()) (uint64, error)
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Sink receives MIDI bytes. Nil disables MIDI output.
	Sink Sink

	// Resolver maps topics and payloads to final actions. Required for
	// HandlePublish.
	Resolver *action.Resolver

	// Scheduler runs deferred Note Offs. Nil creates a private scheduler.
	Scheduler Deferrer

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// Capture receives MIDI events. Nil disables capture.
	Capture log.Logger

	// RelayID tags capture events.
	RelayID string

	// Metrics records messages sent. Nil disables metrics.
	Metrics *metrics.Metrics
}

// Dispatcher sends final actions to the MIDI sink.
type Dispatcher struct {
	sink      Sink
	resolver  *action.Resolver
	scheduler Deferrer
	logger    *slog.Logger
	capture   log.Logger
	relayID   string
	metrics   *metrics.Metrics
}

// NewDispatcher creates a dispatcher. When cfg.Sink is nil this is logged
// once here and every later dispatch is a silent no-op.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		sink:      cfg.Sink,
		resolver:  cfg.Resolver,
		scheduler: cfg.Scheduler,
		logger:    cfg.Logger,
		capture:   log.OrNoop(cfg.Capture),
		relayID:   cfg.RelayID,
		metrics:   cfg.Metrics,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.scheduler == nil {
		d.scheduler = schedule.New()
	}
	if d.sink == nil {
		d.logger.Warn("no MIDI output available, MIDI actions will be skipped")
	}
	return d
}

// Enabled reports whether a sink is attached.
func (d *Dispatcher) Enabled() bool {
	return d.sink != nil
}

// HandlePublish resolves a publish into final actions and dispatches each
// one. Failures are logged per action. It returns the number of actions
// resolved.
func (d *Dispatcher) HandlePublish(topic, payload string) int {
	if d.resolver == nil {
		return 0
	}
	actions := d.resolver.Resolve(topic, payload)
	if len(actions) == 0 {
		return 0
	}
	d.logger.Debug("resolved MIDI actions", "topic", topic, "count", len(actions))

	for _, a := range actions {
		if err := d.Dispatch(topic, a); err != nil {
			d.logger.Error("failed to send MIDI message", "topic", topic, "action", a.String(), "error", err)
		}
	}
	return len(actions)
}

// Dispatch encodes one final action and sends it. For note_on_off the
// Note Off is scheduled and cannot be cancelled; its send error, if any, is
// logged when it fires.
func (d *Dispatcher) Dispatch(topic string, a mapping.Action) error {
	if d.sink == nil {
		return nil
	}

	enc := Encode(a)
	if enc.Now == nil {
		return fmt.Errorf("%w: %d", mapping.ErrUnknownKind, a.Kind)
	}

	kind := a.Kind.String()
	if err := d.send(topic, kind, enc.Now, false, 0); err != nil {
		return err
	}

	if enc.Later != nil {
		later, delay := enc.Later, enc.Delay
		_, err := d.scheduler.After(delay, func() {
			if err := d.send(topic, kind, later, true, delay); err != nil {
				d.logger.Error("failed to send delayed MIDI note off", "topic", topic, "bytes", later.String(), "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule note off: %w", err)
		}
	}
	return nil
}

func (d *Dispatcher) send(topic, kind string, msg []byte, deferred bool, delay time.Duration) error {
	if err := d.sink.Send(msg); err != nil {
		d.metrics.MIDIError()
		d.capture.Log(log.Event{
			Timestamp: time.Now(),
			RelayID:   d.relayID,
			Direction: log.DirectionOut,
			Layer:     log.LayerMIDI,
			Category:  log.CategoryError,
			Channel:   topic,
			Error:     &log.ErrorEventData{Layer: log.LayerMIDI, Message: err.Error(), Context: kind},
		})
		return err
	}

	d.metrics.MIDISent(kind, deferred)
	d.capture.Log(log.Event{
		Timestamp: time.Now(),
		RelayID:   d.relayID,
		Direction: log.DirectionOut,
		Layer:     log.LayerMIDI,
		Category:  log.CategoryMessage,
		Channel:   topic,
		MIDI: &log.MIDIEvent{
			Kind:     kind,
			Bytes:    append([]byte(nil), msg...),
			Deferred: deferred,
			Delay:    delay,
		},
	})
	return nil
}
