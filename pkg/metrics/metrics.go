// Package metrics exposes relay counters to Prometheus.
//
// A nil *Metrics is valid and records nothing, so components can take an
// optional *Metrics without checking it at every call site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "subpub"

// Drop reasons recorded by DatagramDropped.
const (
	DropNonUTF8      = "non_utf8"
	DropMalformed    = "malformed"
	DropEmptyPayload = "empty_payload"
	DropUnknownVerb  = "unknown_action"
)

// Metrics holds the relay's Prometheus collectors.
type Metrics struct {
	datagramsReceived prometheus.Counter
	bytesReceived     prometheus.Counter
	datagramsDropped  *prometheus.CounterVec
	commands          *prometheus.CounterVec
	channels          prometheus.Gauge
	fanoutSends       prometheus.Counter
	fanoutFailures    prometheus.Counter
	midiMessages      *prometheus.CounterVec
	midiErrors        prometheus.Counter
	discoveryProbes   *prometheus.CounterVec
	mappingReloads    *prometheus.CounterVec
	mappingTopics     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is useful in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		datagramsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_received_total",
			Help:      "Relay datagrams received",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Relay bytes received",
		}),
		datagramsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_dropped_total",
			Help:      "Relay datagrams dropped, by reason",
		}, []string{"reason"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Accepted relay commands, by verb",
		}, []string{"verb"}),
		channels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channels",
			Help:      "Channels with at least one subscriber",
		}),
		fanoutSends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_sends_total",
			Help:      "Payloads forwarded to subscribers",
		}),
		fanoutFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_failures_total",
			Help:      "Payload forwards that failed",
		}),
		midiMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "midi_messages_total",
			Help:      "MIDI messages written, by action kind and timing",
		}, []string{"kind", "timing"}),
		midiErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "midi_errors_total",
			Help:      "MIDI writes that failed",
		}),
		discoveryProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_probes_total",
			Help:      "Discovery datagrams received, by outcome",
		}, []string{"outcome"}),
		mappingReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapping_reloads_total",
			Help:      "Mapping reload attempts, by result",
		}, []string{"result"}),
		mappingTopics: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mapping_topics",
			Help:      "Topics in the active mapping table",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.datagramsReceived,
			m.bytesReceived,
			m.datagramsDropped,
			m.commands,
			m.channels,
			m.fanoutSends,
			m.fanoutFailures,
			m.midiMessages,
			m.midiErrors,
			m.discoveryProbes,
			m.mappingReloads,
			m.mappingTopics,
		)
	}
	return m
}

// DatagramReceived records an inbound relay datagram of n bytes.
func (m *Metrics) DatagramReceived(n int) {
	if m == nil {
		return
	}
	m.datagramsReceived.Inc()
	m.bytesReceived.Add(float64(n))
}

// DatagramDropped records a datagram discarded for reason.
func (m *Metrics) DatagramDropped(reason string) {
	if m == nil {
		return
	}
	m.datagramsDropped.WithLabelValues(reason).Inc()
}

// Command records an accepted command.
func (m *Metrics) Command(verb string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(verb).Inc()
}

// SetChannels records the number of live channels.
func (m *Metrics) SetChannels(n int) {
	if m == nil {
		return
	}
	m.channels.Set(float64(n))
}

// FanOut records one publish fan-out.
func (m *Metrics) FanOut(sent, failed int) {
	if m == nil {
		return
	}
	m.fanoutSends.Add(float64(sent))
	m.fanoutFailures.Add(float64(failed))
}

// MIDISent records a MIDI message written to the output.
func (m *Metrics) MIDISent(kind string, deferred bool) {
	if m == nil {
		return
	}
	timing := "immediate"
	if deferred {
		timing = "deferred"
	}
	m.midiMessages.WithLabelValues(kind, timing).Inc()
}

// MIDIError records a failed MIDI write.
func (m *Metrics) MIDIError() {
	if m == nil {
		return
	}
	m.midiErrors.Inc()
}

// DiscoveryProbe records a discovery datagram and whether it was answered.
func (m *Metrics) DiscoveryProbe(answered bool) {
	if m == nil {
		return
	}
	outcome := "ignored"
	if answered {
		outcome = "answered"
	}
	m.discoveryProbes.WithLabelValues(outcome).Inc()
}

// MappingReloaded records a reload attempt and, on success, the new topic count.
func (m *Metrics) MappingReloaded(topics int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.mappingReloads.WithLabelValues("error").Inc()
		return
	}
	m.mappingReloads.WithLabelValues("ok").Inc()
	m.mappingTopics.Set(float64(topics))
}
