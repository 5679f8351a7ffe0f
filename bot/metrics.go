// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Command outcomes recorded by Metrics.Commands.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeDenied  = "denied"
	outcomeFailed  = "failed"
	outcomeUnknown = "unknown"
)

// Metrics are the bot's Prometheus collectors.
type Metrics struct {
	FramesReceived   prometheus.Counter
	FramesSent       prometheus.Counter
	MessagesReceived *prometheus.CounterVec // by message name
	MessagesSent     *prometheus.CounterVec // by message name
	DispatchErrors   *prometheus.CounterVec // by message name
	Commands         *prometheus.CounterVec // by command and outcome
	Reconnects       prometheus.Counter
	State            prometheus.Gauge
	HeartbeatRTT     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer gets a private registry, which keeps several bots in
// one process (or one test binary) from colliding.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	metrics := &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pianobot",
			Name:      "frames_received_total",
			Help:      "WebSocket frames read from the room service.",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pianobot",
			Name:      "frames_sent_total",
			Help:      "WebSocket frames written to the room service.",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pianobot",
			Name:      "messages_received_total",
			Help:      "Protocol messages decoded, by message type.",
		}, []string{"type"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pianobot",
			Name:      "messages_sent_total",
			Help:      "Protocol messages encoded, by message type.",
		}, []string{"type"}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pianobot",
			Name:      "dispatch_errors_total",
			Help:      "Handler failures and recovered panics, by message type.",
		}, []string{"type"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pianobot",
			Name:      "commands_total",
			Help:      "Chat commands handled, by command and outcome.",
		}, []string{"command", "outcome"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pianobot",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts after a lost or failed connection.",
		}),
		State: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pianobot",
			Name:      "connection_state",
			Help:      "Connection state: 0 disconnected, 1 connecting, 2 authenticating, 3 joining, 4 connected, 5 reconnecting, 6 terminated.",
		}),
		HeartbeatRTT: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pianobot",
			Name:      "heartbeat_rtt_seconds",
			Help:      "Round trip of time pings, measured when the echo arrives.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
	}
	registerer.MustRegister(
		metrics.FramesReceived,
		metrics.FramesSent,
		metrics.MessagesReceived,
		metrics.MessagesSent,
		metrics.DispatchErrors,
		metrics.Commands,
		metrics.Reconnects,
		metrics.State,
		metrics.HeartbeatRTT,
	)
	return metrics
}
