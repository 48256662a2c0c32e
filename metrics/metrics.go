// SPDX-License-Identifier: MIT
// Package: synchghs/metrics
//
// metrics.go - Prometheus implementation of ghs.Observer.

// Package metrics exports GHS engine events as Prometheus metrics and serves
// them over HTTP.
//
// Metrics (namespace "ghs"):
//
//	messages_sent_total{action}
//	messages_received_total{action}
//	messages_deferred_total{action}
//	messages_dropped_total{reason}
//	phase_duration_seconds{phase}
//	levels_completed_total
//	node_level{node}
//	nodes_terminated_total
//
// All methods are safe for concurrent use by any number of nodes.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/synchghs/ghs"
)

const namespace = "ghs"

// Recorder holds the collectors. Create it with New.
type Recorder struct {
	Sent            *prometheus.CounterVec
	Received        *prometheus.CounterVec
	Deferred        *prometheus.CounterVec
	Dropped         *prometheus.CounterVec
	PhaseTime       *prometheus.HistogramVec
	Levels          prometheus.Counter
	NodeLevel       *prometheus.GaugeVec
	TerminatedNodes prometheus.Counter
}

var _ ghs.Observer = (*Recorder)(nil)

// New registers the collectors with reg. Passing prometheus.NewRegistry()
// keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)

	return &Recorder{
		Sent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Protocol messages queued for sending, by action.",
		}, []string{"action"}),
		Received: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Decoded protocol messages received, by action.",
		}, []string{"action"}),
		Deferred: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_deferred_total",
			Help:      "Messages buffered because they arrived early, by action.",
		}, []string{"action"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Messages discarded without processing, by reason.",
		}, []string{"reason"}),
		PhaseTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time spent in each protocol phase.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"phase"}),
		Levels: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "levels_completed_total",
			Help:      "Component levels completed, summed over nodes.",
		}),
		NodeLevel: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "node_level",
			Help:      "Current component level of each node.",
		}, []string{"node"}),
		TerminatedNodes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_terminated_total",
			Help:      "Nodes that reached TERMINATE.",
		}),
	}
}

func (r *Recorder) MessageSent(_ int, m ghs.Message) {
	r.Sent.WithLabelValues(m.Action.String()).Inc()
}

func (r *Recorder) MessageReceived(_ int, m ghs.Message) {
	r.Received.WithLabelValues(m.Action.String()).Inc()
}

func (r *Recorder) MessageDeferred(_ int, m ghs.Message) {
	r.Deferred.WithLabelValues(m.Action.String()).Inc()
}

func (r *Recorder) MessageDropped(_ int, _ ghs.Message, reason string) {
	r.Dropped.WithLabelValues(reason).Inc()
}

func (r *Recorder) PhaseCompleted(_, _ int, p ghs.Phase, d time.Duration) {
	r.PhaseTime.WithLabelValues(p.String()).Observe(d.Seconds())
}

func (r *Recorder) LevelCompleted(node, level int) {
	r.Levels.Inc()
	r.NodeLevel.WithLabelValues(strconv.Itoa(node)).Set(float64(level + 1))
}

func (r *Recorder) Terminated(node, level int) {
	r.TerminatedNodes.Inc()
	r.NodeLevel.WithLabelValues(strconv.Itoa(node)).Set(float64(level))
}
