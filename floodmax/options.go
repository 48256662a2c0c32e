// SPDX-License-Identifier: MIT
// Package: synchghs/floodmax
//
// options.go - functional options for NewNode.

package floodmax

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/katalvlaran/synchghs/floodmax"

type nodeConfig struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	startDelay time.Duration
}

// Option configures a Node. Constructors panic on nil arguments.
type Option func(*nodeConfig)

func newNodeConfig(opts ...Option) nodeConfig {
	cfg := nodeConfig{
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("floodmax: WithLogger(nil)")
	}
	return func(c *nodeConfig) {
		c.logger = l
	}
}

// WithTracer sets the tracer for the run and stage spans.
func WithTracer(t trace.Tracer) Option {
	if t == nil {
		panic("floodmax: WithTracer(nil)")
	}
	return func(c *nodeConfig) {
		c.tracer = t
	}
}

// WithStartDelay makes Run wait d after the transport is ready.
func WithStartDelay(d time.Duration) Option {
	if d < 0 {
		panic("floodmax: WithStartDelay(d<0)")
	}
	return func(c *nodeConfig) {
		c.startDelay = d
	}
}
