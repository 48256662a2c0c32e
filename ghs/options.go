// SPDX-License-Identifier: MIT
// Package: synchghs/ghs
//
// options.go - functional options for NewNode.
//
// Option constructors panic on nil arguments (programmer error).

package ghs

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope of engine spans.
const tracerName = "github.com/katalvlaran/synchghs/ghs"

// nodeConfig is the resolved option set.
type nodeConfig struct {
	logger     *slog.Logger
	observer   Observer
	tracer     trace.Tracer
	startDelay time.Duration
}

// Option configures a Node.
type Option func(*nodeConfig)

func newNodeConfig(opts ...Option) nodeConfig {
	cfg := nodeConfig{
		logger:   slog.New(slog.DiscardHandler),
		observer: NopObserver{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("ghs: WithLogger(nil)")
	}
	return func(c *nodeConfig) {
		c.logger = l
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	if o == nil {
		panic("ghs: WithObserver(nil)")
	}
	return func(c *nodeConfig) {
		c.observer = o
	}
}

// WithTracer sets the tracer for level and phase spans.
func WithTracer(t trace.Tracer) Option {
	if t == nil {
		panic("ghs: WithTracer(nil)")
	}
	return func(c *nodeConfig) {
		c.tracer = t
	}
}

// WithStartDelay makes Run wait d after the transport is ready.
func WithStartDelay(d time.Duration) Option {
	if d < 0 {
		panic("ghs: WithStartDelay(d<0)")
	}
	return func(c *nodeConfig) {
		c.startDelay = d
	}
}
