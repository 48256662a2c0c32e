// SPDX-License-Identifier: MIT
// Package: synchghs/cmd/ghs
//
// telemetry.go - Prometheus endpoint and OpenTelemetry span export.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/metrics"
)

// startMetrics serves a fresh registry at addr and returns the engine
// observer feeding it. With an empty addr it returns a no-op observer.
func startMetrics(ctx context.Context, addr string, log *slog.Logger) (ghs.Observer, func(), error) {
	if addr == "" {
		return ghs.NopObserver{}, func() {}, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener %s: %w", addr, err)
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := metrics.Serve(ctx, ln, reg, log); err != nil {
			log.Error("metrics server stopped", slog.Any("error", err))
		}
	}()

	return rec, func() { cancel(); <-done }, nil
}

// traceShutdownTimeout bounds the final span flush.
const traceShutdownTimeout = 5 * time.Second

// startTracing installs a global tracer provider that writes every span as
// JSON to w. Engines built afterwards pick it up through otel.Tracer. The
// returned func flushes and shuts the provider down.
func startTracing(enabled bool, w io.Writer, log *slog.Logger) (func(), error) {
	if !enabled {
		return func() {}, nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	res := resource.NewWithAttributes("",
		attribute.String("service.name", "ghs"),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), traceShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("flushing spans", slog.Any("error", err))
		}
	}, nil
}
