package floodmax_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/floodmax"
)

func TestRun_RecordsStageSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	g, err := builder.BuildGraph(nil, builder.Star(4))
	require.NoError(t, err)
	runGraph(t, g, nil, floodmax.WithTracer(tp.Tracer("floodmax-test")))

	runs := make(map[int]sdktrace.ReadOnlySpan)
	stages := make(map[int][]string)
	spans := rec.Ended()
	for _, s := range spans {
		if s.Name() == "floodmax.run" {
			runs[spanNode(s)] = s
		}
	}
	for _, s := range spans {
		if s.Name() == "floodmax.run" {
			continue
		}
		id := spanNode(s)
		run, ok := runs[id]
		require.True(t, ok, "stage span %s without run span", s.Name())
		assert.Equal(t, run.SpanContext().SpanID(), s.Parent().SpanID())
		stages[id] = append(stages[id], s.Name())
	}

	require.Len(t, runs, 4)
	for _, id := range g.Vertices() {
		assert.Equal(t,
			[]string{"floodmax.elect", "floodmax.build", "floodmax.reply", "floodmax.degree", "floodmax.end"},
			stages[id], "node %d", id)
	}
}

func spanNode(s sdktrace.ReadOnlySpan) int {
	for _, kv := range s.Attributes() {
		if kv.Key == "floodmax.node" {
			return int(kv.Value.AsInt64())
		}
	}

	return -1
}
