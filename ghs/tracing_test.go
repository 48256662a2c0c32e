package ghs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/ghs"
)

// spanInt returns the int attribute key of s, or -1.
func spanInt(s sdktrace.ReadOnlySpan, key attribute.Key) int {
	for _, kv := range s.Attributes() {
		if kv.Key == key {
			return int(kv.Value.AsInt64())
		}
	}

	return -1
}

func TestRun_RecordsLevelAndPhaseSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	g, err := builder.BuildGraph(nil, builder.Cycle(4))
	require.NoError(t, err)
	results := runGraph(t, g, nil, ghs.WithTracer(tp.Tracer("ghs-test")))
	require.Len(t, results, 4)

	type key struct{ node, level int }
	levels := make(map[key]sdktrace.ReadOnlySpan)
	phases := make(map[key][]string)
	spans := rec.Ended()
	for _, s := range spans {
		k := key{spanInt(s, "ghs.node"), spanInt(s, "ghs.level")}
		require.True(t, g.HasVertex(k.node), "span %s without node", s.Name())
		require.GreaterOrEqual(t, k.level, 0, "span %s without level", s.Name())
		if s.Name() == "ghs.level" {
			_, dup := levels[k]
			require.False(t, dup, "one level span per node and level")
			levels[k] = s
		}
	}
	for _, s := range spans {
		if s.Name() == "ghs.level" {
			continue
		}
		k := key{spanInt(s, "ghs.node"), spanInt(s, "ghs.level")}
		parent, ok := levels[k]
		require.True(t, ok, "phase span %s has no level span", s.Name())
		assert.Equal(t, parent.SpanContext().SpanID(), s.Parent().SpanID())
		phases[k] = append(phases[k], s.Name())
	}

	// The 4-cycle merges at level 0 and terminates during level 1.
	for _, id := range g.Vertices() {
		assert.Contains(t, levels, key{id, 0})
		assert.Contains(t, levels, key{id, 1})
		assert.Equal(t, []string{"ghs.search", "ghs.test", "ghs.converge", "ghs.merge", "ghs.join"}, phases[key{id, 0}],
			"node %d level 0", id)
		assert.NotEmpty(t, phases[key{id, 1}])
		assert.NotContains(t, phases[key{id, 1}], "ghs.join", "node %d terminates before JOIN", id)
	}
	assert.Len(t, levels, 8)
}
