package metrics_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/metrics"
	"github.com/katalvlaran/synchghs/sim"
)

func TestRecorder_Counts(t *testing.T) {
	r := metrics.New(prometheus.NewRegistry())

	test := ghs.Message{Action: ghs.ActionTest}
	r.MessageSent(1, test)
	r.MessageSent(1, test)
	r.MessageReceived(2, test)
	r.MessageDeferred(2, ghs.Message{Action: ghs.ActionJoin})
	r.MessageDropped(2, test, ghs.DropStale)
	r.PhaseCompleted(1, 0, ghs.PhaseSearch, 3*time.Millisecond)
	r.LevelCompleted(1, 0)
	r.LevelCompleted(2, 0)
	r.Terminated(1, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Sent.WithLabelValues("TEST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Received.WithLabelValues("TEST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Deferred.WithLabelValues("JOIN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Dropped.WithLabelValues(ghs.DropStale)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Levels))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.NodeLevel.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.NodeLevel.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.TerminatedNodes))
	assert.Equal(t, 1, testutil.CollectAndCount(r.PhaseTime))
}

func TestRecorder_ObservesSimulation(t *testing.T) {
	g, err := builder.BuildGraph(nil, builder.Cycle(4))
	require.NoError(t, err)
	r := metrics.New(prometheus.NewRegistry())
	var obs ghs.Observer = r

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = sim.Run(ctx, g, sim.WithNodeOptions(ghs.WithObserver(obs)))
	require.NoError(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(r.TerminatedNodes))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.Levels), "the 4-cycle merges in one level")
	assert.Equal(t, 8.0, testutil.ToFloat64(r.Sent.WithLabelValues("JOIN")), "one JOIN per link end at level 0")
	assert.Positive(t, testutil.ToFloat64(r.Sent.WithLabelValues("SEARCH")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New(prometheus.NewRegistry())
		metrics.New(prometheus.NewRegistry())
	})
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) }, "duplicate registration")
}

func TestServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.New(reg)
	r.TerminatedNodes.Inc()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- metrics.Serve(ctx, ln, reg, slog.New(slog.DiscardHandler)) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "ghs_nodes_terminated_total 1"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
