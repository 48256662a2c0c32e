package mqtt_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/synchghs/builder"
	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/prim_kruskal"
	"github.com/katalvlaran/synchghs/sim"
	"github.com/katalvlaran/synchghs/transport"
	"github.com/katalvlaran/synchghs/transport/mqtt"
)

// fakeBroker delivers synchronously and keeps retained messages. It
// understands a trailing single-level "+" wildcard only.
type fakeBroker struct {
	mu       sync.Mutex
	subs     map[string][]func(string, []byte)
	retained map[string][]byte
	failOn   string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{subs: make(map[string][]func(string, []byte)), retained: make(map[string][]byte)}
}

func matches(filter, topic string) bool {
	if prefix, ok := strings.CutSuffix(filter, "+"); ok {
		return strings.HasPrefix(topic, prefix) && !strings.Contains(topic[len(prefix):], "/")
	}

	return filter == topic
}

func (b *fakeBroker) client() mqtt.Client { return &fakeClient{b: b} }

type fakeClient struct{ b *fakeBroker }

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload []byte) error {
	b := c.b
	b.mu.Lock()
	if b.failOn != "" && topic == b.failOn {
		b.mu.Unlock()
		return errors.New("broker refused")
	}
	if retained {
		b.retained[topic] = payload
	}
	var targets []func(string, []byte)
	for f, fns := range b.subs {
		if matches(f, topic) {
			targets = append(targets, fns...)
		}
	}
	b.mu.Unlock()
	for _, fn := range targets {
		fn(topic, payload)
	}

	return nil
}

func (c *fakeClient) Subscribe(filter string, _ byte, fn func(string, []byte)) error {
	b := c.b
	b.mu.Lock()
	b.subs[filter] = append(b.subs[filter], fn)
	type msg struct {
		topic   string
		payload []byte
	}
	var replay []msg
	for topic, p := range b.retained {
		if matches(filter, topic) {
			replay = append(replay, msg{topic, p})
		}
	}
	b.mu.Unlock()
	for _, m := range replay {
		fn(m.topic, m.payload)
	}

	return nil
}

func (c *fakeClient) Close() {}

func TestTopics(t *testing.T) {
	assert.Equal(t, "ghs/r1/node/4", mqtt.NodeTopic("r1", 4))
	assert.Equal(t, "ghs/r1/presence/4", mqtt.PresenceTopic("r1", 4))
	w := mqtt.PresenceWill("r1", 4)
	assert.True(t, w.Retained)
	assert.Equal(t, "down", string(w.Payload))
}

func TestTransport_PresenceAndOrder(t *testing.T) {
	b := newFakeBroker()
	a, err := mqtt.New(b.client(), "run", 1, []int{2}, nil)
	require.NoError(t, err)
	defer a.Close()
	a.Listen(func([]byte) {})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Ready(ctx), context.DeadlineExceeded, "peer 2 not announced yet")

	var mu sync.Mutex
	var got []string
	c, err := mqtt.New(b.client(), "run", 2, []int{1}, nil)
	require.NoError(t, err)
	defer c.Close()
	c.Listen(func(data []byte) {
		mu.Lock()
		got = append(got, string(data))
		mu.Unlock()
	})
	require.NoError(t, a.Ready(context.Background()))
	require.NoError(t, c.Ready(context.Background()), "retained presence of 1 is replayed")

	for _, f := range []string{"f1", "f2", "f3"} {
		require.NoError(t, a.Send(2, []byte(f)))
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"f1", "f2", "f3"}, got)
	assert.ErrorIs(t, a.Send(3, []byte("x")), transport.ErrUnknownPeer)
}

func TestTransport_PublishFailure(t *testing.T) {
	b := newFakeBroker()
	b.failOn = mqtt.NodeTopic("run", 2)
	a, err := mqtt.New(b.client(), "run", 1, []int{2}, nil)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Send(2, []byte("x")))
	require.Eventually(t, func() bool { return a.Send(2, []byte("y")) != nil }, time.Second, time.Millisecond)
}

func TestTransport_CloseMarksDown(t *testing.T) {
	b := newFakeBroker()
	a, err := mqtt.New(b.client(), "run", 1, nil, nil)
	require.NoError(t, err)
	a.Close()
	a.Close()

	b.mu.Lock()
	assert.Equal(t, "down", string(b.retained[mqtt.PresenceTopic("run", 1)]))
	b.mu.Unlock()
	assert.ErrorIs(t, a.Send(1, nil), transport.ErrUnknownPeer)
	a.Listen(func([]byte) {})
	assert.ErrorIs(t, a.Ready(context.Background()), transport.ErrClosed)
}

func TestTransport_GHSRun(t *testing.T) {
	g, err := builder.BuildGraph([]builder.BuilderOption{builder.WithSeed(8), builder.WithShuffledWeights()},
		builder.RandomConnected(7, 0.3))
	require.NoError(t, err)

	b := newFakeBroker()
	ids := g.Vertices()
	nodes := make([]*ghs.Node, 0, len(ids))
	for _, id := range ids {
		peers, err := g.NeighborIDs(id)
		require.NoError(t, err)
		tr, err := mqtt.New(b.client(), "sim", id, peers, nil)
		require.NoError(t, err)
		defer tr.Close()
		edges, err := g.Neighbors(id)
		require.NoError(t, err)
		n, err := ghs.NewNode(id, len(ids), edges, tr)
		require.NoError(t, err)
		nodes = append(nodes, n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	results := make([]ghs.Result, len(nodes))
	for i, n := range nodes {
		i, n := i, n
		eg.Go(func() error {
			var err error
			results[i], err = n.Run(ctx)
			return err
		})
	}
	require.NoError(t, eg.Wait())

	rep, err := sim.Aggregate(results)
	require.NoError(t, err)
	assert.NoError(t, sim.Verify(g, rep, prim_kruskal.NewOptions()))
}
