// SPDX-License-Identifier: MIT
// Package: synchghs/transport/mqtt
//
// mqtt.go - ghs.Transport over an MQTT broker.
//
// Topics, all under ghs/<run>/:
//
//	node/<id>      frames addressed to node id (QoS 1)
//	presence/<id>  retained "up" while node id is subscribed, "down" otherwise
//
// One publisher goroutine per transport publishes frames in Send order and
// waits for each acknowledgement, so frames to one peer stay in order.

// Package mqtt implements ghs.Transport on top of an MQTT broker through
// Eclipse Paho.
package mqtt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/katalvlaran/synchghs/transport"
)

// ErrTimeout indicates a broker operation that was not acknowledged in time.
var ErrTimeout = errors.New("mqtt: broker timeout")

const (
	qosAtLeastOnce byte = 1
	topicRoot           = "ghs"
)

var (
	presenceUp   = []byte("up")
	presenceDown = []byte("down")
)

// NodeTopic is where frames for node id are published.
func NodeTopic(run string, id int) string {
	return topicRoot + "/" + run + "/node/" + strconv.Itoa(id)
}

// PresenceTopic carries node id's retained presence flag.
func PresenceTopic(run string, id int) string {
	return topicRoot + "/" + run + "/presence/" + strconv.Itoa(id)
}

// PresenceWill is the last will that marks id down if its client drops.
func PresenceWill(run string, id int) *Will {
	return &Will{Topic: PresenceTopic(run, id), Payload: presenceDown, Retained: true}
}

type outFrame struct {
	topic string
	data  []byte
}

// Transport is one node's attachment to the broker.
type Transport struct {
	id    int
	run   string
	c     Client
	peers map[int]bool
	log   *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	handler func([]byte)
	present map[int]bool
	queue   []outFrame
	pubErr  error
	closed  bool
	done    chan struct{}
}

// New subscribes to id's frame topic and to peer presence, announces id and
// starts the publisher. peers are the neighbor IDs.
func New(c Client, run string, id int, peers []int, log *slog.Logger) (*Transport, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	t := &Transport{
		id:      id,
		run:     run,
		c:       c,
		peers:   make(map[int]bool, len(peers)),
		log:     log.With(slog.Int("node", id), slog.String("run", run)),
		present: make(map[int]bool, len(peers)),
		done:    make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)
	for _, p := range peers {
		t.peers[p] = true
	}

	if err := c.Subscribe(NodeTopic(run, id), qosAtLeastOnce, t.onFrame); err != nil {
		return nil, fmt.Errorf("subscribe frames: %w", err)
	}
	presence := topicRoot + "/" + run + "/presence/+"
	if err := c.Subscribe(presence, qosAtLeastOnce, t.onPresence); err != nil {
		return nil, fmt.Errorf("subscribe presence: %w", err)
	}
	if err := c.Publish(PresenceTopic(run, id), qosAtLeastOnce, true, presenceUp); err != nil {
		return nil, fmt.Errorf("announce presence: %w", err)
	}
	go t.publishLoop()

	return t, nil
}

// Listen registers the receive callback.
func (t *Transport) Listen(fn func(data []byte)) {
	t.mu.Lock()
	t.handler = fn
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Ready blocks until every peer has announced itself.
func (t *Transport) Ready(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	})
	defer stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler == nil {
		return fmt.Errorf("Ready(%d): %w", t.id, transport.ErrNoHandler)
	}
	for {
		switch {
		case t.closed:
			return transport.ErrClosed
		case t.pubErr != nil:
			return t.pubErr
		case ctx.Err() != nil:
			return ctx.Err()
		case t.allPresent():
			t.log.Info("all peers present", slog.Int("peers", len(t.peers)))
			return nil
		}
		t.cond.Wait()
	}
}

func (t *Transport) allPresent() bool {
	for p := range t.peers {
		if !t.present[p] {
			return false
		}
	}

	return true
}

// Send queues data for peer to's topic.
func (t *Transport) Send(to int, data []byte) error {
	if !t.peers[to] {
		return fmt.Errorf("Send(%d->%d): %w", t.id, to, transport.ErrUnknownPeer)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.pubErr != nil:
		return t.pubErr
	case t.closed:
		return transport.ErrClosed
	}
	t.queue = append(t.queue, outFrame{topic: NodeTopic(t.run, to), data: append([]byte(nil), data...)})
	t.cond.Broadcast()

	return nil
}

// Close flushes queued frames, marks this node down and disconnects.
func (t *Transport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.cond.Broadcast()
	t.mu.Unlock()

	<-t.done
	if err := t.c.Publish(PresenceTopic(t.run, t.id), qosAtLeastOnce, true, presenceDown); err != nil {
		t.log.Warn("failed to clear presence", slog.Any("error", err))
	}
	t.c.Close()
}

func (t *Transport) publishLoop() {
	defer close(t.done)
	for {
		t.mu.Lock()
		for len(t.queue) == 0 && !t.closed {
			t.cond.Wait()
		}
		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}
		f := t.queue[0]
		t.queue = t.queue[1:]
		t.mu.Unlock()

		if err := t.c.Publish(f.topic, qosAtLeastOnce, false, f.data); err != nil {
			t.log.Error("publish failed", slog.String("topic", f.topic), slog.Any("error", err))
			t.mu.Lock()
			if t.pubErr == nil {
				t.pubErr = fmt.Errorf("publish %s: %w", f.topic, err)
			}
			t.queue = nil
			t.cond.Broadcast()
			t.mu.Unlock()
			return
		}
	}
}

// onFrame hands a frame to the handler, waiting for Listen if needed.
func (t *Transport) onFrame(_ string, payload []byte) {
	t.mu.Lock()
	for t.handler == nil && !t.closed {
		t.cond.Wait()
	}
	fn := t.handler
	t.mu.Unlock()
	if fn != nil {
		fn(append([]byte(nil), payload...))
	}
}

func (t *Transport) onPresence(topic string, payload []byte) {
	id, err := strconv.Atoi(topic[strings.LastIndexByte(topic, '/')+1:])
	if err != nil || !t.peers[id] {
		return
	}
	up := bytes.Equal(payload, presenceUp)
	t.mu.Lock()
	t.present[id] = up
	t.cond.Broadcast()
	t.mu.Unlock()
	t.log.Debug("peer presence", slog.Int("peer", id), slog.Bool("up", up))
}
