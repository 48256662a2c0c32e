// SPDX-License-Identifier: MIT
// Package: synchghs/transport/memory
//
// memory.go - in-process network. Every directed link owns an unbounded FIFO
// queue and one delivery goroutine, so Send never waits for the receiver and
// frames on one link arrive in send order.

// Package memory runs a whole GHS network inside one process. It backs the
// simulate command and the engine's integration tests.
package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/katalvlaran/synchghs/transport"
)

// Option configures a Network.
type Option func(*Network)

// WithJitter delays each delivery by a random duration in [0, max). Links
// stay FIFO; only the interleaving across links changes. Seed fixes the
// sequence of delays.
func WithJitter(max time.Duration, seed int64) Option {
	if max < 0 {
		panic("memory: WithJitter(max<0)")
	}
	return func(n *Network) {
		n.jitter = max
		n.rng = rand.New(rand.NewSource(seed))
	}
}

// WithTap calls fn for every frame before it is queued. fn may return extra
// copies to enqueue after the frame itself (used to test duplicate delivery).
func WithTap(fn func(from, to int, data []byte) int) Option {
	if fn == nil {
		panic("memory: WithTap(nil)")
	}
	return func(n *Network) {
		n.tap = fn
	}
}

// Network is the shared registry of endpoints and links.
type Network struct {
	mu       sync.Mutex
	cond     *sync.Cond
	handlers map[int]func([]byte)
	links    map[[2]int]*link
	closed   bool
	wg       sync.WaitGroup

	jitter time.Duration
	rngMu  sync.Mutex
	rng    *rand.Rand
	tap    func(from, to int, data []byte) int

	delivered atomic.Int64
}

// NewNetwork returns an empty network.
func NewNetwork(opts ...Option) *Network {
	n := &Network{
		handlers: make(map[int]func([]byte)),
		links:    make(map[[2]int]*link),
	}
	n.cond = sync.NewCond(&n.mu)
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Endpoint returns node id's attachment to the network, able to send to
// peers only.
func (n *Network) Endpoint(id int, peers []int) *Endpoint {
	set := make(map[int]bool, len(peers))
	for _, p := range peers {
		set[p] = true
	}

	return &Endpoint{net: n, id: id, peers: set}
}

// Delivered returns the number of frames handed to receivers so far.
func (n *Network) Delivered() int64 { return n.delivered.Load() }

// Close stops every link goroutine and waits for them. Frames still queued
// are discarded.
func (n *Network) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	for _, l := range n.links {
		l.close()
	}
	n.cond.Broadcast()
	n.mu.Unlock()
	n.wg.Wait()
}

// register installs the receive handler for id and wakes Ready waiters and
// links that were holding frames for it.
func (n *Network) register(id int, fn func([]byte)) {
	n.mu.Lock()
	n.handlers[id] = fn
	n.cond.Broadcast()
	n.mu.Unlock()
}

// handler blocks until id has a handler or the network closes.
func (n *Network) handler(id int) (func([]byte), bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for {
		if n.closed {
			return nil, false
		}
		if fn, ok := n.handlers[id]; ok {
			return fn, true
		}
		n.cond.Wait()
	}
}

// linkFor returns the (from, to) link, starting its goroutine on first use.
func (n *Network) linkFor(from, to int) (*link, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, transport.ErrClosed
	}
	key := [2]int{from, to}
	l, ok := n.links[key]
	if !ok {
		l = newLink()
		n.links[key] = l
		n.wg.Add(1)
		go n.pump(l, to)
	}

	return l, nil
}

// pump delivers one link's frames in order.
func (n *Network) pump(l *link, to int) {
	defer n.wg.Done()
	fn, ok := n.handler(to)
	if !ok {
		return
	}
	for {
		data, ok := l.pop()
		if !ok {
			return
		}
		if d := n.delay(); d > 0 {
			time.Sleep(d)
		}
		fn(data)
		n.delivered.Add(1)
	}
}

func (n *Network) delay() time.Duration {
	if n.jitter <= 0 {
		return 0
	}
	n.rngMu.Lock()
	defer n.rngMu.Unlock()

	return time.Duration(n.rng.Int63n(int64(n.jitter)))
}

// link is an unbounded FIFO of frames.
type link struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  [][]byte
	closed bool
}

func newLink() *link {
	l := &link{}
	l.cond = sync.NewCond(&l.mu)

	return l
}

func (l *link) push(data []byte) {
	l.mu.Lock()
	l.queue = append(l.queue, data)
	l.cond.Signal()
	l.mu.Unlock()
}

// pop blocks for the next frame; ok is false once the link is closed.
func (l *link) pop() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.queue) == 0 && !l.closed {
		l.cond.Wait()
	}
	if l.closed {
		return nil, false
	}
	data := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]

	return data, true
}

func (l *link) close() {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
}

// Endpoint is one node's view of the Network. It implements ghs.Transport.
type Endpoint struct {
	net   *Network
	id    int
	peers map[int]bool
}

// Listen registers fn as this node's receiver.
func (e *Endpoint) Listen(fn func(data []byte)) { e.net.register(e.id, fn) }

// Ready blocks until this node and every peer have a receiver.
func (e *Endpoint) Ready(ctx context.Context) error {
	n := e.net
	stop := context.AfterFunc(ctx, func() {
		n.mu.Lock()
		n.cond.Broadcast()
		n.mu.Unlock()
	})
	defer stop()

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.handlers[e.id]; !ok {
		return fmt.Errorf("Ready(%d): %w", e.id, transport.ErrNoHandler)
	}
	for {
		switch {
		case n.closed:
			return transport.ErrClosed
		case ctx.Err() != nil:
			return ctx.Err()
		case e.allPeersListening():
			return nil
		}
		n.cond.Wait()
	}
}

// allPeersListening must be called with the network lock held.
func (e *Endpoint) allPeersListening() bool {
	for p := range e.peers {
		if _, ok := e.net.handlers[p]; !ok {
			return false
		}
	}

	return true
}

// Send queues a copy of data on the link to peer to.
func (e *Endpoint) Send(to int, data []byte) error {
	if !e.peers[to] {
		return fmt.Errorf("Send(%d->%d): %w", e.id, to, transport.ErrUnknownPeer)
	}
	l, err := e.net.linkFor(e.id, to)
	if err != nil {
		return err
	}
	frame := append([]byte(nil), data...)
	l.push(frame)
	if tap := e.net.tap; tap != nil {
		for i := tap(e.id, to, frame); i > 0; i-- {
			l.push(frame)
		}
	}

	return nil
}
