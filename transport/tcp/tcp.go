// SPDX-License-Identifier: MIT
// Package: synchghs/transport/tcp
//
// tcp.go - TCP links between GHS processes.
//
// Each node dials one outbound connection per neighbor and accepts one
// inbound connection from each. Outbound connections carry this node's
// frames; inbound ones carry the neighbor's. Frames are newline-terminated.
//
// Handshake: the first frame on every outbound connection is CONNECT from
// the dialer to the peer; the acceptor uses it to identify the link and
// does not pass it on. Close sends DISCONNECT before closing.

// Package tcp implements ghs.Transport over plain TCP connections.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/transport"
)

// ErrDialTimeout indicates a neighbor that did not accept within the dial timeout.
var ErrDialTimeout = errors.New("tcp: dial timeout")

const (
	defaultDialTimeout   = 30 * time.Second
	defaultRetryInterval = 200 * time.Millisecond
	frameDelim           = '\n'
)

type tcpConfig struct {
	dialTimeout   time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
}

// Option configures a Transport.
type Option func(*tcpConfig)

// WithDialTimeout bounds how long each neighbor is retried.
func WithDialTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tcp: WithDialTimeout(d<=0)")
	}
	return func(c *tcpConfig) { c.dialTimeout = d }
}

// WithRetryInterval sets the pause between dial attempts.
func WithRetryInterval(d time.Duration) Option {
	if d <= 0 {
		panic("tcp: WithRetryInterval(d<=0)")
	}
	return func(c *tcpConfig) { c.retryInterval = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("tcp: WithLogger(nil)")
	}
	return func(c *tcpConfig) { c.logger = l }
}

// Transport is one node's set of TCP links.
type Transport struct {
	id  int
	ln  net.Listener
	cfg tcpConfig
	log *slog.Logger

	writers map[int]*writer
	done    chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	cond      *sync.Cond
	handler   func([]byte)
	connected map[int]bool // outbound link up
	inbound   map[int]bool // inbound link identified
	conns     map[net.Conn]struct{}
	linkErr   error
	closed    bool
}

// New starts accepting on ln and dialing every peer (ID -> host:port) in
// the background. Frames queued by Send before a link is up are kept.
func New(id int, ln net.Listener, peers map[int]string, opts ...Option) *Transport {
	cfg := tcpConfig{
		dialTimeout:   defaultDialTimeout,
		retryInterval: defaultRetryInterval,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := &Transport{
		id:        id,
		ln:        ln,
		cfg:       cfg,
		log:       cfg.logger.With(slog.Int("node", id)),
		writers:   make(map[int]*writer, len(peers)),
		done:      make(chan struct{}),
		connected: make(map[int]bool, len(peers)),
		inbound:   make(map[int]bool, len(peers)),
		conns:     make(map[net.Conn]struct{}),
	}
	t.cond = sync.NewCond(&t.mu)

	t.wg.Add(1)
	go t.acceptLoop()
	for peer, addr := range peers {
		w := newWriter(peer, addr)
		t.writers[peer] = w
		t.wg.Add(1)
		go t.writeLoop(w)
	}

	return t
}

// Addr returns the listen address.
func (t *Transport) Addr() net.Addr { return t.ln.Addr() }

// Listen registers the receive callback. Frames read before it is set wait.
func (t *Transport) Listen(fn func(data []byte)) {
	t.mu.Lock()
	t.handler = fn
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Ready blocks until every outbound link is up and every peer has
// identified its inbound link.
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
		case t.linkErr != nil:
			return t.linkErr
		case ctx.Err() != nil:
			return ctx.Err()
		case len(t.connected) == len(t.writers) && len(t.inbound) == len(t.writers):
			t.log.Info("all links established", slog.Int("links", len(t.writers)))
			return nil
		}
		t.cond.Wait()
	}
}

// Send queues data for the link to peer to.
func (t *Transport) Send(to int, data []byte) error {
	w, ok := t.writers[to]
	if !ok {
		return fmt.Errorf("Send(%d->%d): %w", t.id, to, transport.ErrUnknownPeer)
	}

	return w.push(append(append(make([]byte, 0, len(data)+1), data...), frameDelim))
}

// Close sends DISCONNECT on every open link, stops accepting and waits for
// all goroutines.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.cond.Broadcast()
	t.mu.Unlock()

	for peer, w := range t.writers {
		w.push(t.control(ghs.ActionDisconnect, peer))
		w.close()
	}
	close(t.done)
	err := t.ln.Close()
	t.mu.Lock()
	for c := range t.conns {
		c.Close()
	}
	t.mu.Unlock()
	t.wg.Wait()

	return err
}

// control renders a link-control frame from this node to peer.
func (t *Transport) control(a ghs.Action, peer int) []byte {
	m := ghs.Message{Action: a, Src: t.id, From: t.id, To: peer, Round: ghs.RoundAny}

	return append(m.Encode(), frameDelim)
}

// fail records the first link error and wakes Ready.
func (t *Transport) fail(err error) {
	t.mu.Lock()
	if t.linkErr == nil {
		t.linkErr = err
	}
	t.cond.Broadcast()
	t.mu.Unlock()
}

func (t *Transport) isClosed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *Transport) acceptLoop() {
	defer t.wg.Done()
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			if t.isClosed() {
				return
			}
			t.log.Error("failed to accept connection", slog.Any("error", err))
			continue
		}
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conns[conn] = struct{}{}
		t.mu.Unlock()

		t.wg.Add(1)
		go t.readLoop(conn)
	}
}

// readLoop identifies an inbound link by its CONNECT frame, then hands
// every later frame to the handler in order.
func (t *Transport) readLoop(conn net.Conn) {
	defer t.wg.Done()
	defer func() {
		t.mu.Lock()
		delete(t.conns, conn)
		t.mu.Unlock()
		conn.Close()
	}()

	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		return
	}
	hello, err := ghs.Decode(sc.Bytes())
	if err != nil || hello.Action != ghs.ActionConnect || hello.To != t.id || t.writers[hello.From] == nil {
		t.log.Warn("rejected connection", slog.String("remote", conn.RemoteAddr().String()),
			slog.String("frame", sc.Text()))
		return
	}
	peer := hello.From

	t.mu.Lock()
	if t.inbound[peer] {
		t.mu.Unlock()
		t.log.Warn("duplicate inbound link", slog.Int("peer", peer))
		return
	}
	t.inbound[peer] = true
	t.cond.Broadcast()
	for t.handler == nil && !t.closed {
		t.cond.Wait()
	}
	fn := t.handler
	t.mu.Unlock()
	if fn == nil {
		return
	}
	t.log.Debug("inbound link up", slog.Int("peer", peer))

	for sc.Scan() {
		frame := append([]byte(nil), sc.Bytes()...)
		fn(frame)
	}
	if err := sc.Err(); err != nil && !t.isClosed() {
		t.log.Warn("inbound link broken", slog.Int("peer", peer), slog.Any("error", err))
	}
}

// writeLoop dials peer, sends the handshake and then drains the queue.
func (t *Transport) writeLoop(w *writer) {
	defer t.wg.Done()
	conn, err := t.dial(w)
	if err != nil {
		w.abort(err)
		if !t.isClosed() {
			t.log.Error("link down", slog.Int("peer", w.peer), slog.Any("error", err))
			t.fail(err)
		}
		return
	}
	defer conn.Close()

	if _, err = conn.Write(t.control(ghs.ActionConnect, w.peer)); err != nil {
		w.abort(err)
		t.fail(fmt.Errorf("handshake with %d: %w", w.peer, err))
		return
	}
	t.mu.Lock()
	t.connected[w.peer] = true
	t.cond.Broadcast()
	t.mu.Unlock()
	t.log.Debug("outbound link up", slog.Int("peer", w.peer), slog.String("addr", w.addr))

	for {
		frame, ok := w.pop()
		if !ok {
			return
		}
		if _, err := conn.Write(frame); err != nil {
			t.log.Error("write failed", slog.Int("peer", w.peer), slog.Any("error", err))
			w.abort(err)
			t.fail(fmt.Errorf("write to %d: %w", w.peer, err))
			return
		}
	}
}

// dial retries until the peer accepts, the dial timeout passes or the
// transport closes.
func (t *Transport) dial(w *writer) (net.Conn, error) {
	deadline := time.Now().Add(t.cfg.dialTimeout)
	for {
		conn, err := net.DialTimeout("tcp", w.addr, t.cfg.retryInterval)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("dial %d at %s: %v: %w", w.peer, w.addr, err, ErrDialTimeout)
		}
		select {
		case <-t.done:
			return nil, transport.ErrClosed
		case <-time.After(t.cfg.retryInterval):
		}
	}
}

// writer is the unbounded outbound queue of one link.
type writer struct {
	peer int
	addr string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  [][]byte
	closed bool
	err    error
}

func newWriter(peer int, addr string) *writer {
	w := &writer{peer: peer, addr: addr}
	w.cond = sync.NewCond(&w.mu)

	return w
}

func (w *writer) push(frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.err != nil:
		return w.err
	case w.closed:
		return transport.ErrClosed
	}
	w.queue = append(w.queue, frame)
	w.cond.Signal()

	return nil
}

// pop returns the next frame; after close it drains what is left, then
// reports false.
func (w *writer) pop() ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.queue) == 0 && !w.closed {
		w.cond.Wait()
	}
	if len(w.queue) == 0 {
		return nil, false
	}
	frame := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]

	return frame, true
}

func (w *writer) close() {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
}

// abort fails every later push with err and discards the queue.
func (w *writer) abort(err error) {
	w.mu.Lock()
	w.err = err
	w.queue = nil
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
}
