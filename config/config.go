// SPDX-License-Identifier: MIT
// Package: synchghs/config
//
// config.go - Topology and Settings, YAML loading, validation and lookups.

// Package config loads a network description: the node list with addresses,
// the weighted edges, and runtime settings. Two file formats are accepted:
// the line-oriented text format (see ParseText) and YAML (see ParseYAML).
// Environment variables prefixed GHS_ override settings after loading.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/synchghs/bfs"
	"github.com/katalvlaran/synchghs/core"
)

// Transport names.
const (
	TransportMemory = "memory"
	TransportTCP    = "tcp"
	TransportMQTT   = "mqtt"
)

// Defaults applied by Validate to unset settings.
const (
	DefaultTransport   = TransportTCP
	DefaultBroker      = "tcp://localhost:1883"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultDialTimeout = 30 * time.Second
)

// Node is one process and its listen address.
type Node struct {
	ID   int    `yaml:"id"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (n Node) Addr() string { return net.JoinHostPort(n.Host, strconv.Itoa(n.Port)) }

// Edge is one weighted link between two declared nodes.
type Edge struct {
	U      int   `yaml:"u"`
	V      int   `yaml:"v"`
	Weight int64 `yaml:"weight"`
}

// Settings are the runtime knobs shared by every node of a network.
type Settings struct {
	Transport   string        `yaml:"transport"`
	Broker      string        `yaml:"broker"`
	RunID       string        `yaml:"run_id"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	MetricsAddr string        `yaml:"metrics_addr"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	StartDelay  time.Duration `yaml:"start_delay"`
}

// Topology is a loaded, validated network description.
type Topology struct {
	Nodes    []Node `yaml:"nodes"`
	Edges    []Edge `yaml:"edges"`
	Settings `yaml:",inline"`

	byID map[int]int // node ID -> index in Nodes
}

// Load reads path, picking the format by extension (.yaml or .yml for YAML,
// anything else for text), applies GHS_* environment overrides and validates.
func Load(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	var t *Topology
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err = decodeYAML(f)
	default:
		t, err = decodeText(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err = t.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err = t.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return t, nil
}

// ParseYAML decodes and validates a YAML topology.
func ParseYAML(r io.Reader) (*Topology, error) {
	t, err := decodeYAML(r)
	if err != nil {
		return nil, err
	}

	return t, t.Validate()
}

func decodeYAML(r io.Reader) (*Topology, error) {
	var t Topology
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyTopology
		}
		return nil, fmt.Errorf("yaml: %v: %w", err, ErrBadLine)
	}

	return &t, nil
}

// envOverrides maps GHS_* variables onto settings.
var envOverrides = []struct {
	key string
	set func(s *Settings, v string) error
}{
	{"GHS_TRANSPORT", func(s *Settings, v string) error { s.Transport = v; return nil }},
	{"GHS_BROKER", func(s *Settings, v string) error { s.Broker = v; return nil }},
	{"GHS_RUN_ID", func(s *Settings, v string) error { s.RunID = v; return nil }},
	{"GHS_LOG_LEVEL", func(s *Settings, v string) error { s.LogLevel = v; return nil }},
	{"GHS_LOG_FORMAT", func(s *Settings, v string) error { s.LogFormat = v; return nil }},
	{"GHS_METRICS_ADDR", func(s *Settings, v string) error { s.MetricsAddr = v; return nil }},
	{"GHS_DIAL_TIMEOUT", func(s *Settings, v string) error { return parseDuration(&s.DialTimeout, v) }},
	{"GHS_START_DELAY", func(s *Settings, v string) error { return parseDuration(&s.StartDelay, v) }},
}

func parseDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("duration %q: %w", v, ErrBadSetting)
	}
	*dst = d

	return nil
}

// ApplyEnv overrides settings from lookup (normally os.LookupEnv). Empty
// values are ignored.
func (t *Topology) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		v, ok := lookup(o.key)
		if !ok || v == "" {
			continue
		}
		if err := o.set(&t.Settings, v); err != nil {
			return fmt.Errorf("%s: %w", o.key, err)
		}
	}

	return nil
}

// Validate checks nodes and edges, fills defaults and builds the ID index.
func (t *Topology) Validate() error {
	if len(t.Nodes) == 0 {
		return ErrEmptyTopology
	}
	t.byID = make(map[int]int, len(t.Nodes))
	for i, n := range t.Nodes {
		if n.ID < 0 {
			return fmt.Errorf("node %d: negative ID: %w", n.ID, ErrBadLine)
		}
		if _, dup := t.byID[n.ID]; dup {
			return fmt.Errorf("node %d: %w", n.ID, ErrDuplicateNode)
		}
		t.byID[n.ID] = i
	}

	seen := make(map[[2]int]bool, len(t.Edges))
	for _, e := range t.Edges {
		if e.U == e.V || e.Weight < 0 {
			return fmt.Errorf("edge (%d,%d) %d: %w", e.U, e.V, e.Weight, ErrBadEdge)
		}
		for _, id := range []int{e.U, e.V} {
			if _, ok := t.byID[id]; !ok {
				return fmt.Errorf("edge (%d,%d): node %d: %w", e.U, e.V, id, ErrUnknownNode)
			}
		}
		key := [2]int{min(e.U, e.V), max(e.U, e.V)}
		if seen[key] {
			return fmt.Errorf("edge (%d,%d) repeated: %w", e.U, e.V, ErrBadEdge)
		}
		seen[key] = true
	}
	if err := t.checkConnected(); err != nil {
		return err
	}

	s := &t.Settings
	if s.Transport == "" {
		s.Transport = DefaultTransport
	}
	switch s.Transport {
	case TransportMemory, TransportTCP, TransportMQTT:
	default:
		return fmt.Errorf("transport %q: %w", s.Transport, ErrUnknownTransport)
	}
	if s.Broker == "" {
		s.Broker = DefaultBroker
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if s.LogFormat == "" {
		s.LogFormat = DefaultLogFormat
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return fmt.Errorf("log_format %q: %w", s.LogFormat, ErrBadSetting)
	}
	if s.DialTimeout == 0 {
		s.DialTimeout = DefaultDialTimeout
	}
	if s.DialTimeout < 0 || s.StartDelay < 0 {
		return fmt.Errorf("negative duration: %w", ErrBadSetting)
	}

	return nil
}

// ParseLevel maps a level name (debug, info, warn, error) to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", s, ErrBadSetting)
	}

	return l, nil
}

// Size returns the number of nodes, the N of the round windows.
func (t *Topology) Size() int { return len(t.Nodes) }

// Node returns the entry for id.
func (t *Topology) Node(id int) (Node, error) {
	i, ok := t.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("Node(%d): %w", id, ErrUnknownNode)
	}

	return t.Nodes[i], nil
}

// NeighborEdges returns id's incident edges in canonical form, sorted by
// neighbor ID.
func (t *Topology) NeighborEdges(id int) ([]core.Edge, error) {
	if _, ok := t.byID[id]; !ok {
		return nil, fmt.Errorf("NeighborEdges(%d): %w", id, ErrUnknownNode)
	}
	var out []core.Edge
	for _, e := range t.Edges {
		if e.U == id || e.V == id {
			out = append(out, core.NewEdge(e.U, e.V, e.Weight))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Other(id) < out[j].Other(id) })

	return out, nil
}

// Peers returns the node entries of id's neighbors, sorted by ID.
func (t *Topology) Peers(id int) ([]Node, error) {
	edges, err := t.NeighborEdges(id)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(edges))
	for _, e := range edges {
		out = append(out, t.Nodes[t.byID[e.Other(id)]])
	}

	return out, nil
}

// Graph builds the whole topology as a core.Graph.
func (t *Topology) Graph() (*core.Graph, error) {
	g := core.NewGraph()
	for _, n := range t.Nodes {
		if err := g.AddVertex(n.ID); err != nil {
			return nil, fmt.Errorf("Graph: %w", err)
		}
	}
	for _, e := range t.Edges {
		if _, err := g.AddEdge(e.U, e.V, e.Weight); err != nil {
			return nil, fmt.Errorf("Graph: %w", err)
		}
	}

	return g, nil
}

// checkConnected walks the topology from its first node.
func (t *Topology) checkConnected() error {
	g, err := t.Graph()
	if err != nil {
		return err
	}
	start := t.Nodes[0].ID
	res, err := bfs.BFS(g, start)
	if err != nil {
		return fmt.Errorf("connectivity: %w", err)
	}
	for _, n := range t.Nodes {
		if !res.Reached(n.ID) {
			return fmt.Errorf("node %d unreachable from node %d: %w", n.ID, start, ErrDisconnected)
		}
	}

	return nil
}

// FromGraph wraps a generated graph as a Topology with local addresses, for
// in-process runs.
func FromGraph(g *core.Graph, s Settings) (*Topology, error) {
	t := &Topology{Settings: s}
	for _, id := range g.Vertices() {
		t.Nodes = append(t.Nodes, Node{ID: id, Host: "127.0.0.1"})
	}
	for _, e := range g.Edges() {
		t.Edges = append(t.Edges, Edge{U: e.Low, V: e.High, Weight: e.Weight})
	}
	if t.Transport == "" {
		t.Transport = TransportMemory
	}

	return t, t.Validate()
}
