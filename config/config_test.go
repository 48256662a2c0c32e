package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchghs/config"
	"github.com/katalvlaran/synchghs/core"
)

const textTopology = `
# four nodes on a cycle
4
1 localhost 5001
2 localhost 5002   # trailing comment
3 localhost 5003
4 localhost 5004

(1,2) 1
( 2 , 3 ) 2
(3,4) 3
(4,1) 4
`

const yamlTopology = `
transport: mqtt
broker: tcp://broker:1883
log_level: debug
log_format: json
metrics_addr: ":9100"
dial_timeout: 5s
start_delay: 250ms
nodes:
  - {id: 1, host: a, port: 5001}
  - {id: 2, host: b, port: 5002}
  - {id: 3, host: c, port: 5003}
edges:
  - {u: 1, v: 2, weight: 7}
  - {u: 3, v: 2, weight: 2}
`

func TestParseText_EdgeLines(t *testing.T) {
	topo, err := config.ParseText(strings.NewReader(textTopology))
	require.NoError(t, err)

	assert.Equal(t, 4, topo.Size())
	assert.Equal(t, config.TransportTCP, topo.Transport, "default transport")
	assert.Equal(t, config.DefaultDialTimeout, topo.DialTimeout)

	n, err := topo.Node(3)
	require.NoError(t, err)
	assert.Equal(t, "localhost:5003", n.Addr())

	edges, err := topo.NeighborEdges(1)
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{core.NewEdge(1, 2, 1), core.NewEdge(1, 4, 4)}, edges)

	peers, err := topo.Peers(1)
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, 4, peers[1].ID)

	g, err := topo.Graph()
	require.NoError(t, err)
	assert.Equal(t, 4, g.EdgeCount())
}

func TestParseText_NeighborLists(t *testing.T) {
	src := "3\n1 h 1\n2 h 2\n3 h 3\n1: 2 3\n2 1 3\n3: 1 2\n"
	topo, err := config.ParseText(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, topo.Edges, 3)
	for _, e := range topo.Edges {
		assert.EqualValues(t, 1, e.Weight)
	}
	edges, err := topo.NeighborEdges(2)
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{core.NewEdge(1, 2, 1), core.NewEdge(2, 3, 1)}, edges)
}

func TestParseText_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"empty", "# nothing\n\n", config.ErrEmptyTopology},
		{"bad count", "x\n", config.ErrBadLine},
		{"short node line", "1\n1 localhost\n", config.ErrBadLine},
		{"bad port", "1\n1 localhost 70000\n", config.ErrBadLine},
		{"missing nodes", "3\n1 h 1\n2 h 2\n", config.ErrNodeCount},
		{"duplicate node", "2\n1 h 1\n1 h 2\n", config.ErrDuplicateNode},
		{"unknown endpoint", "2\n1 h 1\n2 h 2\n(1,9) 3\n", config.ErrUnknownNode},
		{"self loop", "2\n1 h 1\n2 h 2\n(2,2) 3\n", config.ErrBadEdge},
		{"repeated edge", "2\n1 h 1\n2 h 2\n(1,2) 3\n(2,1) 4\n", config.ErrBadEdge},
		{"edge then list", "2\n1 h 1\n2 h 2\n(1,2) 3\n1: 2\n", config.ErrBadEdge},
		{"negative weight", "2\n1 h 1\n2 h 2\n(1,2) -3\n", config.ErrBadEdge},
		{"bad edge", "2\n1 h 1\n2 h 2\n(1;2) 3\n", config.ErrBadLine},
		{"missing weight", "2\n1 h 1\n2 h 2\n(1,2)\n", config.ErrBadLine},
		{"disconnected", "3\n1 h 1\n2 h 2\n3 h 3\n(1,2) 1\n", config.ErrDisconnected},
		{"no links", "2\n1 h 1\n2 h 2\n", config.ErrDisconnected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.ParseText(strings.NewReader(tc.src))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseYAML(t *testing.T) {
	topo, err := config.ParseYAML(strings.NewReader(yamlTopology))
	require.NoError(t, err)

	assert.Equal(t, config.TransportMQTT, topo.Transport)
	assert.Equal(t, "tcp://broker:1883", topo.Broker)
	assert.Equal(t, 5*time.Second, topo.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, topo.StartDelay)
	assert.Equal(t, ":9100", topo.MetricsAddr)

	edges, err := topo.NeighborEdges(2)
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{core.NewEdge(1, 2, 7), core.NewEdge(2, 3, 2)}, edges)

	_, err = topo.NeighborEdges(9)
	assert.ErrorIs(t, err, config.ErrUnknownNode)
	_, err = topo.Node(9)
	assert.ErrorIs(t, err, config.ErrUnknownNode)
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := config.ParseYAML(strings.NewReader(""))
	assert.ErrorIs(t, err, config.ErrEmptyTopology)

	_, err = config.ParseYAML(strings.NewReader("nodes: [{id: 1}]\nbogus: 1\n"))
	assert.ErrorIs(t, err, config.ErrBadLine, "unknown keys are rejected")

	_, err = config.ParseYAML(strings.NewReader("transport: carrier-pigeon\nnodes: [{id: 1}]\n"))
	assert.ErrorIs(t, err, config.ErrUnknownTransport)

	_, err = config.ParseYAML(strings.NewReader("log_level: loud\nnodes: [{id: 1}]\n"))
	assert.ErrorIs(t, err, config.ErrBadSetting)

	_, err = config.ParseYAML(strings.NewReader("log_format: xml\nnodes: [{id: 1}]\n"))
	assert.ErrorIs(t, err, config.ErrBadSetting)
}

func TestLoad_PicksFormatAndAppliesEnv(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "topo.txt")
	yml := filepath.Join(dir, "topo.yaml")
	require.NoError(t, os.WriteFile(txt, []byte(textTopology), 0o600))
	require.NoError(t, os.WriteFile(yml, []byte(yamlTopology), 0o600))

	t.Setenv("GHS_LOG_LEVEL", "warn")
	t.Setenv("GHS_START_DELAY", "2s")

	topo, err := config.Load(txt)
	require.NoError(t, err)
	assert.Equal(t, 4, topo.Size())
	assert.Equal(t, "warn", topo.LogLevel)
	assert.Equal(t, 2*time.Second, topo.StartDelay)

	topo, err = config.Load(yml)
	require.NoError(t, err)
	assert.Equal(t, config.TransportMQTT, topo.Transport)
	assert.Equal(t, "warn", topo.LogLevel)

	t.Setenv("GHS_DIAL_TIMEOUT", "soon")
	_, err = config.Load(yml)
	assert.ErrorIs(t, err, config.ErrBadSetting)

	_, err = config.Load(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	l, err := config.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
	_, err = config.ParseLevel("chatty")
	assert.ErrorIs(t, err, config.ErrBadSetting)
}

func TestFromGraph(t *testing.T) {
	g := core.NewGraph()
	_, err := g.AddEdge(5, 9, 3)
	require.NoError(t, err)

	topo, err := config.FromGraph(g, config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, config.TransportMemory, topo.Transport)
	assert.Equal(t, []config.Edge{{U: 5, V: 9, Weight: 3}}, topo.Edges)
	assert.Equal(t, 2, topo.Size())
}
