package ghs_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/ghs"
	"github.com/katalvlaran/synchghs/transport/memory"
)

// ExampleNode runs three nodes on a weighted path 1-2-3 in one process.
func ExampleNode() {
	edges := []core.Edge{core.NewEdge(1, 2, 1), core.NewEdge(2, 3, 2)}
	incident := map[int][]core.Edge{
		1: {edges[0]},
		2: {edges[0], edges[1]},
		3: {edges[1]},
	}
	peers := map[int][]int{1: {2}, 2: {1, 3}, 3: {2}}

	net := memory.NewNetwork()
	defer net.Close()

	nodes := make([]*ghs.Node, 0, 3)
	for id := 1; id <= 3; id++ {
		n, err := ghs.NewNode(id, 3, incident[id], net.Endpoint(id, peers[id]))
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		nodes = append(nodes, n)
	}

	results := make([]ghs.Result, len(nodes))
	var wg sync.WaitGroup
	for i, n := range nodes {
		wg.Add(1)
		go func(i int, n *ghs.Node) {
			defer wg.Done()
			results[i], _ = n.Run(context.Background())
		}(i, n)
	}
	wg.Wait()

	for _, r := range results {
		fmt.Printf("node %d: component %d, level %d, edges %v\n", r.ID, r.ComponentID, r.Level, r.TreeEdges)
	}
	// Output:
	// node 1: component 2, level 1, edges [1,2,1]
	// node 2: component 2, level 1, edges [1,2,1 2,3,2]
	// node 3: component 2, level 1, edges [2,3,2]
}

// ExampleDecode parses one wire frame.
func ExampleDecode() {
	m, err := ghs.Decode([]byte("JOIN|4|4|7|-1|4,7,12|2"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(m.Action, m.From, "->", m.To, "level", m.Level, "edge", m.Payload.Edge)
	// Output: JOIN 4 -> 7 level 2 edge 4,7,12
}
