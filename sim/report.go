// SPDX-License-Identifier: MIT
// Package: synchghs/sim
//
// report.go - per-node result files written by `ghs node --report` and read
// back by `ghs verify`.

package sim

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/synchghs/core"
	"github.com/katalvlaran/synchghs/ghs"
)

// nodeReport is the YAML shape of one ghs.Result. Edges use the
// "low,high,weight" text form.
type nodeReport struct {
	Node      int      `yaml:"node"`
	Component int      `yaml:"component"`
	Level     int      `yaml:"level"`
	TreeEdges []string `yaml:"tree_edges"`
}

// WriteResult encodes r as one YAML document. Documents written one after
// another to the same stream read back with ReadResults.
func WriteResult(w io.Writer, r ghs.Result) error {
	rep := nodeReport{Node: r.ID, Component: r.ComponentID, Level: r.Level, TreeEdges: []string{}}
	for _, e := range r.TreeEdges {
		rep.TreeEdges = append(rep.TreeEdges, e.String())
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return fmt.Errorf("WriteResult(%d): %w", r.ID, err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("WriteResult(%d): %w", r.ID, err)
	}

	return enc.Close()
}

// ReadResults decodes every YAML document in r.
func ReadResults(r io.Reader) ([]ghs.Result, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var out []ghs.Result
	for {
		var rep nodeReport
		err := dec.Decode(&rep)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ReadResults: %w", err)
		}
		res := ghs.Result{ID: rep.Node, ComponentID: rep.Component, Level: rep.Level, TreeEdges: []core.Edge{}}
		for _, s := range rep.TreeEdges {
			e, err := core.ParseEdge(s)
			if err != nil {
				return nil, fmt.Errorf("ReadResults: node %d: %w", rep.Node, err)
			}
			res.TreeEdges = append(res.TreeEdges, e)
		}
		out = append(out, res)
	}
}
