// SPDX-License-Identifier: MIT
// Package: synchghs/config
//
// text.go - the line-oriented topology format.
//
//	# comment; everything after '#' is ignored, blank lines too
//	3                 node count N
//	1 host-a 5001     N lines: id host port
//	2 host-b 5002
//	3 host-c 5003
//	(1,2) 4           edge lines: (id1,id2) weight
//	2: 3              or neighbor lines: id[:] n1 n2 ... (weight 1)
//
// Edge and neighbor lines may be mixed. An edge given twice, in either
// form, is an error unless both mentions come from neighbor lists (each
// endpoint may list the other).

package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// neighborWeight is the weight of an edge declared by a neighbor list.
const neighborWeight = 1

// ParseText decodes and validates a text topology.
func ParseText(r io.Reader) (*Topology, error) {
	t, err := decodeText(r)
	if err != nil {
		return nil, err
	}

	return t, t.Validate()
}

// textParser holds the state of one decodeText pass.
type textParser struct {
	t        Topology
	want     int             // declared N, -1 until read
	fromList map[[2]int]bool // canonical pair -> declared by a neighbor list
}

func decodeText(r io.Reader) (*Topology, error) {
	p := &textParser{want: -1, fromList: make(map[[2]int]bool)}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := p.line(line); err != nil {
			return nil, fmt.Errorf("line %d %q: %w", lineNo, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	switch {
	case p.want < 0:
		return nil, ErrEmptyTopology
	case len(p.t.Nodes) != p.want:
		return nil, fmt.Errorf("declared %d nodes, found %d: %w", p.want, len(p.t.Nodes), ErrNodeCount)
	}

	return &p.t, nil
}

func (p *textParser) line(line string) error {
	fields := strings.Fields(line)
	switch {
	case p.want < 0:
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 {
			return ErrBadLine
		}
		p.want = n
	case len(p.t.Nodes) < p.want:
		return p.node(fields)
	case strings.HasPrefix(line, "("):
		return p.edge(line)
	default:
		return p.neighbors(fields)
	}

	return nil
}

func (p *textParser) node(fields []string) error {
	if len(fields) != 3 {
		return ErrBadLine
	}
	id, err1 := strconv.Atoi(fields[0])
	port, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || port < 0 || port > 65535 {
		return ErrBadLine
	}
	p.t.Nodes = append(p.t.Nodes, Node{ID: id, Host: fields[1], Port: port})

	return nil
}

// edge parses "(a,b) w". Spaces inside the parentheses are allowed.
func (p *textParser) edge(line string) error {
	end := strings.IndexByte(line, ')')
	if end < 0 {
		return ErrBadLine
	}
	ends := strings.Split(line[1:end], ",")
	rest := strings.Fields(line[end+1:])
	if len(ends) != 2 || len(rest) != 1 {
		return ErrBadLine
	}
	u, err1 := strconv.Atoi(strings.TrimSpace(ends[0]))
	v, err2 := strconv.Atoi(strings.TrimSpace(ends[1]))
	w, err3 := strconv.ParseInt(rest[0], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return ErrBadLine
	}

	return p.add(u, v, w, false)
}

// neighbors parses "id[:] n1 n2 ...".
func (p *textParser) neighbors(fields []string) error {
	id, err := strconv.Atoi(strings.TrimSuffix(fields[0], ":"))
	if err != nil {
		return ErrBadLine
	}
	for _, f := range fields[1:] {
		nb, err := strconv.Atoi(f)
		if err != nil {
			return ErrBadLine
		}
		if nb == id {
			continue
		}
		if err := p.add(id, nb, neighborWeight, true); err != nil {
			return err
		}
	}

	return nil
}

func (p *textParser) add(u, v int, w int64, list bool) error {
	if u == v {
		return fmt.Errorf("(%d,%d): %w", u, v, ErrBadEdge)
	}
	key := [2]int{min(u, v), max(u, v)}
	if prev, dup := p.fromList[key]; dup {
		if list && prev {
			return nil
		}
		return fmt.Errorf("(%d,%d) repeated: %w", u, v, ErrBadEdge)
	}
	p.fromList[key] = list
	p.t.Edges = append(p.t.Edges, Edge{U: key[0], V: key[1], Weight: w})

	return nil
}
