// SPDX-License-Identifier: MIT
// Package: synchghs/core
//
// edge.go - canonical undirected Edge value and its total order.
//
// Contract:
//   - NewEdge(u, v, w) always yields Low=min(u,v), High=max(u,v).
//   - Compare orders by (Weight, Low, High) ascending; nil (none) sorts after
//     every concrete edge and equals only another nil.
//   - String / ParseEdge round-trip "low,high,weight".
//
// Complexity:
//   - All operations O(1) except ParseEdge, which is O(len(s)).

package core

import (
	"fmt"
	"strconv"
	"strings"
)

// edgeFieldSep separates the three fields of the edge text form.
const edgeFieldSep = ","

// Edge is an immutable undirected edge in canonical form (Low < High).
type Edge struct {
	Low    int   // smaller endpoint ID
	High   int   // larger endpoint ID
	Weight int64 // edge cost
}

// NewEdge returns the canonical edge between u and v with weight w.
// Endpoint order of the arguments does not matter.
func NewEdge(u, v int, w int64) Edge {
	if u > v {
		u, v = v, u
	}

	return Edge{Low: u, High: v, Weight: w}
}

// Compare returns a negative number when a sorts before b, zero when they are
// equal and a positive number otherwise. A nil edge stands for "none" and sorts
// after every concrete edge.
func Compare(a, b *Edge) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1 // none loses to any edge
	case b == nil:
		return -1
	}
	if a.Weight != b.Weight {
		if a.Weight < b.Weight {
			return -1
		}
		return 1
	}
	if a.Low != b.Low {
		return a.Low - b.Low
	}

	return a.High - b.High
}

// Less reports whether e sorts strictly before o.
func (e Edge) Less(o Edge) bool { return Compare(&e, &o) < 0 }

// Min returns the smaller of a and b under Compare; nil only if both are nil.
func Min(a, b *Edge) *Edge {
	if Compare(b, a) < 0 {
		return b
	}

	return a
}

// Has reports whether id is one of the endpoints.
func (e Edge) Has(id int) bool { return e.Low == id || e.High == id }

// Other returns the endpoint opposite to id. The result is undefined when
// id is not an endpoint; callers check Has first.
func (e Edge) Other(id int) int {
	if e.Low == id {
		return e.High
	}

	return e.Low
}

// String renders the edge as "low,high,weight".
func (e Edge) String() string {
	return strconv.Itoa(e.Low) + edgeFieldSep + strconv.Itoa(e.High) + edgeFieldSep +
		strconv.FormatInt(e.Weight, 10)
}

// ParseEdge parses the "low,high,weight" text form. The endpoints are
// canonicalized, so "3,1,7" parses to the same edge as "1,3,7".
func ParseEdge(s string) (Edge, error) {
	parts := strings.Split(strings.TrimSpace(s), edgeFieldSep)
	if len(parts) != 3 {
		return Edge{}, fmt.Errorf("ParseEdge: %q has %d fields: %w", s, len(parts), ErrBadEdgeFormat)
	}
	u, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Edge{}, fmt.Errorf("ParseEdge: endpoint %q: %w", parts[0], ErrBadEdgeFormat)
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Edge{}, fmt.Errorf("ParseEdge: endpoint %q: %w", parts[1], ErrBadEdgeFormat)
	}
	w, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return Edge{}, fmt.Errorf("ParseEdge: weight %q: %w", parts[2], ErrBadEdgeFormat)
	}
	if u == v {
		return Edge{}, fmt.Errorf("ParseEdge: %q: %w", s, ErrLoopNotAllowed)
	}

	return NewEdge(u, v, w), nil
}
