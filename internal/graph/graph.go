// Package graph provides the directed acyclic graph used to order team agents.
//
// Nodes are agent names. An edge from -> to means "from must complete before
// to". Node insertion order is remembered and used as the tie-break whenever
// the graph hands out names, so every query is deterministic.
//
// A Graph is not safe for concurrent mutation; callers serialize access.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownNode is returned when an edge endpoint has not been added.
	ErrUnknownNode = errors.New("unknown node")
	// ErrCycle is returned when the edges cannot be ordered.
	ErrCycle = errors.New("dependency cycle")
	// ErrEmptyName is returned when adding a node without a name.
	ErrEmptyName = errors.New("node name must not be empty")
)

// Graph is an adjacency-map DAG keyed by node name.
type Graph struct {
	order map[string]int
	names []string
	succ  map[string]map[string]struct{}
	pred  map[string]map[string]struct{}
	edges int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		order: make(map[string]int),
		succ:  make(map[string]map[string]struct{}),
		pred:  make(map[string]map[string]struct{}),
	}
}

// AddNode registers name. Adding an existing name is a no-op and reports false.
func (g *Graph) AddNode(name string) (bool, error) {
	if name == "" {
		return false, ErrEmptyName
	}
	if _, ok := g.order[name]; ok {
		return false, nil
	}
	g.order[name] = len(g.names)
	g.names = append(g.names, name)
	g.succ[name] = make(map[string]struct{})
	g.pred[name] = make(map[string]struct{})
	return true, nil
}

// AddEdge records that from must complete before to.
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.order[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := g.order[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if from == to {
		return fmt.Errorf("%w: %s depends on itself", ErrCycle, from)
	}
	if _, ok := g.succ[from][to]; ok {
		return nil
	}
	g.succ[from][to] = struct{}{}
	g.pred[to][from] = struct{}{}
	g.edges++
	return nil
}

// RemoveNode deletes name and every edge touching it.
func (g *Graph) RemoveNode(name string) {
	idx, ok := g.order[name]
	if !ok {
		return
	}
	for s := range g.succ[name] {
		delete(g.pred[s], name)
		g.edges--
	}
	for p := range g.pred[name] {
		delete(g.succ[p], name)
		g.edges--
	}
	delete(g.succ, name)
	delete(g.pred, name)
	delete(g.order, name)

	g.names = append(g.names[:idx], g.names[idx+1:]...)
	for i := idx; i < len(g.names); i++ {
		g.order[g.names[i]] = i
	}
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, n := range g.names {
		_, _ = c.AddNode(n)
	}
	for _, n := range g.names {
		for s := range g.succ[n] {
			c.succ[n][s] = struct{}{}
			c.pred[s][n] = struct{}{}
		}
	}
	c.edges = g.edges
	return c
}

// HasNode reports whether name is registered.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.order[name]
	return ok
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	s, ok := g.succ[from]
	if !ok {
		return false
	}
	_, ok = s[to]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.names) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Predecessors returns the direct prerequisites of name in insertion order.
func (g *Graph) Predecessors(name string) []string {
	return g.sorted(g.pred[name])
}

// Successors returns the direct dependents of name in insertion order.
func (g *Graph) Successors(name string) []string {
	return g.sorted(g.succ[name])
}

// Ancestors returns every transitive prerequisite of name in insertion order.
func (g *Graph) Ancestors(name string) []string {
	seen := make(map[string]struct{})
	var visit func(n string)
	visit = func(n string) {
		for p := range g.pred[n] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			visit(p)
		}
	}
	visit(name)
	return g.sorted(seen)
}

func (g *Graph) sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return g.order[out[i]] < g.order[out[j]] })
	return out
}
