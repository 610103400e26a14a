package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Levels groups nodes into generations using Kahn's algorithm.
// Level 0: nodes with no prerequisites
// Level N: nodes whose prerequisites all sit in levels 0..N-1
// Names inside a level keep insertion order. Nodes left over once no
// zero in-degree node remains are reported as ErrCycle.
func (g *Graph) Levels() ([][]string, error) {
	inDegree := make(map[string]int, len(g.names))
	var current []string
	for _, n := range g.names {
		inDegree[n] = len(g.pred[n])
		if inDegree[n] == 0 {
			current = append(current, n)
		}
	}

	levels := make([][]string, 0)
	emitted := 0
	for len(current) > 0 {
		levels = append(levels, current)
		emitted += len(current)

		var next []string
		for _, done := range current {
			for s := range g.succ[done] {
				inDegree[s]--
				if inDegree[s] == 0 {
					next = append(next, s)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return g.order[next[i]] < g.order[next[j]] })
		current = next
	}

	if emitted < len(g.names) {
		var stuck []string
		for _, n := range g.names {
			if inDegree[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		return nil, fmt.Errorf("%w among: %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return levels, nil
}

// HasCycle reports whether the graph cannot be leveled.
func (g *Graph) HasCycle() bool {
	_, err := g.Levels()
	return err != nil
}

// TopologicalSort flattens Levels into a single dependency-ordered slice.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(g.names))
	for _, level := range levels {
		out = append(out, level...)
	}
	return out, nil
}

// LevelIndex maps each node to the index of its level.
func LevelIndex(levels [][]string) map[string]int {
	idx := make(map[string]int)
	for i, level := range levels {
		for _, n := range level {
			idx[n] = i
		}
	}
	return idx
}
