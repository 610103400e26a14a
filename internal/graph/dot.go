package graph

import (
	"fmt"
	"io"
)

// WriteDOT writes the graph in Graphviz DOT form, one rank per level.
// An empty graph writes nothing.
func (g *Graph) WriteDOT(w io.Writer, name string) error {
	if g.NodeCount() == 0 {
		return nil
	}
	levels, err := g.Levels()
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "digraph %q {\n  rankdir=LR;\n", name); err != nil {
		return err
	}
	for i, level := range levels {
		fmt.Fprintf(w, "  subgraph level_%d {\n    rank=same;\n", i)
		for _, n := range level {
			fmt.Fprintf(w, "    %q;\n", n)
		}
		fmt.Fprintln(w, "  }")
	}
	for _, from := range g.names {
		for _, to := range g.Successors(from) {
			fmt.Fprintf(w, "  %q -> %q;\n", from, to)
		}
	}
	_, err = fmt.Fprintln(w, "}")
	return err
}
