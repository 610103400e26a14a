package team

import (
	"fmt"
	"io"
	"strings"

	"github.com/tuannvm/dynoteam/internal/graph"
)

// Renderer draws a team's plan and graph. Visualize never calls it for an
// empty team.
type Renderer interface {
	Render(w io.Writer, team string, plan [][]string, g *graph.Graph) error
}

// TextRenderer prints one line per level followed by the edges.
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, team string, plan [][]string, g *graph.Graph) error {
	if _, err := fmt.Fprintf(w, "%s (%d agents, %d levels)\n", team, g.NodeCount(), len(plan)); err != nil {
		return err
	}
	for i, level := range plan {
		fmt.Fprintf(w, "  level %d: %s\n", i, strings.Join(level, ", "))
	}
	for _, from := range g.Nodes() {
		for _, to := range g.Successors(from) {
			fmt.Fprintf(w, "  %s -> %s\n", from, to)
		}
	}
	return nil
}
