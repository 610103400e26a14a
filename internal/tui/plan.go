package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/tuannvm/dynoteam/internal/graph"
	"github.com/tuannvm/dynoteam/internal/team"
)

var _ team.Renderer = PlanRenderer{}

// PlanRenderer draws an execution plan as a styled level tree.
type PlanRenderer struct {
	// Roles annotates agents with their role when set.
	Roles map[string]string
}

// Render writes nothing for an empty plan.
func (r PlanRenderer) Render(w io.Writer, teamName string, plan [][]string, g *graph.Graph) error {
	if len(plan) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · %d agents · %d levels", teamName, g.NodeCount(), len(plan))))
	b.WriteString("\n")

	for i, level := range plan {
		label := fmt.Sprintf("Level %d", i+1)
		if len(level) > 1 {
			label += dimStyle.Render(fmt.Sprintf("  (%d in parallel)", len(level)))
		}
		b.WriteString(levelStyle.Render(label))
		b.WriteString("\n")

		for j, name := range level {
			branch := "├─"
			if j == len(level)-1 {
				branch = "└─"
			}
			line := fmt.Sprintf("  %s %s", dimStyle.Render(branch), name)
			if role := r.Roles[name]; role != "" {
				line += dimStyle.Render(" (" + role + ")")
			}
			if deps := g.Predecessors(name); len(deps) > 0 {
				line += dimStyle.Render("  ← " + strings.Join(deps, ", "))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
