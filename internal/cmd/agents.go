package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tuannvm/dynoteam/internal/graph"
	"github.com/tuannvm/dynoteam/internal/runner"
)

var agentsCmd = &cobra.Command{
	Use:   "agents [path]",
	Short: "List the agents of a team",
	Long: `List a team's agents in file order with their kind, role,
dependencies and the level they run in.

Example:
  dynoteam agents
  dynoteam agents ./teams/etl.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: agentsCommand,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

func agentsCommand(cmd *cobra.Command, args []string) error {
	cfg, err := runner.LoadTeam(teamPath(args))
	if err != nil {
		return err
	}
	t, err := runner.BuildTeam(cfg)
	if err != nil {
		return err
	}
	levels := graph.LevelIndex(t.Plan())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tROLE\tDEPENDS ON\tLEVEL")

	for _, ac := range cfg.Agents {
		deps := "-"
		if len(ac.DependsOn) > 0 {
			deps = strings.Join(ac.DependsOn, ", ")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", ac.Name, ac.Kind, ac.Role, deps, levels[ac.Name]+1)
	}

	return w.Flush()
}
