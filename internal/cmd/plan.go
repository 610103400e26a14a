package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/input"
	"github.com/tuannvm/dynoteam/internal/runner"
	"github.com/tuannvm/dynoteam/internal/team"
	"github.com/tuannvm/dynoteam/internal/tui"
)

var planFlags struct {
	format string
	watch  bool
}

var planCmd = &cobra.Command{
	Use:   "plan [path]",
	Short: "Show the execution levels of a team",
	Long: `Show which agents run together without running them.

Formats:
  tree   level tree with roles and dependencies (default)
  dot    Graphviz DOT, one rank per level

Examples:
  dynoteam plan
  dynoteam plan ./teams/etl.hcl --format dot | dot -Tsvg > plan.svg
  dynoteam plan --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: planCommand,
}

func init() {
	planCmd.Flags().StringVarP(&planFlags.format, "format", "f", "tree", "output format: tree, dot")
	planCmd.Flags().BoolVarP(&planFlags.watch, "watch", "w", false, "re-render when the team file changes")
	rootCmd.AddCommand(planCmd)
}

func planCommand(cmd *cobra.Command, args []string) error {
	if planFlags.format != "tree" && planFlags.format != "dot" {
		return fmt.Errorf("unknown format: %s (use: tree, dot)", planFlags.format)
	}
	path := teamPath(args)
	out := cmd.OutOrStdout()

	if !planFlags.watch {
		return renderPlan(out, path, planFlags.format)
	}

	watchPath := path
	if watchPath == "" {
		cfg, err := runner.LoadTeam("")
		if err != nil {
			return err
		}
		watchPath = cfg.Source
	}

	redraw := func() {
		_, _ = fmt.Fprint(out, "\033[H\033[2J")
		if err := renderPlan(out, path, planFlags.format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out, tui.Dim("Watching "+watchPath+" (ctrl+c to stop)"))
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redraw()
	return input.Watch(ctx, watchPath, redraw)
}

// renderPlan loads the team at path and writes its plan. An empty team
// writes nothing.
func renderPlan(w io.Writer, path, format string) error {
	cfg, err := runner.LoadTeam(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid team file: %w", err)
	}

	t, err := runner.BuildTeam(cfg, team.WithRenderer(planRenderer(cfg)))
	if err != nil {
		return err
	}
	if format == "dot" {
		return t.Graph().WriteDOT(w, t.Name())
	}
	return t.Visualize(w)
}

func planRenderer(cfg *config.Config) team.Renderer {
	roles := make(map[string]string, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		roles[ac.Name] = ac.Role
	}
	return tui.PlanRenderer{Roles: roles}
}
