package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/tui"
)

var uiAccessible bool

var uiCmd = &cobra.Command{
	Use:   "ui [path]",
	Short: "Interactive dashboard for running a team",
	Long: `Launch an interactive dashboard to pick a team file, mode and
run settings, then run the team with a live progress view.

Smart defaults are pre-filled from .dynoteam/team.yaml.

Examples:
  dynoteam ui
  dynoteam ui ./teams/etl.yaml
  dynoteam ui --accessible`,
	Args: cobra.MaximumNArgs(1),
	RunE: uiCommand,
}

func init() {
	uiCmd.Flags().BoolVar(&uiAccessible, "accessible", false, "enable accessible mode for screen readers")
	rootCmd.AddCommand(uiCmd)
}

func uiCommand(cmd *cobra.Command, args []string) error {
	// Load config
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.Default()
	}

	result, err := tui.RunDashboard(tui.DashboardOptions{
		PrefilledInput: teamPath(args),
		Config:         cfg,
		Accessible:     uiAccessible,
	})
	if err != nil {
		return err
	}

	status := newStatusLogger(cmd)
	if result.Cancelled {
		status.Info("Cancelled")
		return nil
	}

	// Validate input
	if result.InputPath == "" {
		return fmt.Errorf("no team file specified")
	}

	opts := result.RunOptions()
	status.Info("Running %s in %s mode", opts.InputPath, opts.Mode)
	status.Info("")

	if opts.IsQuiet() || uiAccessible {
		return runTeam(cmd, opts)
	}
	return runWithProgress(cmd, opts)
}
