package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tuannvm/dynoteam/internal/runner"
)

var executeCmd = &cobra.Command{
	Use:   "execute <agent> <task> [path]",
	Short: "Run one agent with a task",
	Long: `Run a single agent of a team with an explicit task. The agent's
prerequisites are not run; it only sees the team file's context.

Example:
  dynoteam execute DataCollector "Collect the Q3 churn data"`,
	Args: cobra.RangeArgs(2, 3),
	RunE: executeCommand,
}

func init() {
	rootCmd.AddCommand(executeCmd)
}

func executeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := runner.LoadTeam(teamPath(args[2:]))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid team file: %w", err)
	}

	result, err := runner.ExecuteAgent(cmd.Context(), cfg, args[0], args[1])
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
