package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/input"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter team file",
	Long: `Create .dynoteam/team.yaml in the current directory with an example
MLOps team. Edit the agents and dependencies, then run:

  dynoteam plan
  dynoteam run`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing team file")
	rootCmd.AddCommand(initCmd)
}

func initCommand(cmd *cobra.Command, _ []string) error {
	teamFile := filepath.Join(input.ConfigDir, "team.yaml")

	// Check if already exists
	if _, err := os.Stat(teamFile); err == nil && !initForce {
		return fmt.Errorf("team file already exists: %s (use --force to overwrite)", teamFile)
	}

	if err := os.MkdirAll(input.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to marshal team: %w", err)
	}

	header := `# Dynoteam team file
# Each agent runs after everything in its depends_on list.
# Documentation: https://github.com/tuannvm/dynoteam

`

	if err := os.WriteFile(teamFile, []byte(header+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write team file: %w", err)
	}

	status := newStatusLogger(cmd)
	status.Info("Created %s", teamFile)
	status.Info("")
	status.Info("You can now customize the agents and run:")
	status.Info("  dynoteam plan")
	status.Info("  dynoteam run")

	return nil
}
