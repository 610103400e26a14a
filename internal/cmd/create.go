package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/input"
	"github.com/tuannvm/dynoteam/internal/runner"
)

var createFlags struct {
	skills    []string
	goal      string
	dependsOn []string
	kind      string
	task      string
	file      string
	teamName  string
}

var createCmd = &cobra.Command{
	Use:   "create <name> <role>",
	Short: "Add an agent to a team file",
	Long: `Append an agent to a YAML team file. The file is created when missing.
The team is rebuilt before saving, so unknown dependencies and cycles
are rejected and the file is left untouched.

Example:
  dynoteam create Reviewer "Code Reviewer" --goal "Review changes" --skills go,testing
  dynoteam create Publisher Writer --goal "Publish the report" --depends-on Reviewer`,
	Args: cobra.ExactArgs(2),
	RunE: createCommand,
}

func init() {
	f := createCmd.Flags()
	f.StringSliceVarP(&createFlags.skills, "skills", "s", nil, "comma-separated skills")
	f.StringVarP(&createFlags.goal, "goal", "g", "", "what the agent works toward (required)")
	f.StringSliceVarP(&createFlags.dependsOn, "depends-on", "d", nil, "agents that must run first")
	f.StringVarP(&createFlags.kind, "kind", "k", config.KindDyno, "agent kind: dyno, tool, remote")
	f.StringVar(&createFlags.task, "task", "", "task template for the agent")
	f.StringVar(&createFlags.file, "file", "", "team file to edit (default: .dynoteam/team.yaml)")
	f.StringVar(&createFlags.teamName, "team-name", "My Team", "team name when creating a new file")
	_ = createCmd.MarkFlagRequired("goal")
	rootCmd.AddCommand(createCmd)
}

func createCommand(cmd *cobra.Command, args []string) error {
	path := createFlags.file
	if path == "" {
		path = filepath.Join(input.ConfigDir, "team.yaml")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("create only edits YAML team files: %s", path)
	}

	cfg, err := config.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = &config.Config{Name: createFlags.teamName, Mode: config.ModeOptimal}
	} else if err != nil {
		return err
	}

	name := args[0]
	if _, exists := cfg.GetAgent(name); exists {
		return fmt.Errorf("agent %s already exists in %s", name, path)
	}

	cfg.Agents = append(cfg.Agents, config.AgentConfig{
		Name:      name,
		Kind:      createFlags.kind,
		Role:      args[1],
		Goal:      createFlags.goal,
		Skills:    createFlags.skills,
		Task:      createFlags.task,
		DependsOn: createFlags.dependsOn,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid agent: %w", err)
	}
	t, err := runner.BuildTeam(cfg)
	if err != nil {
		return err
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save team file: %w", err)
	}

	status := newStatusLogger(cmd)
	status.Info("Added %s to %s (%d agents, %d levels)", name, path, t.Len(), len(t.Plan()))
	return nil
}
