package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/graph"
	"github.com/tuannvm/dynoteam/internal/runner"
	"github.com/tuannvm/dynoteam/internal/team"
)

// Handlers provides the business logic for MCP tool handlers.
// It can be used standalone or injected into the MCP server.
type Handlers struct {
	teamPath string // Used when a tool call names no path
	verbose  bool
	logOut   io.Writer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers() *Handlers {
	return &Handlers{logOut: os.Stderr}
}

// WithTeamPath sets the team file used when a call gives no path.
func (h *Handlers) WithTeamPath(path string) *Handlers {
	h.teamPath = path
	return h
}

// WithVerbose enables verbose logging.
func (h *Handlers) WithVerbose(verbose bool) *Handlers {
	h.verbose = verbose
	return h
}

// WithLogOutput sets where run progress is written. Stdout is reserved for
// the stdio transport, so this defaults to stderr.
func (h *Handlers) WithLogOutput(w io.Writer) *Handlers {
	h.logOut = w
	return h
}

func (h *Handlers) path(p string) string {
	if p != "" {
		return p
	}
	return h.teamPath
}

// loadTeam loads, validates and builds the team file.
func (h *Handlers) loadTeam(path string) (*config.Config, *team.Team, error) {
	cfg, err := runner.LoadTeam(h.path(path))
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid team file: %w", err)
	}
	t, err := runner.BuildTeam(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, t, nil
}

// RunTeam executes a team. Setup problems are returned as errors; a failed
// run is reported in the output with the partial results.
func (h *Handlers) RunTeam(ctx context.Context, input RunTeamInput) (RunTeamOutput, error) {
	if input.Mode != "" && !config.IsValidMode(input.Mode) {
		return RunTeamOutput{}, fmt.Errorf("invalid mode: %s (use: sequential, parallel, optimal)", input.Mode)
	}
	if input.MaxConcurrency < 0 {
		return RunTeamOutput{}, fmt.Errorf("max_concurrency must be >= 0")
	}
	if input.Timeout < 0 {
		return RunTeamOutput{}, fmt.Errorf("timeout must be >= 0")
	}

	cfg, err := runner.LoadTeam(h.path(input.Path))
	if err != nil {
		return RunTeamOutput{}, err
	}

	verbose := input.Verbose || h.verbose
	logger := runner.NewWriterLogger(h.logOut, h.logOut, verbose, !verbose)

	report, runErr := runner.ExecuteConfig(ctx, cfg, config.RunOptions{
		Mode:           input.Mode,
		MaxConcurrency: input.MaxConcurrency,
		Timeout:        input.Timeout,
		Context:        input.Context,
		Tasks:          input.Tasks,
	}, logger)
	if report == nil {
		return RunTeamOutput{}, runErr
	}

	output := RunTeamOutput{
		RunID:         report.RunID,
		Team:          report.Team,
		Mode:          report.Mode,
		Results:       make([]AgentResult, 0, len(report.Agents)),
		TotalAgents:   len(report.Agents),
		TotalDuration: report.Duration,
		Error:         report.Error,
	}
	for _, a := range report.Agents {
		output.Results = append(output.Results, AgentResult{
			Agent:    a.Name,
			Level:    a.Level,
			Status:   a.Status,
			Duration: a.Duration,
			Result:   a.Result,
			Error:    a.Error,
		})
		switch a.Status {
		case runner.StatusCompleted:
			output.Successful++
		case runner.StatusFailed:
			output.Failed++
		default:
			output.Skipped++
		}
	}

	return output, nil
}

// PlanTeam returns the execution levels of a team and its DOT graph.
func (h *Handlers) PlanTeam(_ context.Context, input PlanTeamInput) (PlanTeamOutput, error) {
	_, t, err := h.loadTeam(input.Path)
	if err != nil {
		return PlanTeamOutput{}, err
	}

	var dot bytes.Buffer
	if err := t.Graph().WriteDOT(&dot, t.Name()); err != nil {
		return PlanTeamOutput{}, err
	}

	levels := t.Plan()
	if levels == nil {
		levels = [][]string{}
	}
	return PlanTeamOutput{Team: t.Name(), Levels: levels, DOT: dot.String()}, nil
}

// ListAgents returns a team's agents in file order with their levels.
func (h *Handlers) ListAgents(_ context.Context, input ListAgentsInput) (ListAgentsOutput, error) {
	cfg, t, err := h.loadTeam(input.Path)
	if err != nil {
		return ListAgentsOutput{}, err
	}

	levels := graph.LevelIndex(t.Plan())
	agents := make([]AgentInfo, 0, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		agents = append(agents, AgentInfo{
			Name:      ac.Name,
			Kind:      ac.Kind,
			Role:      ac.Role,
			Goal:      ac.Goal,
			Skills:    ac.Skills,
			DependsOn: ac.DependsOn,
			Level:     levels[ac.Name],
		})
	}

	return ListAgentsOutput{Team: cfg.Name, Agents: agents}, nil
}

// ValidateTeam checks every team file under the path.
func (h *Handlers) ValidateTeam(_ context.Context, input ValidateTeamInput) (ValidateTeamOutput, error) {
	files, err := runner.TeamFiles(h.path(input.Path))
	if err != nil {
		return ValidateTeamOutput{}, err
	}

	output := ValidateTeamOutput{Files: make([]FileValidation, 0, len(files)), Valid: true}
	for _, f := range files {
		fv := FileValidation{File: f, Valid: true}
		cfg, t, err := runner.ValidateFile(f)
		if cfg != nil {
			fv.Team = cfg.Name
			fv.Agents = len(cfg.Agents)
		}
		if err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			output.Valid = false
		} else {
			fv.Levels = len(t.Plan())
		}
		output.Files = append(output.Files, fv)
	}

	return output, nil
}
