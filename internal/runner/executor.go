// Package runner provides the execution logic for running teams.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/team"
)

// Logger provides logging methods for the executor
type Logger interface {
	Info(format string, args ...interface{})
	Verbose(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Execute runs a team with the given options.
// This is the shared execution path for CLI, TUI and MCP. The report is
// returned even when the run fails so callers can show partial results.
func Execute(ctx context.Context, opts config.RunOptions, logger Logger, teamOpts ...team.Option) (*Report, error) {
	cfg, err := LoadTeam(opts.InputPath)
	if err != nil {
		return nil, err
	}
	return ExecuteConfig(ctx, cfg, opts, logger, teamOpts...)
}

// ExecuteConfig runs an already loaded team file.
func ExecuteConfig(ctx context.Context, cfg *config.Config, opts config.RunOptions, logger Logger, teamOpts ...team.Option) (*Report, error) {
	opts.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid team file: %w", err)
	}
	mode, err := team.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	tasks, err := Tasks(cfg, opts.Tasks)
	if err != nil {
		return nil, err
	}

	status := newStatusObserver(logger)
	t, err := BuildTeam(cfg, append(teamOpts, team.WithObserver(status))...)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logStartup(logger, cfg, t, mode, runID)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("\nReceived interrupt, stopping team...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second)
		defer cancelTimeout()
	}

	started := time.Now()
	results, runErr := t.Execute(ctx, mode, cfg.ContextInput(), team.WithTasks(tasks))
	report := newReport(runID, t, mode, started, results, status, runErr)

	PrintSummary(report, logger)

	if opts.ReportPath != "" {
		if err := WriteReport(opts.ReportPath, report); err != nil {
			return report, errors.Join(runErr, err)
		}
		logger.Verbose("Report written to %s", opts.ReportPath)
	}

	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// ExecuteAgent runs one agent of a team with an explicit task. Prerequisites
// are not run, so the agent only sees the team file's context.
func ExecuteAgent(ctx context.Context, cfg *config.Config, name, task string) (any, error) {
	ac, ok := cfg.GetAgent(name)
	if !ok {
		return nil, fmt.Errorf("unknown agent: %s (available: %s)", name, strings.Join(cfg.GetAgentNames(), ", "))
	}
	a, err := BuildAgent(cfg, ac)
	if err != nil {
		return nil, err
	}
	return a.Perform(ctx, task, cfg.ContextInput())
}

func logStartup(logger Logger, cfg *config.Config, t *team.Team, mode team.Mode, runID string) {
	logger.Info("Starting team %s", t.Name())
	if cfg.Source != "" {
		logger.Info("Team file: %s", cfg.Source)
	}
	logger.Info("Mode: %s", mode)
	logger.Info("Agents: %s", strings.Join(t.AgentNames(), ", "))
	if cfg.MaxConcurrency > 0 {
		logger.Info("Max concurrency: %d", cfg.MaxConcurrency)
	}
	logger.Verbose("Run ID: %s", runID)
	for i, level := range t.Plan() {
		logger.Verbose("Level %d: %s", i+1, strings.Join(level, ", "))
	}
	logger.Info("")
}

// statusObserver prints a line per finished agent and remembers timings.
type statusObserver struct {
	team.NopObserver

	logger Logger

	mu       sync.Mutex
	levels   map[string]int
	elapsed  map[string]time.Duration
	failures map[string]error
}

func newStatusObserver(logger Logger) *statusObserver {
	return &statusObserver{
		logger:   logger,
		levels:   make(map[string]int),
		elapsed:  make(map[string]time.Duration),
		failures: make(map[string]error),
	}
}

func (s *statusObserver) LevelStarted(level int, agents []string) {
	s.logger.Verbose("Running level %d: %s", level+1, strings.Join(agents, ", "))
}

func (s *statusObserver) AgentFinished(level int, name string, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.levels[name] = level
	s.elapsed[name] = elapsed
	if err != nil {
		s.failures[name] = err
		s.logger.Info("✗ %s: failed (%v)", name, unwrapExecution(err))
		return
	}
	s.logger.Info("✓ %s: completed in %s", name, elapsed.Round(time.Millisecond))
}

func (s *statusObserver) LevelFinished(level int, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Level %d had failures, stopping execution", level+1)
	}
}

func unwrapExecution(err error) error {
	var ee *team.ExecutionError
	if errors.As(err, &ee) {
		return ee.Err
	}
	return err
}

// PrintSummary prints the closing block of a run.
func PrintSummary(r *Report, logger Logger) {
	logger.Info("")
	logger.Info("=== Summary ===")

	succeeded := 0
	for _, a := range r.Agents {
		if a.Status == StatusCompleted {
			succeeded++
		}
	}

	logger.Info("%d/%d agents succeeded in %s", succeeded, len(r.Agents), r.Duration)
	if succeeded < len(r.Agents) {
		logger.Info("Partial results kept.")
	}
}
