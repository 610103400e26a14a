package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/runner"
	"github.com/tuannvm/dynoteam/internal/team"
	"github.com/tuannvm/dynoteam/internal/tui"
)

var runFlags struct {
	mode           string
	context        map[string]string
	tasks          map[string]string
	tui            bool
	report         string
	maxConcurrency int
	timeout        int
}

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run a team",
	Long: `Run every agent of a team in dependency order.

The path may be a team file (.yaml, .yml, .toml, .hcl) or a directory
containing one. Without a path the standard locations are searched,
starting with .dynoteam/team.yaml.

Modes:
  sequential   one agent at a time, stop at the first failure
  parallel     each level fans out, the next level waits for all of it
  optimal      like parallel, single-agent levels run inline (default)

Examples:
  dynoteam run
  dynoteam run ./teams/etl.yaml --mode sequential
  dynoteam run --context dataset=churn.csv --context owner=ops
  dynoteam run --task Report="Summarize for executives" --report out.json
  dynoteam run --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCommand,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.mode, "mode", "m", "", "execution mode: sequential, parallel, optimal (default: team file)")
	f.StringToStringVar(&runFlags.context, "context", nil, "extra context as key=value (repeatable)")
	f.StringToStringVar(&runFlags.tasks, "task", nil, "task override as agent=task (repeatable)")
	f.BoolVar(&runFlags.tui, "tui", false, "show a live progress view")
	f.StringVarP(&runFlags.report, "report", "r", "", "write a JSON or YAML report to this file")
	f.IntVar(&runFlags.maxConcurrency, "max-concurrency", 0, "cap on agents running at once per level (0 = team file)")
	f.IntVarP(&runFlags.timeout, "timeout", "t", 0, "run timeout in seconds (0 = team file)")

	rootCmd.AddCommand(runCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	opts := config.RunOptions{
		InputPath:      teamPath(args),
		Mode:           runFlags.mode,
		MaxConcurrency: runFlags.maxConcurrency,
		Timeout:        runFlags.timeout,
		Context:        runFlags.context,
		Tasks:          runFlags.tasks,
		ReportPath:     runFlags.report,
		Verbosity:      verbosity(),
	}
	if opts.Mode != "" && !config.IsValidMode(opts.Mode) {
		return fmt.Errorf("invalid mode: %s (use: sequential, parallel, optimal)", opts.Mode)
	}
	if opts.MaxConcurrency < 0 || opts.Timeout < 0 {
		return fmt.Errorf("--max-concurrency and --timeout must be >= 0")
	}

	if runFlags.tui {
		return runWithProgress(cmd, opts)
	}
	return runTeam(cmd, opts)
}

func runTeam(cmd *cobra.Command, opts config.RunOptions) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	_, err = runner.Execute(cmd.Context(), opts, newStatusLogger(cmd), team.WithLogger(logger))
	return err
}

// runWithProgress runs the team behind the bubbletea progress view and
// prints the summary once the view closes.
func runWithProgress(cmd *cobra.Command, opts config.RunOptions) error {
	cfg, err := runner.LoadTeam(opts.InputPath)
	if err != nil {
		return err
	}
	t, err := runner.BuildTeam(cfg)
	if err != nil {
		return err
	}

	silent := runner.NewWriterLogger(io.Discard, io.Discard, false, true)
	var report *runner.Report
	runErr := tui.RunProgress(cmd.Context(), cfg.Name, t.Plan(), func(ctx context.Context, obs team.Observer) error {
		var err error
		report, err = runner.ExecuteConfig(ctx, cfg, opts, silent, team.WithObserver(obs))
		return err
	})

	status := newStatusLogger(cmd)
	if report == nil {
		return runErr
	}
	for _, a := range report.Agents {
		if a.Status == runner.StatusFailed {
			status.Error("%s: %s", a.Name, a.Error)
		}
	}
	runner.PrintSummary(report, status)
	if opts.ReportPath != "" {
		status.Info("Report written to %s", opts.ReportPath)
	}
	return runErr
}

func verbosity() string {
	switch {
	case isQuiet():
		return config.VerbosityQuiet
	case isVerbose():
		return config.VerbosityVerbose
	}
	return config.VerbosityNormal
}
