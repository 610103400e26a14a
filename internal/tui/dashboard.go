package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tuannvm/dynoteam/internal/config"
)

const browseValue = "__browse__"

// DashboardResult contains the user's selections from the dashboard
type DashboardResult struct {
	InputPath      string
	Mode           string
	MaxConcurrency int
	Timeout        int
	Context        map[string]string
	ReportPath     string
	Verbosity      string // "normal", "verbose", "quiet"
	Cancelled      bool
}

// RunOptions converts the selections into runner options.
func (r *DashboardResult) RunOptions() config.RunOptions {
	return config.RunOptions{
		InputPath:      r.InputPath,
		Mode:           r.Mode,
		MaxConcurrency: r.MaxConcurrency,
		Timeout:        r.Timeout,
		Context:        r.Context,
		ReportPath:     r.ReportPath,
		Verbosity:      r.Verbosity,
	}
}

// DashboardOptions configures the dashboard
type DashboardOptions struct {
	PrefilledInput string
	Config         *config.Config
	Accessible     bool
}

// RunDashboard displays the interactive single-screen form
func RunDashboard(opts DashboardOptions) (*DashboardResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	// Auto-enable accessible mode for non-terminals
	accessible := opts.Accessible || !isTerminal()

	result := &DashboardResult{
		InputPath:      opts.PrefilledInput,
		Mode:           cfg.Mode,
		MaxConcurrency: cfg.MaxConcurrency,
		Timeout:        cfg.Timeout,
		Verbosity:      config.VerbosityNormal,
	}
	if result.Mode == "" {
		result.Mode = config.ModeOptimal
	}

	inputOptions := teamFileOptions(result.InputPath)

	action := "run"
	concurrency := strconv.Itoa(result.MaxConcurrency)
	timeoutStr := strconv.Itoa(result.Timeout)
	contextStr := ""

	for {
		action = "run" // Reset

		fmt.Print("\033[H\033[2J") // Clear screen
		fmt.Println(Banner())

		mainForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Team").
					Description("Select a team file").
					Options(inputOptions...).
					Height(8).
					Value(&result.InputPath),

				huh.NewSelect[string]().
					Title("Mode").
					Options(toHuhOptions(config.ModeOptions)...).
					Value(&result.Mode),

				huh.NewSelect[string]().
					Title("Action").
					Description("Shift+Tab go back").
					Options(
						huh.NewOption("▶ Run", "run"),
						huh.NewOption("⚙ Advanced...", "advanced"),
						huh.NewOption("✕ Cancel", "cancel"),
					).
					Value(&action),
			),
		).WithTheme(formTheme()).WithAccessible(accessible)

		if err := mainForm.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				result.Cancelled = true
				return result, nil
			}
			return nil, fmt.Errorf("form error: %w", err)
		}

		if result.InputPath == browseValue {
			browseForm := huh.NewForm(
				huh.NewGroup(
					huh.NewFilePicker().
						Title("Browse").
						Description("Enter=open/select • .=hidden").
						AllowedTypes([]string{".yaml", ".yml", ".toml", ".hcl"}).
						Picking(true).
						DirAllowed(false).
						FileAllowed(true).
						CurrentDirectory(".").
						ShowHidden(false).
						ShowSize(true).
						ShowPermissions(false).
						Height(15).
						Value(&result.InputPath),
				).Title("Dynoteam"),
			).WithTheme(formTheme()).WithAccessible(accessible)

			if err := browseForm.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					result.InputPath = ""
					continue
				}
				return nil, err
			}
			if result.InputPath != "" {
				inputOptions = append([]huh.Option[string]{huh.NewOption(result.InputPath, result.InputPath)}, inputOptions...)
			}
			continue
		}

		if action == "cancel" {
			result.Cancelled = true
			return result, nil
		}

		if action == "run" {
			break
		}

		// action == "advanced"
		advancedForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Max concurrency").
					Description("Agents per level at once").
					Options(toHuhOptions(config.ConcurrencyOptions)...).
					Value(&concurrency),

				huh.NewInput().
					Title("Timeout (sec)").
					Placeholder("0").
					Validate(validateNonNegative).
					Value(&timeoutStr),

				huh.NewInput().
					Title("Context").
					Description("key=value, comma separated").
					Placeholder("dataset=churn.csv").
					Validate(func(s string) error { _, err := ParseContext(s); return err }).
					Value(&contextStr),

				huh.NewInput().
					Title("Report file").
					Placeholder("report.json").
					Value(&result.ReportPath),

				huh.NewSelect[string]().
					Title("Verbosity").
					Options(toHuhOptions(config.VerbosityOptions)...).
					Value(&result.Verbosity),
			).Title("Advanced").Description("Esc=back"),
		).WithTheme(formTheme()).WithAccessible(accessible)

		if err := advancedForm.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue // Back to main
			}
			return nil, fmt.Errorf("form error: %w", err)
		}
	}

	if n, err := strconv.Atoi(concurrency); err == nil {
		result.MaxConcurrency = n
	}
	if n, err := strconv.Atoi(timeoutStr); err == nil {
		result.Timeout = n
	}
	result.Context, _ = ParseContext(contextStr)

	return result, nil
}

// teamFileOptions lists discovered folders and files, with prefilled first.
func teamFileOptions(prefilled string) []huh.Option[string] {
	found := findCandidates()
	var options []huh.Option[string]
	for _, f := range found.Folders {
		options = append(options, huh.NewOption("📁 "+f+"/", f))
	}
	for _, f := range found.Files {
		options = append(options, huh.NewOption(f, f))
	}
	options = append(options, huh.NewOption("🔍 Browse...", browseValue))

	if prefilled != "" {
		for _, opt := range options {
			if opt.Value == prefilled {
				return options
			}
		}
		options = append([]huh.Option[string]{huh.NewOption(prefilled, prefilled)}, options...)
	}
	return options
}

func toHuhOptions(opts []config.Option) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		label := o.Label
		if o.Description != "" {
			label += " - " + o.Description
		}
		out = append(out, huh.NewOption(label, o.Value))
	}
	return out
}

func validateNonNegative(s string) error {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of seconds")
	}
	return nil
}

// ParseContext parses "k=v,k2=v2" into a map. Empty input yields nil.
func ParseContext(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid context entry %q (want key=value)", pair)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
