// options.go provides shared option definitions for CLI, TUI and MCP.
package config

// Option represents a selectable option with value and label
type Option struct {
	Value       string
	Label       string
	Description string
}

// RunOptions contains all parameters for running a team.
// This is the single source of truth used by CLI, TUI and MCP.
type RunOptions struct {
	InputPath      string            // team file or directory containing one
	Mode           string            // "sequential", "parallel", "optimal"; empty uses the file's mode
	MaxConcurrency int               // 0 uses the file's setting
	Timeout        int               // seconds, 0 uses the file's setting
	Context        map[string]string // merged over the file's context
	Tasks          map[string]string // per-agent task overrides
	ReportPath     string            // .json or .yaml report destination
	Verbosity      string            // "normal", "verbose", "quiet"
}

// VerbosityNormal, VerbosityVerbose, VerbosityQuiet are verbosity constants
const (
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
	VerbosityQuiet   = "quiet"
)

var VerbosityOptions = []Option{
	{Value: VerbosityNormal, Label: "Normal", Description: "Standard output"},
	{Value: VerbosityVerbose, Label: "Verbose", Description: "Debug info"},
	{Value: VerbosityQuiet, Label: "Quiet", Description: "Errors only"},
}

var ModeOptions = []Option{
	{Value: ModeOptimal, Label: "Optimal", Description: "Parallel levels, single agents inline"},
	{Value: ModeParallel, Label: "Parallel", Description: "Every level fans out"},
	{Value: ModeSequential, Label: "Sequential", Description: "One at a time, stop on first failure"},
}

var ConcurrencyOptions = []Option{
	{Value: "0", Label: "Unbounded", Description: "Run a whole level at once"},
	{Value: "1", Label: "1", Description: "One agent at a time per level"},
	{Value: "2", Label: "2", Description: "Two agents per level"},
	{Value: "4", Label: "4", Description: "Four agents per level"},
}

// DefaultRunOptions returns RunOptions with sensible defaults from config
func DefaultRunOptions(cfg *Config) RunOptions {
	if cfg == nil {
		cfg = Default()
	}
	return RunOptions{
		Mode:           cfg.Mode,
		MaxConcurrency: cfg.MaxConcurrency,
		Timeout:        cfg.Timeout,
		Verbosity:      VerbosityNormal,
	}
}

// IsVerbose returns true if verbosity is set to verbose
func (o RunOptions) IsVerbose() bool {
	return o.Verbosity == VerbosityVerbose
}

// IsQuiet returns true if verbosity is set to quiet
func (o RunOptions) IsQuiet() bool {
	return o.Verbosity == VerbosityQuiet
}

// Apply copies the non-zero run options over cfg.
func (o RunOptions) Apply(cfg *Config) {
	if o.Mode != "" {
		cfg.Mode = o.Mode
	}
	if o.MaxConcurrency > 0 {
		cfg.MaxConcurrency = o.MaxConcurrency
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if len(o.Context) > 0 && cfg.Context == nil {
		cfg.Context = make(map[string]string, len(o.Context))
	}
	for k, v := range o.Context {
		cfg.Context[k] = v
	}
}
