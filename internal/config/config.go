package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// Execution modes accepted in team files.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
	ModeOptimal    = "optimal"
)

// Agent kinds accepted in team files.
const (
	KindDyno   = "dyno"
	KindTool   = "tool"
	KindRemote = "remote"
)

// Config represents a team definition file
type Config struct {
	Name           string            `yaml:"name" toml:"name" hcl:"name,optional" json:"name,omitempty"`
	Mode           string            `yaml:"mode,omitempty" toml:"mode,omitempty" hcl:"mode,optional" json:"mode,omitempty"`
	MaxConcurrency int               `yaml:"max_concurrency,omitempty" toml:"max_concurrency,omitempty" hcl:"max_concurrency,optional" json:"max_concurrency,omitempty"`
	Timeout        int               `yaml:"timeout,omitempty" toml:"timeout,omitempty" hcl:"timeout,optional" json:"timeout,omitempty"`
	TasksDir       string            `yaml:"tasks_dir,omitempty" toml:"tasks_dir,omitempty" hcl:"tasks_dir,optional" json:"tasks_dir,omitempty"`
	Context        map[string]string `yaml:"context,omitempty" toml:"context,omitempty" hcl:"context,optional" json:"context,omitempty"`
	Agents         []AgentConfig     `yaml:"agents" toml:"agents" hcl:"agent,block" json:"agents,omitempty"`

	// Source is the file the config was read from, empty for Default().
	Source string `yaml:"-" toml:"-" json:"-"`
}

// AgentConfig represents a single agent's configuration
type AgentConfig struct {
	Name        string   `yaml:"name" toml:"name" hcl:"name,label" json:"name,omitempty"`
	Kind        string   `yaml:"kind,omitempty" toml:"kind,omitempty" hcl:"kind,optional" json:"kind,omitempty"`
	Role        string   `yaml:"role" toml:"role" hcl:"role,optional" json:"role,omitempty"`
	Goal        string   `yaml:"goal" toml:"goal" hcl:"goal,optional" json:"goal,omitempty"`
	Skills      []string `yaml:"skills,omitempty" toml:"skills,omitempty" hcl:"skills,optional" json:"skills,omitempty"`
	Task        string   `yaml:"task,omitempty" toml:"task,omitempty" hcl:"task,optional" json:"task,omitempty"`
	TaskFile    string   `yaml:"task_file,omitempty" toml:"task_file,omitempty" hcl:"task_file,optional" json:"task_file,omitempty"`
	DependsOn   []string `yaml:"depends_on,omitempty" toml:"depends_on,omitempty" hcl:"depends_on,optional" json:"depends_on,omitempty"`
	Provider    string   `yaml:"provider,omitempty" toml:"provider,omitempty" hcl:"provider,optional" json:"provider,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" toml:"temperature,omitempty" hcl:"temperature,optional" json:"temperature,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty" toml:"max_tokens,omitempty" hcl:"max_tokens,optional" json:"max_tokens,omitempty"`
	Command     string   `yaml:"command,omitempty" toml:"command,omitempty" hcl:"command,optional" json:"command,omitempty"`
	Args        []string `yaml:"args,omitempty" toml:"args,omitempty" hcl:"args,optional" json:"args,omitempty"`
	Port        int      `yaml:"port,omitempty" toml:"port,omitempty" hcl:"port,optional" json:"port,omitempty"`
	URL         string   `yaml:"url,omitempty" toml:"url,omitempty" hcl:"url,optional" json:"url,omitempty"`
}

// Locations lists where Load looks for a team file when no path is given.
func Locations() []string {
	return []string{
		".dynoteam/team.yaml",
		".dynoteam/team.yml",
		".dynoteam/team.toml",
		".dynoteam/team.hcl",
		filepath.Join(os.Getenv("HOME"), ".dynoteam/team.yaml"),
	}
}

// Load reads config from file, checking multiple locations
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		for _, loc := range Locations() {
			if _, err := os.Stat(loc); err == nil {
				configPath = loc
				break
			}
		}
	}
	if configPath == "" {
		return nil, os.ErrNotExist
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a single team file, picking the format from its extension.
// Environment overrides are not applied.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(path, &cfg)
	case ".toml":
		_, err = toml.DecodeFile(path, &cfg)
	case ".hcl":
		err = decodeHCL(path, &cfg)
	default:
		return nil, fmt.Errorf("unsupported team file format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read team file %s: %w", path, err)
	}

	cfg.Source = path
	cfg.applyDefaults()
	return &cfg, nil
}

func decodeYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func decodeHCL(path string, cfg *Config) error {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return diags
	}
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return diags
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeOptimal
	}
	for i := range c.Agents {
		if c.Agents[i].Kind == "" {
			c.Agents[i].Kind = KindDyno
		}
	}
}

// ApplyEnvOverrides applies environment variable overrides to config.
// Numeric overrides must be non-negative integers; every bad value is
// reported and leaves the config field unchanged.
func (c *Config) ApplyEnvOverrides() error {
	if mode := os.Getenv("DYNOTEAM_MODE"); mode != "" {
		c.Mode = strings.ToLower(mode)
	}

	var errs []error
	for _, o := range []struct {
		env string
		dst *int
	}{
		{"DYNOTEAM_MAX_CONCURRENCY", &c.MaxConcurrency},
		{"DYNOTEAM_TIMEOUT", &c.Timeout},
	} {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s=%q: want a non-negative integer", o.env, v))
			continue
		}
		*o.dst = n
	}
	return errors.Join(errs...)
}

// Default returns the MLOps pipeline team
func Default() *Config {
	return &Config{
		Name: "MLOpsTeam",
		Mode: ModeOptimal,
		Agents: []AgentConfig{
			{
				Name:   "DataIngestion",
				Kind:   KindDyno,
				Role:   "Ingester",
				Skills: []string{"Data Loading", "Schema Validation"},
				Goal:   "Ingest and validate raw data",
			},
			{
				Name:      "FeatureExtraction",
				Kind:      KindDyno,
				Role:      "Extractor",
				Skills:    []string{"Feature Engineering", "Dimensionality Reduction"},
				Goal:      "Extract relevant features from data",
				DependsOn: []string{"DataIngestion"},
			},
			{
				Name:      "ModelTraining",
				Kind:      KindDyno,
				Role:      "Trainer",
				Skills:    []string{"Model Selection", "Hyperparameter Tuning"},
				Goal:      "Train and optimize ML models",
				DependsOn: []string{"FeatureExtraction"},
			},
			{
				Name:      "ModelEvaluation",
				Kind:      KindDyno,
				Role:      "Evaluator",
				Skills:    []string{"Performance Metrics", "Cross Validation"},
				Goal:      "Evaluate model performance",
				DependsOn: []string{"ModelTraining"},
			},
			{
				Name:      "ErrorAnalysis",
				Kind:      KindDyno,
				Role:      "Analyzer",
				Skills:    []string{"Error Detection", "Bias Analysis"},
				Goal:      "Analyze model errors and biases",
				DependsOn: []string{"ModelEvaluation"},
			},
			{
				Name:      "ModelDeployment",
				Kind:      KindDyno,
				Role:      "Deployer",
				Skills:    []string{"Model Serving", "API Integration"},
				Goal:      "Deploy models to production",
				DependsOn: []string{"ModelEvaluation", "ErrorAnalysis"},
			},
			{
				Name:      "Monitoring",
				Kind:      KindDyno,
				Role:      "Monitor",
				Skills:    []string{"Performance Monitoring", "Drift Detection"},
				Goal:      "Monitor model performance and data drift",
				DependsOn: []string{"ModelDeployment"},
			},
		},
	}
}

// GetAgentNames returns agent names in file order
func (c *Config) GetAgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for _, a := range c.Agents {
		names = append(names, a.Name)
	}
	return names
}

// GetAgent returns the named agent's configuration
func (c *Config) GetAgent(name string) (AgentConfig, bool) {
	for _, a := range c.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return AgentConfig{}, false
}

// GetDependencies returns the dependencies for an agent
func (c *Config) GetDependencies(agentName string) []string {
	if agent, ok := c.GetAgent(agentName); ok {
		return agent.DependsOn
	}
	return nil
}

// Dependencies returns the explicit dependency mapping for every agent that
// declares at least one prerequisite.
func (c *Config) Dependencies() map[string][]string {
	deps := make(map[string][]string)
	for _, a := range c.Agents {
		if len(a.DependsOn) > 0 {
			deps[a.Name] = append([]string(nil), a.DependsOn...)
		}
	}
	return deps
}

// ContextInput converts the configured context into executor input.
func (c *Config) ContextInput() map[string]any {
	input := make(map[string]any, len(c.Context))
	for k, v := range c.Context {
		input[k] = v
	}
	return input
}

// IsValidMode reports whether mode names an execution mode. Empty is valid
// and means optimal.
func IsValidMode(mode string) bool {
	switch mode {
	case "", ModeSequential, ModeParallel, ModeOptimal:
		return true
	}
	return false
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
