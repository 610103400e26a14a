// Package mcp provides MCP (Model Context Protocol) server functionality for dynoteam.
// It exposes team planning and execution as MCP tools.
package mcp

// RunTeamInput defines parameters for running a team.
type RunTeamInput struct {
	Path           string            `json:"path,omitempty" jsonschema:"Team file or directory (default: configured team or .dynoteam/team.yaml)"`
	Mode           string            `json:"mode,omitempty" jsonschema:"Execution mode: sequential/parallel/optimal (default: the team file's mode)"`
	Context        map[string]string `json:"context,omitempty" jsonschema:"Extra key/value context given to every agent"`
	Tasks          map[string]string `json:"tasks,omitempty" jsonschema:"Per-agent task overrides keyed by agent name"`
	MaxConcurrency int               `json:"max_concurrency,omitempty" jsonschema:"Cap on agents running at once within a level (0 = unbounded)"`
	Timeout        int               `json:"timeout,omitempty" jsonschema:"Run timeout in seconds (0 = none)"`
	Verbose        bool              `json:"verbose,omitempty" jsonschema:"Enable verbose debug output"`
}

// AgentResult contains the outcome of one agent in a run.
type AgentResult struct {
	Agent    string `json:"agent"`
	Level    int    `json:"level"`
	Status   string `json:"status"` // "completed", "failed" or "skipped"
	Duration string `json:"duration,omitempty"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunTeamOutput contains the results of a team run.
type RunTeamOutput struct {
	RunID         string        `json:"run_id"`
	Team          string        `json:"team"`
	Mode          string        `json:"mode"`
	Results       []AgentResult `json:"results"`
	TotalAgents   int           `json:"total_agents"`
	Successful    int           `json:"successful"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	TotalDuration string        `json:"total_duration"`
	Error         string        `json:"error,omitempty"`
}

// PlanTeamInput defines parameters for computing a team's plan.
type PlanTeamInput struct {
	Path string `json:"path,omitempty" jsonschema:"Team file or directory"`
}

// PlanTeamOutput contains the execution levels of a team.
type PlanTeamOutput struct {
	Team   string     `json:"team"`
	Levels [][]string `json:"levels"`
	DOT    string     `json:"dot"`
}

// ListAgentsInput defines parameters for listing agents.
type ListAgentsInput struct {
	Path string `json:"path,omitempty" jsonschema:"Team file or directory"`
}

// AgentInfo describes an agent of a team.
type AgentInfo struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Role      string   `json:"role"`
	Goal      string   `json:"goal"`
	Skills    []string `json:"skills,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
	Level     int      `json:"level"`
}

// ListAgentsOutput contains a team's agents in file order.
type ListAgentsOutput struct {
	Team   string      `json:"team"`
	Agents []AgentInfo `json:"agents"`
}

// ValidateTeamInput defines parameters for validating team files.
type ValidateTeamInput struct {
	Path string `json:"path,omitempty" jsonschema:"Team file or directory; every team file under a directory is checked"`
}

// FileValidation is the result of checking one team file.
type FileValidation struct {
	File   string `json:"file"`
	Team   string `json:"team,omitempty"`
	Agents int    `json:"agents"`
	Levels int    `json:"levels"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

// ValidateTeamOutput contains per-file validation results.
type ValidateTeamOutput struct {
	Files []FileValidation `json:"files"`
	Valid bool             `json:"valid"`
}
