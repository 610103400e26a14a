package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/dynoteam/internal/team"
)

// Agent statuses in a report.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Report describes one team run.
type Report struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Team     string        `json:"team" yaml:"team"`
	Mode     string        `json:"mode" yaml:"mode"`
	Started  time.Time     `json:"started" yaml:"started"`
	Duration string        `json:"duration" yaml:"duration"`
	Levels   [][]string    `json:"levels" yaml:"levels"`
	Agents   []AgentReport `json:"agents" yaml:"agents"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// AgentReport is one agent's outcome.
type AgentReport struct {
	Name     string `json:"name" yaml:"name"`
	Level    int    `json:"level" yaml:"level"`
	Status   string `json:"status" yaml:"status"`
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	Result   any    `json:"result,omitempty" yaml:"result,omitempty"`
}

// Results returns the successful agents' results keyed by name.
func (r *Report) Results() map[string]any {
	out := make(map[string]any)
	for _, a := range r.Agents {
		if a.Status == StatusCompleted {
			out[a.Name] = a.Result
		}
	}
	return out
}

func newReport(runID string, t *team.Team, mode team.Mode, started time.Time, results team.Results, status *statusObserver, runErr error) *Report {
	plan := t.Plan()
	r := &Report{
		RunID:    runID,
		Team:     t.Name(),
		Mode:     string(mode),
		Started:  started,
		Duration: time.Since(started).Round(time.Millisecond).String(),
		Levels:   plan,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}

	status.mu.Lock()
	defer status.mu.Unlock()
	for levelIdx, level := range plan {
		for _, name := range level {
			ar := AgentReport{Name: name, Level: levelIdx, Status: StatusSkipped}
			if d, ok := status.elapsed[name]; ok {
				ar.Duration = d.Round(time.Millisecond).String()
			}
			if v, ok := results[name]; ok {
				ar.Status = StatusCompleted
				ar.Result = v
			} else if err, ok := status.failures[name]; ok {
				ar.Status = StatusFailed
				ar.Error = unwrapExecution(err).Error()
			}
			r.Agents = append(r.Agents, ar)
		}
	}
	return r
}

// WriteReport writes r as JSON, or YAML when path ends in .yaml or .yml.
func WriteReport(path string, r *Report) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
