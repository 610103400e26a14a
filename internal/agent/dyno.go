package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Tool is a callable an agent can invoke by name.
type Tool func(ctx context.Context, args map[string]any) (any, error)

// MetricFunc scores an agent result.
type MetricFunc func(result any) float64

// Feedback is one observation of how well a run went.
type Feedback struct {
	InputQuality float64
	ErrorMargin  float64
}

// DynoAgent is a local agent described by a role, skills and a goal. Its
// Perform call classifies the task and reports what it would work on.
type DynoAgent struct {
	mu sync.RWMutex

	name   string
	role   string
	goal   string
	skills []string

	tools    map[string]Tool
	metrics  map[string]MetricFunc
	feedback []Feedback
}

// DynoOption configures a DynoAgent.
type DynoOption func(*DynoAgent) error

// WithTool registers a tool at construction time.
func WithTool(name string, tool Tool) DynoOption {
	return func(a *DynoAgent) error { return a.RegisterTool(name, tool) }
}

// WithMetric registers a custom metric at construction time.
func WithMetric(name string, fn MetricFunc) DynoOption {
	return func(a *DynoAgent) error { return a.AddCustomMetric(name, fn) }
}

// NewDynoAgent validates the identity fields and builds an agent.
func NewDynoAgent(name, role string, skills []string, goal string, opts ...DynoOption) (*DynoAgent, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return nil, ErrEmptyName
	case strings.TrimSpace(role) == "":
		return nil, fmt.Errorf("agent %s: %w", name, ErrEmptyRole)
	case strings.TrimSpace(goal) == "":
		return nil, fmt.Errorf("agent %s: %w", name, ErrEmptyGoal)
	}

	a := &DynoAgent{
		name:    name,
		role:    role,
		goal:    goal,
		tools:   make(map[string]Tool),
		metrics: make(map[string]MetricFunc),
	}
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("agent %s: %w", name, ErrEmptySkill)
		}
		a.addSkill(s)
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
	}
	return a, nil
}

func (a *DynoAgent) Name() string { return a.name }
func (a *DynoAgent) Role() string { return a.role }

func (a *DynoAgent) Goal() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.goal
}

// Skills returns the skills in the order they were added.
func (a *DynoAgent) Skills() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.skills...)
}

// AddSkill appends skill once and returns a status line.
func (a *DynoAgent) AddSkill(skill string) string {
	if strings.TrimSpace(skill) == "" {
		return "Skill must not be empty"
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.addSkill(skill) {
		return fmt.Sprintf("Skill %s already exists", skill)
	}
	return fmt.Sprintf("Added skill: %s", skill)
}

func (a *DynoAgent) addSkill(skill string) bool {
	for _, s := range a.skills {
		if s == skill {
			return false
		}
	}
	a.skills = append(a.skills, skill)
	return true
}

// UpdateGoal replaces the goal. Empty goals are rejected.
func (a *DynoAgent) UpdateGoal(goal string) error {
	if strings.TrimSpace(goal) == "" {
		return ErrEmptyGoal
	}
	a.mu.Lock()
	a.goal = goal
	a.mu.Unlock()
	return nil
}

// RegisterTool adds or replaces a named tool.
func (a *DynoAgent) RegisterTool(name string, tool Tool) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyToolName
	}
	if tool == nil {
		return ErrNilTool
	}
	a.mu.Lock()
	a.tools[name] = tool
	a.mu.Unlock()
	return nil
}

// UnregisterTool removes a tool.
func (a *DynoAgent) UnregisterTool(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.tools[name]; !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	delete(a.tools, name)
	return nil
}

// UseTool calls the named tool.
func (a *DynoAgent) UseTool(ctx context.Context, name string, args map[string]any) (any, error) {
	a.mu.RLock()
	tool, ok := a.tools[name]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool(ctx, args)
}

// Tools returns the registered tool names, sorted.
func (a *DynoAgent) Tools() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.tools))
	for n := range a.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AddCustomMetric registers a scoring function evaluated against results.
func (a *DynoAgent) AddCustomMetric(name string, fn MetricFunc) error {
	if fn == nil {
		return ErrNilMetric
	}
	a.mu.Lock()
	a.metrics[name] = fn
	a.mu.Unlock()
	return nil
}

// EvaluateCustomMetrics scores result with every registered metric.
func (a *DynoAgent) EvaluateCustomMetrics(result any) map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]float64, len(a.metrics))
	for name, fn := range a.metrics {
		out[name] = fn(result)
	}
	return out
}

// RecordFeedback stores an observation used by ErrorMargin and AverageInputQuality.
func (a *DynoAgent) RecordFeedback(f Feedback) {
	a.mu.Lock()
	a.feedback = append(a.feedback, f)
	a.mu.Unlock()
}

// ErrorMargin averages recorded error margins. ok is false without feedback.
func (a *DynoAgent) ErrorMargin() (margin float64, ok bool) {
	return a.average(func(f Feedback) float64 { return f.ErrorMargin })
}

// AverageInputQuality averages recorded input quality. ok is false without feedback.
func (a *DynoAgent) AverageInputQuality() (quality float64, ok bool) {
	return a.average(func(f Feedback) float64 { return f.InputQuality })
}

func (a *DynoAgent) average(field func(Feedback) float64) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.feedback) == 0 {
		return 0, false
	}
	var sum float64
	for _, f := range a.feedback {
		sum += field(f)
	}
	return sum / float64(len(a.feedback)), true
}

// Perform classifies task and returns a structured report. Prerequisite
// results in input count as references for the token estimate.
func (a *DynoAgent) Perform(ctx context.Context, task string, input map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if task == "" {
		task = a.Goal()
	}

	complexity := AnalyzeComplexity(task, a.role)
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := map[string]any{
		"agent":          a.name,
		"role":           a.role,
		"task":           task,
		"complexity":     string(complexity),
		"token_estimate": EstimateTokenNeeds(complexity, len(input) > 0),
		"inputs":         keys,
		"skills":         a.Skills(),
	}
	if scores := a.EvaluateCustomMetrics(result); len(scores) > 0 {
		result["metrics"] = scores
	}
	return result, nil
}
