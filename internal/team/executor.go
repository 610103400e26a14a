package team

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/tuannvm/dynoteam/internal/graph"
)

// Results maps agent names to the value their Perform call returned.
type Results map[string]any

// RunOption configures a single execution.
type RunOption func(*runConfig)

type runConfig struct {
	tasks map[string]string
}

// WithTask supplies the task for one agent instead of its goal.
func WithTask(agent, task string) RunOption {
	return func(c *runConfig) { c.tasks[agent] = task }
}

// WithTasks supplies tasks for several agents at once.
func WithTasks(tasks map[string]string) RunOption {
	return func(c *runConfig) {
		for k, v := range tasks {
			c.tasks[k] = v
		}
	}
}

// run is an immutable snapshot of the team taken when execution starts.
type run struct {
	team   *Team
	plan   [][]string
	graph  *graph.Graph
	agents map[string]Agent
	tasks  map[string]string
	input  map[string]any
}

func (t *Team) snapshot(input map[string]any, opts []RunOption) *run {
	cfg := runConfig{tasks: make(map[string]string)}
	for _, opt := range opts {
		opt(&cfg)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	agents := make(map[string]Agent, len(t.agents))
	for k, v := range t.agents {
		agents[k] = v
	}
	return &run{
		team:   t,
		plan:   copyPlan(t.plan),
		graph:  t.graph.Clone(),
		agents: agents,
		tasks:  cfg.tasks,
		input:  input,
	}
}

// ExecuteSequential runs agents one at a time in plan order, breaking ties by
// registration order. It stops at the first failure and returns the results
// gathered so far together with the error.
func (t *Team) ExecuteSequential(ctx context.Context, input map[string]any, opts ...RunOption) (Results, error) {
	r := t.snapshot(input, opts)
	results := make(Results, r.graph.NodeCount())

	for levelIdx, level := range r.plan {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r.levelStarted(levelIdx, level)
		for _, name := range level {
			if err := ctx.Err(); err != nil {
				r.levelFinished(levelIdx, err)
				return results, err
			}

			out, err := r.invoke(ctx, levelIdx, name, r.contextFor(name, results))
			if err != nil {
				t.logger.Error("agent failed, stopping sequential execution", "team", t.name, "agent", name, "level", levelIdx, "error", err)
				r.levelFinished(levelIdx, err)
				return results, err
			}
			results[name] = out
		}
		r.levelFinished(levelIdx, nil)
	}
	return results, nil
}

// ExecuteParallel runs every agent of a level concurrently and waits for the
// whole level to settle before starting the next one. When any agent fails,
// the level's other agents still finish, their results are kept, and the
// joined errors are returned without running further levels.
func (t *Team) ExecuteParallel(ctx context.Context, input map[string]any, opts ...RunOption) (Results, error) {
	return t.snapshot(input, opts).execute(ctx, false)
}

// ExecuteOptimal behaves like ExecuteParallel but invokes a level holding a
// single agent directly on the calling goroutine.
func (t *Team) ExecuteOptimal(ctx context.Context, input map[string]any, opts ...RunOption) (Results, error) {
	return t.snapshot(input, opts).execute(ctx, true)
}

func (r *run) execute(ctx context.Context, inlineSingletons bool) (Results, error) {
	t := r.team
	results := make(Results, r.graph.NodeCount())

	for levelIdx, level := range r.plan {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r.levelStarted(levelIdx, level)

		var err error
		if inlineSingletons && len(level) == 1 {
			name := level[0]
			var out any
			out, err = r.invoke(ctx, levelIdx, name, r.contextFor(name, results))
			if err == nil {
				results[name] = out
			}
		} else {
			err = r.fanOut(ctx, levelIdx, level, results)
		}

		r.levelFinished(levelIdx, err)
		if err != nil {
			t.logger.Error("level had failures, stopping execution", "team", t.name, "level", levelIdx, "error", err)
			return results, err
		}
	}
	return results, nil
}

type outcome struct {
	value any
	err   error
}

// fanOut dispatches one goroutine per agent and joins them all. Inputs are
// built before dispatch and outputs land in a slot per agent, so results is
// only written after the barrier.
func (r *run) fanOut(ctx context.Context, levelIdx int, level []string, results Results) error {
	inputs := make([]map[string]any, len(level))
	for i, name := range level {
		inputs[i] = r.contextFor(name, results)
	}
	outs := make([]outcome, len(level))

	p := pool.New()
	if n := r.team.maxConcurrency; n > 0 {
		p = p.WithMaxGoroutines(n)
	}
	ep := p.WithErrors()
	for i, name := range level {
		ep.Go(func() error {
			v, err := r.invoke(ctx, levelIdx, name, inputs[i])
			outs[i] = outcome{value: v, err: err}
			return err
		})
	}
	err := ep.Wait()

	for i, name := range level {
		if outs[i].err == nil {
			results[name] = outs[i].value
		}
	}
	return err
}

// contextFor merges the caller input with the results of every completed
// transitive prerequisite of name, keyed by prerequisite name.
func (r *run) contextFor(name string, results Results) map[string]any {
	merged := make(map[string]any, len(r.input)+len(results))
	for k, v := range r.input {
		merged[k] = v
	}
	for _, p := range r.graph.Ancestors(name) {
		if v, ok := results[p]; ok {
			merged[p] = v
		}
	}
	return merged
}

func (r *run) taskFor(name string, a Agent) string {
	if task, ok := r.tasks[name]; ok && task != "" {
		return task
	}
	if g, ok := a.(Goaler); ok {
		return g.Goal()
	}
	return ""
}

func (r *run) invoke(ctx context.Context, levelIdx int, name string, input map[string]any) (out any, err error) {
	t := r.team
	a := r.agents[name]
	task := r.taskFor(name, a)

	for _, o := range t.observers {
		o.AgentStarted(levelIdx, name)
	}
	t.logger.Debug("agent started", "team", t.name, "agent", name, "level", levelIdx, "task", task)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("panic: %v", rec)
		}
		if err != nil {
			err = &ExecutionError{Agent: name, Level: levelIdx, Err: err}
		}
		elapsed := time.Since(start)
		for _, o := range t.observers {
			o.AgentFinished(levelIdx, name, elapsed, err)
		}
		t.logger.Info("agent finished", "team", t.name, "agent", name, "level", levelIdx,
			"duration", elapsed.Round(time.Millisecond), "ok", err == nil)
	}()

	return a.Perform(ctx, task, input)
}

func (r *run) levelStarted(levelIdx int, level []string) {
	r.team.logger.Debug("level started", "team", r.team.name, "level", levelIdx, "agents", strings.Join(level, ", "))
	for _, o := range r.team.observers {
		o.LevelStarted(levelIdx, level)
	}
}

func (r *run) levelFinished(levelIdx int, err error) {
	for _, o := range r.team.observers {
		o.LevelFinished(levelIdx, err)
	}
}
