package team

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type call struct {
	task  string
	input map[string]any
}

// fakeAgent records every Perform call. By default it returns "<name>:<task>".
type fakeAgent struct {
	name    string
	goal    string
	perform func(ctx context.Context, task string, input map[string]any) (any, error)

	mu    sync.Mutex
	calls []call
}

func newFake(name string) *fakeAgent {
	return &fakeAgent{name: name, goal: "goal of " + name}
}

func (f *fakeAgent) Name() string { return f.name }

func (f *fakeAgent) Goal() string { return f.goal }

func (f *fakeAgent) Perform(ctx context.Context, task string, input map[string]any) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{task: task, input: input})
	f.mu.Unlock()
	if f.perform != nil {
		return f.perform(ctx, task, input)
	}
	return fmt.Sprintf("%s:%s", f.name, task), nil
}

func (f *fakeAgent) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// plainAgent has no goal.
type plainAgent struct{ name string }

func (p plainAgent) Name() string { return p.name }

func (p plainAgent) Perform(_ context.Context, task string, _ map[string]any) (any, error) {
	return "task=" + task, nil
}

// gauge tracks how many agents are inside Perform at once.
type gauge struct {
	cur, max atomic.Int32
}

func (g *gauge) enter() {
	n := g.cur.Add(1)
	for {
		m := g.max.Load()
		if n <= m || g.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (g *gauge) leave() { g.cur.Add(-1) }

func (g *gauge) wrap(d time.Duration) func(context.Context, string, map[string]any) (any, error) {
	return func(ctx context.Context, task string, _ map[string]any) (any, error) {
		g.enter()
		defer g.leave()
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return task, nil
	}
}

// recorder is an Observer that keeps an ordered event log.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) LevelStarted(level int, agents []string) {
	r.add(fmt.Sprintf("level %d start %v", level, agents))
}

func (r *recorder) AgentStarted(level int, agent string) {
	r.add(fmt.Sprintf("agent %s start", agent))
}

func (r *recorder) AgentFinished(level int, agent string, _ time.Duration, err error) {
	r.add(fmt.Sprintf("agent %s done ok=%t", agent, err == nil))
}

func (r *recorder) LevelFinished(level int, err error) {
	r.add(fmt.Sprintf("level %d done ok=%t", level, err == nil))
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func sortedNames(res Results) []string {
	out := make([]string, 0, len(res))
	for k := range res {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
