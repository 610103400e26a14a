// Package team coordinates named agents whose execution order is constrained
// by a dependency graph.
//
// A Team is built from a name, an ordered list of agents and an explicit
// dependency mapping. Every structural change is validated eagerly and is
// all-or-nothing: on error the previous graph and plan stay in place. The
// execution plan is recomputed right after each successful mutation.
package team

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tuannvm/dynoteam/internal/graph"
)

// Agent is the capability the scheduler needs from a worker.
type Agent interface {
	Name() string
	Perform(ctx context.Context, task string, input map[string]any) (any, error)
}

// Goaler is implemented by agents that declare a default objective. The goal
// is used as the task when the caller supplies none.
type Goaler interface {
	Goal() string
}

// Team is a named set of agents plus the dependency graph between them.
type Team struct {
	mu sync.RWMutex

	name   string
	agents map[string]Agent
	deps   map[string][]string
	graph  *graph.Graph
	plan   [][]string

	logger         *slog.Logger
	renderer       Renderer
	observers      []Observer
	maxConcurrency int
}

// Option configures a Team.
type Option func(*Team)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Team) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRenderer replaces the renderer used by Visualize.
func WithRenderer(r Renderer) Option {
	return func(t *Team) {
		if r != nil {
			t.renderer = r
		}
	}
}

// WithObserver registers an observer for execution events.
func WithObserver(o Observer) Option {
	return func(t *Team) {
		if o != nil {
			t.observers = append(t.observers, o)
		}
	}
}

// WithMaxConcurrency caps how many agents of one level run at once.
// Zero or less means no cap.
func WithMaxConcurrency(n int) Option {
	return func(t *Team) { t.maxConcurrency = n }
}

// New validates and builds a team. Dependencies map an agent name to the
// names of its prerequisites; every name must belong to agents.
func New(name string, agents []Agent, deps map[string][]string, opts ...Option) (*Team, error) {
	t := &Team{
		name:     name,
		agents:   make(map[string]Agent, len(agents)),
		deps:     make(map[string][]string),
		graph:    graph.New(),
		plan:     [][]string{},
		logger:   slog.New(slog.DiscardHandler),
		renderer: TextRenderer{},
	}
	for _, opt := range opts {
		opt(t)
	}

	if name == "" {
		return nil, validation("new team", "", ErrEmptyTeamName)
	}

	order := make([]string, 0, len(agents))
	for _, a := range agents {
		if !validHandle(a) {
			return nil, &UsageError{Op: "new team", Err: ErrInvalidAgent}
		}
		n := a.Name()
		if _, ok := t.agents[n]; ok {
			return nil, validation("new team", n, ErrDuplicateAgent)
		}
		t.agents[n] = a
		order = append(order, n)
	}

	explicit, err := normalizeDeps(t.agents, order, deps)
	if err != nil {
		return nil, err
	}

	g, plan, err := buildGraph(order, explicit)
	if err != nil {
		return nil, validation("new team", "", err)
	}
	t.deps, t.graph, t.plan = explicit, g, plan

	t.logger.Debug("team created", "team", name, "agents", len(order), "levels", len(plan))
	return t, nil
}

// AddAgent registers a after the agents named in dependencies. Every
// dependency must already be registered.
func (t *Team) AddAgent(a Agent, dependencies ...string) error {
	if !validHandle(a) {
		return &UsageError{Op: "add agent", Err: ErrInvalidAgent}
	}
	name := a.Name()

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.agents[name]; ok {
		return validation("add agent", name, ErrDuplicateAgent)
	}
	for _, d := range dependencies {
		if _, ok := t.agents[d]; !ok {
			return validation("add agent", name, fmt.Errorf("%w: dependency %s", ErrUnknownAgent, d))
		}
	}

	order := append(t.graph.Nodes(), name)
	deps := copyDeps(t.deps)
	if len(dependencies) > 0 {
		deps[name] = dedupe(dependencies)
	}

	g, plan, err := buildGraph(order, deps)
	if err != nil {
		return validation("add agent", name, err)
	}

	t.agents[name] = a
	t.deps, t.graph, t.plan = deps, g, plan
	t.logger.Debug("agent added", "team", t.name, "agent", name, "dependencies", dependencies, "levels", len(plan))
	return nil
}

// SetDependencies replaces the explicit dependency mapping and recomputes
// the plan. On error the previous mapping is kept.
func (t *Team) SetDependencies(deps map[string][]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	order := t.graph.Nodes()
	explicit, err := normalizeDeps(t.agents, order, deps)
	if err != nil {
		return err
	}
	g, plan, err := buildGraph(order, explicit)
	if err != nil {
		return validation("set dependencies", "", err)
	}
	t.deps, t.graph, t.plan = explicit, g, plan
	t.logger.Debug("dependencies replaced", "team", t.name, "levels", len(plan))
	return nil
}

// Name returns the team name.
func (t *Team) Name() string { return t.name }

// Len returns the number of registered agents.
func (t *Team) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.agents)
}

// Plan returns a copy of the execution plan: ordered levels of agent names.
func (t *Team) Plan() [][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copyPlan(t.plan)
}

// Graph returns a copy of the dependency graph.
func (t *Team) Graph() *graph.Graph {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graph.Clone()
}

// AgentNames returns agent names in registration order.
func (t *Team) AgentNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graph.Nodes()
}

// Agent looks up a registered agent.
func (t *Team) Agent(name string) (Agent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.agents[name]
	return a, ok
}

// AgentMap returns a copy of the name to agent mapping.
func (t *Team) AgentMap() map[string]Agent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Agent, len(t.agents))
	for k, v := range t.agents {
		out[k] = v
	}
	return out
}

// Dependencies returns the direct prerequisites of name.
func (t *Team) Dependencies(name string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graph.Predecessors(name)
}

// Visualize renders the dependency graph to w. An empty team renders nothing.
func (t *Team) Visualize(w io.Writer) error {
	t.mu.RLock()
	g, plan, r := t.graph.Clone(), copyPlan(t.plan), t.renderer
	t.mu.RUnlock()

	if g.NodeCount() == 0 {
		return nil
	}
	return r.Render(w, t.name, plan, g)
}

func validHandle(a Agent) bool {
	if a == nil {
		return false
	}
	defer func() { _ = recover() }()
	return a.Name() != ""
}

// normalizeDeps checks every key and prerequisite against the registered
// agents and returns a de-duplicated copy.
func normalizeDeps(agents map[string]Agent, order []string, deps map[string][]string) (map[string][]string, error) {
	out := make(map[string][]string, len(deps))
	for _, name := range sortedKeys(deps, order) {
		if _, ok := agents[name]; !ok {
			return nil, validation("dependencies", name, ErrUnknownAgent)
		}
		for _, p := range deps[name] {
			if _, ok := agents[p]; !ok {
				return nil, validation("dependencies", name, fmt.Errorf("%w: dependency %s", ErrUnknownAgent, p))
			}
		}
		if len(deps[name]) > 0 {
			out[name] = dedupe(deps[name])
		}
	}
	return out, nil
}

// buildGraph adds nodes in order, then prerequisite edges, then levels the result.
func buildGraph(order []string, deps map[string][]string) (*graph.Graph, [][]string, error) {
	g := graph.New()
	for _, n := range order {
		if _, err := g.AddNode(n); err != nil {
			return nil, nil, err
		}
	}
	for _, n := range order {
		for _, p := range deps[n] {
			if err := g.AddEdge(p, n); err != nil {
				return nil, nil, err
			}
		}
	}
	plan, err := g.Levels()
	if err != nil {
		return nil, nil, err
	}
	return g, plan, nil
}
