package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tuannvm/dynoteam/internal/agent"
	"github.com/tuannvm/dynoteam/internal/config"
	"github.com/tuannvm/dynoteam/internal/input"
	"github.com/tuannvm/dynoteam/internal/prompt"
	"github.com/tuannvm/dynoteam/internal/team"
)

// LoadTeam resolves path to a team file and loads it. An empty path searches
// the standard locations. A directory uses its primary team file.
func LoadTeam(path string) (*config.Config, error) {
	if path == "" {
		cfg, err := config.Load("")
		if err != nil {
			return nil, fmt.Errorf("no team file found (looked in %v): %w", config.Locations(), err)
		}
		return cfg, nil
	}

	inp, err := input.Discover(path)
	if err != nil {
		return nil, fmt.Errorf("input error: %w", err)
	}
	return config.Load(inp.PrimaryFile)
}

// ValidateFile loads one team file without environment overrides, checks it
// against the schema and builds the team so dependency errors surface.
func ValidateFile(path string) (*config.Config, *team.Team, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	t, err := BuildTeam(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, t, nil
}

// TeamFiles lists the team files under path. An empty path uses the first
// standard location that exists.
func TeamFiles(path string) ([]string, error) {
	if path == "" {
		for _, loc := range config.Locations() {
			if _, err := os.Stat(loc); err == nil {
				return []string{loc}, nil
			}
		}
		return nil, fmt.Errorf("no team file found (looked in %v)", config.Locations())
	}
	inp, err := input.Discover(path)
	if err != nil {
		return nil, fmt.Errorf("input error: %w", err)
	}
	return inp.Files, nil
}

// BuildAgent creates the agent described by ac.
func BuildAgent(cfg *config.Config, ac config.AgentConfig) (team.Agent, error) {
	switch agent.Kind(ac.Kind) {
	case "", agent.KindDyno:
		return agent.NewDynoAgent(ac.Name, ac.Role, ac.Skills, ac.Goal)
	case agent.KindTool:
		llm := agent.DefaultLLMConfig()
		if ac.Provider != "" {
			llm.Provider = ac.Provider
		}
		if ac.Temperature != nil {
			llm.Temperature = *ac.Temperature
		}
		if ac.MaxTokens > 0 {
			llm.MaxTokens = ac.MaxTokens
		}
		return agent.NewToolAgent(ac.Name, ac.Role, ac.Skills, ac.Goal, llm)
	case agent.KindRemote:
		return agent.NewRemoteAgent(ac.Name, ac.Role, ac.Goal, agent.RemoteConfig{
			BaseURL: ac.URL,
			Command: ac.Command,
			Args:    ac.Args,
			Port:    ac.Port,
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		})
	default:
		return nil, fmt.Errorf("agent %s: unknown kind %q (use: %v)", ac.Name, ac.Kind, agent.Kinds)
	}
}

// BuildTeam turns a team file into a team. The file's agents are registered
// in order and their depends_on lists form the dependency mapping.
// Remote agents that spawn their own process and set no port get one from
// the allocator, so agents sharing a level never bind the same address.
func BuildTeam(cfg *config.Config, opts ...team.Option) (*team.Team, error) {
	ports := newPortAllocator(cfg.Agents)
	agents := make([]team.Agent, 0, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		if spawnsProcess(ac) && ac.Port == 0 {
			ac.Port = ports.allocate()
		}
		a, err := BuildAgent(cfg, ac)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}

	opts = append([]team.Option{team.WithMaxConcurrency(cfg.MaxConcurrency)}, opts...)
	return team.New(cfg.Name, agents, cfg.Dependencies(), opts...)
}

// basePort is the first port handed out to spawned remote agents.
const basePort = 3284

// portAllocator hands out sequential ports, skipping ones the team file
// already assigns.
type portAllocator struct {
	next  int
	taken map[int]bool
}

func newPortAllocator(agents []config.AgentConfig) *portAllocator {
	p := &portAllocator{next: basePort, taken: make(map[int]bool)}
	for _, ac := range agents {
		if spawnsProcess(ac) && ac.Port > 0 {
			p.taken[ac.Port] = true
		}
	}
	return p
}

// allocate returns the next free port
func (p *portAllocator) allocate() int {
	for p.taken[p.next] {
		p.next++
	}
	port := p.next
	p.taken[port] = true
	p.next++
	return port
}

// spawnsProcess reports whether ac starts a local agentapi server.
func spawnsProcess(ac config.AgentConfig) bool {
	return agent.Kind(ac.Kind) == agent.KindRemote && ac.URL == ""
}

// Tasks renders every agent's task template. Agents without one are left out
// so they fall back to their goal. overrides win over templates.
func Tasks(cfg *config.Config, overrides map[string]string) (map[string]string, error) {
	loader := prompt.NewLoader(resolvePath(cfg, cfg.TasksDir))
	tasks := make(map[string]string, len(cfg.Agents))

	for _, ac := range cfg.Agents {
		task, err := loader.LoadAndRender(ac.Name, ac.Task, resolvePath(cfg, ac.TaskFile), prompt.Variables{
			Team:      cfg.Name,
			AgentName: ac.Name,
			Role:      ac.Role,
			Goal:      ac.Goal,
			Skills:    ac.Skills,
			Context:   cfg.Context,
		})
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", ac.Name, err)
		}
		if task != "" {
			tasks[ac.Name] = task
		}
	}

	for name, task := range overrides {
		tasks[name] = task
	}
	return tasks, nil
}

// resolvePath makes p relative to the team file's directory.
func resolvePath(cfg *config.Config, p string) string {
	if p == "" || filepath.IsAbs(p) || cfg.Source == "" {
		return p
	}
	return filepath.Join(filepath.Dir(cfg.Source), p)
}
