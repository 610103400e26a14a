package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tuannvm/dynoteam/internal/api"
)

const (
	defaultRemotePort = 3284
	healthTimeout     = 120 * time.Second // terminal agents take a while to boot
)

// RemoteConfig describes how to reach a terminal agent.
type RemoteConfig struct {
	// BaseURL targets an agentapi server that is already running. When
	// empty, Command is spawned through the agentapi library on Port.
	BaseURL   string
	Command   string
	Args      []string
	AgentType string
	Port      int

	// Timeout bounds one task; zero waits as long as ctx allows.
	Timeout      time.Duration
	PollInterval time.Duration
	Verbose      bool
}

// RemoteAgent hands its task to an external terminal agent over agentapi
// and returns the agent's last reply. Calls are serialized.
type RemoteAgent struct {
	name string
	role string
	goal string
	cfg  RemoteConfig

	mu sync.Mutex
}

// NewRemoteAgent validates cfg and builds the agent.
func NewRemoteAgent(name, role, goal string, cfg RemoteConfig) (*RemoteAgent, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if cfg.BaseURL == "" && cfg.Command == "" {
		return nil, fmt.Errorf("agent %s: %w", name, ErrNoCommand)
	}
	if cfg.Port == 0 {
		cfg.Port = defaultRemotePort
	}
	return &RemoteAgent{name: name, role: role, goal: goal, cfg: cfg}, nil
}

func (r *RemoteAgent) Name() string { return r.name }
func (r *RemoteAgent) Role() string { return r.role }
func (r *RemoteAgent) Goal() string { return r.goal }

// Config returns the connection settings.
func (r *RemoteAgent) Config() RemoteConfig { return r.cfg }

func (r *RemoteAgent) Perform(ctx context.Context, task string, input map[string]any) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task == "" {
		task = r.goal
	}
	msg, err := BuildMessage(task, input)
	if err != nil {
		return nil, err
	}

	var client *api.Client
	if r.cfg.BaseURL != "" {
		client = api.NewClientURL(r.cfg.BaseURL)
	} else {
		lib, err := NewLibClient(ctx, LibClientConfig{
			Port:      r.cfg.Port,
			Verbose:   r.cfg.Verbose,
			AgentType: r.cfg.AgentType,
			AgentCmd:  r.cfg.Command,
			AgentArgs: r.cfg.Args,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create lib client: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = lib.Close(closeCtx)
		}()
		if err := lib.Start(); err != nil {
			return nil, fmt.Errorf("failed to start lib server: %w", err)
		}
		client = api.NewClient(lib.Port())
	}
	client.WithPollInterval(r.cfg.PollInterval)

	if err := client.WaitForHealthy(ctx, healthTimeout); err != nil {
		return nil, fmt.Errorf("agent %s never became healthy: %w", r.name, err)
	}
	if err := client.SendMessage(ctx, msg, "user"); err != nil {
		return nil, err
	}
	if err := client.WaitForCompletion(ctx, r.cfg.Timeout); err != nil {
		return nil, err
	}
	return client.LastAgentMessage(ctx)
}

// BuildMessage renders the task followed by the context as indented JSON.
func BuildMessage(task string, input map[string]any) (string, error) {
	if len(input) == 0 {
		return task, nil
	}
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode context: %w", err)
	}
	return task + "\n\nContext:\n" + string(data), nil
}
