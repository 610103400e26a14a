package agent

import (
	"context"
	"fmt"
)

// LLMConfig holds the model parameters a ToolAgent reports with each result.
type LLMConfig struct {
	Provider    string
	Temperature float64
	MaxTokens   int
}

// DefaultLLMConfig returns the parameters used when a team file sets none.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{Provider: "openai", Temperature: 0.7, MaxTokens: 1000}
}

// Validate checks the parameter ranges.
func (c LLMConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}
	return nil
}

// ToolAgent is a DynoAgent bound to an LLM provider configuration. Its
// result wraps the DynoAgent report with the task, context and model metrics.
type ToolAgent struct {
	*DynoAgent
	llm LLMConfig
}

// NewToolAgent builds a ToolAgent. An empty provider falls back to the default.
func NewToolAgent(name, role string, skills []string, goal string, llm LLMConfig, opts ...DynoOption) (*ToolAgent, error) {
	if llm.Provider == "" {
		llm.Provider = DefaultLLMConfig().Provider
	}
	if err := llm.Validate(); err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}
	base, err := NewDynoAgent(name, role, skills, goal, opts...)
	if err != nil {
		return nil, err
	}
	return &ToolAgent{DynoAgent: base, llm: llm}, nil
}

// LLM returns the model parameters.
func (a *ToolAgent) LLM() LLMConfig { return a.llm }

func (a *ToolAgent) Perform(ctx context.Context, task string, input map[string]any) (any, error) {
	report, err := a.DynoAgent.Perform(ctx, task, input)
	if err != nil {
		return nil, err
	}
	if task == "" {
		task = a.Goal()
	}
	return map[string]any{
		"task":    task,
		"context": input,
		"result":  report,
		"metrics": map[string]any{
			"temperature":  a.llm.Temperature,
			"max_tokens":   a.llm.MaxTokens,
			"llm_provider": a.llm.Provider,
		},
	}, nil
}
