package agent

import "errors"

var (
	ErrEmptyName  = errors.New("agent name must not be empty")
	ErrEmptyRole  = errors.New("agent role must not be empty")
	ErrEmptyGoal  = errors.New("agent goal must not be empty")
	ErrEmptySkill = errors.New("skill must not be empty")

	ErrEmptyToolName = errors.New("tool name must not be empty")
	ErrNilTool       = errors.New("tool must not be nil")
	ErrToolNotFound  = errors.New("tool not found")
	ErrNilMetric     = errors.New("metric must be a function")

	ErrInvalidTemperature = errors.New("temperature must be between 0 and 1")
	ErrInvalidMaxTokens   = errors.New("max tokens must be positive")

	ErrNoCommand = errors.New("remote agent needs a command or a base URL")
)
