package team

import (
	"errors"
	"fmt"

	"github.com/tuannvm/dynoteam/internal/graph"
)

var (
	// ErrValidation matches every structural error raised while building or
	// mutating a team.
	ErrValidation = errors.New("team validation failed")

	ErrEmptyTeamName  = errors.New("team name must not be empty")
	ErrDuplicateAgent = errors.New("agent already registered")
	ErrUnknownAgent   = errors.New("agent not registered")
	ErrCycle          = graph.ErrCycle

	// ErrInvalidAgent signals caller misuse: a nil agent or one without a name.
	ErrInvalidAgent = errors.New("invalid agent handle")
)

// ValidationError reports bad domain data. The team is left unchanged.
type ValidationError struct {
	Op    string
	Agent string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Agent, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrValidation) match any validation failure.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UsageError reports an API misuse, distinct from a validation failure.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *UsageError) Unwrap() error { return e.Err }

// ExecutionError wraps the failure of a single agent during a run.
type ExecutionError struct {
	Agent string
	Level int
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("agent %s (level %d) failed: %v", e.Agent, e.Level, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// FailedAgents lists every agent named by an ExecutionError inside err,
// including errors joined from a failed parallel level.
func FailedAgents(err error) []string {
	var names []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ee, ok := e.(*ExecutionError); ok {
			names = append(names, ee.Agent)
			return
		}
		switch x := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return names
}

func validation(op, agent string, err error) error {
	return &ValidationError{Op: op, Agent: agent, Err: err}
}
