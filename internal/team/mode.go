package team

import (
	"context"
	"fmt"
)

// Mode selects an execution strategy.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
	ModeOptimal    Mode = "optimal"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeSequential, ModeParallel, ModeOptimal}

// ParseMode converts s into a Mode. The empty string selects ModeOptimal.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeOptimal, nil
	case ModeSequential, ModeParallel, ModeOptimal:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown execution mode %q (use: sequential, parallel, optimal)", s)
	}
}

// Execute runs the team with the strategy named by mode.
func (t *Team) Execute(ctx context.Context, mode Mode, input map[string]any, opts ...RunOption) (Results, error) {
	switch mode {
	case ModeSequential:
		return t.ExecuteSequential(ctx, input, opts...)
	case ModeParallel:
		return t.ExecuteParallel(ctx, input, opts...)
	case ModeOptimal, "":
		return t.ExecuteOptimal(ctx, input, opts...)
	default:
		return nil, &UsageError{Op: "execute", Err: fmt.Errorf("unknown execution mode %q", mode)}
	}
}
