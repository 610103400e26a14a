package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools registers all dynoteam tools with the MCP server.
func registerTools(server *mcp.Server, h *Handlers) {
	registerRunTeamTool(server, h)
	registerPlanTeamTool(server, h)
	registerListAgentsTool(server, h)
	registerValidateTeamTool(server, h)
}

func registerRunTeamTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "run_team",
			Description: "Run a dynoteam team file. Agents run level by level in dependency order; each agent receives the results of the agents it depends on. Modes: sequential (stops at the first failure), parallel (each level fans out), optimal (like parallel, single-agent levels run inline).",
			Annotations: &mcp.ToolAnnotations{
				Title:           "Run Team",
				ReadOnlyHint:    false,
				DestructiveHint: boolPtr(false),
				IdempotentHint:  false,
				OpenWorldHint:   boolPtr(true),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input RunTeamInput) (*mcp.CallToolResult, RunTeamOutput, error) {
			output, err := h.RunTeam(ctx, input)
			return nil, output, err
		},
	)
}

func registerPlanTeamTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "plan_team",
			Description: "Compute the execution levels of a dynoteam team file without running it. Also returns the dependency graph in Graphviz DOT format.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "Plan Team",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input PlanTeamInput) (*mcp.CallToolResult, PlanTeamOutput, error) {
			output, err := h.PlanTeam(ctx, input)
			return nil, output, err
		},
	)
}

func registerListAgentsTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_agents",
			Description: "List the agents of a dynoteam team file with their kind, role, goal, dependencies and level.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "List Agents",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input ListAgentsInput) (*mcp.CallToolResult, ListAgentsOutput, error) {
			output, err := h.ListAgents(ctx, input)
			return nil, output, err
		},
	)
}

func registerValidateTeamTool(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "validate_team",
			Description: "Validate dynoteam team files against the schema and check dependencies for unknown agents and cycles. A directory validates every team file under it.",
			Annotations: &mcp.ToolAnnotations{
				Title:          "Validate Team",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		func(ctx context.Context, req *mcp.CallToolRequest, input ValidateTeamInput) (*mcp.CallToolResult, ValidateTeamOutput, error) {
			output, err := h.ValidateTeam(ctx, input)
			return nil, output, err
		},
	)
}
