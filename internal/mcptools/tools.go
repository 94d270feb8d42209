// Package mcptools exposes the liftcoach actions as MCP tools.
//
// Each tool follows the same pattern as the rest of the server:
// - Definition() returns the mcp.Tool schema
// - Handle() turns the call into a protocol request and runs it
//
// Tool calls go through the same protocol.Handler as socket clients, so
// both surfaces share state and produce identical JSON.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/liftcoach/internal/protocol"
)

// Dispatcher runs one decoded request.
type Dispatcher interface {
	Handle(ctx context.Context, req *protocol.Request) protocol.Response
}

// idFields are arguments holding string-or-number identifiers.
var idFields = []string{"userId", "exerciseId", "id"}

// ActionTool handles one protocol action as an MCP tool.
type ActionTool struct {
	action   string
	def      mcp.Tool
	dispatch Dispatcher
}

// Definition returns the MCP tool definition.
func (t *ActionTool) Definition() mcp.Tool { return t.def }

// Handle runs the action. The response JSON is the tool's text content;
// error envelopes are flagged as tool errors.
func (t *ActionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := normalizeIDs(req.GetArguments())
	preq, err := protocol.NewRequest(t.action, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	resp := t.dispatch.Handle(ctx, preq)
	out, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding response: %v", err)), nil
	}
	if !resp.Head().OK() {
		return mcp.NewToolResultError(string(out)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// normalizeIDs turns canonical integer strings ("1", "-4") into numbers so
// MCP clients, which send ids as strings, address the same built-in
// exercises and users as socket clients sending numbers. Zero-padded ids
// such as ExerciseDB's "0025" stay strings.
func normalizeIDs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	for _, key := range idFields {
		s, ok := out[key].(string)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(s); err == nil && strconv.Itoa(n) == s {
			out[key] = n
		}
	}
	return out
}

func userIDArg() mcp.ToolOption {
	return mcp.WithString("userId",
		mcp.Required(),
		mcp.Description("Client-chosen user id. Integer strings are treated as numbers (\"1\" is user 1)."),
	)
}

// NewTools returns one tool per protocol action, in protocol.Actions order.
func NewTools(d Dispatcher) []*ActionTool {
	tool := func(action string, opts ...mcp.ToolOption) *ActionTool {
		return &ActionTool{action: action, def: mcp.NewTool(action, opts...), dispatch: d}
	}

	return []*ActionTool{
		tool(protocol.ActionPing,
			mcp.WithDescription("Health check. Always answers with echo \"pong\"."),
		),
		tool(protocol.ActionLogin,
			mcp.WithDescription("Accepts any non-empty username. The password is not checked and the returned userId is always 1."),
			mcp.WithString("username", mcp.Required(), mcp.Description("Display name")),
			mcp.WithString("password", mcp.Description("Ignored")),
		),
		tool(protocol.ActionCheckin,
			mcp.WithDescription(
				"Record today's readiness. The four ratings are summed into a fatigue score (lower is better): "+
					"8 or less is good, 9-13 moderate, 14 or more poor. Replaces any earlier check-in.",
			),
			userIDArg(),
			mcp.WithNumber("sleep", mcp.Description("Sleep rating (default 3)")),
			mcp.WithNumber("fatigue", mcp.Description("Fatigue rating (default 3)")),
			mcp.WithNumber("soreness", mcp.Description("Soreness rating (default 3)")),
			mcp.WithNumber("stress", mcp.Description("Stress rating (default 3)")),
		),
		tool(protocol.ActionTodayPlan,
			mcp.WithDescription("Suggested working weight for every built-in and custom exercise, based on the latest set and check-in."),
			userIDArg(),
		),
		tool(protocol.ActionLogSet,
			mcp.WithDescription("Log a completed set and report whether it is a personal record for that exercise."),
			userIDArg(),
			mcp.WithString("exerciseId", mcp.Required(), mcp.Description("Exercise id; built-ins are \"1\" (squat), \"2\" (bench press), \"3\" (deadlift)")),
			mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted")),
			mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions completed")),
			mcp.WithNumber("difficulty", mcp.Description("Perceived difficulty 1 (easy) to 5 (max effort), default 3")),
		),
		tool(protocol.ActionHistory,
			mcp.WithDescription("All logged sets, newest first."),
			userIDArg(),
		),
		tool(protocol.ActionSummary,
			mcp.WithDescription("Total sets and volume, volume over the last 7 days, and per-exercise best weight and volume."),
			userIDArg(),
		),
		tool(protocol.ActionSearch,
			mcp.WithDescription("Search the ExerciseDB catalog by exercise name or, if no name is given, by body part."),
			mcp.WithString("query", mcp.Description("Exercise name to search for")),
			mcp.WithString("bodyPart", mcp.Description("Body part, e.g. back, chest, upper legs")),
		),
		tool(protocol.ActionAddFromCatalog,
			mcp.WithDescription("Add an exercise from search results to the user's plan. New exercises start at 20 with an 8-12 rep range."),
			userIDArg(),
			mcp.WithString("id", mcp.Required(), mcp.Description("ExerciseDB id, e.g. \"0025\"")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
			mcp.WithString("bodyPart", mcp.Description("Body part")),
			mcp.WithString("target", mcp.Description("Target muscle")),
			mcp.WithString("equipment", mcp.Description("Equipment")),
		),
	}
}
