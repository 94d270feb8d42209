package mcptools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/liftcoach/internal/exercisedb"
	"github.com/HendryAvila/liftcoach/internal/protocol"
	"github.com/HendryAvila/liftcoach/internal/store"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

type nopSearcher struct{}

func (nopSearcher) Search(context.Context, exercisedb.Query) ([]exercisedb.Result, error) {
	return nil, nil
}

func newTools(t *testing.T) map[string]*ActionTool {
	t.Helper()
	h := protocol.NewHandler(protocol.Options{
		Store:    store.NewMemory(),
		Searcher: nopSearcher{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	out := make(map[string]*ActionTool)
	for _, tool := range NewTools(h) {
		out[tool.Definition().Name] = tool
	}
	return out
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func call(t *testing.T, tool *ActionTool, args map[string]interface{}) (map[string]any, bool) {
	t.Helper()
	res, err := tool.Handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(resultText(res)), &out); err != nil {
		t.Fatalf("result is not JSON: %q", resultText(res))
	}
	return out, res.IsError
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestNewTools_OnePerAction(t *testing.T) {
	tools := newTools(t)
	if len(tools) != len(protocol.Actions) {
		t.Fatalf("got %d tools, want %d", len(tools), len(protocol.Actions))
	}
	for _, action := range protocol.Actions {
		if _, ok := tools[action]; !ok {
			t.Errorf("no tool for action %q", action)
		}
	}
}

func TestLogSetTool_Definition(t *testing.T) {
	def := newTools(t)[protocol.ActionLogSet].Definition()

	for _, p := range []string{"userId", "exerciseId", "weight", "reps", "difficulty"} {
		if _, ok := def.InputSchema.Properties[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
	required := map[string]bool{}
	for _, r := range def.InputSchema.Required {
		required[r] = true
	}
	if !required["userId"] || !required["exerciseId"] || required["difficulty"] {
		t.Errorf("required = %v", def.InputSchema.Required)
	}
}

// ─── Handling ────────────────────────────────────────────────────────────────

func TestPingTool(t *testing.T) {
	out, isErr := call(t, newTools(t)[protocol.ActionPing], nil)
	if isErr || out["echo"] != "pong" {
		t.Errorf("ping = %v (isError=%v)", out, isErr)
	}
}

func TestLogSetTool_StringIDsReachBuiltins(t *testing.T) {
	tools := newTools(t)

	out, isErr := call(t, tools[protocol.ActionLogSet], map[string]interface{}{
		"userId": "1", "exerciseId": "1", "weight": 60.0, "reps": 5.0,
	})
	if isErr || out["isPr"] != true {
		t.Fatalf("log_set = %v (isError=%v)", out, isErr)
	}

	out, _ = call(t, tools[protocol.ActionHistory], map[string]interface{}{"userId": "1"})
	items := out["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if name := items[0].(map[string]any)["exerciseName"]; name != "深蹲" {
		t.Errorf("exerciseName = %v, want the built-in squat", name)
	}
}

func TestLoginTool_ErrorFlagged(t *testing.T) {
	out, isErr := call(t, newTools(t)[protocol.ActionLogin], map[string]interface{}{"username": ""})
	if !isErr {
		t.Error("error envelope should be a tool error")
	}
	if out["status"] != protocol.StatusError || out["action"] != protocol.ActionLogin {
		t.Errorf("login = %v", out)
	}
}

func TestNormalizeIDs(t *testing.T) {
	in := map[string]any{"userId": "12", "id": "0025", "exerciseId": "squat", "name": "7"}
	out := normalizeIDs(in)

	if out["userId"] != 12 {
		t.Errorf("userId = %#v, want 12", out["userId"])
	}
	if out["id"] != "0025" {
		t.Errorf("id = %#v, want zero-padded string kept", out["id"])
	}
	if out["exerciseId"] != "squat" || out["name"] != "7" {
		t.Errorf("non-id or non-numeric fields changed: %v", out)
	}
	if in["userId"] != "12" {
		t.Error("input map was modified")
	}
}
