package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/adapters/server/common"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// newTestServer starts an MCP test server over a seeded store.
func newTestServer(t *testing.T) (*httptest.Server, *app.Store) {
	t.Helper()
	next := 0
	now := time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)
	store := app.NewStore(domain.Board{}, func() string {
		next++
		return fmt.Sprintf("t%d", next)
	}, func() time.Time {
		now = now.Add(time.Second)
		return now
	}, app.StoreConfig{})
	handler, err := NewHandler(Config{}, common.NewBoardAdapter(store, nil))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, store
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "tavla-test",
				"version": "1.0.0",
			},
		},
	}
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// callTool initializes the session and calls one tool.
func callTool(t *testing.T, server *httptest.Server, name string, arguments map[string]any) map[string]any {
	t.Helper()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, name, arguments))
	if resp.Result == nil {
		t.Fatalf("tools/call %s returned no result", name)
	}
	return resp.Result
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()
	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// isToolError reports whether the tool result carries isError=true.
func isToolError(result map[string]any) bool {
	flag, _ := result["isError"].(bool)
	return flag
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	server, _ := newTestServer(t)

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersBoardTools verifies tool discovery lists every board tool.
func TestHandlerRegistersBoardTools(t *testing.T) {
	server, _ := newTestServer(t)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{
		"tavla.get_board",
		"tavla.suggestions",
		"tavla.add_task",
		"tavla.rename_task",
		"tavla.delete_task",
		"tavla.toggle_task",
		"tavla.move_task",
		"tavla.add_column",
		"tavla.rename_column",
		"tavla.delete_column",
		"tavla.move_column",
		"tavla.set_search",
		"tavla.set_filter",
		"tavla.toggle_selection",
		"tavla.select_column",
		"tavla.clear_selection",
		"tavla.complete_selection",
		"tavla.delete_selection",
		"tavla.move_selection",
		"tavla.drag_over",
		"tavla.drag_commit",
	} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %q: %#v", required, toolNames)
		}
	}
}

// TestHandlerAddTaskAndGetBoard verifies a mutation is visible through get_board.
func TestHandlerAddTaskAndGetBoard(t *testing.T) {
	server, store := newTestServer(t)

	result := callTool(t, server, "tavla.add_task", map[string]any{"column_id": "2", "title": "wire mcp"})
	if isToolError(result) {
		t.Fatalf("add_task error: %s", toolResultText(t, result))
	}
	var task common.Task
	if err := json.Unmarshal([]byte(toolResultText(t, result)), &task); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if task.ID != "t1" || task.ColumnID != "2" {
		t.Fatalf("unexpected task %#v", task)
	}
	if store.Snapshot().TaskCount() != 1 {
		t.Fatal("expected task in store")
	}

	result = callTool(t, server, "tavla.get_board", map[string]any{})
	var state common.BoardState
	if err := json.Unmarshal([]byte(toolResultText(t, result)), &state); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(state.Columns) != 3 || state.Columns[1].Total != 1 {
		t.Fatalf("unexpected board %#v", state)
	}
}

// TestHandlerMoveTaskOptionalIndex verifies append and positional moves.
func TestHandlerMoveTaskOptionalIndex(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b"} {
		if _, err := store.AddTask(ctx, "1", title); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	if _, err := store.AddTask(ctx, "2", "x"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	result := callTool(t, server, "tavla.move_task", map[string]any{"task_id": "t1", "to_column_id": "2"})
	if isToolError(result) {
		t.Fatalf("move_task error: %s", toolResultText(t, result))
	}
	col, _ := store.Snapshot().Column("2")
	if !slices.Equal(col.TaskIDs, []string{"t3", "t1"}) {
		t.Fatalf("column 2 = %v, want [t3 t1]", col.TaskIDs)
	}

	result = callTool(t, server, "tavla.move_task", map[string]any{"task_id": "t2", "to_column_id": "2", "index": 0})
	if isToolError(result) {
		t.Fatalf("move_task error: %s", toolResultText(t, result))
	}
	col, _ = store.Snapshot().Column("2")
	if !slices.Equal(col.TaskIDs, []string{"t2", "t3", "t1"}) {
		t.Fatalf("column 2 = %v, want [t2 t3 t1]", col.TaskIDs)
	}
}

// TestHandlerSelectionTools verifies the bulk-action tools.
func TestHandlerSelectionTools(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b"} {
		if _, err := store.AddTask(ctx, "1", title); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}

	result := callTool(t, server, "tavla.select_column", map[string]any{"column_id": "1"})
	var summary common.SelectionSummary
	if err := json.Unmarshal([]byte(toolResultText(t, result)), &summary); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if summary.Count != 2 {
		t.Fatalf("selection count = %d, want 2", summary.Count)
	}

	result = callTool(t, server, "tavla.move_selection", map[string]any{"column_id": "3"})
	if isToolError(result) {
		t.Fatalf("move_selection error: %s", toolResultText(t, result))
	}
	col, _ := store.Snapshot().Column("3")
	if !slices.Equal(col.TaskIDs, []string{"t1", "t2"}) {
		t.Fatalf("column 3 = %v, want [t1 t2]", col.TaskIDs)
	}
}

// TestHandlerToolErrors verifies error prefixes for invalid input and unknown ids.
func TestHandlerToolErrors(t *testing.T) {
	cases := []struct {
		name   string
		tool   string
		args   map[string]any
		prefix string
	}{
		{name: "blank title", tool: "tavla.add_task", args: map[string]any{"column_id": "1", "title": " "}, prefix: "invalid_request:"},
		{name: "unknown task", tool: "tavla.toggle_task", args: map[string]any{"task_id": "missing"}, prefix: "not_found:"},
		{name: "bad filter", tool: "tavla.set_filter", args: map[string]any{"filter": "archived"}, prefix: "invalid_request:"},
		{name: "unknown column", tool: "tavla.delete_column", args: map[string]any{"column_id": "missing"}, prefix: "not_found:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := newTestServer(t)
			result := callTool(t, server, tc.tool, tc.args)
			if !isToolError(result) {
				t.Fatalf("expected tool error, got %#v", result)
			}
			if text := toolResultText(t, result); !strings.HasPrefix(text, tc.prefix) {
				t.Fatalf("text = %q, want prefix %q", text, tc.prefix)
			}
		})
	}
}

// TestHandlerPersistFailureIsToolError verifies persist failures surface as tool errors.
func TestHandlerPersistFailureIsToolError(t *testing.T) {
	server, store := newTestServer(t)
	store.Subscribe(func(context.Context, app.Change, domain.Board) error {
		return fmt.Errorf("%w: offline", app.ErrPersist)
	})

	result := callTool(t, server, "tavla.add_column", map[string]any{"title": "Later"})
	if !isToolError(result) {
		t.Fatalf("expected tool error, got %#v", result)
	}
	if text := toolResultText(t, result); !strings.HasPrefix(text, "persist_failed:") {
		t.Fatalf("text = %q, want persist_failed prefix", text)
	}
	if len(store.Snapshot().Columns) != 4 {
		t.Fatal("expected column kept after persist failure")
	}
}

// TestNewHandlerRequiresService verifies constructor validation.
func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("expected error for nil board service")
	}
}

// TestNormalizeConfig verifies defaults and endpoint canonicalization.
func TestNormalizeConfig(t *testing.T) {
	got := normalizeConfig(Config{EndpointPath: "tools/"})
	if got.ServerName != "tavla" || got.ServerVersion != "dev" || got.EndpointPath != "/tools" {
		t.Fatalf("unexpected config %#v", got)
	}
}
