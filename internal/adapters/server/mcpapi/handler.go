// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/tavla/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// toolHandler matches the mcp-go tool callback signature.
type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, board common.BoardService) (*Handler, error) {
	if board == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, board)
	registerTaskTools(mcpSrv, board)
	registerColumnTools(mcpSrv, board)
	registerSelectionTools(mcpSrv, board)
	registerDragTools(mcpSrv, board)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "tavla"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers read and view-state tools.
func registerBoardTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.get_board",
			mcp.WithDescription("Return every column with its visible tasks, the search term, the filter, and the selection summary."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			state, err := board.Board(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_board", state)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.suggestions",
			mcp.WithDescription("List task titles matching the current search term."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			suggestions, err := board.Suggestions(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("suggestions", map[string]any{"suggestions": suggestions})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.set_search",
			mcp.WithDescription("Replace the search term. An empty term clears the search."),
			mcp.WithString("term", mcp.Description("Case-insensitive substring")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := board.SetSearch(ctx, common.SetSearchRequest{Term: req.GetString("term", "")}); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.set_filter",
			mcp.WithDescription("Restrict visible tasks by completion state."),
			mcp.WithString("filter", mcp.Required(), mcp.Enum("all", "completed", "incomplete")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			filter, err := req.RequireString("filter")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := board.SetFilter(ctx, common.SetFilterRequest{Filter: filter}); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		},
	)
}

// registerTaskTools registers task mutation tools.
func registerTaskTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.add_task",
			mcp.WithDescription("Append a task to a column."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Non-blank task title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := board.AddTask(ctx, common.AddTaskRequest{ColumnID: columnID, Title: title})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.rename_task",
			mcp.WithDescription("Replace a task title."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Non-blank task title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := board.RenameTask(ctx, common.RenameTaskRequest{TaskID: taskID, Title: title})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("rename_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.delete_task",
			mcp.WithDescription("Delete a task."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		taskIDTool(func(ctx context.Context, taskID string) (*mcp.CallToolResult, error) {
			if err := board.DeleteTask(ctx, taskID); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		}),
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.toggle_task",
			mcp.WithDescription("Flip the completion state of a task."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		taskIDTool(func(ctx context.Context, taskID string) (*mcp.CallToolResult, error) {
			task, err := board.ToggleTask(ctx, taskID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("toggle_task", task)
		}),
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.move_task",
			mcp.WithDescription("Move a task to a column. Without an index the task is appended."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("to_column_id", mcp.Required(), mcp.Description("Destination column identifier")),
			mcp.WithNumber("index", mcp.Description("Zero-based destination position")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			dest, err := req.RequireString("to_column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in := common.MoveTaskRequest{TaskID: taskID, ToColumnID: dest}
			if _, ok := req.GetArguments()["index"]; ok {
				index := req.GetInt("index", 0)
				in.Index = &index
			}
			task, err := board.MoveTask(ctx, in)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.toggle_selection",
			mcp.WithDescription("Add a task to the selection or remove it."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		taskIDTool(func(ctx context.Context, taskID string) (*mcp.CallToolResult, error) {
			summary, err := board.ToggleSelection(ctx, taskID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("toggle_selection", summary)
		}),
	)
}

// registerColumnTools registers column mutation tools.
func registerColumnTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.add_column",
			mcp.WithDescription("Append an empty column."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Non-blank column title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			column, err := board.AddColumn(ctx, common.AddColumnRequest{Title: title})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_column", column)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.rename_column",
			mcp.WithDescription("Replace a column title."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Non-blank column title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			column, err := board.RenameColumn(ctx, common.RenameColumnRequest{ColumnID: columnID, Title: title})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("rename_column", column)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.delete_column",
			mcp.WithDescription("Delete a column together with its tasks."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
		),
		columnIDTool(func(ctx context.Context, columnID string) (*mcp.CallToolResult, error) {
			if err := board.DeleteColumn(ctx, columnID); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		}),
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.move_column",
			mcp.WithDescription("Move a column to a zero-based position."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based destination position")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			index, err := req.RequireInt("index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := board.MoveColumn(ctx, common.MoveColumnRequest{ColumnID: columnID, Index: &index}); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.select_column",
			mcp.WithDescription("Select every task in a column, or unselect them when all are already selected."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
		),
		columnIDTool(func(ctx context.Context, columnID string) (*mcp.CallToolResult, error) {
			summary, err := board.SelectColumn(ctx, columnID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("select_column", summary)
		}),
	)
}

// registerSelectionTools registers bulk-action tools.
func registerSelectionTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.clear_selection",
			mcp.WithDescription("Empty the selection."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := board.ClearSelection(ctx); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.complete_selection",
			mcp.WithDescription("Complete every selected task, or uncomplete them when all are already completed."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			summary, err := board.CompleteSelection(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("complete_selection", summary)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.delete_selection",
			mcp.WithDescription("Delete every selected task."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := board.DeleteSelection(ctx); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.move_selection",
			mcp.WithDescription("Append every selected task to a column in selection order."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Destination column identifier")),
		),
		columnIDTool(func(ctx context.Context, columnID string) (*mcp.CallToolResult, error) {
			if err := board.MoveSelection(ctx, common.MoveSelectionRequest{ColumnID: columnID}); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		}),
	)
}

// registerDragTools registers drag-and-drop event tools.
func registerDragTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.drag_over",
			mcp.WithDescription("Report a dragged task hovering another task or a column."),
			mcp.WithString("dragged_id", mcp.Required(), mcp.Description("Dragged task identifier")),
			mcp.WithString("over_id", mcp.Required(), mcp.Description("Hovered task or column identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			draggedID, err := req.RequireString("dragged_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			overID, err := req.RequireString("over_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := board.DragOver(ctx, common.DragOverRequest{DraggedID: draggedID, OverID: overID}); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.drag_commit",
			mcp.WithDescription("Drop a dragged task or column at its final position."),
			mcp.WithString("dragged_id", mcp.Required(), mcp.Description("Dragged task or column identifier")),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based final position")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			draggedID, err := req.RequireString("dragged_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			index, err := req.RequireInt("index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := board.DragCommit(ctx, common.DragCommitRequest{DraggedID: draggedID, Index: &index}); err != nil {
				return toolResultFromError(err), nil
			}
			return okResult()
		},
	)
}

// taskIDTool wraps a callback that only needs the required task_id argument.
func taskIDTool(fn func(context.Context, string) (*mcp.CallToolResult, error)) toolHandler {
	return requiredStringTool("task_id", fn)
}

// columnIDTool wraps a callback that only needs the required column_id argument.
func columnIDTool(fn func(context.Context, string) (*mcp.CallToolResult, error)) toolHandler {
	return requiredStringTool("column_id", fn)
}

func requiredStringTool(name string, fn func(context.Context, string) (*mcp.CallToolResult, error)) toolHandler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		value, err := req.RequireString(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return fn(ctx, value)
	}
}

// jsonResult encodes one structured tool result.
func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// okResult reports a mutation without a payload.
func okResult() (*mcp.CallToolResult, error) {
	return jsonResult("ok", map[string]any{"ok": true})
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrPersistFailed):
		return mcp.NewToolResultError("persist_failed: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
