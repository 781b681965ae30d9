// Package httpapi provides the REST HTTP adapter for the board server.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hylla/tavla/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	board common.BoardService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over board.
func NewHandler(board common.BoardService) *Handler {
	return &Handler{board: board}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.board == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "board service is not configured",
		})
		return
	}

	segments := splitPath(r.URL.Path)
	switch {
	case matches(segments, "board"):
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleBoard(w, r)
	case matches(segments, "suggestions"):
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleSuggestions(w, r)
	case matches(segments, "columns"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleAddColumn(w, r)
	case matches(segments, "columns", "*"):
		switch r.Method {
		case http.MethodPatch:
			h.handleRenameColumn(w, r, segments[1])
		case http.MethodDelete:
			h.handleDeleteColumn(w, r, segments[1])
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	case matches(segments, "columns", "*", "move"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMoveColumn(w, r, segments[1])
	case matches(segments, "columns", "*", "select"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleSelectColumn(w, r, segments[1])
	case matches(segments, "tasks"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleAddTask(w, r)
	case matches(segments, "tasks", "*"):
		switch r.Method {
		case http.MethodPatch:
			h.handleRenameTask(w, r, segments[1])
		case http.MethodDelete:
			h.handleDeleteTask(w, r, segments[1])
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	case matches(segments, "tasks", "*", "toggle"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleToggleTask(w, r, segments[1])
	case matches(segments, "tasks", "*", "select"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleToggleSelection(w, r, segments[1])
	case matches(segments, "tasks", "*", "move"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMoveTask(w, r, segments[1])
	case matches(segments, "search"):
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w, http.MethodPut)
			return
		}
		h.handleSetSearch(w, r)
	case matches(segments, "filter"):
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w, http.MethodPut)
			return
		}
		h.handleSetFilter(w, r)
	case matches(segments, "selection"):
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, http.MethodDelete)
			return
		}
		writeNoContentOrError(w, h.board.ClearSelection(r.Context()))
	case matches(segments, "selection", "complete"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		summary, err := h.board.CompleteSelection(r.Context())
		writeResultOrError(w, http.StatusOK, summary, err)
	case matches(segments, "selection", "delete"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		writeNoContentOrError(w, h.board.DeleteSelection(r.Context()))
	case matches(segments, "selection", "move"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMoveSelection(w, r)
	case matches(segments, "drag", "over"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleDragOver(w, r)
	case matches(segments, "drag", "commit"):
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleDragCommit(w, r)
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleBoard serves GET `/board`.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	state, err := h.board.Board(r.Context())
	writeResultOrError(w, http.StatusOK, state, err)
}

// handleSuggestions serves GET `/suggestions`.
func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.board.Suggestions(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// handleAddColumn serves POST `/columns`.
func (h *Handler) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	var req common.AddColumnRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	column, err := h.board.AddColumn(r.Context(), req)
	writeResultOrError(w, http.StatusCreated, column, err)
}

// handleRenameColumn serves PATCH `/columns/{id}`.
func (h *Handler) handleRenameColumn(w http.ResponseWriter, r *http.Request, columnID string) {
	var req common.RenameColumnRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.ColumnID = columnID
	column, err := h.board.RenameColumn(r.Context(), req)
	writeResultOrError(w, http.StatusOK, column, err)
}

// handleDeleteColumn serves DELETE `/columns/{id}`.
func (h *Handler) handleDeleteColumn(w http.ResponseWriter, r *http.Request, columnID string) {
	writeNoContentOrError(w, h.board.DeleteColumn(r.Context(), columnID))
}

// handleMoveColumn serves POST `/columns/{id}/move`.
func (h *Handler) handleMoveColumn(w http.ResponseWriter, r *http.Request, columnID string) {
	var req common.MoveColumnRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.ColumnID = columnID
	writeNoContentOrError(w, h.board.MoveColumn(r.Context(), req))
}

// handleSelectColumn serves POST `/columns/{id}/select`.
func (h *Handler) handleSelectColumn(w http.ResponseWriter, r *http.Request, columnID string) {
	summary, err := h.board.SelectColumn(r.Context(), columnID)
	writeResultOrError(w, http.StatusOK, summary, err)
}

// handleAddTask serves POST `/tasks`.
func (h *Handler) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req common.AddTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.board.AddTask(r.Context(), req)
	writeResultOrError(w, http.StatusCreated, task, err)
}

// handleRenameTask serves PATCH `/tasks/{id}`.
func (h *Handler) handleRenameTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req common.RenameTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.TaskID = taskID
	task, err := h.board.RenameTask(r.Context(), req)
	writeResultOrError(w, http.StatusOK, task, err)
}

// handleDeleteTask serves DELETE `/tasks/{id}`.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	writeNoContentOrError(w, h.board.DeleteTask(r.Context(), taskID))
}

// handleToggleTask serves POST `/tasks/{id}/toggle`.
func (h *Handler) handleToggleTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.board.ToggleTask(r.Context(), taskID)
	writeResultOrError(w, http.StatusOK, task, err)
}

// handleToggleSelection serves POST `/tasks/{id}/select`.
func (h *Handler) handleToggleSelection(w http.ResponseWriter, r *http.Request, taskID string) {
	summary, err := h.board.ToggleSelection(r.Context(), taskID)
	writeResultOrError(w, http.StatusOK, summary, err)
}

// handleMoveTask serves POST `/tasks/{id}/move`.
func (h *Handler) handleMoveTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req common.MoveTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.TaskID = taskID
	task, err := h.board.MoveTask(r.Context(), req)
	writeResultOrError(w, http.StatusOK, task, err)
}

// handleSetSearch serves PUT `/search`.
func (h *Handler) handleSetSearch(w http.ResponseWriter, r *http.Request) {
	var req common.SetSearchRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeNoContentOrError(w, h.board.SetSearch(r.Context(), req))
}

// handleSetFilter serves PUT `/filter`.
func (h *Handler) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req common.SetFilterRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeNoContentOrError(w, h.board.SetFilter(r.Context(), req))
}

// handleMoveSelection serves POST `/selection/move`.
func (h *Handler) handleMoveSelection(w http.ResponseWriter, r *http.Request) {
	var req common.MoveSelectionRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeNoContentOrError(w, h.board.MoveSelection(r.Context(), req))
}

// handleDragOver serves POST `/drag/over`.
func (h *Handler) handleDragOver(w http.ResponseWriter, r *http.Request) {
	var req common.DragOverRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeNoContentOrError(w, h.board.DragOver(r.Context(), req))
}

// handleDragCommit serves POST `/drag/commit`.
func (h *Handler) handleDragCommit(w http.ResponseWriter, r *http.Request) {
	var req common.DragCommitRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeNoContentOrError(w, h.board.DragCommit(r.Context(), req))
}

// splitPath canonicalizes one request path into route segments.
func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// matches reports whether segments fit pattern; "*" matches one non-blank segment.
func matches(segments []string, pattern ...string) bool {
	if len(segments) != len(pattern) {
		return false
	}
	for idx, want := range pattern {
		got := segments[idx]
		if want == "*" {
			if strings.TrimSpace(got) == "" {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

// writeResultOrError writes payload on success and the mapped error otherwise.
func writeResultOrError(w http.ResponseWriter, statusCode int, payload any, err error) {
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, statusCode, payload)
}

// writeNoContentOrError writes 204 on success.
func writeNoContentOrError(w http.ResponseWriter, err error) {
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrPersistFailed):
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "persist_failed",
			Message: err.Error(),
			Hint:    "The change is applied in memory; retry a later mutation or check the storage backend.",
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
