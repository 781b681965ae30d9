// Package common provides transport-agnostic board contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed or incomplete transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports an unknown task or column id at the transport boundary.
var ErrNotFound = errors.New("not found")

// ErrPersistFailed reports a mutation that was applied in memory but could not be saved.
var ErrPersistFailed = errors.New("persist failed")

// TaskState stores one visible task with render flags.
type TaskState struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Completed   bool      `json:"completed"`
	ColumnID    string    `json:"column_id"`
	CreatedAt   time.Time `json:"created_at"`
	Highlighted bool      `json:"highlighted"`
	Selected    bool      `json:"selected"`
}

// ColumnState stores one column with its visible tasks.
type ColumnState struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Total   int         `json:"total"`
	Visible int         `json:"visible"`
	Tasks   []TaskState `json:"tasks"`
}

// Suggestion stores one search suggestion.
type Suggestion struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ColumnID string `json:"column_id"`
}

// SelectionSummary stores bulk-selection state.
type SelectionSummary struct {
	Count        int  `json:"count"`
	AllCompleted bool `json:"all_completed"`
}

// BoardState is the read model returned by get_board style calls.
type BoardState struct {
	Columns     []ColumnState    `json:"columns"`
	SearchTerm  string           `json:"search_term"`
	Filter      string           `json:"filter"`
	Selection   SelectionSummary `json:"selection"`
	Suggestions []Suggestion     `json:"suggestions"`
}

// Task stores one task as returned by mutations.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	ColumnID  string    `json:"column_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Column stores one column as returned by mutations.
type Column struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TaskIDs []string `json:"task_ids"`
}

// AddTaskRequest stores add-task input.
type AddTaskRequest struct {
	ColumnID string `json:"column_id"`
	Title    string `json:"title"`
}

// RenameTaskRequest stores task title updates.
type RenameTaskRequest struct {
	TaskID string `json:"-"`
	Title  string `json:"title"`
}

// MoveTaskRequest stores task move input. A nil Index appends.
type MoveTaskRequest struct {
	TaskID     string `json:"-"`
	ToColumnID string `json:"to_column_id"`
	Index      *int   `json:"index,omitempty"`
}

// AddColumnRequest stores add-column input.
type AddColumnRequest struct {
	Title string `json:"title"`
}

// RenameColumnRequest stores column title updates.
type RenameColumnRequest struct {
	ColumnID string `json:"-"`
	Title    string `json:"title"`
}

// MoveColumnRequest stores column reorder input.
type MoveColumnRequest struct {
	ColumnID string `json:"-"`
	Index    *int   `json:"index"`
}

// SetSearchRequest stores a search-term update.
type SetSearchRequest struct {
	Term string `json:"term"`
}

// SetFilterRequest stores a completion filter update.
type SetFilterRequest struct {
	Filter string `json:"filter"`
}

// MoveSelectionRequest stores the destination for a bulk move.
type MoveSelectionRequest struct {
	ColumnID string `json:"column_id"`
}

// DragOverRequest stores one hover event.
type DragOverRequest struct {
	DraggedID string `json:"dragged_id"`
	OverID    string `json:"over_id"`
}

// DragCommitRequest stores one drop event.
type DragCommitRequest struct {
	DraggedID string `json:"dragged_id"`
	Index     *int   `json:"index"`
}

// BoardReader exposes read-only board projections.
type BoardReader interface {
	Board(context.Context) (BoardState, error)
	Suggestions(context.Context) ([]Suggestion, error)
}

// TaskService exposes task mutations.
type TaskService interface {
	AddTask(context.Context, AddTaskRequest) (Task, error)
	RenameTask(context.Context, RenameTaskRequest) (Task, error)
	DeleteTask(context.Context, string) error
	ToggleTask(context.Context, string) (Task, error)
	MoveTask(context.Context, MoveTaskRequest) (Task, error)
}

// ColumnService exposes column mutations.
type ColumnService interface {
	AddColumn(context.Context, AddColumnRequest) (Column, error)
	RenameColumn(context.Context, RenameColumnRequest) (Column, error)
	DeleteColumn(context.Context, string) error
	MoveColumn(context.Context, MoveColumnRequest) error
}

// ViewService exposes search, filter, and selection updates.
type ViewService interface {
	SetSearch(context.Context, SetSearchRequest) error
	SetFilter(context.Context, SetFilterRequest) error
	ToggleSelection(context.Context, string) (SelectionSummary, error)
	SelectColumn(context.Context, string) (SelectionSummary, error)
	ClearSelection(context.Context) error
	CompleteSelection(context.Context) (SelectionSummary, error)
	DeleteSelection(context.Context) error
	MoveSelection(context.Context, MoveSelectionRequest) error
}

// DragService exposes drag-and-drop events.
type DragService interface {
	DragOver(context.Context, DragOverRequest) error
	DragCommit(context.Context, DragCommitRequest) error
}

// BoardService combines every board operation exposed by the server surfaces.
type BoardService interface {
	BoardReader
	TaskService
	ColumnService
	ViewService
	DragService
}
