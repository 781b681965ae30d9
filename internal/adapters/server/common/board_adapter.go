package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// BoardAdapter adapts one app store to the transport-facing board contracts.
type BoardAdapter struct {
	store *app.Store
	drag  app.DragHandler
}

// NewBoardAdapter constructs a transport adapter backed by store. A nil drag
// handler falls back to a controller over the same store.
func NewBoardAdapter(store *app.Store, drag app.DragHandler) *BoardAdapter {
	if drag == nil && store != nil {
		drag = app.NewDragController(store)
	}
	return &BoardAdapter{store: store, drag: drag}
}

// Board returns the current projected board.
func (a *BoardAdapter) Board(_ context.Context) (BoardState, error) {
	if err := a.ready(); err != nil {
		return BoardState{}, err
	}
	return mapBoardView(a.store.View()), nil
}

// Suggestions returns the capped suggestions for the current search term.
func (a *BoardAdapter) Suggestions(_ context.Context) ([]Suggestion, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return mapSuggestions(a.store.Suggestions()), nil
}

// AddTask validates and appends one task.
func (a *BoardAdapter) AddTask(ctx context.Context, in AddTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	columnID := strings.TrimSpace(in.ColumnID)
	if columnID == "" {
		return Task{}, fmt.Errorf("column_id is required: %w", ErrInvalidRequest)
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return Task{}, err
	}
	if _, err := a.column(columnID); err != nil {
		return Task{}, err
	}
	task, err := a.store.AddTask(ctx, columnID, title)
	if err != nil {
		return mapTask(task), mapAppError("add task", err)
	}
	return mapTask(task), nil
}

// RenameTask validates and updates one task title.
func (a *BoardAdapter) RenameTask(ctx context.Context, in RenameTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return Task{}, err
	}
	task, err := a.task(in.TaskID)
	if err != nil {
		return Task{}, err
	}
	err = a.store.UpdateTaskTitle(ctx, task.ID, title)
	return a.taskAfter(task.ID, mapAppError("rename task", err))
}

// DeleteTask removes one task.
func (a *BoardAdapter) DeleteTask(ctx context.Context, taskID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	task, err := a.task(taskID)
	if err != nil {
		return err
	}
	return mapAppError("delete task", a.store.DeleteTask(ctx, task.ID))
}

// ToggleTask flips completion for one task.
func (a *BoardAdapter) ToggleTask(ctx context.Context, taskID string) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	task, err := a.task(taskID)
	if err != nil {
		return Task{}, err
	}
	err = a.store.ToggleTaskComplete(ctx, task.ID)
	return a.taskAfter(task.ID, mapAppError("toggle task", err))
}

// MoveTask moves one task from its current column to ToColumnID.
func (a *BoardAdapter) MoveTask(ctx context.Context, in MoveTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	task, err := a.task(in.TaskID)
	if err != nil {
		return Task{}, err
	}
	dest := strings.TrimSpace(in.ToColumnID)
	if dest == "" {
		return Task{}, fmt.Errorf("to_column_id is required: %w", ErrInvalidRequest)
	}
	if _, err := a.column(dest); err != nil {
		return Task{}, err
	}
	index := -1
	if in.Index != nil {
		if *in.Index < 0 {
			return Task{}, fmt.Errorf("index must be >= 0: %w", ErrInvalidRequest)
		}
		index = *in.Index
	}
	err = a.store.MoveTask(ctx, task.ID, task.ColumnID, dest, index)
	return a.taskAfter(task.ID, mapAppError("move task", err))
}

// AddColumn validates and appends one column.
func (a *BoardAdapter) AddColumn(ctx context.Context, in AddColumnRequest) (Column, error) {
	if err := a.ready(); err != nil {
		return Column{}, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return Column{}, err
	}
	column, err := a.store.AddColumn(ctx, title)
	if err != nil {
		return mapColumn(column), mapAppError("add column", err)
	}
	return mapColumn(column), nil
}

// RenameColumn validates and updates one column title.
func (a *BoardAdapter) RenameColumn(ctx context.Context, in RenameColumnRequest) (Column, error) {
	if err := a.ready(); err != nil {
		return Column{}, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return Column{}, err
	}
	column, err := a.column(in.ColumnID)
	if err != nil {
		return Column{}, err
	}
	err = mapAppError("rename column", a.store.UpdateColumnTitle(ctx, column.ID, title))
	column, _ = a.store.Snapshot().Column(column.ID)
	return mapColumn(column), err
}

// DeleteColumn removes one column and its tasks.
func (a *BoardAdapter) DeleteColumn(ctx context.Context, columnID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	column, err := a.column(columnID)
	if err != nil {
		return err
	}
	return mapAppError("delete column", a.store.DeleteColumn(ctx, column.ID))
}

// MoveColumn relocates one column to Index.
func (a *BoardAdapter) MoveColumn(ctx context.Context, in MoveColumnRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	if in.Index == nil {
		return fmt.Errorf("index is required: %w", ErrInvalidRequest)
	}
	board := a.store.Snapshot()
	source := board.ColumnIndex(strings.TrimSpace(in.ColumnID))
	if source < 0 {
		return fmt.Errorf("column %q: %w", in.ColumnID, ErrNotFound)
	}
	index := *in.Index
	if index < 0 || index >= len(board.Columns) {
		return fmt.Errorf("index %d out of range [0,%d): %w", index, len(board.Columns), ErrInvalidRequest)
	}
	return mapAppError("move column", a.store.MoveColumn(ctx, source, index))
}

// SetSearch replaces the search term.
func (a *BoardAdapter) SetSearch(ctx context.Context, in SetSearchRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("set search", a.store.SetSearchTerm(ctx, in.Term))
}

// SetFilter parses and applies a completion filter.
func (a *BoardAdapter) SetFilter(ctx context.Context, in SetFilterRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Filter) == "" {
		return fmt.Errorf("filter is required: %w", ErrInvalidRequest)
	}
	filter, err := domain.ParseFilter(in.Filter)
	if err != nil {
		return mapAppError("set filter", err)
	}
	return mapAppError("set filter", a.store.SetFilter(ctx, filter))
}

// ToggleSelection flips selection for one task.
func (a *BoardAdapter) ToggleSelection(ctx context.Context, taskID string) (SelectionSummary, error) {
	if err := a.ready(); err != nil {
		return SelectionSummary{}, err
	}
	task, err := a.task(taskID)
	if err != nil {
		return SelectionSummary{}, err
	}
	err = a.store.ToggleTaskSelection(ctx, task.ID)
	return mapSelection(a.store.SelectionSummary()), mapAppError("toggle selection", err)
}

// SelectColumn selects or unselects every task in one column.
func (a *BoardAdapter) SelectColumn(ctx context.Context, columnID string) (SelectionSummary, error) {
	if err := a.ready(); err != nil {
		return SelectionSummary{}, err
	}
	column, err := a.column(columnID)
	if err != nil {
		return SelectionSummary{}, err
	}
	err = a.store.SelectAllTasksInColumn(ctx, column.ID)
	return mapSelection(a.store.SelectionSummary()), mapAppError("select column", err)
}

// ClearSelection empties the selection.
func (a *BoardAdapter) ClearSelection(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("clear selection", a.store.ClearSelectedTasks(ctx))
}

// CompleteSelection toggles completion across the selection.
func (a *BoardAdapter) CompleteSelection(ctx context.Context) (SelectionSummary, error) {
	if err := a.ready(); err != nil {
		return SelectionSummary{}, err
	}
	err := a.store.ToggleSelectedComplete(ctx)
	return mapSelection(a.store.SelectionSummary()), mapAppError("complete selection", err)
}

// DeleteSelection deletes every selected task.
func (a *BoardAdapter) DeleteSelection(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("delete selection", a.store.DeleteSelectedTasks(ctx))
}

// MoveSelection moves every selected task into one column.
func (a *BoardAdapter) MoveSelection(ctx context.Context, in MoveSelectionRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	column, err := a.column(in.ColumnID)
	if err != nil {
		return err
	}
	return mapAppError("move selection", a.store.MoveSelectedTasks(ctx, column.ID))
}

// DragOver forwards one hover event.
func (a *BoardAdapter) DragOver(ctx context.Context, in DragOverRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	draggedID, err := a.draggable(in.DraggedID)
	if err != nil {
		return err
	}
	return mapAppError("drag over", a.drag.Over(ctx, draggedID, strings.TrimSpace(in.OverID)))
}

// DragCommit forwards one drop event.
func (a *BoardAdapter) DragCommit(ctx context.Context, in DragCommitRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	draggedID, err := a.draggable(in.DraggedID)
	if err != nil {
		return err
	}
	if in.Index == nil {
		return fmt.Errorf("index is required: %w", ErrInvalidRequest)
	}
	if *in.Index < 0 {
		return fmt.Errorf("index must be >= 0: %w", ErrInvalidRequest)
	}
	return mapAppError("drag commit", a.drag.Commit(ctx, draggedID, *in.Index))
}

// ready reports whether the adapter has a backing store.
func (a *BoardAdapter) ready() error {
	if a == nil || a.store == nil || a.drag == nil {
		return errors.New("board service is not configured")
	}
	return nil
}

// task resolves one task id or returns ErrNotFound.
func (a *BoardAdapter) task(taskID string) (domain.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return domain.Task{}, fmt.Errorf("task id is required: %w", ErrInvalidRequest)
	}
	task, ok := a.store.Snapshot().Task(taskID)
	if !ok {
		return domain.Task{}, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	return task, nil
}

// column resolves one column id or returns ErrNotFound.
func (a *BoardAdapter) column(columnID string) (domain.Column, error) {
	columnID = strings.TrimSpace(columnID)
	if columnID == "" {
		return domain.Column{}, fmt.Errorf("column id is required: %w", ErrInvalidRequest)
	}
	column, ok := a.store.Snapshot().Column(columnID)
	if !ok {
		return domain.Column{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	return column, nil
}

// draggable accepts a task id or a column id and returns it trimmed.
func (a *BoardAdapter) draggable(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("dragged_id is required: %w", ErrInvalidRequest)
	}
	board := a.store.Snapshot()
	if _, ok := board.Task(id); ok {
		return id, nil
	}
	if board.ColumnIndex(id) >= 0 {
		return id, nil
	}
	return "", fmt.Errorf("item %q: %w", id, ErrNotFound)
}

// taskAfter returns the current task state together with err.
func (a *BoardAdapter) taskAfter(taskID string, err error) (Task, error) {
	task, _ := a.store.Snapshot().Task(taskID)
	return mapTask(task), err
}

// normalizeTitle trims one title and rejects blank input.
func normalizeTitle(title string) (string, error) {
	normalized, err := domain.NormalizeTitle(title)
	if err != nil {
		return "", fmt.Errorf("title is required: %w", errors.Join(ErrInvalidRequest, err))
	}
	return normalized, nil
}

// mapAppError maps app and domain errors into transport-facing sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrPersist):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrPersistFailed, err))
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, app.ErrInvalidSnapshot):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

// mapBoardView converts one app projection into its transport shape.
func mapBoardView(view app.BoardView) BoardState {
	out := BoardState{
		Columns:     make([]ColumnState, 0, len(view.Columns)),
		SearchTerm:  view.SearchTerm,
		Filter:      string(view.Filter),
		Selection:   mapSelection(view.Selection),
		Suggestions: mapSuggestions(view.Suggestions),
	}
	for _, col := range view.Columns {
		tasks := make([]TaskState, 0, len(col.Visible))
		for _, tv := range col.Visible {
			tasks = append(tasks, TaskState{
				ID:          tv.ID,
				Title:       tv.Title,
				Completed:   tv.Completed,
				ColumnID:    tv.ColumnID,
				CreatedAt:   tv.CreatedAt,
				Highlighted: tv.Highlighted,
				Selected:    tv.Selected,
			})
		}
		out.Columns = append(out.Columns, ColumnState{
			ID:      col.ID,
			Title:   col.Title,
			Total:   col.Total,
			Visible: len(tasks),
			Tasks:   tasks,
		})
	}
	return out
}

// mapSuggestions converts suggestions into transport rows.
func mapSuggestions(in []app.Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		out = append(out, Suggestion{ID: s.ID, Title: s.Title, ColumnID: s.ColumnID})
	}
	return out
}

// mapSelection converts one selection summary.
func mapSelection(in app.SelectionSummary) SelectionSummary {
	return SelectionSummary{Count: in.Count, AllCompleted: in.AllCompleted}
}

// mapTask converts one domain task.
func mapTask(in domain.Task) Task {
	return Task{
		ID:        in.ID,
		Title:     in.Title,
		Completed: in.Completed,
		ColumnID:  in.ColumnID,
		CreatedAt: in.CreatedAt,
	}
}

// mapColumn converts one domain column.
func mapColumn(in domain.Column) Column {
	taskIDs := append([]string{}, in.TaskIDs...)
	return Column{ID: in.ID, Title: in.Title, TaskIDs: taskIDs}
}

var _ BoardService = (*BoardAdapter)(nil)
