package app

import "context"

// DragHandler receives drag events from a view. Over fires while an item
// hovers another item; Commit fires when the item is dropped.
type DragHandler interface {
	Over(ctx context.Context, draggedID, overID string) error
	Commit(ctx context.Context, draggedID string, finalIndex int) error
}

// DragController translates drag events into store transitions.
type DragController struct {
	store *Store
}

// NewDragController constructs a drag controller over store.
func NewDragController(store *Store) *DragController {
	return &DragController{store: store}
}

// Over moves a dragged task next to the hovered task, or to the end of the
// hovered column. Columns only move on commit.
func (d *DragController) Over(ctx context.Context, draggedID, overID string) error {
	if overID == "" || overID == draggedID {
		return nil
	}
	board := d.store.Snapshot()
	task, ok := board.Task(draggedID)
	if !ok {
		return nil
	}

	if overTask, ok := board.Task(overID); ok {
		col, _ := board.Column(overTask.ColumnID)
		target := col.IndexOf(overID)
		if overTask.ColumnID == task.ColumnID && col.IndexOf(draggedID) == target {
			return nil
		}
		return d.store.MoveTask(ctx, draggedID, task.ColumnID, overTask.ColumnID, target)
	}

	if board.ColumnIndex(overID) >= 0 && overID != task.ColumnID {
		return d.store.MoveTask(ctx, draggedID, task.ColumnID, overID, -1)
	}
	return nil
}

// Commit finalizes a drop. A column is relocated to finalIndex; a task is
// reordered inside its current column.
func (d *DragController) Commit(ctx context.Context, draggedID string, finalIndex int) error {
	board := d.store.Snapshot()
	if task, ok := board.Task(draggedID); ok {
		return d.store.MoveTask(ctx, draggedID, task.ColumnID, task.ColumnID, finalIndex)
	}
	if idx := board.ColumnIndex(draggedID); idx >= 0 {
		return d.store.MoveColumn(ctx, idx, finalIndex)
	}
	return nil
}

var _ DragHandler = (*DragController)(nil)
