package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// DefaultColumnTitles are the seed columns of a fresh board.
var DefaultColumnTitles = []string{"To Do", "In Progress", "Done"}

// Board is the root aggregate: ordered columns, the task map, and the
// search, filter and selection settings shared by every view.
type Board struct {
	Columns    []Column
	Tasks      map[string]Task
	SearchTerm string
	Filter     Filter
	Selected   []string
}

// NewBoard returns an empty board with the given columns.
func NewBoard(columns ...Column) Board {
	b := Board{
		Columns:  make([]Column, 0, len(columns)),
		Tasks:    map[string]Task{},
		Filter:   FilterAll,
		Selected: []string{},
	}
	for _, c := range columns {
		if c.TaskIDs == nil {
			c.TaskIDs = []string{}
		}
		b.Columns = append(b.Columns, c)
	}
	return b
}

// SeedBoard returns a board with one empty column per title. Column ids are
// "1", "2", ... so a seeded board is addressable before the first edit.
func SeedBoard(titles []string) Board {
	if len(titles) == 0 {
		titles = DefaultColumnTitles
	}
	columns := make([]Column, 0, len(titles))
	for idx, title := range titles {
		columns = append(columns, Column{ID: strconv.Itoa(idx + 1), Title: title, TaskIDs: []string{}})
	}
	return NewBoard(columns...)
}

// Clone deep-copies the board.
func (b Board) Clone() Board {
	out := Board{
		Columns:    make([]Column, len(b.Columns)),
		Tasks:      make(map[string]Task, len(b.Tasks)),
		SearchTerm: b.SearchTerm,
		Filter:     b.Filter,
		Selected:   slices.Clone(b.Selected),
	}
	for idx, c := range b.Columns {
		c.TaskIDs = slices.Clone(c.TaskIDs)
		if c.TaskIDs == nil {
			c.TaskIDs = []string{}
		}
		out.Columns[idx] = c
	}
	maps.Copy(out.Tasks, b.Tasks)
	if out.Selected == nil {
		out.Selected = []string{}
	}
	return out
}

// ColumnIndex returns the position of columnID or -1.
func (b Board) ColumnIndex(columnID string) int {
	return slices.IndexFunc(b.Columns, func(c Column) bool { return c.ID == columnID })
}

// Column returns the column with columnID.
func (b Board) Column(columnID string) (Column, bool) {
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return Column{}, false
	}
	return b.Columns[idx], true
}

// Task returns the task with taskID.
func (b Board) Task(taskID string) (Task, bool) {
	t, ok := b.Tasks[taskID]
	return t, ok
}

// IsSelected reports whether taskID is in the selection.
func (b Board) IsSelected(taskID string) bool {
	return slices.Contains(b.Selected, taskID)
}

// TaskCount returns the total number of ids across all column sequences.
func (b Board) TaskCount() int {
	total := 0
	for _, c := range b.Columns {
		total += len(c.TaskIDs)
	}
	return total
}

// AllSelectedCompleted reports whether every selected task is completed.
// An empty selection reports false.
func (b Board) AllSelectedCompleted() bool {
	if len(b.Selected) == 0 {
		return false
	}
	for _, id := range b.Selected {
		if t, ok := b.Tasks[id]; ok && !t.Completed {
			return false
		}
	}
	return true
}

// AddTask appends task to its column. Reports false when the column is
// unknown or the id is already taken.
func (b *Board) AddTask(task Task) bool {
	idx := b.ColumnIndex(task.ColumnID)
	if idx < 0 {
		return false
	}
	if _, exists := b.Tasks[task.ID]; exists {
		return false
	}
	b.Tasks[task.ID] = task
	b.Columns[idx].insertTask(task.ID, -1)
	return true
}

// DeleteTask removes the task from the map, every sequence and the selection.
func (b *Board) DeleteTask(taskID string) bool {
	if _, ok := b.Tasks[taskID]; !ok {
		return false
	}
	delete(b.Tasks, taskID)
	for idx := range b.Columns {
		b.Columns[idx].removeTask(taskID)
	}
	b.unselect(taskID)
	return true
}

// ToggleTaskComplete flips the completion flag of taskID.
func (b *Board) ToggleTaskComplete(taskID string) bool {
	t, ok := b.Tasks[taskID]
	if !ok {
		return false
	}
	t.ToggleComplete()
	b.Tasks[taskID] = t
	return true
}

// UpdateTaskTitle replaces the title verbatim.
func (b *Board) UpdateTaskTitle(taskID, title string) bool {
	t, ok := b.Tasks[taskID]
	if !ok || t.Title == title {
		return false
	}
	t.Title = title
	b.Tasks[taskID] = t
	return true
}

// MoveTask relocates taskID from sourceColumnID to destColumnID. A negative
// destIndex appends. Within one column the index is resolved against the
// sequence after the task is removed, and an unchanged position is a no-op.
// A source that does not hold the task is treated as a stale request.
func (b *Board) MoveTask(taskID, sourceColumnID, destColumnID string, destIndex int) bool {
	t, ok := b.Tasks[taskID]
	if !ok {
		return false
	}
	srcIdx := b.ColumnIndex(sourceColumnID)
	dstIdx := b.ColumnIndex(destColumnID)
	if srcIdx < 0 || dstIdx < 0 {
		return false
	}
	current := b.Columns[srcIdx].IndexOf(taskID)
	if current < 0 || t.ColumnID != sourceColumnID {
		return false
	}

	if srcIdx == dstIdx {
		col := &b.Columns[srcIdx]
		last := len(col.TaskIDs) - 1
		target := destIndex
		if target < 0 || target > last {
			target = last
		}
		if target == current {
			return false
		}
		col.removeTask(taskID)
		col.insertTask(taskID, target)
		return true
	}

	b.Columns[srcIdx].removeTask(taskID)
	b.Columns[dstIdx].insertTask(taskID, destIndex)
	t.ColumnID = destColumnID
	b.Tasks[taskID] = t
	return true
}

// AddColumn appends column to the layout.
func (b *Board) AddColumn(column Column) bool {
	if column.ID == "" || b.ColumnIndex(column.ID) >= 0 {
		return false
	}
	if column.TaskIDs == nil {
		column.TaskIDs = []string{}
	}
	b.Columns = append(b.Columns, column)
	return true
}

// DeleteColumn removes the column and cascades to the tasks it listed.
func (b *Board) DeleteColumn(columnID string) bool {
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return false
	}
	for _, taskID := range b.Columns[idx].TaskIDs {
		delete(b.Tasks, taskID)
		b.unselect(taskID)
	}
	b.Columns = slices.Delete(b.Columns, idx, idx+1)
	return true
}

// MoveColumn removes the column at sourceIndex and reinserts it at destIndex.
func (b *Board) MoveColumn(sourceIndex, destIndex int) bool {
	n := len(b.Columns)
	if sourceIndex < 0 || sourceIndex >= n || destIndex < 0 || destIndex >= n || sourceIndex == destIndex {
		return false
	}
	moved := b.Columns[sourceIndex]
	b.Columns = slices.Delete(b.Columns, sourceIndex, sourceIndex+1)
	b.Columns = slices.Insert(b.Columns, destIndex, moved)
	return true
}

// UpdateColumnTitle replaces the column title verbatim.
func (b *Board) UpdateColumnTitle(columnID, title string) bool {
	idx := b.ColumnIndex(columnID)
	if idx < 0 || b.Columns[idx].Title == title {
		return false
	}
	b.Columns[idx].Title = title
	return true
}

// SetSearchTerm replaces the search term verbatim.
func (b *Board) SetSearchTerm(term string) bool {
	if b.SearchTerm == term {
		return false
	}
	b.SearchTerm = term
	return true
}

// SetFilter replaces the filter. Unsupported values are ignored.
func (b *Board) SetFilter(f Filter) bool {
	if !f.Valid() || b.Filter == f {
		return false
	}
	b.Filter = f
	return true
}

// ToggleTaskSelection adds taskID to the selection or removes it.
func (b *Board) ToggleTaskSelection(taskID string) bool {
	if _, ok := b.Tasks[taskID]; !ok {
		return false
	}
	if b.IsSelected(taskID) {
		b.unselect(taskID)
		return true
	}
	b.Selected = append(b.Selected, taskID)
	return true
}

// SelectAllTasksInColumn selects every task of the column, or deselects all
// of them when they are already selected.
func (b *Board) SelectAllTasksInColumn(columnID string) bool {
	col, ok := b.Column(columnID)
	if !ok || len(col.TaskIDs) == 0 {
		return false
	}
	allSelected := true
	for _, id := range col.TaskIDs {
		if !b.IsSelected(id) {
			allSelected = false
			break
		}
	}
	if allSelected {
		b.Selected = slices.DeleteFunc(b.Selected, col.Contains)
		return true
	}
	for _, id := range col.TaskIDs {
		if !b.IsSelected(id) {
			b.Selected = append(b.Selected, id)
		}
	}
	return true
}

// ClearSelectedTasks empties the selection.
func (b *Board) ClearSelectedTasks() bool {
	if len(b.Selected) == 0 {
		return false
	}
	b.Selected = []string{}
	return true
}

// MoveSelectedTasks reassigns every selected task to destColumnID, appending
// them in selection order, then clears the selection.
func (b *Board) MoveSelectedTasks(destColumnID string) bool {
	dstIdx := b.ColumnIndex(destColumnID)
	if dstIdx < 0 || len(b.Selected) == 0 {
		return false
	}
	moving := make([]string, 0, len(b.Selected))
	for _, id := range b.Selected {
		if _, ok := b.Tasks[id]; ok {
			moving = append(moving, id)
		}
	}
	for idx := range b.Columns {
		b.Columns[idx].TaskIDs = slices.DeleteFunc(b.Columns[idx].TaskIDs, func(id string) bool {
			return slices.Contains(moving, id)
		})
	}
	for _, id := range moving {
		t := b.Tasks[id]
		t.ColumnID = destColumnID
		b.Tasks[id] = t
		b.Columns[dstIdx].insertTask(id, -1)
	}
	b.Selected = []string{}
	return true
}

// DeleteSelectedTasks deletes every selected task and clears the selection.
func (b *Board) DeleteSelectedTasks() bool {
	if len(b.Selected) == 0 {
		return false
	}
	for _, id := range slices.Clone(b.Selected) {
		b.DeleteTask(id)
	}
	b.Selected = []string{}
	return true
}

// ToggleSelectedComplete normalizes the selection to one completion state:
// when all selected tasks are completed they are uncompleted, otherwise the
// incomplete ones are completed.
func (b *Board) ToggleSelectedComplete() bool {
	if len(b.Selected) == 0 {
		return false
	}
	target := !b.AllSelectedCompleted()
	changed := false
	for _, id := range b.Selected {
		t, ok := b.Tasks[id]
		if !ok || t.Completed == target {
			continue
		}
		t.Completed = target
		b.Tasks[id] = t
		changed = true
	}
	return changed
}

// Validate checks the structural invariants of the aggregate.
func (b Board) Validate() error {
	var errs []error
	seenColumns := map[string]struct{}{}
	seenTasks := map[string]struct{}{}
	for idx, c := range b.Columns {
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("columns[%d]: empty id", idx))
			continue
		}
		if _, dup := seenColumns[c.ID]; dup {
			errs = append(errs, fmt.Errorf("columns[%d]: duplicated id %q", idx, c.ID))
		}
		seenColumns[c.ID] = struct{}{}
		for _, taskID := range c.TaskIDs {
			t, ok := b.Tasks[taskID]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("column %q lists unknown task %q", c.ID, taskID))
			case t.ColumnID != c.ID:
				errs = append(errs, fmt.Errorf("task %q lists column %q but sits in %q", taskID, t.ColumnID, c.ID))
			}
			if _, dup := seenTasks[taskID]; dup {
				errs = append(errs, fmt.Errorf("task %q listed more than once", taskID))
			}
			seenTasks[taskID] = struct{}{}
		}
	}
	for key, t := range b.Tasks {
		if key != t.ID {
			errs = append(errs, fmt.Errorf("task key %q holds id %q", key, t.ID))
		}
		if _, ok := seenTasks[key]; !ok {
			errs = append(errs, fmt.Errorf("task %q is not listed by any column", key))
		}
	}
	if !b.Filter.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFilter, b.Filter))
	}
	seenSelected := map[string]struct{}{}
	for _, id := range b.Selected {
		if _, ok := b.Tasks[id]; !ok {
			errs = append(errs, fmt.Errorf("selection references unknown task %q", id))
		}
		if _, dup := seenSelected[id]; dup {
			errs = append(errs, fmt.Errorf("selection lists %q more than once", id))
		}
		seenSelected[id] = struct{}{}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidBoard, errors.Join(errs...))
}

// unselect removes taskID from the selection.
func (b *Board) unselect(taskID string) {
	b.Selected = slices.DeleteFunc(b.Selected, func(id string) bool { return id == taskID })
}
