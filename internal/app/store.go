package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// Operation names a store transition.
type Operation string

// OpAddTask and related constants name every transition reported to hooks.
const (
	OpAddTask                Operation = "add_task"
	OpDeleteTask             Operation = "delete_task"
	OpToggleTaskComplete     Operation = "toggle_task_complete"
	OpUpdateTaskTitle        Operation = "update_task_title"
	OpMoveTask               Operation = "move_task"
	OpAddColumn              Operation = "add_column"
	OpDeleteColumn           Operation = "delete_column"
	OpMoveColumn             Operation = "move_column"
	OpUpdateColumnTitle      Operation = "update_column_title"
	OpSetSearchTerm          Operation = "set_search_term"
	OpSetFilter              Operation = "set_filter"
	OpToggleTaskSelection    Operation = "toggle_task_selection"
	OpSelectAllTasksInColumn Operation = "select_all_tasks_in_column"
	OpClearSelectedTasks     Operation = "clear_selected_tasks"
	OpMoveSelectedTasks      Operation = "move_selected_tasks"
	OpDeleteSelectedTasks    Operation = "delete_selected_tasks"
	OpToggleSelectedComplete Operation = "toggle_selected_complete"
	OpReplaceBoard           Operation = "replace_board"
	OpReset                  Operation = "reset"
)

// Change describes one applied transition.
type Change struct {
	Operation Operation
	TaskIDs   []string
	ColumnID  string
}

// Hook observes state-changing transitions. It receives a private clone of
// the new board. Hooks must not call mutating store methods.
type Hook func(ctx context.Context, change Change, board domain.Board) error

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Ordering selects how visible tasks are ordered inside a column.
type Ordering string

// OrderingSequence and OrderingCreated are the supported orderings.
const (
	OrderingSequence Ordering = "sequence"
	OrderingCreated  Ordering = "created"
)

// ParseOrdering parses an ordering name. Empty input means sequence.
func ParseOrdering(raw string) (Ordering, error) {
	switch o := Ordering(strings.ToLower(strings.TrimSpace(raw))); o {
	case "":
		return OrderingSequence, nil
	case OrderingSequence, OrderingCreated:
		return o, nil
	default:
		return "", fmt.Errorf("unsupported ordering %q", raw)
	}
}

// DefaultSuggestionLimit caps search suggestions when no limit is configured.
const DefaultSuggestionLimit = 5

// StoreConfig holds configuration for the store.
type StoreConfig struct {
	Ordering        Ordering
	SuggestionLimit int
	SeedColumns     []string
}

type hookEntry struct {
	id   int
	hook Hook
}

// Store owns the board and serializes every transition.
type Store struct {
	mu    sync.Mutex
	board domain.Board

	idGen IDGenerator
	clock Clock
	cfg   StoreConfig

	// hookMu is taken before the state lock is released so hooks observe
	// transitions in the order they were applied.
	hookMu  sync.Mutex
	subMu   sync.RWMutex
	hooks   []hookEntry
	nextSub int
}

// NewStore constructs a store around board. A board without columns or task
// map is replaced by the configured seed board.
func NewStore(board domain.Board, idGen IDGenerator, clock Clock, cfg StoreConfig) *Store {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Ordering == "" {
		cfg.Ordering = OrderingSequence
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = DefaultSuggestionLimit
	}
	if board.Tasks == nil && len(board.Columns) == 0 {
		board = domain.SeedBoard(cfg.SeedColumns)
	}
	return &Store{
		board: board.Clone(),
		idGen: idGen,
		clock: clock,
		cfg:   cfg,
	}
}

// Config returns the store configuration.
func (s *Store) Config() StoreConfig {
	return s.cfg
}

// Subscribe registers hook and returns a function that removes it.
func (s *Store) Subscribe(hook Hook) func() {
	if hook == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.hooks = append(s.hooks, hookEntry{id: id, hook: hook})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for idx, entry := range s.hooks {
				if entry.id == id {
					s.hooks = slices.Delete(s.hooks, idx, idx+1)
					return
				}
			}
		})
	}
}

// Snapshot returns a deep copy of the current board.
func (s *Store) Snapshot() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// AddTask creates a task at the end of columnID. The zero task is returned
// when the column is unknown.
func (s *Store) AddTask(ctx context.Context, columnID, title string) (domain.Task, error) {
	var created domain.Task
	_, err := s.apply(ctx, Change{Operation: OpAddTask, ColumnID: columnID}, func(b *domain.Board, change *Change) bool {
		if b.ColumnIndex(columnID) < 0 {
			return false
		}
		task, err := domain.NewTask(s.idGen(), columnID, title, s.clock())
		if err != nil || !b.AddTask(task) {
			return false
		}
		created = task
		change.TaskIDs = []string{task.ID}
		return true
	})
	return created, err
}

// DeleteTask removes a task from the board and the selection.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	_, err := s.apply(ctx, taskChange(OpDeleteTask, taskID), func(b *domain.Board, change *Change) bool {
		if t, ok := b.Task(taskID); ok {
			change.ColumnID = t.ColumnID
		}
		return b.DeleteTask(taskID)
	})
	return err
}

// ToggleTaskComplete flips a task's completion flag.
func (s *Store) ToggleTaskComplete(ctx context.Context, taskID string) error {
	_, err := s.apply(ctx, taskChange(OpToggleTaskComplete, taskID), func(b *domain.Board, _ *Change) bool {
		return b.ToggleTaskComplete(taskID)
	})
	return err
}

// UpdateTaskTitle replaces a task title verbatim.
func (s *Store) UpdateTaskTitle(ctx context.Context, taskID, title string) error {
	_, err := s.apply(ctx, taskChange(OpUpdateTaskTitle, taskID), func(b *domain.Board, _ *Change) bool {
		return b.UpdateTaskTitle(taskID, title)
	})
	return err
}

// MoveTask relocates a task. A negative destIndex appends to the destination.
func (s *Store) MoveTask(ctx context.Context, taskID, sourceColumnID, destColumnID string, destIndex int) error {
	change := Change{Operation: OpMoveTask, TaskIDs: []string{taskID}, ColumnID: destColumnID}
	_, err := s.apply(ctx, change, func(b *domain.Board, _ *Change) bool {
		return b.MoveTask(taskID, sourceColumnID, destColumnID, destIndex)
	})
	return err
}

// AddColumn appends an empty column.
func (s *Store) AddColumn(ctx context.Context, title string) (domain.Column, error) {
	var created domain.Column
	_, err := s.apply(ctx, Change{Operation: OpAddColumn}, func(b *domain.Board, change *Change) bool {
		column, err := domain.NewColumn(s.idGen(), title)
		if err != nil || !b.AddColumn(column) {
			return false
		}
		created = column
		change.ColumnID = column.ID
		return true
	})
	return created, err
}

// DeleteColumn removes a column together with its tasks.
func (s *Store) DeleteColumn(ctx context.Context, columnID string) error {
	_, err := s.apply(ctx, Change{Operation: OpDeleteColumn, ColumnID: columnID}, func(b *domain.Board, change *Change) bool {
		if col, ok := b.Column(columnID); ok {
			change.TaskIDs = append([]string(nil), col.TaskIDs...)
		}
		return b.DeleteColumn(columnID)
	})
	return err
}

// MoveColumn relocates the column at sourceIndex to destIndex.
func (s *Store) MoveColumn(ctx context.Context, sourceIndex, destIndex int) error {
	_, err := s.apply(ctx, Change{Operation: OpMoveColumn}, func(b *domain.Board, change *Change) bool {
		if sourceIndex >= 0 && sourceIndex < len(b.Columns) {
			change.ColumnID = b.Columns[sourceIndex].ID
		}
		return b.MoveColumn(sourceIndex, destIndex)
	})
	return err
}

// UpdateColumnTitle replaces a column title verbatim.
func (s *Store) UpdateColumnTitle(ctx context.Context, columnID, title string) error {
	_, err := s.apply(ctx, Change{Operation: OpUpdateColumnTitle, ColumnID: columnID}, func(b *domain.Board, _ *Change) bool {
		return b.UpdateColumnTitle(columnID, title)
	})
	return err
}

// SetSearchTerm replaces the search term verbatim.
func (s *Store) SetSearchTerm(ctx context.Context, term string) error {
	_, err := s.apply(ctx, Change{Operation: OpSetSearchTerm}, func(b *domain.Board, _ *Change) bool {
		return b.SetSearchTerm(term)
	})
	return err
}

// SetFilter replaces the completion filter. Unsupported values are ignored.
func (s *Store) SetFilter(ctx context.Context, filter domain.Filter) error {
	_, err := s.apply(ctx, Change{Operation: OpSetFilter}, func(b *domain.Board, _ *Change) bool {
		return b.SetFilter(filter)
	})
	return err
}

// ToggleTaskSelection adds a task to the selection or removes it.
func (s *Store) ToggleTaskSelection(ctx context.Context, taskID string) error {
	_, err := s.apply(ctx, taskChange(OpToggleTaskSelection, taskID), func(b *domain.Board, _ *Change) bool {
		return b.ToggleTaskSelection(taskID)
	})
	return err
}

// SelectAllTasksInColumn selects every task of a column, or deselects them
// all when they are already selected.
func (s *Store) SelectAllTasksInColumn(ctx context.Context, columnID string) error {
	_, err := s.apply(ctx, Change{Operation: OpSelectAllTasksInColumn, ColumnID: columnID}, func(b *domain.Board, _ *Change) bool {
		return b.SelectAllTasksInColumn(columnID)
	})
	return err
}

// ClearSelectedTasks empties the selection.
func (s *Store) ClearSelectedTasks(ctx context.Context) error {
	_, err := s.apply(ctx, Change{Operation: OpClearSelectedTasks}, func(b *domain.Board, _ *Change) bool {
		return b.ClearSelectedTasks()
	})
	return err
}

// MoveSelectedTasks moves the selection to destColumnID and clears it.
func (s *Store) MoveSelectedTasks(ctx context.Context, destColumnID string) error {
	_, err := s.apply(ctx, Change{Operation: OpMoveSelectedTasks, ColumnID: destColumnID}, func(b *domain.Board, change *Change) bool {
		change.TaskIDs = append([]string(nil), b.Selected...)
		return b.MoveSelectedTasks(destColumnID)
	})
	return err
}

// DeleteSelectedTasks deletes every selected task.
func (s *Store) DeleteSelectedTasks(ctx context.Context) error {
	_, err := s.apply(ctx, Change{Operation: OpDeleteSelectedTasks}, func(b *domain.Board, change *Change) bool {
		change.TaskIDs = append([]string(nil), b.Selected...)
		return b.DeleteSelectedTasks()
	})
	return err
}

// ToggleSelectedComplete completes the selection, or uncompletes it when
// every selected task is already completed.
func (s *Store) ToggleSelectedComplete(ctx context.Context) error {
	_, err := s.apply(ctx, Change{Operation: OpToggleSelectedComplete}, func(b *domain.Board, change *Change) bool {
		change.TaskIDs = append([]string(nil), b.Selected...)
		return b.ToggleSelectedComplete()
	})
	return err
}

// ReplaceBoard validates board and swaps it in.
func (s *Store) ReplaceBoard(ctx context.Context, board domain.Board) error {
	if err := board.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	next := board.Clone()
	_, err := s.apply(ctx, Change{Operation: OpReplaceBoard}, func(b *domain.Board, _ *Change) bool {
		*b = next
		return true
	})
	return err
}

// Reset restores the seed board.
func (s *Store) Reset(ctx context.Context) error {
	seed := domain.SeedBoard(s.cfg.SeedColumns)
	_, err := s.apply(ctx, Change{Operation: OpReset}, func(b *domain.Board, _ *Change) bool {
		*b = seed
		return true
	})
	return err
}

// apply runs mutate against a private copy and swaps it in when it reports a
// change. Hooks run after the swap, outside the state lock.
func (s *Store) apply(ctx context.Context, change Change, mutate func(*domain.Board, *Change) bool) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	next := s.board.Clone()
	if !mutate(&next, &change) {
		s.mu.Unlock()
		return false, nil
	}
	s.board = next
	view := next.Clone()
	s.hookMu.Lock()
	s.mu.Unlock()
	defer s.hookMu.Unlock()

	return true, s.runHooks(ctx, change, view)
}

func (s *Store) runHooks(ctx context.Context, change Change, board domain.Board) error {
	s.subMu.RLock()
	hooks := make([]Hook, 0, len(s.hooks))
	for _, entry := range s.hooks {
		hooks = append(hooks, entry.hook)
	}
	s.subMu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx, change, board.Clone()); err != nil {
			errs = append(errs, fmt.Errorf("%s hook: %w", change.Operation, err))
		}
	}
	return errors.Join(errs...)
}

func taskChange(op Operation, taskID string) Change {
	return Change{Operation: op, TaskIDs: []string{taskID}}
}
