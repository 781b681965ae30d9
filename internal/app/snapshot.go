package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// StorageKey is the default key the board is persisted under.
const StorageKey = "board-storage"

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "tavla.board.v1"

// Snapshot is the serialized form of a board.
type Snapshot struct {
	Version       string                  `json:"version" yaml:"version"`
	Columns       []SnapshotColumn        `json:"columns" yaml:"columns"`
	Tasks         map[string]SnapshotTask `json:"tasks" yaml:"tasks"`
	SearchTerm    string                  `json:"search_term" yaml:"search_term"`
	SelectedTasks []string                `json:"selected_tasks" yaml:"selected_tasks"`
	Filter        string                  `json:"filter" yaml:"filter"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	TaskIDs []string `json:"task_ids" yaml:"task_ids"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Completed bool      `json:"completed" yaml:"completed"`
	ColumnID  string    `json:"column_id" yaml:"column_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SnapshotFromBoard converts b into its serialized form.
func SnapshotFromBoard(b domain.Board) Snapshot {
	snap := Snapshot{
		Version:       SnapshotVersion,
		Columns:       make([]SnapshotColumn, 0, len(b.Columns)),
		Tasks:         make(map[string]SnapshotTask, len(b.Tasks)),
		SearchTerm:    b.SearchTerm,
		SelectedTasks: append([]string{}, b.Selected...),
		Filter:        string(b.Filter),
	}
	for _, c := range b.Columns {
		snap.Columns = append(snap.Columns, SnapshotColumn{
			ID:      c.ID,
			Title:   c.Title,
			TaskIDs: append([]string{}, c.TaskIDs...),
		})
	}
	for id, t := range b.Tasks {
		snap.Tasks[id] = SnapshotTask{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			ColumnID:  t.ColumnID,
			CreatedAt: t.CreatedAt.UTC(),
		}
	}
	return snap
}

// Board converts the snapshot into a validated board. Snapshots written
// before versioning carry an empty version and are accepted.
func (s Snapshot) Board() (domain.Board, error) {
	if s.Version != "" && s.Version != SnapshotVersion {
		return domain.Board{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	filter, err := domain.ParseFilter(s.Filter)
	if err != nil {
		return domain.Board{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	columns := make([]domain.Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		columns = append(columns, domain.Column{ID: c.ID, Title: c.Title, TaskIDs: append([]string{}, c.TaskIDs...)})
	}
	b := domain.NewBoard(columns...)
	for id, t := range s.Tasks {
		b.Tasks[id] = domain.Task{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			ColumnID:  t.ColumnID,
			CreatedAt: t.CreatedAt,
		}
	}
	b.SearchTerm = s.SearchTerm
	b.Filter = filter
	b.Selected = append([]string{}, s.SelectedTasks...)

	if err := b.Validate(); err != nil {
		return domain.Board{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return b, nil
}

// EncodeBoard serializes b as JSON.
func EncodeBoard(b domain.Board) ([]byte, error) {
	payload, err := json.Marshal(SnapshotFromBoard(b))
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	return payload, nil
}

// DecodeBoard parses and validates a JSON snapshot.
func DecodeBoard(payload []byte) (domain.Board, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return domain.Board{}, fmt.Errorf("%w: empty payload", ErrInvalidSnapshot)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.Board{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return snap.Board()
}
