package app

import (
	"context"
	"testing"

	"github.com/hylla/tavla/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragOverTaskAcrossColumns(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	drag := NewDragController(s)
	ctx := context.Background()
	a := mustAddTask(t, s, "1", "a")
	x := mustAddTask(t, s, "2", "x")
	y := mustAddTask(t, s, "2", "y")

	require.NoError(t, drag.Over(ctx, a.ID, y.ID))

	board := s.Snapshot()
	assert.Empty(t, columnIDs(board, "1"))
	assert.Equal(t, []string{x.ID, a.ID, y.ID}, columnIDs(board, "2"))
	assert.Equal(t, "2", board.Tasks[a.ID].ColumnID)
}

func TestDragOverTaskSameColumn(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	drag := NewDragController(s)
	ctx := context.Background()
	a := mustAddTask(t, s, "1", "a")
	b := mustAddTask(t, s, "1", "b")
	c := mustAddTask(t, s, "1", "c")

	require.NoError(t, drag.Over(ctx, a.ID, c.ID))
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, columnIDs(s.Snapshot(), "1"))
}

func TestDragOverColumnAppends(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	drag := NewDragController(s)
	ctx := context.Background()
	a := mustAddTask(t, s, "1", "a")
	x := mustAddTask(t, s, "3", "x")

	require.NoError(t, drag.Over(ctx, a.ID, "3"))
	assert.Equal(t, []string{x.ID, a.ID}, columnIDs(s.Snapshot(), "3"))

	// Hovering the column the task already sits in changes nothing.
	require.NoError(t, drag.Over(ctx, a.ID, "3"))
	assert.Equal(t, []string{x.ID, a.ID}, columnIDs(s.Snapshot(), "3"))
}

func TestDragOverIgnoredCases(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	drag := NewDragController(s)
	ctx := context.Background()
	a := mustAddTask(t, s, "1", "a")
	calls := 0
	s.Subscribe(func(context.Context, Change, domain.Board) error {
		calls++
		return nil
	})

	require.NoError(t, drag.Over(ctx, a.ID, ""))
	require.NoError(t, drag.Over(ctx, a.ID, a.ID))
	require.NoError(t, drag.Over(ctx, "1", "2"))
	require.NoError(t, drag.Over(ctx, "missing", "2"))
	assert.Zero(t, calls)
}

func TestDragCommitColumnAndTask(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	drag := NewDragController(s)
	ctx := context.Background()
	a := mustAddTask(t, s, "1", "a")
	b := mustAddTask(t, s, "1", "b")

	require.NoError(t, drag.Commit(ctx, "1", 2))
	board := s.Snapshot()
	ids := []string{}
	for _, col := range board.Columns {
		ids = append(ids, col.ID)
	}
	assert.Equal(t, []string{"2", "3", "1"}, ids)

	require.NoError(t, drag.Commit(ctx, b.ID, 0))
	assert.Equal(t, []string{b.ID, a.ID}, columnIDs(s.Snapshot(), "1"))

	require.NoError(t, drag.Commit(ctx, "missing", 0))
	require.NoError(t, drag.Commit(ctx, "2", 7))
	assert.Equal(t, "2", s.Snapshot().Columns[0].ID)
}
