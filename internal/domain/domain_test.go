package domain

import (
	"errors"
	"slices"
	"testing"
	"time"
)

// boardWithTasks builds a seeded board with titled tasks in the given columns.
func boardWithTasks(t *testing.T, placements map[string][]string) Board {
	t.Helper()
	b := SeedBoard(nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, col := range b.Columns {
		for _, id := range placements[col.ID] {
			task, err := NewTask(id, col.ID, "task "+id, now)
			if err != nil {
				t.Fatalf("NewTask() error = %v", err)
			}
			if !b.AddTask(task) {
				t.Fatalf("AddTask(%q) reported no change", id)
			}
			now = now.Add(time.Minute)
		}
	}
	return b
}

func TestNewTaskValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewTask(" ", "1", "x", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewTask("t1", "", "x", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID for column, got %v", err)
	}
	task, err := NewTask("t1", "1", "  keep spacing ", now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.Title != "  keep spacing " {
		t.Fatalf("expected verbatim title, got %q", task.Title)
	}
	if task.Completed {
		t.Fatal("expected new task to be incomplete")
	}
}

func TestTitleValidation(t *testing.T) {
	cases := map[string]bool{
		"":          false,
		"   ":       false,
		"\t\n":      false,
		"Write":     true,
		"  spaced ": true,
	}
	for in, want := range cases {
		if got := ValidTitle(in); got != want {
			t.Fatalf("ValidTitle(%q) = %t, want %t", in, got, want)
		}
	}
	got, err := NormalizeTitle("  Write spec ")
	if err != nil {
		t.Fatalf("NormalizeTitle() error = %v", err)
	}
	if got != "Write spec" {
		t.Fatalf("unexpected normalized title %q", got)
	}
	if _, err := NormalizeTitle("   "); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestSearchAndHighlight(t *testing.T) {
	task := Task{ID: "t1", Title: "Write Spec"}
	if !task.MatchesSearch("spec") {
		t.Fatal("expected case-insensitive match")
	}
	if !task.MatchesSearch("") {
		t.Fatal("expected empty term to match")
	}
	if task.MatchesSearch("code") {
		t.Fatal("unexpected match")
	}
	if !task.Highlighted("SPEC") {
		t.Fatal("expected highlight for matching term")
	}
	if task.Highlighted("") {
		t.Fatal("expected empty term to never highlight")
	}
}

func TestFilterParseMatchAndCycle(t *testing.T) {
	f, err := ParseFilter(" Completed ")
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	if f != FilterCompleted {
		t.Fatalf("unexpected filter %q", f)
	}
	if f, _ := ParseFilter(""); f != FilterAll {
		t.Fatalf("expected empty input to mean all, got %q", f)
	}
	if _, err := ParseFilter("archived"); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}

	done := Task{Completed: true}
	open := Task{}
	if !FilterAll.Matches(done) || !FilterAll.Matches(open) {
		t.Fatal("all should match every task")
	}
	if !FilterCompleted.Matches(done) || FilterCompleted.Matches(open) {
		t.Fatal("completed filter mismatch")
	}
	if FilterIncomplete.Matches(done) || !FilterIncomplete.Matches(open) {
		t.Fatal("incomplete filter mismatch")
	}

	if got := FilterAll.Next().Next().Next(); got != FilterAll {
		t.Fatalf("expected cycle to wrap, got %q", got)
	}
}

func TestSeedBoard(t *testing.T) {
	b := SeedBoard(nil)
	if len(b.Columns) != 3 {
		t.Fatalf("expected 3 seed columns, got %d", len(b.Columns))
	}
	for idx, want := range []string{"To Do", "In Progress", "Done"} {
		if b.Columns[idx].Title != want {
			t.Fatalf("column %d title = %q, want %q", idx, b.Columns[idx].Title, want)
		}
		if len(b.Columns[idx].TaskIDs) != 0 {
			t.Fatalf("expected empty seed column %q", want)
		}
	}
	if b.Columns[0].ID != "1" || b.Columns[2].ID != "3" {
		t.Fatalf("unexpected seed ids %q %q", b.Columns[0].ID, b.Columns[2].ID)
	}
	if b.Filter != FilterAll {
		t.Fatalf("unexpected seed filter %q", b.Filter)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestBoardAddTaskUnknownColumnIsNoop(t *testing.T) {
	b := SeedBoard(nil)
	task, _ := NewTask("t1", "missing", "x", time.Now())
	if b.AddTask(task) {
		t.Fatal("expected no change for unknown column")
	}
	if len(b.Tasks) != 0 || b.TaskCount() != 0 {
		t.Fatal("expected board untouched")
	}
}

func TestBoardMoveTaskSameColumnReorder(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b", "c", "d"}})

	if !b.MoveTask("a", "1", "1", 2) {
		t.Fatal("expected reorder")
	}
	if got := b.Columns[0].TaskIDs; !slices.Equal(got, []string{"b", "c", "a", "d"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if b.MoveTask("a", "1", "1", 2) {
		t.Fatal("expected repeated move to be a no-op")
	}
	if !b.MoveTask("d", "1", "1", 0) {
		t.Fatal("expected move to front")
	}
	if got := b.Columns[0].TaskIDs; !slices.Equal(got, []string{"d", "b", "c", "a"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if !b.MoveTask("d", "1", "1", 99) {
		t.Fatal("expected clamped move to end")
	}
	if got := b.Columns[0].TaskIDs; !slices.Equal(got, []string{"b", "c", "a", "d"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if b.MoveTask("d", "1", "1", -1) {
		t.Fatal("expected append of last task to be a no-op")
	}
}

func TestBoardMoveTaskCrossColumn(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b"}, "3": {"x"}})
	before := b.TaskCount()

	if !b.MoveTask("a", "1", "3", 0) {
		t.Fatal("expected cross-column move")
	}
	if got := b.Columns[0].TaskIDs; !slices.Equal(got, []string{"b"}) {
		t.Fatalf("unexpected source %v", got)
	}
	if got := b.Columns[2].TaskIDs; !slices.Equal(got, []string{"a", "x"}) {
		t.Fatalf("unexpected destination %v", got)
	}
	if b.Tasks["a"].ColumnID != "3" {
		t.Fatalf("unexpected column id %q", b.Tasks["a"].ColumnID)
	}
	if !b.MoveTask("b", "1", "3", -1) {
		t.Fatal("expected append move")
	}
	if got := b.Columns[2].TaskIDs; !slices.Equal(got, []string{"a", "x", "b"}) {
		t.Fatalf("unexpected destination %v", got)
	}
	if b.TaskCount() != before {
		t.Fatalf("task count changed from %d to %d", before, b.TaskCount())
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestBoardMoveTaskRejectsStaleOrUnknown(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a"}})
	if b.MoveTask("missing", "1", "2", 0) {
		t.Fatal("unknown task should be a no-op")
	}
	if b.MoveTask("a", "1", "nope", 0) {
		t.Fatal("unknown destination should be a no-op")
	}
	if b.MoveTask("a", "2", "3", 0) {
		t.Fatal("stale source should be a no-op")
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestBoardMoveColumnRelocates(t *testing.T) {
	b := SeedBoard([]string{"A", "B", "C", "D"})
	if !b.MoveColumn(0, 2) {
		t.Fatal("expected move")
	}
	titles := []string{}
	for _, c := range b.Columns {
		titles = append(titles, c.Title)
	}
	if !slices.Equal(titles, []string{"B", "C", "A", "D"}) {
		t.Fatalf("unexpected order %v", titles)
	}
	if b.MoveColumn(1, 1) || b.MoveColumn(-1, 0) || b.MoveColumn(0, 4) {
		t.Fatal("expected invalid moves to be no-ops")
	}
}

func TestBoardDeleteColumnCascades(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b"}, "2": {"c"}})
	b.ToggleTaskSelection("a")
	b.ToggleTaskSelection("c")

	if !b.DeleteColumn("1") {
		t.Fatal("expected delete")
	}
	if _, ok := b.Tasks["a"]; ok {
		t.Fatal("expected task a removed")
	}
	if _, ok := b.Tasks["b"]; ok {
		t.Fatal("expected task b removed")
	}
	if !slices.Equal(b.Selected, []string{"c"}) {
		t.Fatalf("unexpected selection %v", b.Selected)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestBoardSelectAllIsSelfInverse(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b", "c"}, "2": {"z"}})
	b.ToggleTaskSelection("z")
	original := slices.Clone(b.Selected)

	if !b.SelectAllTasksInColumn("1") {
		t.Fatal("expected select all")
	}
	if len(b.Selected) != 4 {
		t.Fatalf("expected union selection, got %v", b.Selected)
	}
	if !b.SelectAllTasksInColumn("1") {
		t.Fatal("expected deselect all")
	}
	if !slices.Equal(b.Selected, original) {
		t.Fatalf("selection = %v, want %v", b.Selected, original)
	}
}

func TestBoardSelectAllCompletesPartialSelection(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b", "c"}})
	b.ToggleTaskSelection("b")

	if !b.SelectAllTasksInColumn("1") {
		t.Fatal("expected select all")
	}
	if !slices.Equal(b.Selected, []string{"b", "a", "c"}) {
		t.Fatalf("unexpected selection %v", b.Selected)
	}
	if b.SelectAllTasksInColumn("2") {
		t.Fatal("expected empty column to be a no-op")
	}
}

func TestBoardBulkComplete(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b"}})
	b.ToggleTaskComplete("a")
	b.ToggleTaskSelection("a")
	b.ToggleTaskSelection("b")

	if b.AllSelectedCompleted() {
		t.Fatal("expected mixed selection")
	}
	if !b.ToggleSelectedComplete() {
		t.Fatal("expected completion")
	}
	if !b.Tasks["a"].Completed || !b.Tasks["b"].Completed {
		t.Fatal("expected all completed")
	}
	if !b.ToggleSelectedComplete() {
		t.Fatal("expected uncompletion")
	}
	if b.Tasks["a"].Completed || b.Tasks["b"].Completed {
		t.Fatal("expected all uncompleted")
	}
}

func TestBoardMoveSelectedTasks(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b"}, "2": {"c"}, "3": {"d"}})
	b.ToggleTaskSelection("c")
	b.ToggleTaskSelection("a")
	b.ToggleTaskSelection("d")

	if !b.MoveSelectedTasks("3") {
		t.Fatal("expected move")
	}
	if got := b.Columns[2].TaskIDs; !slices.Equal(got, []string{"c", "a", "d"}) {
		t.Fatalf("unexpected destination %v", got)
	}
	if got := b.Columns[0].TaskIDs; !slices.Equal(got, []string{"b"}) {
		t.Fatalf("unexpected source %v", got)
	}
	if len(b.Selected) != 0 {
		t.Fatalf("expected cleared selection, got %v", b.Selected)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestBoardDeleteSelected(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a", "b"}, "2": {"c"}})
	b.ToggleTaskSelection("a")
	b.ToggleTaskSelection("c")
	if !b.DeleteSelectedTasks() {
		t.Fatal("expected delete")
	}
	if len(b.Tasks) != 1 || b.TaskCount() != 1 {
		t.Fatalf("expected one remaining task, got %d", len(b.Tasks))
	}
	if len(b.Selected) != 0 {
		t.Fatal("expected cleared selection")
	}
}

func TestBoardValidateRejectsCorruption(t *testing.T) {
	cases := map[string]func(*Board){
		"dangling id": func(b *Board) {
			b.Columns[0].TaskIDs = append(b.Columns[0].TaskIDs, "ghost")
		},
		"duplicate id": func(b *Board) {
			b.Columns[1].TaskIDs = append(b.Columns[1].TaskIDs, "a")
		},
		"column mismatch": func(b *Board) {
			task := b.Tasks["a"]
			task.ColumnID = "2"
			b.Tasks["a"] = task
		},
		"unlisted task": func(b *Board) {
			b.Tasks["orphan"] = Task{ID: "orphan", ColumnID: "1"}
		},
		"unknown selection": func(b *Board) {
			b.Selected = append(b.Selected, "ghost")
		},
		"bad filter": func(b *Board) {
			b.Filter = "archived"
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			b := boardWithTasks(t, map[string][]string{"1": {"a"}})
			corrupt(&b)
			if err := b.Validate(); !errors.Is(err, ErrInvalidBoard) {
				t.Fatalf("expected ErrInvalidBoard, got %v", err)
			}
		})
	}
}

func TestBoardCloneIsDeep(t *testing.T) {
	b := boardWithTasks(t, map[string][]string{"1": {"a"}})
	b.ToggleTaskSelection("a")
	clone := b.Clone()
	clone.Columns[0].TaskIDs[0] = "mutated"
	clone.Selected[0] = "mutated"
	task := clone.Tasks["a"]
	task.Title = "mutated"
	clone.Tasks["a"] = task

	if b.Columns[0].TaskIDs[0] != "a" || b.Selected[0] != "a" || b.Tasks["a"].Title != "task a" {
		t.Fatal("expected clone to be independent")
	}
}
