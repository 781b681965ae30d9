package app

import (
	"slices"

	"github.com/hylla/tavla/internal/domain"
)

// TaskView is a visible task with its render flags.
type TaskView struct {
	domain.Task
	Highlighted bool
	Selected    bool
}

// ColumnView is a column with its visible tasks.
type ColumnView struct {
	ID      string
	Title   string
	Total   int
	Visible []TaskView
}

// Suggestion is a task title matching the current search term.
type Suggestion struct {
	ID       string
	Title    string
	ColumnID string
}

// SelectionSummary drives the bulk action bar.
type SelectionSummary struct {
	Count        int
	AllCompleted bool
}

// BoardView is the read model rendered by every surface.
type BoardView struct {
	Columns     []ColumnView
	SearchTerm  string
	Filter      domain.Filter
	Selection   SelectionSummary
	Suggestions []Suggestion
}

// VisibleTasks returns the tasks of columnID that match the search term and
// the filter, ordered by ordering.
func VisibleTasks(b domain.Board, columnID string, ordering Ordering) []domain.Task {
	col, ok := b.Column(columnID)
	if !ok {
		return nil
	}
	out := make([]domain.Task, 0, len(col.TaskIDs))
	for _, id := range col.TaskIDs {
		t, ok := b.Tasks[id]
		if !ok || !t.MatchesSearch(b.SearchTerm) || !b.Filter.Matches(t) {
			continue
		}
		out = append(out, t)
	}
	if ordering == OrderingCreated {
		slices.SortStableFunc(out, func(a, b domain.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	}
	return out
}

// Suggestions lists up to limit tasks whose titles contain the search term,
// in column then sequence order. An empty term yields nothing.
func Suggestions(b domain.Board, limit int) []Suggestion {
	if b.SearchTerm == "" || limit <= 0 {
		return nil
	}
	out := make([]Suggestion, 0, limit)
	for _, col := range b.Columns {
		for _, id := range col.TaskIDs {
			t, ok := b.Tasks[id]
			if !ok || !t.Highlighted(b.SearchTerm) {
				continue
			}
			out = append(out, Suggestion{ID: t.ID, Title: t.Title, ColumnID: col.ID})
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// Summarize reports the selection size and whether all of it is completed.
func Summarize(b domain.Board) SelectionSummary {
	return SelectionSummary{Count: len(b.Selected), AllCompleted: b.AllSelectedCompleted()}
}

// Project builds the full read model of b.
func Project(b domain.Board, ordering Ordering, suggestionLimit int) BoardView {
	view := BoardView{
		Columns:     make([]ColumnView, 0, len(b.Columns)),
		SearchTerm:  b.SearchTerm,
		Filter:      b.Filter,
		Selection:   Summarize(b),
		Suggestions: Suggestions(b, suggestionLimit),
	}
	for _, col := range b.Columns {
		cv := ColumnView{ID: col.ID, Title: col.Title, Total: len(col.TaskIDs)}
		for _, t := range VisibleTasks(b, col.ID, ordering) {
			cv.Visible = append(cv.Visible, TaskView{
				Task:        t,
				Highlighted: t.Highlighted(b.SearchTerm),
				Selected:    b.IsSelected(t.ID),
			})
		}
		view.Columns = append(view.Columns, cv)
	}
	return view
}

// View projects the current board with the store configuration.
func (s *Store) View() BoardView {
	return Project(s.Snapshot(), s.cfg.Ordering, s.cfg.SuggestionLimit)
}

// VisibleTasks returns the visible tasks of columnID.
func (s *Store) VisibleTasks(columnID string) []domain.Task {
	return VisibleTasks(s.Snapshot(), columnID, s.cfg.Ordering)
}

// Suggestions returns the capped suggestions for the current search term.
func (s *Store) Suggestions() []Suggestion {
	return Suggestions(s.Snapshot(), s.cfg.SuggestionLimit)
}

// SelectionSummary summarizes the current selection.
func (s *Store) SelectionSummary() SelectionSummary {
	return Summarize(s.Snapshot())
}
