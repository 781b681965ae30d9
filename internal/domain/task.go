package domain

import (
	"strings"
	"time"
)

// Task is one card on the board. Order lives in the owning column, not here.
type Task struct {
	ID        string
	Title     string
	Completed bool
	ColumnID  string
	CreatedAt time.Time
}

// NewTask constructs a task in the given column. The title is stored verbatim;
// callers validate it with NormalizeTitle before reaching the store.
func NewTask(id, columnID, title string, now time.Time) (Task, error) {
	id = strings.TrimSpace(id)
	columnID = strings.TrimSpace(columnID)
	if id == "" {
		return Task{}, ErrInvalidID
	}
	if columnID == "" {
		return Task{}, ErrInvalidID
	}
	return Task{
		ID:        id,
		Title:     title,
		ColumnID:  columnID,
		CreatedAt: now.UTC(),
	}, nil
}

// ToggleComplete flips the completion flag.
func (t *Task) ToggleComplete() {
	t.Completed = !t.Completed
}

// MatchesSearch reports whether the title contains term, ignoring case.
// An empty term matches every task.
func (t Task) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(term))
}

// Highlighted reports whether a card should be marked as a search hit.
// Unlike MatchesSearch, an empty term never highlights.
func (t Task) Highlighted(term string) bool {
	if term == "" {
		return false
	}
	return t.MatchesSearch(term)
}
