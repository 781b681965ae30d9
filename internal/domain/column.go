package domain

import (
	"slices"
	"strings"
)

// Column is a titled, ordered bucket of task ids.
type Column struct {
	ID      string
	Title   string
	TaskIDs []string
}

// NewColumn constructs an empty column.
func NewColumn(id, title string) (Column, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	return Column{ID: id, Title: title, TaskIDs: []string{}}, nil
}

// IndexOf returns the position of taskID in the column or -1.
func (c Column) IndexOf(taskID string) int {
	return slices.Index(c.TaskIDs, taskID)
}

// Contains reports whether taskID is listed in the column.
func (c Column) Contains(taskID string) bool {
	return c.IndexOf(taskID) >= 0
}

// removeTask strips taskID from the sequence.
func (c *Column) removeTask(taskID string) {
	c.TaskIDs = slices.DeleteFunc(c.TaskIDs, func(id string) bool { return id == taskID })
}

// insertTask places taskID at idx, clamped to the sequence bounds. A negative
// idx appends.
func (c *Column) insertTask(taskID string, idx int) {
	if idx < 0 || idx > len(c.TaskIDs) {
		idx = len(c.TaskIDs)
	}
	c.TaskIDs = slices.Insert(c.TaskIDs, idx, taskID)
}
