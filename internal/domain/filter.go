package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Filter restricts visible tasks by completion state.
type Filter string

// FilterAll and related constants enumerate the supported filters.
const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterIncomplete Filter = "incomplete"
)

var validFilters = []Filter{FilterAll, FilterCompleted, FilterIncomplete}

// Filters returns every supported filter in display order.
func Filters() []Filter {
	return slices.Clone(validFilters)
}

// ParseFilter normalizes raw input into a Filter. Empty input means FilterAll.
func ParseFilter(raw string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if f == "" {
		return FilterAll, nil
	}
	if !slices.Contains(validFilters, f) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}
	return f, nil
}

// Valid reports whether f is one of the supported filters.
func (f Filter) Valid() bool {
	return slices.Contains(validFilters, f)
}

// Matches reports whether task passes the filter.
func (f Filter) Matches(task Task) bool {
	switch f {
	case FilterCompleted:
		return task.Completed
	case FilterIncomplete:
		return !task.Completed
	default:
		return true
	}
}

// Next cycles to the following filter, wrapping around.
func (f Filter) Next() Filter {
	idx := slices.Index(validFilters, f)
	return validFilters[(idx+1)%len(validFilters)]
}
