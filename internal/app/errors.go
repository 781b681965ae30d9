package app

import "errors"

// ErrNotFound and related errors describe storage and snapshot failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrPersist         = errors.New("persist snapshot")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
