package app

import (
	"context"
	"time"
)

// SnapshotRepository loads and saves serialized boards under a storage key.
// LoadSnapshot returns ErrNotFound when nothing was saved under key.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
	SaveSnapshot(ctx context.Context, key string, payload []byte) error
}

// SnapshotLedger is implemented by repositories that keep a history of saves.
type SnapshotLedger interface {
	SaveSnapshotEvent(ctx context.Context, key string, payload []byte, event SnapshotEvent) error
	ListSnapshotEvents(ctx context.Context, key string, limit int) ([]SnapshotEvent, error)
}

// SnapshotEvent records one persisted transition.
type SnapshotEvent struct {
	ID        int64
	Key       string
	Operation Operation
	TaskIDs   []string
	ColumnID  string
	Revision  int64
	CreatedAt time.Time
}
