package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hylla/tavla/internal/app"
)

// Store keeps snapshots and their ledger in process memory.
type Store struct {
	mu       sync.Mutex
	payloads map[string][]byte
	events   []app.SnapshotEvent
	revision map[string]int64
	now      func() time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		payloads: map[string][]byte{},
		revision: map[string]int64{},
		now:      time.Now,
	}
}

// LoadSnapshot returns a copy of the payload stored under key.
func (s *Store) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.payloads[key]
	if !ok {
		return nil, app.ErrNotFound
	}
	return slices.Clone(payload), nil
}

// SaveSnapshot stores a copy of payload under key.
func (s *Store) SaveSnapshot(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(key, payload)
	return nil
}

// SaveSnapshotEvent stores payload and appends event to the ledger.
func (s *Store) SaveSnapshotEvent(_ context.Context, key string, payload []byte, event app.SnapshotEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Key = key
	event.Revision = s.save(key, payload)
	event.ID = int64(len(s.events) + 1)
	event.TaskIDs = slices.Clone(event.TaskIDs)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}
	s.events = append(s.events, event)
	return nil
}

// ListSnapshotEvents returns up to limit events for key, newest first.
func (s *Store) ListSnapshotEvents(_ context.Context, key string, limit int) ([]app.SnapshotEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]app.SnapshotEvent, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Key != key {
			continue
		}
		out = append(out, s.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) save(key string, payload []byte) int64 {
	s.payloads[key] = slices.Clone(payload)
	s.revision[key]++
	return s.revision[key]
}

var (
	_ app.SnapshotRepository = (*Store)(nil)
	_ app.SnapshotLedger     = (*Store)(nil)
)
