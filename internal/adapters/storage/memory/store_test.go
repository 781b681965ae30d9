package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hylla/tavla/internal/app"
)

func TestStoreSaveLoadCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.LoadSnapshot(ctx, "k"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	payload := []byte("abc")
	if err := s.SaveSnapshot(ctx, "k", payload); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	payload[0] = 'x'
	got, err := s.LoadSnapshot(ctx, "k")
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("unexpected payload %q", got)
	}
	got[1] = 'x'
	again, _ := s.LoadSnapshot(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("store leaked its buffer: %q", again)
	}
}

func TestStoreLedger(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, op := range []app.Operation{app.OpAddTask, app.OpMoveTask, app.OpReset} {
		if err := s.SaveSnapshotEvent(ctx, "k", []byte("{}"), app.SnapshotEvent{Operation: op}); err != nil {
			t.Fatalf("SaveSnapshotEvent() error = %v", err)
		}
	}
	_ = s.SaveSnapshotEvent(ctx, "other", []byte("{}"), app.SnapshotEvent{Operation: app.OpSetFilter})

	events, err := s.ListSnapshotEvents(ctx, "k", 2)
	if err != nil {
		t.Fatalf("ListSnapshotEvents() error = %v", err)
	}
	if len(events) != 2 || events[0].Operation != app.OpReset || events[1].Operation != app.OpMoveTask {
		t.Fatalf("unexpected events %#v", events)
	}
	if events[0].Revision != 3 || events[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected revision metadata %#v", events[0])
	}
	all, _ := s.ListSnapshotEvents(ctx, "k", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
}
