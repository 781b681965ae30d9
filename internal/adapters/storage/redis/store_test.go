package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, ""), mr
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	if _, err := store.LoadSnapshot(ctx, app.StorageKey); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.SaveSnapshot(ctx, app.StorageKey, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	payload, err := store.LoadSnapshot(ctx, app.StorageKey)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if string(payload) != `{"v":1}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	raw, err := mr.Get("tavla:snapshot:board-storage")
	if err != nil {
		t.Fatalf("miniredis Get() error = %v", err)
	}
	if raw != `{"v":1}` {
		t.Fatalf("unexpected raw value %q", raw)
	}
	if rev, _ := mr.Get("tavla:revision:board-storage"); rev != "1" {
		t.Fatalf("unexpected revision %q", rev)
	}
}

func TestStoreLedger(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.now = func() time.Time { return time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC) }

	for _, op := range []app.Operation{app.OpAddTask, app.OpDeleteTask, app.OpReset} {
		event := app.SnapshotEvent{Operation: op, TaskIDs: []string{"t1"}, ColumnID: "1"}
		if err := store.SaveSnapshotEvent(ctx, app.StorageKey, []byte(`{}`), event); err != nil {
			t.Fatalf("SaveSnapshotEvent() error = %v", err)
		}
	}
	events, err := store.ListSnapshotEvents(ctx, app.StorageKey, 2)
	if err != nil {
		t.Fatalf("ListSnapshotEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %#v", events)
	}
	if events[0].Operation != app.OpReset || events[0].Revision != 3 || events[0].Key != app.StorageKey {
		t.Fatalf("unexpected newest event %#v", events[0])
	}
	if events[1].Operation != app.OpDeleteTask || events[1].TaskIDs[0] != "t1" {
		t.Fatalf("unexpected second event %#v", events[1])
	}
	all, err := store.ListSnapshotEvents(ctx, app.StorageKey, 0)
	if err != nil {
		t.Fatalf("ListSnapshotEvents(all) error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
}

func TestStorePersistHookRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	s := app.NewStore(domain.Board{}, func() string { return "t1" }, nil, app.StoreConfig{})
	s.Subscribe(app.NewPersistHook(store, app.StorageKey, app.RetryPolicy{}))
	if _, err := s.AddTask(ctx, "3", "cached"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	board, err := app.LoadBoard(ctx, store, app.StorageKey, nil)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if task, ok := board.Task("t1"); !ok || task.ColumnID != "3" {
		t.Fatalf("unexpected task %#v", task)
	}
}

func TestStoreSurfacesConnectionErrors(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	mr.Close()

	if _, err := store.LoadSnapshot(ctx, app.StorageKey); err == nil || errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if err := store.SaveSnapshot(ctx, app.StorageKey, []byte("x")); err == nil {
		t.Fatal("expected save error")
	}
}

func TestOpenPingsServer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := Open(context.Background(), Options{Addr: mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.SaveSnapshot(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if !mr.Exists("test:snapshot:k") {
		t.Fatal("expected prefixed key")
	}

	if _, err := Open(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}
