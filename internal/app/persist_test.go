package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

type fakeRepo struct {
	mu        sync.Mutex
	payloads  map[string][]byte
	saves     int
	failTimes int
	failErr   error
	loadErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payloads: map[string][]byte{}}
}

func (r *fakeRepo) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	payload, ok := r.payloads[key]
	if !ok {
		return nil, ErrNotFound
	}
	return payload, nil
}

func (r *fakeRepo) SaveSnapshot(_ context.Context, key string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.failTimes != 0 {
		if r.failTimes > 0 {
			r.failTimes--
		}
		return r.failErr
	}
	r.payloads[key] = append([]byte(nil), payload...)
	return nil
}

type fakeLedgerRepo struct {
	*fakeRepo
	events []SnapshotEvent
}

func (r *fakeLedgerRepo) SaveSnapshotEvent(ctx context.Context, key string, payload []byte, event SnapshotEvent) error {
	if err := r.SaveSnapshot(ctx, key, payload); err != nil {
		return err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeLedgerRepo) ListSnapshotEvents(context.Context, string, int) ([]SnapshotEvent, error) {
	return r.events, nil
}

func TestLoadBoardFallsBackToSeed(t *testing.T) {
	repo := newFakeRepo()
	board, err := LoadBoard(context.Background(), repo, StorageKey, nil)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if len(board.Columns) != 3 || board.Columns[0].Title != "To Do" {
		t.Fatalf("unexpected seed board %#v", board.Columns)
	}

	repo.loadErr = errors.New("disk gone")
	if _, err := LoadBoard(context.Background(), repo, StorageKey, nil); err == nil {
		t.Fatal("expected load error")
	}

	repo.loadErr = nil
	repo.payloads[StorageKey] = []byte(`{"columns":[{"id":"1","task_ids":["x"]}],"tasks":{}}`)
	if _, err := LoadBoard(context.Background(), repo, StorageKey, nil); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestPersistHookSavesEachChange(t *testing.T) {
	repo := newFakeRepo()
	s := newTestStore(t, StoreConfig{})
	s.Subscribe(NewPersistHook(repo, StorageKey, RetryPolicy{}))
	ctx := context.Background()

	task := mustAddTask(t, s, "1", "a")
	_ = s.MoveTask(ctx, task.ID, "1", "1", 0)
	_ = s.SetSearchTerm(ctx, "")
	if repo.saves != 1 {
		t.Fatalf("expected one save, got %d", repo.saves)
	}
	_ = s.ToggleTaskComplete(ctx, task.ID)
	if repo.saves != 2 {
		t.Fatalf("expected two saves, got %d", repo.saves)
	}

	board, err := LoadBoard(ctx, repo, StorageKey, nil)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if !board.Tasks[task.ID].Completed {
		t.Fatal("expected persisted completion")
	}
}

func TestPersistHookRetriesThenSucceeds(t *testing.T) {
	repo := newFakeRepo()
	repo.failTimes = 2
	repo.failErr = errors.New("busy")
	s := newTestStore(t, StoreConfig{})
	s.Subscribe(NewPersistHook(repo, StorageKey, RetryPolicy{Retries: 2, Backoff: time.Millisecond}))

	if _, err := s.AddTask(context.Background(), "1", "a"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if repo.saves != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.saves)
	}
	if _, ok := repo.payloads[StorageKey]; !ok {
		t.Fatal("expected payload saved after retries")
	}
}

func TestPersistHookFailureKeepsState(t *testing.T) {
	repo := newFakeRepo()
	repo.failTimes = -1
	repo.failErr = errors.New("read-only")
	s := newTestStore(t, StoreConfig{})
	s.Subscribe(NewPersistHook(repo, StorageKey, RetryPolicy{Retries: 1}))

	task, err := s.AddTask(context.Background(), "1", "a")
	if !errors.Is(err, ErrPersist) || !errors.Is(err, repo.failErr) {
		t.Fatalf("expected wrapped persist error, got %v", err)
	}
	if repo.saves != 2 {
		t.Fatalf("expected 2 attempts, got %d", repo.saves)
	}
	if _, ok := s.Snapshot().Task(task.ID); !ok {
		t.Fatal("expected in-memory state to keep the change")
	}
}

func TestPersistHookRecordsLedgerEvents(t *testing.T) {
	repo := &fakeLedgerRepo{fakeRepo: newFakeRepo()}
	s := newTestStore(t, StoreConfig{})
	s.Subscribe(NewPersistHook(repo, "custom", RetryPolicy{}))

	task := mustAddTask(t, s, "2", "a")
	if err := s.DeleteColumn(context.Background(), "2"); err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %#v", repo.events)
	}
	last := repo.events[1]
	if last.Operation != OpDeleteColumn || last.ColumnID != "2" || last.Key != "custom" {
		t.Fatalf("unexpected event %#v", last)
	}
	if len(last.TaskIDs) != 1 || last.TaskIDs[0] != task.ID {
		t.Fatalf("unexpected event task ids %v", last.TaskIDs)
	}
}

func TestSaveBoardWritesDecodablePayload(t *testing.T) {
	repo := newFakeRepo()
	if err := SaveBoard(context.Background(), repo, StorageKey, domain.SeedBoard([]string{"A"})); err != nil {
		t.Fatalf("SaveBoard() error = %v", err)
	}
	board, err := DecodeBoard(repo.payloads[StorageKey])
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	if len(board.Columns) != 1 || board.Columns[0].Title != "A" {
		t.Fatalf("unexpected board %#v", board.Columns)
	}
}
