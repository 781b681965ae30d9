package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hylla/tavla/internal/domain"
)

func TestEncodeBoardUsesStorageLayout(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	ctx := context.Background()
	task := mustAddTask(t, s, "2", "Write code")
	_ = s.ToggleTaskSelection(ctx, task.ID)
	_ = s.SetSearchTerm(ctx, "code")
	_ = s.SetFilter(ctx, domain.FilterIncomplete)

	payload, err := EncodeBoard(s.Snapshot())
	if err != nil {
		t.Fatalf("EncodeBoard() error = %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	for _, key := range []string{"version", "columns", "tasks", "search_term", "selected_tasks", "filter"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("expected key %q in %s", key, payload)
		}
	}
	if !strings.Contains(string(payload), `"task_ids":["`+task.ID+`"]`) {
		t.Fatalf("expected task ids in column payload, got %s", payload)
	}

	board, err := DecodeBoard(payload)
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	if board.SearchTerm != "code" || board.Filter != domain.FilterIncomplete {
		t.Fatalf("unexpected settings %q %q", board.SearchTerm, board.Filter)
	}
	got, ok := board.Task(task.ID)
	if !ok || got.Title != "Write code" || got.ColumnID != "2" || !got.CreatedAt.Equal(task.CreatedAt) {
		t.Fatalf("unexpected decoded task %#v", got)
	}
	if !board.IsSelected(task.ID) {
		t.Fatal("expected selection to survive")
	}
}

func TestDecodeBoardRejectsCorruptPayloads(t *testing.T) {
	cases := map[string]string{
		"empty":          "  ",
		"syntax":         `{"columns":`,
		"version":        `{"version":"other.v9","columns":[],"tasks":{}}`,
		"filter":         `{"columns":[],"tasks":{},"filter":"archived"}`,
		"dangling":       `{"columns":[{"id":"1","title":"To Do","task_ids":["t1"]}],"tasks":{}}`,
		"mismatched":     `{"columns":[{"id":"1","title":"A","task_ids":["t1"]},{"id":"2","title":"B","task_ids":[]}],"tasks":{"t1":{"id":"t1","title":"x","column_id":"2"}}}`,
		"orphan":         `{"columns":[{"id":"1","title":"A","task_ids":[]}],"tasks":{"t1":{"id":"t1","title":"x","column_id":"1"}}}`,
		"ghost selected": `{"columns":[{"id":"1","title":"A","task_ids":[]}],"tasks":{},"selected_tasks":["t9"]}`,
	}
	for name, payload := range cases {
		if _, err := DecodeBoard([]byte(payload)); !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("%s: expected ErrInvalidSnapshot, got %v", name, err)
		}
	}
}

func TestDecodeBoardAcceptsUnversionedPayload(t *testing.T) {
	payload := `{"columns":[{"id":"1","title":"To Do","task_ids":["t1"]}],"tasks":{"t1":{"id":"t1","title":"x","completed":true,"column_id":"1"}},"search_term":"","selected_tasks":[],"filter":""}`
	board, err := DecodeBoard([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	if board.Filter != domain.FilterAll {
		t.Fatalf("expected empty filter to decode as all, got %q", board.Filter)
	}
	if !board.Tasks["t1"].Completed {
		t.Fatal("expected completion flag")
	}
}
