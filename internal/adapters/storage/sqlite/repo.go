package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// defaultEventLimit caps ListSnapshotEvents when no limit is given.
const defaultEventLimit = 50

// Repository stores board snapshots and their save ledger in sqlite.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Shared-cache connections lock each other out on concurrent writes.
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			revision INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshot_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL,
			operation TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_events_key ON snapshot_events(key, id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	eventAlterStatements := []string{
		`ALTER TABLE snapshot_events ADD COLUMN revision INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE snapshot_events ADD COLUMN column_id TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE snapshot_events ADD COLUMN task_ids_json TEXT NOT NULL DEFAULT '[]'`,
	}
	for _, stmt := range eventAlterStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil && !isDuplicateColumnErr(err) {
			return fmt.Errorf("migrate sqlite snapshot_events: %w", err)
		}
	}
	return nil
}

// LoadSnapshot returns the payload stored under key.
func (r *Repository) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(payload), nil
}

// SaveSnapshot upserts the payload under key and bumps its revision.
func (r *Repository) SaveSnapshot(ctx context.Context, key string, payload []byte) error {
	_, err := upsertSnapshot(ctx, r.db, key, payload, r.now())
	return err
}

// SaveSnapshotEvent saves the payload and appends a ledger entry in one transaction.
func (r *Repository) SaveSnapshotEvent(ctx context.Context, key string, payload []byte, event app.SnapshotEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := r.now()
	revision, err := upsertSnapshot(ctx, tx, key, payload, now)
	if err != nil {
		return err
	}
	event.Key = key
	event.Revision = revision
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if err = insertSnapshotEvent(ctx, tx, event); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// ListSnapshotEvents returns the most recent ledger entries for key, newest first.
func (r *Repository) ListSnapshotEvents(ctx context.Context, key string, limit int) ([]app.SnapshotEvent, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, key, operation, revision, column_id, task_ids_json, created_at
		FROM snapshot_events
		WHERE key = ?
		ORDER BY id DESC
		LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]app.SnapshotEvent, 0)
	for rows.Next() {
		var (
			event      app.SnapshotEvent
			opRaw      string
			taskIDsRaw string
			createdRaw string
		)
		if err := rows.Scan(&event.ID, &event.Key, &opRaw, &event.Revision, &event.ColumnID, &taskIDsRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = app.Operation(opRaw)
		event.CreatedAt = parseTS(createdRaw)
		if strings.TrimSpace(taskIDsRaw) == "" {
			taskIDsRaw = "[]"
		}
		if err := json.Unmarshal([]byte(taskIDsRaw), &event.TaskIDs); err != nil {
			return nil, fmt.Errorf("decode snapshot_events.task_ids_json: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// queryExecer represents the DB contract shared by DB and Tx implementations.
type queryExecer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// upsertSnapshot writes payload and returns the new revision.
func upsertSnapshot(ctx context.Context, q queryExecer, key string, payload []byte, now time.Time) (int64, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO snapshots(key, payload, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			revision = snapshots.revision + 1,
			updated_at = excluded.updated_at
	`, key, string(payload), ts(now))
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	var revision int64
	if err := q.QueryRowContext(ctx, `SELECT revision FROM snapshots WHERE key = ?`, key).Scan(&revision); err != nil {
		return 0, fmt.Errorf("read snapshot revision: %w", err)
	}
	return revision, nil
}

// insertSnapshotEvent inserts a ledger record.
func insertSnapshotEvent(ctx context.Context, q queryExecer, event app.SnapshotEvent) error {
	taskIDs := event.TaskIDs
	if taskIDs == nil {
		taskIDs = []string{}
	}
	taskIDsJSON, err := json.Marshal(taskIDs)
	if err != nil {
		return fmt.Errorf("encode snapshot event task ids: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO snapshot_events(key, operation, revision, column_id, task_ids_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		event.Key,
		string(event.Operation),
		event.Revision,
		event.ColumnID,
		string(taskIDsJSON),
		ts(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot event: %w", err)
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// isDuplicateColumnErr reports whether the expected condition is satisfied.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}

var (
	_ app.SnapshotRepository = (*Repository)(nil)
	_ app.SnapshotLedger     = (*Repository)(nil)
)
