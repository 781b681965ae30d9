package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hylla/tavla/internal/app"
)

// Store keeps one JSON file per storage key inside a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open prepares dir and returns a file-backed store.
func Open(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("file store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create file store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file a key is stored in.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, fileName(key))
}

// LoadSnapshot reads the file stored for key.
func (s *Store) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bs, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return bs, nil
}

// SaveSnapshot writes payload to a temp file and renames it over the target.
func (s *Store) SaveSnapshot(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, fileName(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

// fileName maps a storage key onto a safe file name.
func fileName(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		key = app.StorageKey
	}
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".json"
}

var _ app.SnapshotRepository = (*Store)(nil)
