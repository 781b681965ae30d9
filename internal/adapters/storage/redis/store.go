package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hylla/tavla/internal/app"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "tavla:"

// maxEvents bounds the ledger list kept per key.
const maxEvents = 500

// Options configures a redis-backed store.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store keeps snapshots in redis strings and the ledger in a capped list.
type Store struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// Open connects to redis and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewStore(client, opts.Prefix), nil
}

// NewStore wraps an existing client.
func NewStore(client *goredis.Client, prefix string) *Store {
	if client == nil {
		panic("redis.NewStore: client is nil")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// LoadSnapshot returns the payload stored under key.
func (s *Store) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.snapshotKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	return payload, nil
}

// SaveSnapshot stores payload under key and bumps its revision.
func (s *Store) SaveSnapshot(ctx context.Context, key string, payload []byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.snapshotKey(key), payload, 0)
		pipe.Incr(ctx, s.revisionKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save snapshot: %w", err)
	}
	return nil
}

// eventRecord is the JSON form of a ledger entry.
type eventRecord struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	TaskIDs   []string  `json:"task_ids"`
	ColumnID  string    `json:"column_id"`
	Revision  int64     `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveSnapshotEvent bumps the revision, then stores payload and pushes the
// event onto the capped ledger in one MULTI/EXEC block.
func (s *Store) SaveSnapshotEvent(ctx context.Context, key string, payload []byte, event app.SnapshotEvent) error {
	revision, err := s.client.Incr(ctx, s.revisionKey(key)).Result()
	if err != nil {
		return fmt.Errorf("redis bump revision: %w", err)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}
	record, err := json.Marshal(eventRecord{
		ID:        revision,
		Operation: string(event.Operation),
		TaskIDs:   event.TaskIDs,
		ColumnID:  event.ColumnID,
		Revision:  revision,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot event: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.snapshotKey(key), payload, 0)
		pipe.LPush(ctx, s.eventsKey(key), record)
		pipe.LTrim(ctx, s.eventsKey(key), 0, maxEvents-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save snapshot event: %w", err)
	}
	return nil
}

// ListSnapshotEvents returns up to limit events for key, newest first.
func (s *Store) ListSnapshotEvents(ctx context.Context, key string, limit int) ([]app.SnapshotEvent, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := s.client.LRange(ctx, s.eventsKey(key), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list snapshot events: %w", err)
	}
	out := make([]app.SnapshotEvent, 0, len(raw))
	for _, item := range raw {
		var record eventRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("decode snapshot event: %w", err)
		}
		out = append(out, app.SnapshotEvent{
			ID:        record.ID,
			Key:       key,
			Operation: app.Operation(record.Operation),
			TaskIDs:   record.TaskIDs,
			ColumnID:  record.ColumnID,
			Revision:  record.Revision,
			CreatedAt: record.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) snapshotKey(key string) string {
	return s.prefix + "snapshot:" + key
}

func (s *Store) revisionKey(key string) string {
	return s.prefix + "revision:" + key
}

func (s *Store) eventsKey(key string) string {
	return s.prefix + "events:" + key
}

var (
	_ app.SnapshotRepository = (*Store)(nil)
	_ app.SnapshotLedger     = (*Store)(nil)
)
