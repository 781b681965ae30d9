package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// RetryPolicy bounds how often a failed save is retried.
type RetryPolicy struct {
	Retries int
	Backoff time.Duration
}

// LoadBoard reads the board stored under key. When nothing is stored the
// seed board built from seedColumns is returned.
func LoadBoard(ctx context.Context, repo SnapshotRepository, key string, seedColumns []string) (domain.Board, error) {
	if repo == nil {
		return domain.SeedBoard(seedColumns), nil
	}
	payload, err := repo.LoadSnapshot(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return domain.SeedBoard(seedColumns), nil
	}
	if err != nil {
		return domain.Board{}, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	board, err := DecodeBoard(payload)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return board, nil
}

// SaveBoard encodes board and stores it under key.
func SaveBoard(ctx context.Context, repo SnapshotRepository, key string, board domain.Board) error {
	payload, err := EncodeBoard(board)
	if err != nil {
		return err
	}
	return repo.SaveSnapshot(ctx, key, payload)
}

// NewPersistHook returns a hook saving every changed board under key. Repos
// that implement SnapshotLedger also record the transition. A failed save is
// retried per policy; the last error is wrapped with ErrPersist.
func NewPersistHook(repo SnapshotRepository, key string, policy RetryPolicy) Hook {
	if policy.Retries < 0 {
		policy.Retries = 0
	}
	ledger, _ := repo.(SnapshotLedger)
	return func(ctx context.Context, change Change, board domain.Board) error {
		payload, err := EncodeBoard(board)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
		save := func() error {
			if ledger != nil {
				return ledger.SaveSnapshotEvent(ctx, key, payload, SnapshotEvent{
					Key:       key,
					Operation: change.Operation,
					TaskIDs:   change.TaskIDs,
					ColumnID:  change.ColumnID,
				})
			}
			return repo.SaveSnapshot(ctx, key, payload)
		}

		attempts := 0
		for {
			attempts++
			err = save()
			if err == nil {
				return nil
			}
			if attempts > policy.Retries {
				break
			}
			if waitErr := sleepContext(ctx, policy.Backoff*time.Duration(attempts)); waitErr != nil {
				err = errors.Join(err, waitErr)
				break
			}
		}
		return fmt.Errorf("%w %q after %d attempt(s): %w", ErrPersist, key, attempts, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
