package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/housing-service/internal/utils"
)

// EntityWithVersion is a row guarded by a row_version column. T must be
// comparable so a missing row (nil pointer) can be told apart.
type EntityWithVersion interface {
	comparable
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
}

// UpdateIfVersionFunc writes entity only if the stored row_version still
// equals expected; zero rows affected means another writer won.
type UpdateIfVersionFunc[T EntityWithVersion] func(ctx context.Context, entity T, expected int64) (pgconn.CommandTag, error)

// GetByIDFunc loads one entity, returning the zero T when it does not exist.
type GetByIDFunc[T EntityWithVersion] func(ctx context.Context, id string) (T, error)

const defaultMaxRetries = 3

// WithRetry loads id, applies mutate and writes it back under the version
// check, reloading on a lost race for up to maxRetries attempts.
//
// Errors: pgx.ErrNoRows if the entity is gone, mutate's error unchanged, or
// utils.ErrRowVersionConflict wrapped once every attempt lost.
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id string,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) error {
	var missing T
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		entity, err := getByID(ctx, id)
		if err != nil {
			return err
		}
		if entity == missing {
			return pgx.ErrNoRows
		}

		read := entity.GetRowVersion()
		if err := mutate(entity); err != nil {
			return err
		}

		tag, err := updateIfVersion(ctx, entity, read)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			entity.SetRowVersion(read + 1)
			return nil
		}
	}
	return fmt.Errorf("update %q: still contended after %d attempts: %w", id, maxRetries, utils.ErrRowVersionConflict)
}
