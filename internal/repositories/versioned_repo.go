package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// versionedRepo is embedded by the Postgres repositories whose rows carry a
// row_version. It loads by primary key and runs WithRetry against the
// embedding repository's conditional UPDATE.
type versionedRepo[T EntityWithVersion] struct {
	db         DB
	selectByID string
	scan       func(row pgx.Row) (T, error)
}

func newVersionedRepo[T EntityWithVersion](db DB, selectByID string, scan func(pgx.Row) (T, error)) *versionedRepo[T] {
	return &versionedRepo[T]{db: db, selectByID: selectByID, scan: scan}
}

func (v *versionedRepo[T]) GetByID(ctx context.Context, id string) (T, error) {
	return v.scan(v.db.QueryRow(ctx, v.selectByID, id))
}

func (v *versionedRepo[T]) UpdateWithRetry(
	ctx context.Context,
	id string,
	mutate func(T) error,
	updateIfVersion UpdateIfVersionFunc[T],
) error {
	return WithRetry(ctx, defaultMaxRetries, id, v.GetByID, updateIfVersion, mutate)
}
