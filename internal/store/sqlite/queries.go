package sqlite

import (
	"context"
)

const getCollection = `-- name: GetCollection :one
SELECT key, value, revision, updated_at FROM collections
WHERE key = ?
`

type Collection struct {
	Key       string
	Value     string
	Revision  int64
	UpdatedAt string
}

func (q *Queries) GetCollection(ctx context.Context, key string) (Collection, error) {
	row := q.db.QueryRowContext(ctx, getCollection, key)
	var i Collection
	err := row.Scan(
		&i.Key,
		&i.Value,
		&i.Revision,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertCollection = `-- name: UpsertCollection :exec
INSERT INTO collections (key, value, revision, updated_at)
VALUES (?, ?, 1, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    revision = collections.revision + 1,
    updated_at = excluded.updated_at
`

type UpsertCollectionParams struct {
	Key   string
	Value string
}

func (q *Queries) UpsertCollection(ctx context.Context, arg UpsertCollectionParams) error {
	_, err := q.db.ExecContext(ctx, upsertCollection, arg.Key, arg.Value)
	return err
}

const listCollectionKeys = `-- name: ListCollectionKeys :many
SELECT key FROM collections
ORDER BY key
`

func (q *Queries) ListCollectionKeys(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCollectionKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		items = append(items, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
