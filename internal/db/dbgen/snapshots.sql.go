package dbgen

import (
	"context"
)

const createSnapshot = `-- name: CreateSnapshot :one
INSERT INTO scene_snapshots (id, drawing_id, version, document)
VALUES ($1, $2, $3, $4)
RETURNING id, drawing_id, version, document, created_at
`

type CreateSnapshotParams struct {
	ID        string
	DrawingID string
	Version   int32
	Document  []byte
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (SceneSnapshot, error) {
	row := q.db.QueryRow(ctx, createSnapshot,
		arg.ID,
		arg.DrawingID,
		arg.Version,
		arg.Document,
	)
	var i SceneSnapshot
	err := row.Scan(
		&i.ID,
		&i.DrawingID,
		&i.Version,
		&i.Document,
		&i.CreatedAt,
	)
	return i, err
}

const getLatestSnapshot = `-- name: GetLatestSnapshot :one
SELECT id, drawing_id, version, document, created_at FROM scene_snapshots
WHERE drawing_id = $1
ORDER BY version DESC
LIMIT 1
`

func (q *Queries) GetLatestSnapshot(ctx context.Context, drawingID string) (SceneSnapshot, error) {
	row := q.db.QueryRow(ctx, getLatestSnapshot, drawingID)
	var i SceneSnapshot
	err := row.Scan(
		&i.ID,
		&i.DrawingID,
		&i.Version,
		&i.Document,
		&i.CreatedAt,
	)
	return i, err
}
