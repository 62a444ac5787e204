package memdb

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/scenecraft/scenecraft/internal/db/dbgen"
)

func TestSnapshotsAreVersioned(t *testing.T) {
	db := New()
	ctx := context.Background()

	if _, err := db.CreateSnapshot(ctx, dbgen.CreateSnapshotParams{ID: "s0", DrawingID: "d1", Version: 1}); err == nil {
		t.Fatal("CreateSnapshot() for missing drawing succeeded")
	}

	db.CreateDrawing(ctx, dbgen.CreateDrawingParams{ID: "d1", Name: "one", OwnerID: "u1"})
	for i, v := range []int32{1, 3, 2} {
		if _, err := db.CreateSnapshot(ctx, dbgen.CreateSnapshotParams{ID: string(rune('a' + i)), DrawingID: "d1", Version: v}); err != nil {
			t.Fatalf("CreateSnapshot(v%d) error = %v", v, err)
		}
	}

	latest, err := db.GetLatestSnapshot(ctx, "d1")
	if err != nil || latest.Version != 3 {
		t.Fatalf("GetLatestSnapshot() = v%d, %v, want v3", latest.Version, err)
	}

	_, err = db.CreateSnapshot(ctx, dbgen.CreateSnapshotParams{ID: "dup", DrawingID: "d1", Version: 2})
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		t.Errorf("duplicate version error = %v, want unique violation", err)
	}

	db.DeleteDrawing(ctx, "d1")
	if _, err := db.GetLatestSnapshot(ctx, "d1"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("after delete error = %v, want ErrNoRows", err)
	}
}
