// Package memdb is an in-memory stand-in for dbgen.Queries. It backs tests
// and the server's DATABASE_URL=memory mode.
package memdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scenecraft/scenecraft/internal/db/dbgen"
)

type DB struct {
	mu        sync.Mutex
	users     map[string]dbgen.User
	drawings  map[string]dbgen.Drawing
	snapshots map[string][]dbgen.SceneSnapshot
	now       func() time.Time
}

func New() *DB {
	return &DB{
		users:     make(map[string]dbgen.User),
		drawings:  make(map[string]dbgen.Drawing),
		snapshots: make(map[string][]dbgen.SceneSnapshot),
		now:       time.Now,
	}
}

func (db *DB) stamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: db.now(), Valid: true}
}

func (db *DB) CreateUser(_ context.Context, arg dbgen.CreateUserParams) (dbgen.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if u.Email == arg.Email {
			return dbgen.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u := dbgen.User{
		ID:          arg.ID,
		Email:       arg.Email,
		Password:    arg.Password,
		DisplayName: arg.DisplayName,
		CreatedAt:   db.stamp(),
	}
	db.users[u.ID] = u
	return u, nil
}

func (db *DB) GetUserByEmail(_ context.Context, email string) (dbgen.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dbgen.User{}, pgx.ErrNoRows
}

func (db *DB) GetUserByID(_ context.Context, id string) (dbgen.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return dbgen.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (db *DB) CreateDrawing(_ context.Context, arg dbgen.CreateDrawingParams) (dbgen.Drawing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.drawings[arg.ID]; ok {
		return dbgen.Drawing{}, &pgconn.PgError{Code: "23505", ConstraintName: "drawings_pkey"}
	}
	ts := db.stamp()
	d := dbgen.Drawing{ID: arg.ID, Name: arg.Name, OwnerID: arg.OwnerID, CreatedAt: ts, UpdatedAt: ts}
	db.drawings[d.ID] = d
	return d, nil
}

func (db *DB) GetDrawing(_ context.Context, id string) (dbgen.Drawing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.drawings[id]
	if !ok {
		return dbgen.Drawing{}, pgx.ErrNoRows
	}
	return d, nil
}

func (db *DB) ListDrawingsForOwner(_ context.Context, ownerID string) ([]dbgen.Drawing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []dbgen.Drawing
	for _, d := range db.drawings {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Time.Equal(out[j].UpdatedAt.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.Time.After(out[j].UpdatedAt.Time)
	})
	return out, nil
}

func (db *DB) RenameDrawing(_ context.Context, arg dbgen.RenameDrawingParams) (dbgen.Drawing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.drawings[arg.ID]
	if !ok {
		return dbgen.Drawing{}, pgx.ErrNoRows
	}
	d.Name = arg.Name
	d.UpdatedAt = db.stamp()
	db.drawings[d.ID] = d
	return d, nil
}

func (db *DB) TouchDrawing(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if d, ok := db.drawings[id]; ok {
		d.UpdatedAt = db.stamp()
		db.drawings[id] = d
	}
	return nil
}

func (db *DB) DeleteDrawing(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.drawings, id)
	delete(db.snapshots, id)
	return nil
}

func (db *DB) CreateSnapshot(_ context.Context, arg dbgen.CreateSnapshotParams) (dbgen.SceneSnapshot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.drawings[arg.DrawingID]; !ok {
		return dbgen.SceneSnapshot{}, &pgconn.PgError{Code: "23503", ConstraintName: "scene_snapshots_drawing_id_fkey"}
	}
	for _, s := range db.snapshots[arg.DrawingID] {
		if s.Version == arg.Version {
			return dbgen.SceneSnapshot{}, &pgconn.PgError{Code: "23505", ConstraintName: "scene_snapshots_drawing_id_version_key"}
		}
	}
	s := dbgen.SceneSnapshot{
		ID:        arg.ID,
		DrawingID: arg.DrawingID,
		Version:   arg.Version,
		Document:  append([]byte(nil), arg.Document...),
		CreatedAt: db.stamp(),
	}
	db.snapshots[arg.DrawingID] = append(db.snapshots[arg.DrawingID], s)
	return s, nil
}

func (db *DB) GetLatestSnapshot(_ context.Context, drawingID string) (dbgen.SceneSnapshot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	snaps := db.snapshots[drawingID]
	if len(snaps) == 0 {
		return dbgen.SceneSnapshot{}, pgx.ErrNoRows
	}
	latest := snaps[0]
	for _, s := range snaps[1:] {
		if s.Version > latest.Version {
			latest = s
		}
	}
	return latest, nil
}
