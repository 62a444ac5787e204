// Package drawing stores user drawings and their versioned scene snapshots.
package drawing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scenecraft/scenecraft/internal/db/dbgen"
	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/typeid"
)

var (
	ErrNotFound    = errors.New("drawing not found")
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidName = errors.New("invalid drawing name")
)

const maxNameLength = 200

// Store is the subset of dbgen.Queries the service needs.
type Store interface {
	CreateDrawing(ctx context.Context, arg dbgen.CreateDrawingParams) (dbgen.Drawing, error)
	GetDrawing(ctx context.Context, id string) (dbgen.Drawing, error)
	ListDrawingsForOwner(ctx context.Context, ownerID string) ([]dbgen.Drawing, error)
	RenameDrawing(ctx context.Context, arg dbgen.RenameDrawingParams) (dbgen.Drawing, error)
	TouchDrawing(ctx context.Context, id string) error
	DeleteDrawing(ctx context.Context, id string) error
	CreateSnapshot(ctx context.Context, arg dbgen.CreateSnapshotParams) (dbgen.SceneSnapshot, error)
	GetLatestSnapshot(ctx context.Context, drawingID string) (dbgen.SceneSnapshot, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type Drawing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Snapshot is a stored scene with its version number.
type Snapshot struct {
	Version int32           `json:"version"`
	Scene   *document.Scene `json:"scene"`
}

// Create makes a drawing owned by ownerID and seeds version 1 with scene,
// or with an empty scene when scene is nil.
func (s *Service) Create(ctx context.Context, name, ownerID string, scene *document.Scene) (*Drawing, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if scene == nil {
		scene = document.NewEmptyScene()
	}

	dbDrawing, err := s.store.CreateDrawing(ctx, dbgen.CreateDrawingParams{
		ID:      typeid.NewDrawingID(),
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}

	if _, err := s.writeSnapshot(ctx, dbDrawing.ID, 1, scene); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toDrawing(dbDrawing), nil
}

func (s *Service) Get(ctx context.Context, drawingID, userID string) (*Drawing, error) {
	dbDrawing, err := s.owned(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}
	return toDrawing(dbDrawing), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Drawing, error) {
	dbDrawings, err := s.store.ListDrawingsForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	drawings := make([]Drawing, len(dbDrawings))
	for i, d := range dbDrawings {
		drawings[i] = *toDrawing(d)
	}
	return drawings, nil
}

func (s *Service) Rename(ctx context.Context, drawingID, userID, name string) (*Drawing, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return nil, err
	}

	dbDrawing, err := s.store.RenameDrawing(ctx, dbgen.RenameDrawingParams{ID: drawingID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("rename drawing: %w", err)
	}
	return toDrawing(dbDrawing), nil
}

func (s *Service) Delete(ctx context.Context, drawingID, userID string) error {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteDrawing(ctx, drawingID); err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	return nil
}

// LoadScene returns the latest stored scene of a drawing.
func (s *Service) LoadScene(ctx context.Context, drawingID, userID string) (*Snapshot, error) {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, drawingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Snapshot{Version: 0, Scene: document.NewEmptyScene()}, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	scene, err := document.DecodeScene(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &Snapshot{Version: snap.Version, Scene: scene}, nil
}

// SaveScene stores scene as the next version of a drawing.
func (s *Service) SaveScene(ctx context.Context, drawingID, userID string, scene *document.Scene) (int32, error) {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return 0, err
	}

	next := int32(1)
	current, err := s.store.GetLatestSnapshot(ctx, drawingID)
	switch {
	case err == nil:
		next = current.Version + 1
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, fmt.Errorf("get snapshot: %w", err)
	}

	version, err := s.writeSnapshot(ctx, drawingID, next, scene)
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	if err := s.store.TouchDrawing(ctx, drawingID); err != nil {
		return 0, fmt.Errorf("touch drawing: %w", err)
	}
	return version, nil
}

func (s *Service) writeSnapshot(ctx context.Context, drawingID string, version int32, scene *document.Scene) (int32, error) {
	docJSON, err := json.Marshal(scene)
	if err != nil {
		return 0, fmt.Errorf("marshal scene: %w", err)
	}

	snap, err := s.store.CreateSnapshot(ctx, dbgen.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		DrawingID: drawingID,
		Version:   version,
		Document:  docJSON,
	})
	if err != nil {
		return 0, err
	}
	return snap.Version, nil
}

func (s *Service) owned(ctx context.Context, drawingID, userID string) (dbgen.Drawing, error) {
	if err := typeid.Validate(drawingID, typeid.PrefixDrawing); err != nil {
		return dbgen.Drawing{}, ErrNotFound
	}

	dbDrawing, err := s.store.GetDrawing(ctx, drawingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Drawing{}, ErrNotFound
		}
		return dbgen.Drawing{}, fmt.Errorf("get drawing: %w", err)
	}

	if dbDrawing.OwnerID != userID {
		return dbgen.Drawing{}, ErrForbidden
	}
	return dbDrawing, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func toDrawing(d dbgen.Drawing) *Drawing {
	return &Drawing{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.Time.UTC().Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.Time.UTC().Format(time.RFC3339),
	}
}
