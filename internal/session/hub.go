// Package session runs live editing sessions over websockets. Each
// connection owns its own engine; the hub tracks them so shutdown can wait
// for their final saves.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/scenecraft/scenecraft/internal/asset"
	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/drawing"
	"github.com/scenecraft/scenecraft/internal/engine"
)

// Snapshot is the scene a session starts from.
type Snapshot = drawing.Snapshot

// SceneStore loads and saves drawings on behalf of a user.
type SceneStore interface {
	LoadScene(ctx context.Context, drawingID, userID string) (*drawing.Snapshot, error)
	SaveScene(ctx context.Context, drawingID, userID string, scene *document.Scene) (int32, error)
}

// ImageLoader resolves image sources in the background.
type ImageLoader interface {
	LoadAll(ctx context.Context, srcs []string) []asset.Result
}

// TokenValidator maps a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type Options struct {
	// Origins are the allowed browser origins, e.g. "http://localhost:5173".
	Origins       []string
	EngineOptions []engine.Option
}

type Hub struct {
	store  SceneStore
	loader ImageLoader
	tokens TokenValidator
	opts   Options

	mu         sync.RWMutex
	sessions   map[string]*Session
	register   chan *Session
	unregister chan *Session

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool // guarded by mu; no session starts once set
}

func NewHub(store SceneStore, loader ImageLoader, tokens TokenValidator, opts Options) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		store:      store,
		loader:     loader,
		tokens:     tokens,
		opts:       opts,
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s.ID] = s
			h.mu.Unlock()
			slog.Info("session opened", "session", s.ID, "user", s.UserID, "drawing", s.DrawingID)
		case s := <-h.unregister:
			h.mu.Lock()
			delete(h.sessions, s.ID)
			h.mu.Unlock()
			slog.Info("session closed", "session", s.ID, "user", s.UserID, "drawing", s.DrawingID)
		case <-h.ctx.Done():
			return
		}
	}
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stop closes every session and waits for their final saves.
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
	h.cancel()
	h.wg.Wait()
}

// serve runs s until its connection closes, the request ends, or the hub
// stops. The connection is always closed on return.
func (h *Hub) serve(ctx context.Context, s *Session) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		s.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()

	select {
	case h.register <- s:
	case <-ctx.Done():
		s.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer func() {
		select {
		case h.unregister <- s:
		case <-h.ctx.Done():
		}
	}()

	s.run(ctx)
}
