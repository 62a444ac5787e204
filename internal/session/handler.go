package session

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/drawing"
)

// ServeDrawing handles GET /ws/drawings/{drawingId}?token=... and opens an
// editing session on the owner's drawing.
func (h *Hub) ServeDrawing(w http.ResponseWriter, r *http.Request) {
	drawingID := mux.Vars(r)["drawingId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	snap, err := h.store.LoadScene(r.Context(), drawingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, drawing.ErrNotFound):
			http.Error(w, "drawing not found", http.StatusNotFound)
		case errors.Is(err, drawing.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("load drawing", "error", err, "drawing", drawingID)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.accept(w, r, userID, drawingID, *snap)
}

// ServePlayground handles GET /ws/playground: an anonymous session on the
// sample scene that is never saved.
func (h *Hub) ServePlayground(w http.ResponseWriter, r *http.Request) {
	userID := "anon-" + uuid.New().String()[:8]
	h.accept(w, r, userID, "", Snapshot{Scene: document.NewSampleScene()})
}

func (h *Hub) accept(w http.ResponseWriter, r *http.Request, userID, drawingID string, snap Snapshot) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.opts.Origins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	s := newSession(h, conn, uuid.New().String(), userID, drawingID, snap)
	h.serve(r.Context(), s)
}

// originPatterns turns configured origins into the host patterns the
// websocket library matches against.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			out = append(out, strings.TrimSuffix(o, "/"))
		}
	}
	return out
}
