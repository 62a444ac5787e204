// Package export turns scenes into downloadable code bundles and PNG previews.
package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/scenecraft/scenecraft/internal/asset"
	"github.com/scenecraft/scenecraft/internal/auth"
	"github.com/scenecraft/scenecraft/internal/codegen"
	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/drawing"
	"github.com/scenecraft/scenecraft/internal/engine"
	"github.com/scenecraft/scenecraft/internal/raster"
)

const (
	maxSceneSize = 8 << 20 // 8MB
	imageTimeout = 15 * time.Second
)

// SceneSource loads stored scenes for the drawing export routes.
type SceneSource interface {
	LoadScene(ctx context.Context, drawingID, userID string) (*drawing.Snapshot, error)
	Get(ctx context.Context, drawingID, userID string) (*drawing.Drawing, error)
}

type Handler struct {
	fonts    *raster.Fonts
	loader   *asset.Loader
	drawings SceneSource
}

func NewHandler(fonts *raster.Fonts, loader *asset.Loader, drawings SceneSource) *Handler {
	return &Handler{fonts: fonts, loader: loader, drawings: drawings}
}

// ExportCode handles POST /export/code. The body is a scene; ?format=zip
// returns an archive, anything else the three sources as JSON.
func (h *Handler) ExportCode(w http.ResponseWriter, r *http.Request) {
	scene, ok := decodeBody(w, r)
	if !ok {
		return
	}
	h.writeCode(w, r, scene, sanitizeName(r.URL.Query().Get("name")))
}

// ExportPNG handles POST /export/png.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	scene, ok := decodeBody(w, r)
	if !ok {
		return
	}
	h.writePNG(w, r, scene, sanitizeName(r.URL.Query().Get("name")))
}

// DrawingCode handles GET /api/drawings/{drawingId}/export/code.
func (h *Handler) DrawingCode(w http.ResponseWriter, r *http.Request) {
	scene, name, ok := h.stored(w, r)
	if !ok {
		return
	}
	h.writeCode(w, r, scene, name)
}

// DrawingPNG handles GET /api/drawings/{drawingId}/export/png.
func (h *Handler) DrawingPNG(w http.ResponseWriter, r *http.Request) {
	scene, name, ok := h.stored(w, r)
	if !ok {
		return
	}
	h.writePNG(w, r, scene, name)
}

func (h *Handler) writeCode(w http.ResponseWriter, r *http.Request, scene *document.Scene, name string) {
	out := codegen.Generate(scene.Elements, scene.CanvasOptions)

	if r.URL.Query().Get("format") != "zip" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, name))
	if err := WriteBundle(w, out); err != nil {
		slog.Error("write code bundle", "error", err)
	}
}

func (h *Handler) writePNG(w http.ResponseWriter, r *http.Request, scene *document.Scene, name string) {
	e := engine.NewEngine()
	e.LoadScene(scene)

	ctx, cancel := context.WithTimeout(r.Context(), imageTimeout)
	defer cancel()
	asset.Hydrate(ctx, h.loader, e)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s.png"`, name))
	if err := raster.RenderPNG(w, e, h.fonts); err != nil {
		slog.Error("render png", "error", err)
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func (h *Handler) stored(w http.ResponseWriter, r *http.Request) (*document.Scene, string, bool) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	d, err := h.drawings.Get(r.Context(), drawingID, userID)
	if err == nil {
		var snap *drawing.Snapshot
		if snap, err = h.drawings.LoadScene(r.Context(), drawingID, userID); err == nil {
			return snap.Scene, sanitizeName(d.Name), true
		}
	}

	switch {
	case errors.Is(err, drawing.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, drawing.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		slog.Error("load drawing for export", "error", err, "drawing", drawingID)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return nil, "", false
}

// File is one generated source as it appears in a bundle.
type File struct {
	Name string
	Body string
}

// Files lists the generated sources under their bundle names.
func Files(out codegen.Output) []File {
	return []File{
		{"GeneratedDesign.jsx", out.React},
		{"index.html", out.HTML},
		{"styles.css", out.CSS},
	}
}

// WriteBundle writes the generated sources as a zip archive.
func WriteBundle(w io.Writer, out codegen.Output) error {
	zw := zip.NewWriter(w)
	for _, f := range Files(out) {
		fw, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := io.WriteString(fw, f.Body); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

func decodeBody(w http.ResponseWriter, r *http.Request) (*document.Scene, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSceneSize))
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return nil, false
	}
	scene, err := document.DecodeScene(body)
	if err != nil {
		http.Error(w, "invalid scene: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return scene, true
}

func sanitizeName(name string) string {
	if name == "" {
		return "design"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
