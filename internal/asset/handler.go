// Package asset stores uploaded images and loads bitmaps for image elements.
package asset

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/scenecraft/scenecraft/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

// URLPrefix is the path stored assets are served under.
const URLPrefix = "/assets/"

var acceptedTypes = []string{"image/png", "image/jpeg", "image/webp", "image/bmp"}

// UploadResponse is returned from the upload endpoint. Src is what an image
// element should reference.
type UploadResponse struct {
	ID     string `json:"id"`
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Name   string `json:"name"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	dir string
}

// NewHandler creates a new asset handler that stores files in dir.
func NewHandler(dir string) *Handler {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir}
}

// Upload handles POST /assets/upload (multipart form with "file" field).
// Every accepted format is re-encoded as PNG.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") && !accepted(ct) {
		http.Error(w, "only PNG, JPEG, WebP and BMP images are supported", http.StatusBadRequest)
		return
	}

	img, format, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	if err := h.save(filename, img); err != nil {
		slog.Error("save asset", "error", err, "id", assetID)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	bounds := img.Bounds()
	resp := UploadResponse{
		ID:     assetID,
		Src:    URLPrefix + filename,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
		Name:   header.Filename,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) save(filename string, img image.Image) error {
	path := filepath.Join(h.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix(URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes an asset file from disk.
func (h *Handler) Delete(assetID string) error {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(h.dir, assetID+".png")); err != nil {
		return fmt.Errorf("asset not found: %s", assetID)
	}
	return nil
}

func accepted(contentType string) bool {
	for _, t := range acceptedTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}
