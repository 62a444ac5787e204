package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/scenecraft/scenecraft/internal/asset"
	"github.com/scenecraft/scenecraft/internal/auth"
	"github.com/scenecraft/scenecraft/internal/codegen"
	"github.com/scenecraft/scenecraft/internal/db/memdb"
	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/drawing"
	"github.com/scenecraft/scenecraft/internal/raster"
)

const sceneJSON = `{
  "canvasOptions": {"width": 120, "height": 90},
  "elements": [
    {"id": "r1", "type": "rectangle", "x": 10, "y": 10, "width": 50, "height": 40},
    {"id": "t1", "type": "text", "x": 5, "y": 60, "width": 80, "height": 20, "data": {"text": "Hi <there>"}}
  ]
}`

func newTestHandler(t *testing.T, drawings SceneSource) *Handler {
	t.Helper()
	fonts, err := raster.LoadFonts()
	if err != nil {
		t.Fatalf("LoadFonts() error = %v", err)
	}
	return NewHandler(fonts, asset.NewLoader(t.TempDir(), time.Second), drawings)
}

func TestExportCodeJSON(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ExportCode(rec, httptest.NewRequest(http.MethodPost, "/export/code", strings.NewReader(sceneJSON)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out codegen.Output
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out.React, "GeneratedDesign") || !strings.Contains(out.HTML, "Hi &lt;there&gt;") || !strings.Contains(out.CSS, ".element-0") {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestExportCodeZip(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ExportCode(rec, httptest.NewRequest(http.MethodPost, "/export/code?format=zip&name=my+page", strings.NewReader(sceneJSON)))

	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, `"my-page.zip"`) {
		t.Errorf("Content-Disposition = %q", got)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "GeneratedDesign.jsx,index.html,styles.css" {
		t.Errorf("zip entries = %v", names)
	}
}

func TestExportPNG(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ExportPNG(rec, httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(sceneJSON)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 90 {
		t.Errorf("size = %v, want 120x90", b)
	}
}

func TestExportPNGClampsCanvasSize(t *testing.T) {
	h := newTestHandler(t, nil)
	body := `{"canvasOptions":{"width":1e300,"height":10},"elements":[]}`
	rec := httptest.NewRecorder()
	h.ExportPNG(rec, httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != int(document.MaxCanvasExtent) || b.Dy() != 10 {
		t.Errorf("size = %v, want %vx10", b, document.MaxCanvasExtent)
	}
}

func TestExportPNGDoesNotFetchPrivateImages(t *testing.T) {
	var hits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer internal.Close()

	h := newTestHandler(t, nil)
	body := `{"canvasOptions":{"width":40,"height":40},"elements":[` +
		`{"id":"i1","type":"image","x":0,"y":0,"width":20,"height":20,"data":{"src":"` + internal.URL + `/latest/meta-data"}}]}`
	rec := httptest.NewRecorder()
	h.ExportPNG(rec, httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("internal server saw %d requests, want 0", n)
	}
}

func TestExportRejectsBadScene(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ExportCode(rec, httptest.NewRequest(http.MethodPost, "/export/code", strings.NewReader(`{"elements": 3}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDrawingExport(t *testing.T) {
	svc := drawing.NewService(memdb.New())
	scene, _ := document.DecodeScene([]byte(sceneJSON))
	d, err := svc.Create(context.Background(), "Stored board", "user_a", scene)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	h := newTestHandler(t, svc)

	route := func(userID string) http.Handler {
		r := mux.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
			})
		})
		r.HandleFunc("/api/drawings/{drawingId}/export/code", h.DrawingCode)
		r.HandleFunc("/api/drawings/{drawingId}/export/png", h.DrawingPNG)
		return r
	}

	tests := []struct {
		name   string
		user   string
		path   string
		status int
		ctype  string
	}{
		{"code", "user_a", "/api/drawings/" + d.ID + "/export/code", http.StatusOK, "application/json"},
		{"zip", "user_a", "/api/drawings/" + d.ID + "/export/code?format=zip", http.StatusOK, "application/zip"},
		{"png", "user_a", "/api/drawings/" + d.ID + "/export/png", http.StatusOK, "image/png"},
		{"forbidden", "user_b", "/api/drawings/" + d.ID + "/export/png", http.StatusForbidden, ""},
		{"missing", "user_a", "/api/drawings/drw_nope/export/code", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			route(tt.user).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.ctype != "" && rec.Header().Get("Content-Type") != tt.ctype {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.ctype)
			}
		})
	}

	rec := httptest.NewRecorder()
	route("user_a").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings/"+d.ID+"/export/code?format=zip", nil))
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Stored-board.zip") {
		t.Errorf("Content-Disposition = %q", got)
	}
}
