package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	part.Write(body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadStoresPNG(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", pngBytes(t, 3, 2)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Width != 3 || resp.Height != 2 || resp.Format != "png" {
		t.Errorf("response = %+v", resp)
	}
	if !strings.HasPrefix(resp.Src, URLPrefix) {
		t.Errorf("Src = %q, want %s prefix", resp.Src, URLPrefix)
	}
	if _, err := os.Stat(filepath.Join(dir, resp.ID+".png")); err != nil {
		t.Errorf("stored file missing: %v", err)
	}

	img, err := NewLoader(dir, time.Second).Load(context.Background(), resp.Src)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", resp.Src, err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("loaded bounds = %v", b)
	}

	if err := h.Delete(resp.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestUploadRejects(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        []byte
	}{
		{"unsupported type", "image/gif", []byte("GIF89a")},
		{"not an image", "image/png", []byte("hello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(t.TempDir()).Upload(rec, uploadRequest(t, tt.contentType, tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestLoaderDataURL(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 5, 4))
	img, err := NewLoader(t.TempDir(), 0).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 4 {
		t.Errorf("bounds = %v", b)
	}
}

func TestLoaderHTTP(t *testing.T) {
	data := pngBytes(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(t.TempDir(), time.Second, AllowPrivateNetworks())
	if _, err := l.Load(context.Background(), srv.URL+"/ok.png"); err != nil {
		t.Errorf("Load(ok) error = %v", err)
	}
	if _, err := l.Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("Load(missing) error = nil, want status error")
	}
}

func TestLoaderBlocksPrivateAddresses(t *testing.T) {
	var hits atomic.Int32
	data := pngBytes(t, 1, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(t.TempDir(), time.Second)
	if _, err := l.Load(context.Background(), srv.URL+"/latest/meta-data"); !errors.Is(err, ErrBlockedAddress) {
		t.Errorf("Load(loopback) error = %v, want ErrBlockedAddress", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestBlockedAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"0.0.0.0", true},
		{"fd00::1", true},
		{"fe80::1", true},
		{"::ffff:127.0.0.1", true},
		{"8.8.8.8", false},
		{"2606:4700:4700::1111", false},
	}
	for _, tt := range tests {
		if got := blockedAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("blockedAddr(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestLoaderRejects(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(filepath.Dir(dir), "secret.png")
	os.WriteFile(outside, pngBytes(t, 1, 1), 0o644)
	defer os.Remove(outside)

	l := NewLoader(dir, time.Second)
	if _, err := l.Load(context.Background(), "ftp://example.com/a.png"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("Load(ftp) error = %v, want ErrUnsupportedSource", err)
	}
	if _, err := l.Load(context.Background(), "data:image/png,raw"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("Load(non-base64) error = %v, want ErrUnsupportedSource", err)
	}
	if _, err := l.Load(context.Background(), URLPrefix+"../secret.png"); err == nil {
		t.Error("Load(traversal) error = nil, want not found")
	}
}

func TestHydrateAttachesBitmaps(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "ok.png"), pngBytes(t, 4, 4), 0o644)

	e := engine.NewEngine()
	scene := document.NewEmptyScene()
	scene.Elements = []document.Element{
		document.NewImageElement("a", URLPrefix+"ok.png", 0, 0, 10, 10),
		document.NewImageElement("b", URLPrefix+"missing.png", 20, 0, 10, 10),
		document.NewImageElement("c", URLPrefix+"ok.png", 40, 0, 10, 10),
	}
	e.LoadScene(scene)

	Hydrate(context.Background(), NewLoader(dir, time.Second), e)

	want := map[string]document.ImageLoadState{
		"a": document.ImageLoaded,
		"b": document.ImageFailed,
		"c": document.ImageLoaded,
	}
	for id, state := range want {
		el, _ := e.Element(id)
		d := el.Data.(*document.ImageData)
		if d.LoadState != state {
			t.Errorf("%s LoadState = %v, want %v", id, d.LoadState, state)
		}
		if state == document.ImageLoaded && d.Bitmap == nil {
			t.Errorf("%s has no bitmap", id)
		}
	}
	if got := e.PendingImageSources(); len(got) != 0 {
		t.Errorf("PendingImageSources() = %v, want none", got)
	}
}
