package drawing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/scenecraft/scenecraft/internal/auth"
	"github.com/scenecraft/scenecraft/internal/db/memdb"
	"github.com/scenecraft/scenecraft/internal/document"
)

func TestCreateSeedsEmptyScene(t *testing.T) {
	s := NewService(memdb.New())
	ctx := context.Background()

	d, err := s.Create(ctx, "  Landing page ", "user_a", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if d.Name != "Landing page" || d.OwnerID != "user_a" {
		t.Errorf("Create() = %+v", d)
	}

	snap, err := s.LoadScene(ctx, d.ID, "user_a")
	if err != nil {
		t.Fatalf("LoadScene() error = %v", err)
	}
	if snap.Version != 1 || len(snap.Scene.Elements) != 0 {
		t.Errorf("LoadScene() = v%d with %d elements, want v1 empty", snap.Version, len(snap.Scene.Elements))
	}
}

func TestSaveSceneIncrementsVersion(t *testing.T) {
	s := NewService(memdb.New())
	ctx := context.Background()
	d, _ := s.Create(ctx, "sample", "user_a", nil)

	scene := document.NewSampleScene()
	for want := int32(2); want <= 3; want++ {
		got, err := s.SaveScene(ctx, d.ID, "user_a", scene)
		if err != nil {
			t.Fatalf("SaveScene() error = %v", err)
		}
		if got != want {
			t.Errorf("SaveScene() version = %d, want %d", got, want)
		}
	}

	snap, err := s.LoadScene(ctx, d.ID, "user_a")
	if err != nil {
		t.Fatalf("LoadScene() error = %v", err)
	}
	if len(snap.Scene.Elements) != len(scene.Elements) {
		t.Errorf("loaded %d elements, want %d", len(snap.Scene.Elements), len(scene.Elements))
	}
	for i, el := range snap.Scene.Elements {
		if el.ID != scene.Elements[i].ID || el.Type != scene.Elements[i].Type {
			t.Errorf("element %d = %s/%s, want %s/%s", i, el.ID, el.Type, scene.Elements[i].ID, scene.Elements[i].Type)
		}
	}
}

func TestOwnership(t *testing.T) {
	s := NewService(memdb.New())
	ctx := context.Background()
	d, _ := s.Create(ctx, "mine", "user_a", nil)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"get other user", func() error { _, err := s.Get(ctx, d.ID, "user_b"); return err }, ErrForbidden},
		{"delete other user", func() error { return s.Delete(ctx, d.ID, "user_b") }, ErrForbidden},
		{"save other user", func() error { _, err := s.SaveScene(ctx, d.ID, "user_b", document.NewEmptyScene()); return err }, ErrForbidden},
		{"malformed id", func() error { _, err := s.Get(ctx, "nope", "user_a"); return err }, ErrNotFound},
		{"rename blank", func() error { _, err := s.Rename(ctx, d.ID, "user_a", "   "); return err }, ErrInvalidName},
		{"create blank", func() error { _, err := s.Create(ctx, "", "user_a", nil); return err }, ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := s.Delete(ctx, d.ID, "user_a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, d.ID, "user_a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func newRouter(s *Service, userID string) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	NewHandler(s).Routes(api)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandlerLifecycle(t *testing.T) {
	s := NewService(memdb.New())
	h := newRouter(s, "user_a")

	rec := do(t, h, http.MethodPost, "/api/drawings", `{"name":"Board","scene":{"elements":[{"id":"r1","type":"rectangle","x":1,"y":2,"width":30,"height":40}]}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created Drawing
	json.NewDecoder(rec.Body).Decode(&created)

	rec = do(t, h, http.MethodGet, "/api/drawings/"+created.ID+"/scene", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get scene status = %d", rec.Code)
	}
	var snap struct {
		Version int32           `json:"version"`
		Scene   json.RawMessage `json:"scene"`
	}
	json.NewDecoder(rec.Body).Decode(&snap)
	scene, err := document.DecodeScene(snap.Scene)
	if err != nil || snap.Version != 1 || len(scene.Elements) != 1 {
		t.Fatalf("scene = v%d %+v, %v", snap.Version, scene, err)
	}

	rec = do(t, h, http.MethodPut, "/api/drawings/"+created.ID+"/scene", `{"elements":[]}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"version":2`) {
		t.Errorf("save scene = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPatch, "/api/drawings/"+created.ID, `{"name":"Renamed"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Renamed") {
		t.Errorf("rename = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/drawings", "")
	var list []Drawing
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	if rec := do(t, newRouter(s, "user_b"), http.MethodGet, "/api/drawings/"+created.ID, ""); rec.Code != http.StatusForbidden {
		t.Errorf("foreign get status = %d, want 403", rec.Code)
	}

	if rec := do(t, h, http.MethodDelete, "/api/drawings/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/drawings/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestHandlerRejectsBadScene(t *testing.T) {
	s := NewService(memdb.New())
	d, _ := s.Create(context.Background(), "x", "user_a", nil)
	h := newRouter(s, "user_a")

	if rec := do(t, h, http.MethodPut, "/api/drawings/"+d.ID+"/scene", `{"elements":"nope"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
