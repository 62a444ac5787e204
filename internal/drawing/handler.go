package drawing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/scenecraft/scenecraft/internal/auth"
	"github.com/scenecraft/scenecraft/internal/document"
)

const maxSceneBody = 8 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name  string          `json:"name"`
	Scene json.RawMessage `json:"scene,omitempty"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// Routes registers the drawing endpoints on an authenticated subrouter.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/drawings", h.List).Methods("GET")
	r.HandleFunc("/drawings", h.Create).Methods("POST")
	r.HandleFunc("/drawings/{drawingId}", h.Get).Methods("GET")
	r.HandleFunc("/drawings/{drawingId}", h.Rename).Methods("PATCH")
	r.HandleFunc("/drawings/{drawingId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/drawings/{drawingId}/scene", h.GetScene).Methods("GET")
	r.HandleFunc("/drawings/{drawingId}/scene", h.SaveScene).Methods("PUT")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSceneBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var scene *document.Scene
	if len(req.Scene) > 0 {
		var err error
		if scene, err = document.DecodeScene(req.Scene); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scene"})
			return
		}
	}

	drawing, err := h.service.Create(r.Context(), req.Name, userID, scene)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, drawing)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	drawing, err := h.service.Get(r.Context(), drawingID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, drawing)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	drawings, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, drawings)
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	drawing, err := h.service.Rename(r.Context(), drawingID, userID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, drawing)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	if err := h.service.Delete(r.Context(), drawingID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	snap, err := h.service.LoadScene(r.Context(), drawingID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) SaveScene(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSceneBody)).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	scene, err := document.DecodeScene(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scene"})
		return
	}

	version, err := h.service.SaveScene(r.Context(), drawingID, userID, scene)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int32{"version": version})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrInvalidName):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required (max 200 characters)"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
